package friendships

import "context"

type Repository interface {
	Create(ctx context.Context, f Friendship) error
	Delete(ctx context.Context, id string) error
	GetByPupAndFriend(ctx context.Context, pupID, friendUserID string) (Friendship, error)
	ListByPup(ctx context.Context, pupID string) ([]Friendship, error)
	ListByFriend(ctx context.Context, friendUserID string) ([]Friendship, error)
}
