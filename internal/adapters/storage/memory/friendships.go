package memory

import (
	"context"
	"sync"

	"pup-hangouts/internal/domain/friendships"
)

type FriendshipRepository struct {
	mu   sync.RWMutex
	byID map[string]friendships.Friendship
}

func NewFriendshipRepository() *FriendshipRepository {
	return &FriendshipRepository{byID: map[string]friendships.Friendship{}}
}

func (r *FriendshipRepository) Create(ctx context.Context, f friendships.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[f.ID] = f
	return nil
}

func (r *FriendshipRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return friendships.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *FriendshipRepository) GetByPupAndFriend(ctx context.Context, pupID, friendUserID string) (friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.byID {
		if f.PupID == pupID && f.FriendUserID == friendUserID {
			return f, nil
		}
	}
	return friendships.Friendship{}, friendships.ErrNotFound
}

func (r *FriendshipRepository) ListByPup(ctx context.Context, pupID string) ([]friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]friendships.Friendship, 0)
	for _, f := range r.byID {
		if f.PupID == pupID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *FriendshipRepository) ListByFriend(ctx context.Context, friendUserID string) ([]friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]friendships.Friendship, 0)
	for _, f := range r.byID {
		if f.FriendUserID == friendUserID {
			out = append(out, f)
		}
	}
	return out, nil
}
