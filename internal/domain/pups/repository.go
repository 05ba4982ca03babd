package pups

import "context"

type Repository interface {
	Create(ctx context.Context, p Pup) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pup, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pup, error)
}
