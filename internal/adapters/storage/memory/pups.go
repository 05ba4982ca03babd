package memory

import (
	"context"
	"sync"

	"pup-hangouts/internal/domain/pups"
)

type PupRepository struct {
	mu   sync.RWMutex
	byID map[string]pups.Pup
}

func NewPupRepository() *PupRepository {
	return &PupRepository{byID: map[string]pups.Pup{}}
}

func (r *PupRepository) Create(ctx context.Context, p pups.Pup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *PupRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pups.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *PupRepository) GetByID(ctx context.Context, id string) (pups.Pup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return pups.Pup{}, pups.ErrNotFound
	}
	return p, nil
}

func (r *PupRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]pups.Pup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pups.Pup, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}
