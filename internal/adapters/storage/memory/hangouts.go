package memory

import (
	"context"
	"sort"
	"sync"

	"pup-hangouts/internal/domain/hangouts"
)

type HangoutRepository struct {
	mu   sync.RWMutex
	byID map[string]hangouts.Hangout
}

func NewHangoutRepository() *HangoutRepository {
	return &HangoutRepository{byID: map[string]hangouts.Hangout{}}
}

func (r *HangoutRepository) Create(ctx context.Context, h hangouts.Hangout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[h.ID] = h
	return nil
}

func (r *HangoutRepository) Update(ctx context.Context, h hangouts.Hangout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[h.ID]; !ok {
		return hangouts.ErrNotFound
	}
	r.byID[h.ID] = h
	return nil
}

func (r *HangoutRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return hangouts.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *HangoutRepository) GetByID(ctx context.Context, id string) (hangouts.Hangout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byID[id]
	if !ok {
		return hangouts.Hangout{}, hangouts.ErrNotFound
	}
	return h, nil
}

func (r *HangoutRepository) ListByPup(ctx context.Context, pupID string, f hangouts.ListFilter) ([]hangouts.Hangout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]hangouts.Hangout, 0)
	for _, h := range r.byID {
		if h.PupID == pupID && f.Matches(h) {
			out = append(out, h)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *HangoutRepository) ListActiveByPup(ctx context.Context, pupID string) ([]hangouts.Hangout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]hangouts.Hangout, 0)
	for _, h := range r.byID {
		if h.PupID == pupID && h.Active() {
			out = append(out, h)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *HangoutRepository) ListAssignedTo(ctx context.Context, friendUserID string, f hangouts.ListFilter) ([]hangouts.Hangout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]hangouts.Hangout, 0)
	for _, h := range r.byID {
		if h.AssignedTo(friendUserID) && f.Matches(h) {
			out = append(out, h)
		}
	}
	sortByStart(out)
	return out, nil
}

func sortByStart(items []hangouts.Hangout) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartAt.Before(items[j].StartAt)
	})
}
