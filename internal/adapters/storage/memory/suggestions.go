package memory

import (
	"context"
	"sort"
	"sync"

	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/suggestions"
)

type SuggestionRepository struct {
	mu   sync.RWMutex
	byID map[string]suggestions.Suggestion
}

func NewSuggestionRepository() *SuggestionRepository {
	return &SuggestionRepository{byID: map[string]suggestions.Suggestion{}}
}

func (r *SuggestionRepository) Create(ctx context.Context, s suggestions.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	return nil
}

func (r *SuggestionRepository) Update(ctx context.Context, s suggestions.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return suggestions.ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *SuggestionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return suggestions.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (suggestions.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return suggestions.Suggestion{}, suggestions.ErrNotFound
	}
	return s, nil
}

func (r *SuggestionRepository) ListByPup(ctx context.Context, pupID string, f suggestions.ListFilter) ([]suggestions.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]suggestions.Suggestion, 0)
	for _, s := range r.byID {
		if s.PupID == pupID && f.Matches(s) {
			out = append(out, s)
		}
	}
	sortSuggestions(out)
	return out, nil
}

func (r *SuggestionRepository) ListBySuggester(ctx context.Context, userID string, f suggestions.ListFilter) ([]suggestions.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]suggestions.Suggestion, 0)
	for _, s := range r.byID {
		if s.SuggestedByUserID == userID && f.Matches(s) {
			out = append(out, s)
		}
	}
	sortSuggestions(out)
	return out, nil
}

func sortSuggestions(items []suggestions.Suggestion) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartAt.Before(items[j].StartAt)
	})
}

// ApprovalStore acopla la aprobación con la creación del hangout. Sin
// transacciones reales, inserta el hangout primero y compensa con un delete
// si el flip de la sugerencia falla; el par nunca queda a medias.
type ApprovalStore struct {
	suggestions *SuggestionRepository
	hangouts    *HangoutRepository
}

func NewApprovalStore(s *SuggestionRepository, h *HangoutRepository) *ApprovalStore {
	return &ApprovalStore{suggestions: s, hangouts: h}
}

func (a *ApprovalStore) Approve(ctx context.Context, s suggestions.Suggestion, h hangouts.Hangout) error {
	if err := a.hangouts.Create(ctx, h); err != nil {
		return err
	}
	if err := a.suggestions.Update(ctx, s); err != nil {
		_ = a.hangouts.Delete(ctx, h.ID)
		return err
	}
	return nil
}
