package hangouts

import (
	"context"
	"time"
)

// ListFilter acota listados por rango temporal y estado. Campos nil = sin filtro.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Status *Status
}

// Matches aplica el filtro sobre un hangout (lo usan los adapters in-memory).
func (f ListFilter) Matches(h Hangout) bool {
	if f.Status != nil && h.Status != *f.Status {
		return false
	}
	if f.From != nil && !h.EndAt.After(*f.From) {
		return false
	}
	if f.To != nil && !h.StartAt.Before(*f.To) {
		return false
	}
	return true
}

type Repository interface {
	Create(ctx context.Context, h Hangout) error
	Update(ctx context.Context, h Hangout) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Hangout, error)
	ListByPup(ctx context.Context, pupID string, f ListFilter) ([]Hangout, error)
	// ListActiveByPup devuelve solo OPEN/ASSIGNED: el conjunto contra el
	// que se evalúa el invariante de no-solapamiento.
	ListActiveByPup(ctx context.Context, pupID string) ([]Hangout, error)
	ListAssignedTo(ctx context.Context, friendUserID string, f ListFilter) ([]Hangout, error)
}
