package suggestions

import (
	"context"
	"time"

	"pup-hangouts/internal/domain/hangouts"
)

// ListFilter acota un listado. Punteros nil = sin filtro.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Status *Status
}

// Matches evalúa el filtro en memoria; los adapters SQL lo traducen a WHERE.
func (f ListFilter) Matches(s Suggestion) bool {
	if f.From != nil && !s.EndAt.After(*f.From) {
		return false
	}
	if f.To != nil && !s.StartAt.Before(*f.To) {
		return false
	}
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	return true
}

// Repository persiste sugerencias.
type Repository interface {
	Create(ctx context.Context, s Suggestion) error
	Update(ctx context.Context, s Suggestion) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Suggestion, error)
	ListByPup(ctx context.Context, pupID string, f ListFilter) ([]Suggestion, error)
	ListBySuggester(ctx context.Context, userID string, f ListFilter) ([]Suggestion, error)
}

// ApprovalStore ejecuta el par aprobar-sugerencia + crear-hangout como una
// unidad todo-o-nada. En Postgres es una transacción; el adapter en memoria
// hace insert y compensa con delete si el flip falla. Aplicación parcial
// (sugerencia APPROVED sin hangout, o al revés) es una violación de
// consistencia, nunca un resultado válido.
type ApprovalStore interface {
	Approve(ctx context.Context, s Suggestion, h hangouts.Hangout) error
}
