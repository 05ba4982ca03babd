package suggestions

import "time"

// Status es el ciclo de vida de una sugerencia. PENDING es el único estado
// editable; APPROVED y REJECTED son terminales. El retiro (withdraw) borra la
// fila, no es un estado almacenado.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Suggestion es una ventana propuesta por un amigo que todavía no ocupa el
// calendario del pup. Recién al aprobarla nace el Hangout comprometido.
type Suggestion struct {
	ID      string    `json:"id"`
	PupID   string    `json:"pup_id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	Status Status `json:"status"`

	SuggestedByUserID string `json:"suggested_by_user_id"`
	DisplayName       string `json:"display_name,omitempty"`
	Comment           string `json:"comment,omitempty"`

	// Metadatos de decisión; vacíos mientras PENDING.
	DecisionComment string     `json:"decision_comment,omitempty"`
	DecidedByUserID *string    `json:"decided_by_user_id,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`

	SeriesID    *string `json:"series_id,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Suggestion) Pending() bool { return s.Status == StatusPending }
