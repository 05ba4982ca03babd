package hangouts

import "time"

// Status define el ciclo de vida de un hangout.
// OPEN ⇄ ASSIGNED → {COMPLETED, CANCELLED}; los dos últimos son terminales.
// @Enum OPEN, ASSIGNED, COMPLETED, CANCELLED
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusAssigned  Status = "ASSIGNED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Hangout es un turno de cuidado comprometido que ocupa el calendario del
// pup. Invariante central: mientras esté OPEN o ASSIGNED, su ventana no se
// solapa con ningún otro hangout OPEN/ASSIGNED del mismo pup.
type Hangout struct {
	ID    string
	PupID string

	StartAt time.Time
	EndAt   time.Time

	Status Status

	// AssignedFriendUserID es obligatorio si y solo si Status == ASSIGNED.
	AssignedFriendUserID *string

	CreatedByUserID string

	Notes       string
	DisplayName string

	// Serie recurrente: ambos nil para turnos sueltos.
	SeriesID    *string
	SeriesIndex *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reporta si el hangout ocupa calendario (cuenta para solapamiento).
func (h Hangout) Active() bool {
	return h.Status == StatusOpen || h.Status == StatusAssigned
}

// AssignedTo reporta si el hangout está asignado a ese usuario.
func (h Hangout) AssignedTo(userID string) bool {
	return h.AssignedFriendUserID != nil && *h.AssignedFriendUserID == userID
}
