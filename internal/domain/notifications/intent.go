package notifications

import "time"

// Kind identifica el contenido semántico de una notificación.
type Kind string

const (
	KindHangoutAvailable   Kind = "HANGOUT_AVAILABLE"
	KindHangoutConfirmed   Kind = "HANGOUT_CONFIRMED"
	KindHangoutRescheduled Kind = "HANGOUT_RESCHEDULED"
	KindHangoutCancelled   Kind = "HANGOUT_CANCELLED"
	KindHangoutRemoved     Kind = "HANGOUT_REMOVED"
	KindHangoutClaimed     Kind = "HANGOUT_CLAIMED"
	KindHangoutReleased    Kind = "HANGOUT_RELEASED"

	KindSuggestionReceived  Kind = "SUGGESTION_RECEIVED"
	KindSuggestionApproved  Kind = "SUGGESTION_APPROVED"
	KindSuggestionRejected  Kind = "SUGGESTION_REJECTED"
	KindSuggestionWithdrawn Kind = "SUGGESTION_WITHDRAWN"
)

// Intent es lo que una operación de negocio decide notificar: a quién y
// con qué contenido semántico. La entrega es asunto del Dispatcher; las
// operaciones nunca se bloquean ni fallan por notificaciones.
type Intent struct {
	Kind            Kind
	RecipientUserID string

	// Relationship describe el papel del destinatario frente al evento
	// ("friend", "owner", "assigned friend"), para mostrar en el resultado.
	Relationship string

	PupName string
	StartAt time.Time
	EndAt   time.Time

	// ActorName es quien disparó el evento (amigo que sugiere, etc.).
	ActorName string

	// Comment acompaña decisiones y sugerencias (texto libre).
	Comment string

	// Occurrences > 1 indica que el intent cubre una serie recurrente.
	Occurrences int
}
