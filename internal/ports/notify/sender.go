package notify

import "context"

// Receipt es la respuesta del transporte por envío individual.
type Receipt struct {
	ProviderID string
}

// Sender es el canal de salida de notificaciones (colaborador externo).
// El core no reintenta: cualquier error se reporta como "failed" y listo.
type Sender interface {
	Send(ctx context.Context, contactChannel, message string) (Receipt, error)
}
