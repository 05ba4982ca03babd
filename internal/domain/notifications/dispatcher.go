package notifications

import (
	"context"
	"time"

	"pup-hangouts/internal/domain/users"
	"pup-hangouts/internal/platform/logger"
	"pup-hangouts/internal/ports/notify"
)

// Outcome clasifica cada entrega individual.
// @Enum sent, skipped, failed
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result es el registro por destinatario que toda operación mutadora
// devuelve al caller. No se persiste ni se reintenta.
type Result struct {
	RecipientUserID string
	RecipientName   string
	ContactChannel  string
	Relationship    string
	Outcome         Outcome
	Reason          string
	Message         string
}

// UserDirectory resuelve destinatarios (nombre y canal de contacto).
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// DefaultThrottle es la pausa entre envíos consecutivos cuando hay más de
// un destinatario, para respetar el rate limit asumido del transporte.
const DefaultThrottle = 250 * time.Millisecond

type Dispatcher struct {
	userDir  UserDirectory
	sender   notify.Sender
	log      logger.Logger
	enabled  bool
	throttle time.Duration
	sleep    func(time.Duration)
}

type DispatcherOptions struct {
	Enabled  bool
	Throttle time.Duration
}

func NewDispatcher(userDir UserDirectory, sender notify.Sender, log logger.Logger, opts DispatcherOptions) *Dispatcher {
	throttle := opts.Throttle
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Dispatcher{
		userDir:  userDir,
		sender:   sender,
		log:      log,
		enabled:  opts.Enabled && sender != nil,
		throttle: throttle,
		sleep:    time.Sleep,
	}
}

// Dispatch compone y entrega cada intent, en orden, después de que la
// transición de estado ya quedó escrita. Nunca devuelve error: las fallas
// de entrega se reportan por destinatario en el resultado.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) []Result {
	out := make([]Result, 0, len(intents))

	for i, in := range intents {
		if i > 0 && len(intents) > 1 {
			d.sleep(d.throttle)
		}
		out = append(out, d.deliver(ctx, in))
	}

	return out
}

func (d *Dispatcher) deliver(ctx context.Context, in Intent) Result {
	res := Result{
		RecipientUserID: in.RecipientUserID,
		Relationship:    in.Relationship,
		Message:         Compose(in),
	}

	u, err := d.userDir.GetByID(ctx, in.RecipientUserID)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = "recipient not found"
		return res
	}
	res.RecipientName = u.Name

	if u.ContactChannel == nil {
		res.Outcome = OutcomeSkipped
		res.Reason = "no contact channel on file"
		return res
	}
	res.ContactChannel = *u.ContactChannel

	if !d.enabled {
		res.Outcome = OutcomeSkipped
		res.Reason = "notifications disabled"
		return res
	}

	if _, err := d.sender.Send(ctx, *u.ContactChannel, res.Message); err != nil {
		if d.log != nil {
			d.log.Warn("notification delivery failed", map[string]any{
				"recipient": in.RecipientUserID,
				"kind":      string(in.Kind),
				"error":     err.Error(),
			})
		}
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		return res
	}

	res.Outcome = OutcomeSent
	res.Reason = "delivered to transport"
	return res
}
