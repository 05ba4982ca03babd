// Package webhook implementa notify.Sender contra un relay HTTP genérico:
// un POST JSON por mensaje, con API key opcional. El core no sabe si del
// otro lado hay email, un bot de chat o un webhook de prueba.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pup-hangouts/internal/platform/httpclient"
	"pup-hangouts/internal/ports/notify"
)

var (
	ErrNotConfigured = errors.New("webhook sender not configured")
	ErrUpstream      = errors.New("webhook upstream error")
)

// Config del sender. BaseURL y APIKey normalmente vienen de env vars.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header para la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Sender struct {
	client       *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewSender(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}

	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}

	return &Sender{
		client:       client,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

// NewSenderWithClient permite inyectar el httpclient (p.ej. para tests).
func NewSenderWithClient(client *httpclient.Client, apiKey string) *Sender {
	return &Sender{
		client:       client,
		apiKey:       strings.TrimSpace(apiKey),
		apiKeyHeader: "X-Api-Key",
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	ID string `json:"id"`
}

const sendPath = "/v1/messages"

// Send entrega un mensaje a un canal de contacto. Devuelve el id del
// proveedor si lo hay; los 4xx/5xx llegan como error para que el dispatcher
// los reporte como "failed".
func (s *Sender) Send(ctx context.Context, contactChannel, message string) (notify.Receipt, error) {
	if s == nil || s.client == nil {
		return notify.Receipt{}, ErrNotConfigured
	}
	contactChannel = strings.TrimSpace(contactChannel)
	if contactChannel == "" {
		return notify.Receipt{}, errors.New("empty contact channel")
	}

	var headers map[string]string
	if s.apiKey != "" {
		headers = map[string]string{s.apiKeyHeader: s.apiKey}
	}

	var out sendResponse
	err := s.client.DoJSON(ctx, http.MethodPost, sendPath, headers, sendRequest{
		To:      contactChannel,
		Message: message,
	}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return notify.Receipt{}, err
		}
		return notify.Receipt{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return notify.Receipt{ProviderID: out.ID}, nil
}
