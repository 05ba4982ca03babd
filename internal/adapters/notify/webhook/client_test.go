package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"pup-hangouts/internal/platform/httpclient"
)

type fakeTransport struct {
	status  int
	body    string
	lastReq *http.Request
	lastIn  sendRequest
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(raw, &f.lastIn)
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func newTestSender(tr *fakeTransport) *Sender {
	c := httpclient.NewWithTransport(0, tr)
	c.BaseURL = "http://relay.test"
	return NewSenderWithClient(c, "secret-key")
}

func TestSender_Send(t *testing.T) {
	tr := &fakeTransport{status: http.StatusOK, body: `{"id":"msg-42"}`}
	s := newTestSender(tr)

	receipt, err := s.Send(context.Background(), "fede@example.com", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if receipt.ProviderID != "msg-42" {
		t.Fatalf("expected provider id, got %q", receipt.ProviderID)
	}

	if tr.lastReq.URL.String() != "http://relay.test/v1/messages" {
		t.Fatalf("unexpected url: %s", tr.lastReq.URL)
	}
	if got := tr.lastReq.Header.Get("X-Api-Key"); got != "secret-key" {
		t.Fatalf("api key header missing, got %q", got)
	}
	if tr.lastIn.To != "fede@example.com" || tr.lastIn.Message != "hello" {
		t.Fatalf("unexpected payload: %#v", tr.lastIn)
	}
}

func TestSender_Send_UpstreamError(t *testing.T) {
	tr := &fakeTransport{status: http.StatusTooManyRequests, body: `rate limited`}
	s := newTestSender(tr)

	_, err := s.Send(context.Background(), "fede@example.com", "hello")
	if err == nil {
		t.Fatalf("expected error on 429")
	}
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected HTTPError 429, got %v", err)
	}
}

func TestSender_Send_EmptyChannel(t *testing.T) {
	s := newTestSender(&fakeTransport{status: http.StatusOK})
	if _, err := s.Send(context.Background(), "  ", "hello"); err == nil {
		t.Fatalf("expected error on empty channel")
	}
}

func TestNewSender_RequiresBaseURL(t *testing.T) {
	if _, err := NewSender(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
