package channel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"mailpilot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordingHandler struct {
	updates []domain.InboundUpdate
}

func (h *recordingHandler) HandleUpdate(ctx context.Context, u domain.InboundUpdate) {
	h.updates = append(h.updates, u)
}

func newTestWebhook(h UpdateHandler) *Webhook {
	w := NewWebhook(WebhookConfig{Logger: testLogger()})
	w.handler = h
	return w
}

func postUpdate(t *testing.T, w *Webhook, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	w.handleUpdate(rec, req)
	return rec
}

func TestWebhook_ValidUpdate(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWebhook(h)

	rec := postUpdate(t, w, `{
		"update_id": 101,
		"message": {"message_id": 1, "chat": {"id": 42}, "text": "/start"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body, _ := io.ReadAll(rec.Result().Body); string(body) != "OK" {
		t.Fatalf("expected OK body, got %q", body)
	}
	if len(h.updates) != 1 {
		t.Fatalf("expected 1 handled update, got %d", len(h.updates))
	}
	u := h.updates[0]
	if u.UpdateID != 101 || u.ChatID != 42 || u.Text != "/start" {
		t.Fatalf("unexpected update: %+v", u)
	}
}

func TestWebhook_MalformedJSONAcknowledged(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWebhook(h)

	rec := postUpdate(t, w, `{"update_id": `)

	if rec.Code != http.StatusOK {
		t.Fatalf("malformed payload must still be acknowledged, got %d", rec.Code)
	}
	if body, _ := io.ReadAll(rec.Result().Body); string(body) != "OK" {
		t.Fatalf("expected OK body, got %q", body)
	}
	if len(h.updates) != 0 {
		t.Fatalf("malformed payload must not reach the handler, got %d", len(h.updates))
	}
}

func TestWebhook_MissingUpdateIDIgnored(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWebhook(h)

	rec := postUpdate(t, w, `{"message": {"message_id": 1, "chat": {"id": 42}, "text": "hi"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(h.updates) != 0 {
		t.Fatal("update without update_id must be dropped")
	}
}

func TestWebhook_NonMessageUpdateIgnored(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWebhook(h)

	rec := postUpdate(t, w, `{"update_id": 7, "edited_message": {"message_id": 1, "chat": {"id": 42}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(h.updates) != 0 {
		t.Fatal("update without message must be dropped")
	}
}

func TestWebhook_RejectsNonPOST(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWebhook(h)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	w.handleUpdate(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if len(h.updates) != 0 {
		t.Fatal("GET must not reach the handler")
	}
}
