package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mailpilot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler consumes validated inbound updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u domain.InboundUpdate)
}

// WebhookConfig configures the inbound webhook server.
type WebhookConfig struct {
	Port   int
	Path   string // webhook URL path (default: /webhook)
	Logger *slog.Logger
}

// Webhook accepts Telegram webhook POSTs and feeds them to an UpdateHandler.
// The HTTP response is always a fixed "OK" acknowledgement: malformed or
// duplicate updates are logged and dropped, and command failures reach the
// user over the chat, never through the HTTP status.
type Webhook struct {
	port    int
	path    string
	handler UpdateHandler
	logger  *slog.Logger
	server  *http.Server
}

func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return &Webhook{
		port:   cfg.Port,
		path:   cfg.Path,
		logger: cfg.Logger,
	}
}

// Start runs the webhook HTTP server until ctx is cancelled.
func (w *Webhook) Start(ctx context.Context, handler UpdateHandler) error {
	w.handler = handler

	mux := http.NewServeMux()
	mux.HandleFunc(w.path, w.handleUpdate)

	w.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", w.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	w.logger.Info("webhook server starting", "port", w.port, "path", w.path)

	errCh := make(chan error, 1)
	go func() {
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return w.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (w *Webhook) handleUpdate(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB max
	if err != nil {
		w.logger.Warn("webhook body read failed", "err", err)
		writeOK(rw)
		return
	}
	defer r.Body.Close()

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		w.logger.Warn("webhook update not parseable, ignoring", "err", err)
		writeOK(rw)
		return
	}

	if update.UpdateID == 0 {
		w.logger.Warn("webhook update without update_id, ignoring")
		writeOK(rw)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		w.logger.Info("webhook update without message, ignoring", "update_id", update.UpdateID)
		writeOK(rw)
		return
	}

	w.logger.Info("webhook update received",
		"update_id", update.UpdateID,
		"chat_id", update.Message.Chat.ID,
		"text_len", len(update.Message.Text),
	)

	// Handled inline: the request is the unit of cooperative handling, and
	// the acknowledgement goes out once the command has run its course.
	w.handler.HandleUpdate(r.Context(), domain.InboundUpdate{
		UpdateID: update.UpdateID,
		ChatID:   update.Message.Chat.ID,
		Text:     update.Message.Text,
	})

	writeOK(rw)
}

func writeOK(rw http.ResponseWriter) {
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("OK"))
}
