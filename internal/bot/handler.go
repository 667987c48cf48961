package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mailpilot/internal/domain"
)

const (
	cmdStart       = "/start"
	cmdListSenders = "/listsenders"
	cmdCheckEmails = "/checkemails"

	defaultSenderLimit = 3
)

// Handler is the command router: it deduplicates inbound updates, classifies
// the text against the chat's session state, and either replies directly,
// mutates the session, or kicks off the check-emails pipeline.
type Handler struct {
	dedup       *Deduplicator
	sessions    *SessionStore
	courier     *Courier
	sender      domain.TextSender
	mailbox     domain.Mailbox
	pipeline    *Pipeline
	allowFrom   map[int64]struct{}
	suggestions []string
	senderLimit int64
	logger      *slog.Logger
}

type HandlerConfig struct {
	Dedup       *Deduplicator
	Sessions    *SessionStore
	Courier     *Courier
	Sender      domain.TextSender // raw sender for best-effort error notices
	Mailbox     domain.Mailbox
	Pipeline    *Pipeline
	AllowFrom   []int64  // allowed chat IDs (empty = allow all)
	Suggestions []string // sender suggestions shown in the welcome message
	SenderLimit int64    // /listsenders bound, default 3
	Logger      *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.SenderLimit <= 0 {
		cfg.SenderLimit = defaultSenderLimit
	}
	var allowed map[int64]struct{}
	if len(cfg.AllowFrom) > 0 {
		allowed = make(map[int64]struct{}, len(cfg.AllowFrom))
		for _, id := range cfg.AllowFrom {
			allowed[id] = struct{}{}
		}
	}
	return &Handler{
		dedup:       cfg.Dedup,
		sessions:    cfg.Sessions,
		courier:     cfg.Courier,
		sender:      cfg.Sender,
		mailbox:     cfg.Mailbox,
		pipeline:    cfg.Pipeline,
		allowFrom:   allowed,
		suggestions: cfg.Suggestions,
		senderLimit: cfg.SenderLimit,
		logger:      cfg.Logger,
	}
}

// HandleUpdate processes one inbound update end to end. It never reports
// failure to the transport; every abort path produces exactly one
// explanatory message to the originating chat instead.
func (h *Handler) HandleUpdate(ctx context.Context, u domain.InboundUpdate) {
	if !h.dedup.ShouldProcess(u.UpdateID) {
		h.logger.Info("duplicate update dropped", "update_id", u.UpdateID, "chat_id", u.ChatID)
		return
	}

	if h.allowFrom != nil {
		if _, ok := h.allowFrom[u.ChatID]; !ok {
			h.logger.Warn("unauthorized chat", "chat_id", u.ChatID)
			if err := h.courier.Deliver(ctx, u.ChatID, "⛔ Unauthorized. This chat is not in the allow list."); err != nil {
				h.logger.Error("unauthorized notice failed", "chat_id", u.ChatID, "err", err)
			}
			return
		}
	}

	if err := h.route(ctx, u); err != nil {
		h.logger.Error("update handling failed",
			"update_id", u.UpdateID,
			"chat_id", u.ChatID,
			"err", err,
		)
		h.notifyError(ctx, u.ChatID, err)
	}
}

// route classifies the update text in priority order: /start, /listsenders,
// then /checkemails or rejection for everything command-like or while a
// filter is set, and finally plain text as a filter selection.
func (h *Handler) route(ctx context.Context, u domain.InboundUpdate) error {
	text := strings.TrimSpace(u.Text)

	switch text {
	case cmdStart:
		h.sessions.Clear(u.ChatID)
		return h.courier.Deliver(ctx, u.ChatID, h.welcome())

	case cmdListSenders:
		senders, err := h.mailbox.ListSenders(ctx, h.senderLimit)
		if err != nil {
			return fmt.Errorf("list senders: %w", err)
		}
		return h.courier.Deliver(ctx, u.ChatID, formatSenders(senders))

	case cmdCheckEmails:
		filter, ok := h.sessions.Get(u.ChatID)
		if !ok {
			return h.courier.Deliver(ctx, u.ChatID,
				"Please choose a sender first: send me a name or address, or pick one from /listsenders.")
		}
		return h.pipeline.Run(ctx, u.ChatID, filter)
	}

	_, filterSet := h.sessions.Get(u.ChatID)
	if strings.HasPrefix(text, "/") || filterSet {
		return h.courier.Deliver(ctx, u.ChatID, "Use /start, /listsenders, or /checkemails.")
	}

	h.sessions.Set(u.ChatID, text)
	h.logger.Info("sender filter selected", "chat_id", u.ChatID, "filter", text)
	return h.courier.Deliver(ctx, u.ChatID,
		fmt.Sprintf("✅ Sender filter set to %q. Send /checkemails to process unread mail.", text))
}

// notifyError sends the single user-facing error message for an aborted
// command. When delivery itself is what failed, the channel is already in
// trouble: make one raw best-effort attempt and stop, never loop.
func (h *Handler) notifyError(ctx context.Context, chatID int64, err error) {
	msg := "Error: " + err.Error()

	if errors.Is(err, domain.ErrDeliveryExhausted) {
		if serr := h.sender.SendText(ctx, chatID, msg); serr != nil {
			h.logger.Error("final error notice failed", "chat_id", chatID, "err", serr)
		}
		return
	}

	if derr := h.courier.Deliver(ctx, chatID, msg); derr != nil {
		h.logger.Error("error notice delivery failed", "chat_id", chatID, "err", derr)
	}
}

func (h *Handler) welcome() string {
	var b strings.Builder
	b.WriteString("👋 Hello! I'm MailPilot.\n\n")
	b.WriteString("Send me a sender name or email address and I'll watch your unread mail from them.")
	if len(h.suggestions) > 0 {
		b.WriteString(" For example:\n")
		for _, s := range h.suggestions {
			b.WriteString("• " + s + "\n")
		}
	} else {
		b.WriteString("\n")
	}
	b.WriteString("\nCommands:\n")
	b.WriteString("/start — reset and show this message\n")
	b.WriteString("/listsenders — recent unread senders\n")
	b.WriteString("/checkemails — suggest replies for unread mail")
	return b.String()
}

func formatSenders(senders []string) string {
	if len(senders) == 0 {
		return "No unread senders found."
	}
	var b strings.Builder
	b.WriteString("Recent unread senders:\n")
	for i, s := range senders {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nSend me one of them to select a filter.")
	return b.String()
}
