package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mailpilot/internal/domain"
)

const defaultFetchLimit = 3

// Pipeline runs the /checkemails flow: fetch unread mail for the chat's
// sender filter, then for each email in fetch order suggest a reply, deliver
// it, and persist an audit row.
//
// Side effects are intentionally non-transactional: the first collaborator
// failure aborts the run, but emails already delivered and persisted keep
// their effects. This at-least-once contract is a documented property, not an
// oversight; do not wrap the steps in a transaction.
type Pipeline struct {
	mailbox    domain.Mailbox
	completer  domain.Completer
	ledger     domain.Ledger
	courier    *Courier
	fetchLimit int64
	now        func() time.Time
	logger     *slog.Logger
}

type PipelineConfig struct {
	Mailbox    domain.Mailbox
	Completer  domain.Completer
	Ledger     domain.Ledger
	Courier    *Courier
	FetchLimit int64            // default 3
	Now        func() time.Time // overridable in tests
	Logger     *slog.Logger
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		mailbox:    cfg.Mailbox,
		completer:  cfg.Completer,
		ledger:     cfg.Ledger,
		courier:    cfg.Courier,
		fetchLimit: cfg.FetchLimit,
		now:        cfg.Now,
		logger:     cfg.Logger,
	}
}

// Run processes unread mail matching filter and reports progress to chatID.
// The caller is responsible for surfacing a returned error to the chat.
func (p *Pipeline) Run(ctx context.Context, chatID int64, filter string) error {
	emails, err := p.mailbox.FetchUnread(ctx, filter, p.fetchLimit)
	if err != nil {
		return fmt.Errorf("fetch unread: %w", err)
	}
	p.logger.Info("fetched unread emails", "chat_id", chatID, "filter", filter, "count", len(emails))

	if len(emails) == 0 {
		return p.courier.Deliver(ctx, chatID, fmt.Sprintf("No unread emails from %s.", filter))
	}

	for _, email := range emails {
		suggestion, err := p.completer.SuggestReply(ctx, email.Subject, email.Body)
		if err != nil {
			return fmt.Errorf("suggest reply for %q: %w", email.Subject, err)
		}

		msg := fmt.Sprintf("Subject: %s\nSuggested Reply: %s", email.Subject, suggestion)
		if err := p.courier.Deliver(ctx, chatID, msg); err != nil {
			return err
		}

		rec := domain.SuggestionRecord{
			Timestamp:  p.now(),
			Subject:    email.Subject,
			Suggestion: suggestion,
		}
		// Delivery and persistence are not atomic: a failure here does not
		// roll back the message the user just received.
		if err := p.ledger.AppendRecord(ctx, rec); err != nil {
			return fmt.Errorf("persist suggestion for %q: %w", email.Subject, err)
		}
		p.logger.Info("email processed", "chat_id", chatID, "subject", email.Subject)
	}

	return p.courier.Deliver(ctx, chatID, "All emails processed.")
}
