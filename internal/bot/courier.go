package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mailpilot/internal/domain"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
)

// Courier is the outbound delivery primitive: one text message, bounded
// retry over transient transport failures, exponential backoff doubling from
// a base delay. It knows nothing about message content.
type Courier struct {
	sender      domain.TextSender
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger
}

type CourierConfig struct {
	Sender      domain.TextSender
	MaxAttempts int                 // default 5
	BaseDelay   time.Duration       // default 1s
	Sleep       func(time.Duration) // overridable in tests
	Logger      *slog.Logger
}

func NewCourier(cfg CourierConfig) *Courier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Courier{
		sender:      cfg.Sender,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       cfg.Sleep,
		logger:      cfg.Logger,
	}
}

// Deliver sends text to chatID, retrying transient failures up to the attempt
// budget with backoff doubling per attempt (base, 2x, 4x, 8x between five
// attempts). Non-transient failures abort immediately. Once the budget is
// spent the returned error wraps domain.ErrDeliveryExhausted; the caller must
// surface it and must not retry further.
func (c *Courier) Deliver(ctx context.Context, chatID int64, text string) error {
	delay := c.baseDelay
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.sender.SendText(ctx, chatID, text)
		if err == nil {
			return nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			return fmt.Errorf("send to chat %d: %w", chatID, err)
		}
		if attempt == c.maxAttempts {
			break
		}

		c.logger.Warn("send failed, retrying",
			"chat_id", chatID,
			"attempt", attempt,
			"backoff", delay,
			"err", err,
		)
		c.sleep(delay)
		delay *= 2
	}

	return fmt.Errorf("send to chat %d after %d attempts: %w (last: %v)",
		chatID, c.maxAttempts, domain.ErrDeliveryExhausted, lastErr)
}
