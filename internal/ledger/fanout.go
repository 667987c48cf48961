package ledger

import (
	"context"
	"log/slog"

	"mailpilot/internal/domain"
)

// Fanout appends each record to a primary ledger and mirrors it to a local
// one. The primary decides success; the mirror is best-effort and a mirror
// failure is only logged.
type Fanout struct {
	primary domain.Ledger
	mirror  domain.Ledger
	logger  *slog.Logger
}

func NewFanout(primary, mirror domain.Ledger, logger *slog.Logger) *Fanout {
	return &Fanout{primary: primary, mirror: mirror, logger: logger}
}

func (f *Fanout) AppendRecord(ctx context.Context, rec domain.SuggestionRecord) error {
	if err := f.primary.AppendRecord(ctx, rec); err != nil {
		return err
	}
	if f.mirror != nil {
		if err := f.mirror.AppendRecord(ctx, rec); err != nil {
			f.logger.Warn("local ledger mirror failed", "subject", rec.Subject, "err", err)
		}
	}
	return nil
}
