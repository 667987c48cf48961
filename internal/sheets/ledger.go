package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mailpilot/internal/domain"

	sheetsv4 "google.golang.org/api/sheets/v4"
)

const (
	defaultWriteRange = "Sheet1!A:C"
)

// Ledger implements domain.Ledger by appending one row per suggestion to a
// Google Sheet: timestamp, subject, suggestion.
type Ledger struct {
	svc           *sheetsv4.Service
	spreadsheetID string
	writeRange    string
	logger        *slog.Logger
}

type LedgerConfig struct {
	Service       *sheetsv4.Service
	SpreadsheetID string
	WriteRange    string // default "Sheet1!A:C"
	Logger        *slog.Logger
}

func NewLedger(cfg LedgerConfig) *Ledger {
	if cfg.WriteRange == "" {
		cfg.WriteRange = defaultWriteRange
	}
	return &Ledger{
		svc:           cfg.Service,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.WriteRange,
		logger:        cfg.Logger,
	}
}

func (l *Ledger) AppendRecord(ctx context.Context, rec domain.SuggestionRecord) error {
	vr := &sheetsv4.ValueRange{
		Values: [][]interface{}{{
			rec.Timestamp.Format(time.RFC3339),
			rec.Subject,
			rec.Suggestion,
		}},
	}

	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.writeRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}

	l.logger.Info("suggestion persisted to sheet", "subject", rec.Subject)
	return nil
}
