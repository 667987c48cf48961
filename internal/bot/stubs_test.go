package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"mailpilot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubSender implements domain.TextSender. Each call consumes one error from
// the errs queue (nil queue entry or exhausted queue = success).
type stubSender struct {
	mu       sync.Mutex
	errs     []error
	attempts int
	sent     []string
	chats    []int64
}

func (s *stubSender) SendText(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.sent = append(s.sent, text)
	s.chats = append(s.chats, chatID)
	return nil
}

func (s *stubSender) sentMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// stubMailbox implements domain.Mailbox with canned results.
type stubMailbox struct {
	emails     []domain.EmailItem
	senders    []string
	fetchErr   error
	sendersErr error

	fetchCalls  int
	lastFilter  string
	lastLimit   int64
	senderCalls int
}

func (m *stubMailbox) FetchUnread(ctx context.Context, filter string, limit int64) ([]domain.EmailItem, error) {
	m.fetchCalls++
	m.lastFilter = filter
	m.lastLimit = limit
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.emails, nil
}

func (m *stubMailbox) ListSenders(ctx context.Context, limit int64) ([]string, error) {
	m.senderCalls++
	if m.sendersErr != nil {
		return nil, m.sendersErr
	}
	return m.senders, nil
}

// stubCompleter suggests "Reply to <subject>", optionally failing at the
// failOn-th call (1-based).
type stubCompleter struct {
	failOn int
	calls  int
}

func (c *stubCompleter) SuggestReply(ctx context.Context, subject, body string) (string, error) {
	c.calls++
	if c.failOn != 0 && c.calls == c.failOn {
		return "", fmt.Errorf("completion backend unavailable")
	}
	return "Reply to " + subject, nil
}

// stubLedger records appended rows, optionally failing at the failOn-th call.
type stubLedger struct {
	failOn  int
	records []domain.SuggestionRecord
}

func (l *stubLedger) AppendRecord(ctx context.Context, rec domain.SuggestionRecord) error {
	if l.failOn != 0 && len(l.records)+1 == l.failOn {
		return fmt.Errorf("ledger append failed")
	}
	l.records = append(l.records, rec)
	return nil
}

// noSleep is injected into couriers under test so backoff is instantaneous.
func noSleep(time.Duration) {}
