package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"mailpilot/internal/domain"
)

func TestCourier_RetriesTransientThenSucceeds(t *testing.T) {
	transient := domain.Transient(errors.New("429 Too Many Requests"))
	sender := &stubSender{errs: []error{transient, transient, nil}}

	var delays []time.Duration
	c := NewCourier(CourierConfig{
		Sender: sender,
		Sleep:  func(d time.Duration) { delays = append(delays, d) },
		Logger: testLogger(),
	})

	if err := c.Deliver(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if sender.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", sender.attempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %d", len(want), len(delays))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestCourier_ExhaustsAttemptBudget(t *testing.T) {
	transient := domain.Transient(errors.New("Bad Gateway"))
	sender := &stubSender{errs: []error{transient, transient, transient, transient, transient}}

	var delays []time.Duration
	c := NewCourier(CourierConfig{
		Sender: sender,
		Sleep:  func(d time.Duration) { delays = append(delays, d) },
		Logger: testLogger(),
	})

	err := c.Deliver(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, domain.ErrDeliveryExhausted) {
		t.Fatalf("expected ErrDeliveryExhausted, got %v", err)
	}
	if sender.attempts != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", sender.attempts)
	}
	// Four sleeps between five attempts, doubling from the base.
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %d", len(want), len(delays))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestCourier_FatalErrorAbortsImmediately(t *testing.T) {
	fatal := errors.New("Bad Request: chat not found")
	sender := &stubSender{errs: []error{fatal}}

	c := NewCourier(CourierConfig{Sender: sender, Sleep: noSleep, Logger: testLogger()})

	err := c.Deliver(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("expected error for fatal send failure")
	}
	if errors.Is(err, domain.ErrDeliveryExhausted) {
		t.Fatalf("fatal error must not look exhausted: %v", err)
	}
	if sender.attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", sender.attempts)
	}
}

func TestCourier_FirstAttemptSuccess(t *testing.T) {
	sender := &stubSender{}
	c := NewCourier(CourierConfig{Sender: sender, Sleep: noSleep, Logger: testLogger()})

	if err := c.Deliver(context.Background(), 7, "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", sender.attempts)
	}
	if got := sender.sentMessages(); len(got) != 1 || got[0] != "ok" {
		t.Fatalf("unexpected sent messages: %v", got)
	}
}
