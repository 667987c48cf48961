package bot

import "testing"

func TestSessionStore_SetThenGet(t *testing.T) {
	s := NewSessionStore()

	if _, ok := s.Get(42); ok {
		t.Fatal("fresh store should have no filter for chat 42")
	}

	s.Set(42, "alice@x.com")
	got, ok := s.Get(42)
	if !ok || got != "alice@x.com" {
		t.Fatalf("expected (alice@x.com, true), got (%q, %v)", got, ok)
	}
}

func TestSessionStore_SetOverwrites(t *testing.T) {
	s := NewSessionStore()
	s.Set(42, "alice@x.com")
	s.Set(42, "bob@y.com")

	got, _ := s.Get(42)
	if got != "bob@y.com" {
		t.Fatalf("expected overwritten filter bob@y.com, got %q", got)
	}
}

func TestSessionStore_ClearResets(t *testing.T) {
	s := NewSessionStore()
	s.Set(42, "alice@x.com")
	s.Clear(42)

	if _, ok := s.Get(42); ok {
		t.Fatal("expected no filter after clear")
	}

	// Clearing an absent entry is a no-op.
	s.Clear(7)
}

func TestSessionStore_PerChatIsolation(t *testing.T) {
	s := NewSessionStore()
	s.Set(1, "alice@x.com")
	s.Set(2, "bob@y.com")

	if got, _ := s.Get(1); got != "alice@x.com" {
		t.Fatalf("chat 1: expected alice@x.com, got %q", got)
	}
	if got, _ := s.Get(2); got != "bob@y.com" {
		t.Fatalf("chat 2: expected bob@y.com, got %q", got)
	}
}
