package domain

import "time"

// SuggestionRecord is the audit row persisted once per processed email.
// Created once, never mutated or reread by the bot.
type SuggestionRecord struct {
	Timestamp  time.Time
	Subject    string
	Suggestion string
}
