package domain

import "context"

// Mailbox is the mail collaborator. FetchUnread returns at most limit unread
// emails matching the sender filter (empty filter = any sender). ListSenders
// returns distinct sender identifiers from unread mail, most recent first.
type Mailbox interface {
	FetchUnread(ctx context.Context, filter string, limit int64) ([]EmailItem, error)
	ListSenders(ctx context.Context, limit int64) ([]string, error)
}

// Completer is the language-completion collaborator.
type Completer interface {
	SuggestReply(ctx context.Context, subject, body string) (string, error)
}

// Ledger is the persistence collaborator for suggestion audit rows.
type Ledger interface {
	AppendRecord(ctx context.Context, rec SuggestionRecord) error
}

// TextSender sends a single text message to a conversation. One attempt; the
// reliability wrapper lives above it (bot.Courier).
type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
