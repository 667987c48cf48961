package domain

// InboundUpdate is a single webhook update after the transport boundary has
// validated it. Immutable once received; consumed exactly once.
type InboundUpdate struct {
	UpdateID int
	ChatID   int64
	Text     string
}

// EmailItem is one unread email as returned by the mail collaborator.
type EmailItem struct {
	Subject string
	Body    string
}
