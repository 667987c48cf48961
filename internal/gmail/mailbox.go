package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mailpilot/internal/domain"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const gmailUser = "me"

// Mailbox implements domain.Mailbox on top of the Gmail API.
type Mailbox struct {
	svc    *gmailv1.Service
	logger *slog.Logger
}

func NewMailbox(svc *gmailv1.Service, logger *slog.Logger) *Mailbox {
	return &Mailbox{svc: svc, logger: logger}
}

// FetchUnread returns at most limit unread emails matching the sender filter,
// most recent first (Gmail list order).
func (m *Mailbox) FetchUnread(ctx context.Context, filter string, limit int64) ([]domain.EmailItem, error) {
	list, err := m.svc.Users.Messages.List(gmailUser).
		Q(BuildQuery(filter)).
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}

	items := make([]domain.EmailItem, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := m.svc.Users.Messages.Get(gmailUser, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}

		subject := headerValue(msg.Payload, "Subject")
		if subject == "" {
			subject = "No Subject"
		}
		items = append(items, domain.EmailItem{
			Subject: subject,
			Body:    extractPlainText(msg.Payload),
		})
	}

	m.logger.Debug("unread mail fetched", "filter", filter, "count", len(items))
	return items, nil
}

// ListSenders returns the distinct From identifiers of the most recent unread
// emails, bounded to limit items, in fetch order.
func (m *Mailbox) ListSenders(ctx context.Context, limit int64) ([]string, error) {
	list, err := m.svc.Users.Messages.List(gmailUser).
		Q("is:unread").
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}

	var senders []string
	seen := make(map[string]struct{})
	for _, ref := range list.Messages {
		msg, err := m.svc.Users.Messages.Get(gmailUser, ref.Id).
			Format("metadata").
			MetadataHeaders("From").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}
		from := strings.TrimSpace(headerValue(msg.Payload, "From"))
		if from == "" {
			continue
		}
		if _, ok := seen[from]; ok {
			continue
		}
		seen[from] = struct{}{}
		senders = append(senders, from)
	}
	return senders, nil
}

// BuildQuery composes the Gmail search expression for unread mail from the
// given sender. An empty filter matches any sender.
func BuildQuery(filter string) string {
	q := "is:unread"
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return q
	}
	if strings.ContainsAny(filter, " \t") {
		return fmt.Sprintf("%s from:%q", q, filter)
	}
	return q + " from:" + filter
}
