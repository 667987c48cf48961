package gmail

import (
	"encoding/base64"
	"testing"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{"empty filter", "", "is:unread"},
		{"whitespace filter", "   ", "is:unread"},
		{"address", "alice@x.com", "is:unread from:alice@x.com"},
		{"name with spaces quoted", "Alice Smith", `is:unread from:"Alice Smith"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(tt.filter); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHeaderValue(t *testing.T) {
	payload := &gmailv1.MessagePart{
		Headers: []*gmailv1.MessagePartHeader{
			{Name: "From", Value: "alice@x.com"},
			{Name: "subject", Value: "Hello"},
		},
	}

	if got := headerValue(payload, "Subject"); got != "Hello" {
		t.Fatalf("case-insensitive lookup failed, got %q", got)
	}
	if got := headerValue(payload, "To"); got != "" {
		t.Fatalf("missing header should be empty, got %q", got)
	}
	if got := headerValue(nil, "Subject"); got != "" {
		t.Fatalf("nil payload should be empty, got %q", got)
	}
}

func TestExtractPlainText_SinglePart(t *testing.T) {
	part := &gmailv1.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailv1.MessagePartBody{Data: b64url("hello world")},
	}
	if got := extractPlainText(part); got != "hello world" {
		t.Fatalf("expected body, got %q", got)
	}
}

func TestExtractPlainText_MultipartPrefersPlain(t *testing.T) {
	part := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmailv1.MessagePartBody{Data: b64url("<b>hi</b>")},
			},
			{
				MimeType: "text/plain",
				Body:     &gmailv1.MessagePartBody{Data: b64url("hi")},
			},
		},
	}
	if got := extractPlainText(part); got != "hi" {
		t.Fatalf("expected text/plain part, got %q", got)
	}
}

func TestExtractPlainText_NestedMultipart(t *testing.T) {
	part := &gmailv1.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailv1.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmailv1.MessagePartBody{Data: b64url("nested body")},
					},
				},
			},
		},
	}
	if got := extractPlainText(part); got != "nested body" {
		t.Fatalf("expected nested text/plain, got %q", got)
	}
}

func TestExtractPlainText_HTMLOnlyFallback(t *testing.T) {
	part := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmailv1.MessagePartBody{Data: b64url("<p>only html</p>")},
			},
		},
	}
	if got := extractPlainText(part); got != "<p>only html</p>" {
		t.Fatalf("expected html fallback, got %q", got)
	}
}

func TestExtractPlainText_Empty(t *testing.T) {
	if got := extractPlainText(nil); got != "" {
		t.Fatalf("nil part should be empty, got %q", got)
	}
	if got := extractPlainText(&gmailv1.MessagePart{MimeType: "multipart/mixed"}); got != "" {
		t.Fatalf("empty multipart should be empty, got %q", got)
	}
}

func TestDecodeBase64URL(t *testing.T) {
	// Padded and unpadded forms both appear in practice.
	padded := base64.URLEncoding.EncodeToString([]byte("padded!"))
	if got := decodeBase64URL(padded); got != "padded!" {
		t.Fatalf("padded decode failed, got %q", got)
	}
	if got := decodeBase64URL(b64url("unpadded!")); got != "unpadded!" {
		t.Fatalf("unpadded decode failed, got %q", got)
	}
	if got := decodeBase64URL("!!!not-base64!!!"); got != "" {
		t.Fatalf("invalid input should decode to empty, got %q", got)
	}
}
