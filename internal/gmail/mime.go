package gmail

import (
	"encoding/base64"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// headerValue returns the first header with the given name (case-insensitive)
// from the message payload.
func headerValue(payload *gmailv1.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractPlainText walks the MIME part tree and returns the first text/plain
// body found, base64url decoded. For multipart messages text/plain subparts
// are preferred over anything else.
func extractPlainText(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}

	if len(part.Parts) > 0 {
		for _, sub := range part.Parts {
			if strings.EqualFold(sub.MimeType, "text/plain") {
				if body := extractPlainText(sub); body != "" {
					return body
				}
			}
		}
		for _, sub := range part.Parts {
			if body := extractPlainText(sub); body != "" {
				return body
			}
		}
	}

	// Single-part message with a non-multipart body.
	if part.Body != nil && part.Body.Data != "" && !strings.HasPrefix(strings.ToLower(part.MimeType), "multipart/") {
		return decodeBase64URL(part.Body.Data)
	}
	return ""
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail uses unpadded base64url
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}
