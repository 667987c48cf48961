package googleauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// TokenSource builds a refresh-token-backed OAuth source shared by the Gmail
// and Sheets services. There is no interactive flow: the refresh token is
// provisioned out of band and access tokens are minted from it on demand.
func TokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) (oauth2.TokenSource, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errors.New("google credentials: clientId, clientSecret, and refreshToken are all required")
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmailv1.GmailReadonlyScope,
			sheetsv4.SpreadsheetsScope,
		},
	}

	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
}
