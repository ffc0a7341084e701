package services

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// NewAuthorizedClient returns an [http.Client] that sends token as a bearer credential.
//
// An empty token yields [http.DefaultClient].
func NewAuthorizedClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return http.DefaultClient
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}
