// Package auth exchanges client credentials for the run-scoped bearer token used against the catalog API.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenURL is Spotify's token endpoint.
const TokenURL = "https://accounts.spotify.com/api/token"

// Provider performs the client-credentials grant.
//
// Credentials are sent as form parameters alongside grant_type, never as basic auth.
type Provider struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

// NewProvider creates a Provider for creds. An empty tokenURL selects [TokenURL];
// a nil httpClient selects [http.DefaultClient].
func NewProvider(creds models.Credentials, tokenURL string, httpClient *http.Client) *Provider {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Provider{
		config: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{
			Transport: okOnly{base: httpClient.Transport},
			Timeout:   httpClient.Timeout,
		},
	}
}

// okOnly fails any token response other than 200 OK; the oauth2 package accepts every 2xx.
type okOnly struct {
	base http.RoundTripper
}

func (t okOnly) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("token endpoint returned %s", resp.Status)
	}
	return resp, nil
}

// Token fetches a fresh access token. There is no caching and no retry.
//
// Missing credentials, a non-200 response, a transport failure or a body without
// an access token or token type all return an error wrapping [shared.ErrAuth].
func (p *Provider) Token(ctx context.Context) (models.AccessToken, error) {
	if p.config.ClientID == "" || p.config.ClientSecret == "" {
		return models.AccessToken{}, fmt.Errorf("%w: %w", shared.ErrAuth, shared.ErrMissingCredentials)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Token(ctx)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	if tok.TokenType == "" {
		return models.AccessToken{}, fmt.Errorf("%w: token response missing token_type", shared.ErrAuth)
	}
	token := models.AccessToken{Type: tok.TokenType, Value: tok.AccessToken}
	if !token.Valid() {
		return models.AccessToken{}, fmt.Errorf("%w: token response missing access_token", shared.ErrAuth)
	}
	return token, nil
}

// NewClient returns an [http.Client] that sends token as the Authorization header on every request.
//
// Requests go through base's transport and keep its timeout.
func NewClient(ctx context.Context, base *http.Client, token models.AccessToken) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value, TokenType: token.Type})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), src)
	client.Timeout = base.Timeout
	return client
}
