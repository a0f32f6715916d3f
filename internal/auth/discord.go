package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	discordAuthURL  = "https://discord.com/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/oauth2/token"
	discordUserURL  = "https://discord.com/api/v10/users/@me"
)

// Provider call failures, surfaced from the callback handler as 500s.
var (
	ErrExchangeFailed      = errors.New("token exchange failed")
	ErrIdentityFetchFailed = errors.New("identity fetch failed")
)

// Identity is the Discord user record returned by the users/@me endpoint.
// It is read-only input to session claim construction and never persisted.
type Identity struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

// DiscordAuthenticator drives the Discord OAuth2 authorization-code flow:
// authorize URL construction, code exchange, and identity fetch.
type DiscordAuthenticator struct {
	config  *oauth2.Config
	client  *http.Client
	userURL string
}

// DiscordOption customizes a DiscordAuthenticator.
type DiscordOption func(*DiscordAuthenticator)

// WithHTTPClient overrides the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) DiscordOption {
	return func(d *DiscordAuthenticator) {
		if client != nil {
			d.client = client
		}
	}
}

// WithEndpoints overrides the provider URLs. Used by tests to point the
// authenticator at a local stub server.
func WithEndpoints(authURL, tokenURL, userURL string) DiscordOption {
	return func(d *DiscordAuthenticator) {
		d.config.Endpoint.AuthURL = authURL
		d.config.Endpoint.TokenURL = tokenURL
		d.userURL = userURL
	}
}

// NewDiscordAuthenticator creates a new DiscordAuthenticator. The token
// endpoint authenticates with HTTP Basic client_id:client_secret.
func NewDiscordAuthenticator(clientID, clientSecret, redirectURL string, opts ...DiscordOption) *DiscordAuthenticator {
	d := &DiscordAuthenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   discordAuthURL,
				TokenURL:  discordTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		client:  &http.Client{Timeout: 10 * time.Second},
		userURL: discordUserURL,
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AuthURL generates the Discord consent URL with the given state.
// prompt=consent forces a fresh consent screen instead of a silent
// re-authorization.
func (d *DiscordAuthenticator) AuthURL(state string) string {
	return d.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for an access token. A single
// provider failure surfaces immediately; there are no retries.
func (d *DiscordAuthenticator) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.client)

	token, err := d.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && len(retrieveErr.Body) > 0 {
			return "", fmt.Errorf("%w: %s", ErrExchangeFailed, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access_token", ErrExchangeFailed)
	}
	return token.AccessToken, nil
}

// FetchIdentity retrieves the authenticated user's Discord profile with a
// bearer-authenticated GET.
func (d *DiscordAuthenticator) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrIdentityFetchFailed, strings.TrimSpace(string(body)))
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("%w: invalid user response", ErrIdentityFetchFailed)
	}
	return &identity, nil
}
