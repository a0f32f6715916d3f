package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestDiscordAuthURLIncludesRequiredParams(t *testing.T) {
	d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/api/auth/discord/callback")

	raw := d.AuthURL("state-123")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthURL produced unparseable URL: %v", err)
	}

	q := parsed.Query()
	for key, want := range map[string]string{
		"response_type": "code",
		"client_id":     "client-id",
		"scope":         "identify",
		"redirect_uri":  "https://app.test/api/auth/discord/callback",
		"state":         "state-123",
		"prompt":        "consent",
	} {
		if got := q.Get(key); got != want {
			t.Fatalf("authorize URL %s=%q, want %q", key, got, want)
		}
	}
}

func TestDiscordExchangeUsesBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotGrant string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotGrant = r.PostForm.Get("grant_type")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "acc-token",
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()

	d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/callback",
		WithEndpoints(srv.URL+"/authorize", srv.URL+"/token", srv.URL+"/users/@me"))

	token, err := d.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange returned error: %v", err)
	}
	if token != "acc-token" {
		t.Fatalf("expected access token %q, got %q", "acc-token", token)
	}
	if gotUser != "client-id" || gotPass != "client-secret" {
		t.Fatalf("expected Basic client credentials, got %q:%q", gotUser, gotPass)
	}
	if gotGrant != "authorization_code" {
		t.Fatalf("expected authorization_code grant, got %q", gotGrant)
	}
}

func TestDiscordExchangeSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/callback",
		WithEndpoints(srv.URL+"/authorize", srv.URL+"/token", srv.URL+"/users/@me"))

	_, err := d.Exchange(context.Background(), "bad-code")
	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("expected provider body in error, got %v", err)
	}
}

func TestDiscordExchangeRejectsMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/callback",
		WithEndpoints(srv.URL+"/authorize", srv.URL+"/token", srv.URL+"/users/@me"))

	_, err := d.Exchange(context.Background(), "auth-code")
	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed, got %v", err)
	}
}

func TestDiscordFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer acc-token" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","username":"alice","global_name":"Alice","avatar":"a1b2"}`))
	}))
	defer srv.Close()

	d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/callback",
		WithEndpoints(srv.URL+"/authorize", srv.URL+"/token", srv.URL+"/users/@me"))

	identity, err := d.FetchIdentity(context.Background(), "acc-token")
	if err != nil {
		t.Fatalf("FetchIdentity returned error: %v", err)
	}
	if identity.ID != "123" || identity.Username != "alice" || identity.GlobalName != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestDiscordFetchIdentityFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-success status", status: http.StatusUnauthorized, body: `{"message":"401: Unauthorized"}`},
		{name: "unparseable body", status: http.StatusOK, body: `not-json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			d := NewDiscordAuthenticator("client-id", "client-secret", "https://app.test/callback",
				WithEndpoints(srv.URL+"/authorize", srv.URL+"/token", srv.URL+"/users/@me"))

			if _, err := d.FetchIdentity(context.Background(), "acc-token"); !errors.Is(err, ErrIdentityFetchFailed) {
				t.Fatalf("expected ErrIdentityFetchFailed, got %v", err)
			}
		})
	}
}
