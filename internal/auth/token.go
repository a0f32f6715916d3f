package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultSessionLifetime is how long a minted session token stays valid.
const DefaultSessionLifetime = 7 * 24 * time.Hour

// Token verification failures. Handlers report a generic message to the
// client; these exist so logs and tests can tell the cases apart.
var (
	ErrMissingSecret    = errors.New("missing session secret")
	ErrMissingSubject   = errors.New("claims missing subject")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidPayload   = errors.New("invalid token payload")
	ErrTokenExpired     = errors.New("token expired")
)

// Claims is the identity payload embedded in a session token. The JSON
// field names are the wire format and must not change: issued tokens stay
// valid for up to seven days across deploys.
type Claims struct {
	Subject    string `json:"sub"`
	ID         string `json:"id,omitempty"`
	Username   string `json:"username,omitempty"`
	GlobalName string `json:"global_name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	IssuedAt   int64  `json:"iat,omitempty"`
	ExpiresAt  int64  `json:"exp,omitempty"`
}

var encodedTokenHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// SignSession mints a compact HS256 session token for the given claims.
// IssuedAt defaults to now and ExpiresAt to IssuedAt plus
// DefaultSessionLifetime when unset.
func SignSession(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}

	if claims.IssuedAt == 0 {
		claims.IssuedAt = time.Now().Unix()
	}
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = claims.IssuedAt + int64(DefaultSessionLifetime.Seconds())
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := encodedTokenHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + signToken(signingInput, secret), nil
}

// VerifySession validates a session token and returns the claims it
// carries. Validation is strict and ordered: structure, then signature,
// then payload decode, then expiry. Each step fails hard.
func VerifySession(token, secret string) (Claims, error) {
	if secret == "" {
		return Claims{}, ErrMissingSecret
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Claims{}, ErrMalformedToken
	}

	expected := signToken(parts[0]+"."+parts[1], secret)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidPayload
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidPayload
	}

	if claims.ExpiresAt != 0 && claims.ExpiresAt <= time.Now().Unix() {
		return Claims{}, ErrTokenExpired
	}

	return claims, nil
}

func signToken(signingInput, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
