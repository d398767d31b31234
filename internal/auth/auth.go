package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for any unknown user or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the authenticated identity returned to the client.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Verifier checks a username/password pair. The dashboard ships with the
// static demo implementation below; a real identity provider can be
// substituted here without touching the caching core.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (User, error)
}

// Credential is one entry in the static demo credential set.
type Credential struct {
	Username    string
	Password    string
	DisplayName string
}

// StaticVerifier verifies against a fixed in-memory credential list.
// Demo use only: passwords are held in plain text.
type StaticVerifier struct {
	creds map[string]Credential
}

func NewStaticVerifier(creds []Credential) *StaticVerifier {
	m := make(map[string]Credential, len(creds))
	for _, c := range creds {
		m[c.Username] = c
	}
	return &StaticVerifier{creds: m}
}

// DefaultCredentials is the demo login set.
func DefaultCredentials() []Credential {
	return []Credential{
		{Username: "demo", Password: "demo123", DisplayName: "Demo Trader"},
	}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) (User, error) {
	c, ok := v.creds[username]
	if !ok {
		// Still compare to keep timing uniform for unknown users.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) != 1 {
		return User{}, ErrInvalidCredentials
	}
	return User{Username: c.Username, DisplayName: c.DisplayName}, nil
}

// IssueToken mints an opaque demo session token. It carries no claims and
// is never validated server-side; the dashboard gate is client-only.
func IssueToken(username string) (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := fmt.Sprintf("%s:%x", username, nonce)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}
