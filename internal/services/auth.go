package services

import (
	"crypto/subtle"
	"strings"
)

// CredentialStore resolves a hotel id to its registered secret.
type CredentialStore interface {
	Secret(hotelID string) (string, bool)
}

// Authenticator checks (hotel id, hotel key) pairs against a CredentialStore.
// It has no side effects and is safe for concurrent use.
type Authenticator struct {
	Credentials CredentialStore
}

// NewAuthenticator returns an Authenticator backed by store.
func NewAuthenticator(store CredentialStore) *Authenticator {
	return &Authenticator{Credentials: store}
}

// Authenticate trims both values and returns the trimmed hotel id on success.
// A blank id or key yields ErrMissingCredentials; an unknown id or wrong key
// yields ErrUnauthorized.
func (a *Authenticator) Authenticate(hotelID, key string) (string, error) {
	hotelID = strings.TrimSpace(hotelID)
	key = strings.TrimSpace(key)
	if hotelID == "" || key == "" {
		return "", ErrMissingCredentials
	}
	if a == nil || a.Credentials == nil {
		return "", ErrUnauthorized
	}
	want, ok := a.Credentials.Secret(hotelID)
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(key)) != 1 {
		return "", ErrUnauthorized
	}
	return hotelID, nil
}
