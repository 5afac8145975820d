package jwt

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator valida la única cuenta de staff configurada (usuario + hash bcrypt).
type Authenticator struct {
	username     string
	passwordHash []byte
}

func NewAuthenticator(username, passwordHash string) *Authenticator {
	return &Authenticator{
		username:     strings.TrimSpace(username),
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
	}
}

func (a *Authenticator) Authenticate(username, password string) error {
	if a == nil || a.username == "" || len(a.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.username)) == 1

	// bcrypt corre aunque el usuario no coincida.
	err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
