package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/response"
)

// Authenticator resolves the credential a request acts for.
type Authenticator interface {
	Authenticate(r *http.Request) (Credential, error)
}

// StaticAuthenticator grants every request the same credential.
type StaticAuthenticator struct {
	Credential Credential
}

func (s StaticAuthenticator) Authenticate(*http.Request) (Credential, error) {
	return s.Credential, nil
}

// JWTAuthenticator accepts HS256 bearer tokens. Browsers cannot set headers on
// websocket upgrades, so the token query parameter is accepted too.
type JWTAuthenticator struct {
	Secret []byte
}

var errMissingToken = errors.New("missing token")

func (j JWTAuthenticator) Authenticate(r *http.Request) (Credential, error) {
	var tokenString string
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimPrefix(h, "Bearer ")
	} else {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return Credential{}, errMissingToken
	}
	return ParseToken(j.Secret, tokenString)
}

type Middleware struct {
	authn Authenticator
}

func New(authn Authenticator) Middleware {
	return Middleware{authn: authn}
}

// Wrap stores the resolved credential in the request context or answers 401.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, err := m.authn.Authenticate(r)
		if err != nil {
			log.Printf("[WARN] auth: %s %s: %v", r.Method, r.URL.Path, err)
			response.WriteError(w, http.StatusUnauthorized, apperr.Unauthorized(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
	})
}
