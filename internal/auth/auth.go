// Package auth makes the external session collaborator explicit: bearer
// tokens are verified into a typed Principal that every use case receives,
// instead of an ambient session lookup.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizcamp-service/internal/domain"
)

// Verifier checks bearer tokens and issues them for tests and tooling.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for a user id.
func (v *Verifier) Issue(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(v.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses a token into a principal. Any failure yields Anonymous.
func (v *Verifier) Verify(token string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Anonymous, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return domain.Anonymous, errors.New("token has no subject")
	}
	return domain.User(claims.Subject), nil
}

// FromRequest extracts the principal from the Authorization header. A missing
// or invalid bearer token yields the anonymous principal; protected
// procedures decide whether that is acceptable.
func (v *Verifier) FromRequest(r *http.Request) domain.Principal {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return domain.Anonymous
	}
	principal, err := v.Verify(token)
	if err != nil {
		return domain.Anonymous
	}
	return principal
}

// SigninCallback builds the sign-in URL carrying a return path, so clients
// land back where they were after authenticating.
func SigninCallback(baseURL, backTo string) string {
	return fmt.Sprintf("/api/auth/signin?callbackUrl=%s/%s", baseURL, strings.TrimPrefix(backTo, "/"))
}
