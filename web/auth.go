// ABOUTME: Operator authentication with HS256 tokens
// ABOUTME: Tokens are read from the auth cookie or an Authorization bearer header
package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const authCookie = "auth"

// TokenSubject identifies the single operator in issued tokens.
const TokenSubject = "operator"

// IssueToken signs a token for the operator that expires after ttl.
func IssueToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("AUTH_SECRET is not set")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   TokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and returns its subject.
func ParseToken(tokenStr, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}

// requireAuth rejects requests without a valid operator token. An empty
// secret rejects everything unless InsecureNoAuth is set.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AuthSecret == "" {
			if s.opts.InsecureNoAuth {
				next.ServeHTTP(w, r)
				return
			}
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		token := extractToken(r)
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, err := ParseToken(token, s.opts.AuthSecret); err != nil {
			s.logger.Debug("rejected token", "error", err)
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCronSecret guards the reminder sweep with the ?secret= parameter.
func (s *Server) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.CronSecret != "" && r.URL.Query().Get("secret") != s.opts.CronSecret {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
