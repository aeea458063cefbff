// Package auth guards the API with HMAC signed bearer tokens.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey struct{}

// Middleware rejects requests without a valid "Authorization: Bearer" token
// signed with secret. The token subject is stored in the request context.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := parser.Parse(raw, keyFunc)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			subject, _ := token.Claims.GetSubject()

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, subject)))
		})
	}
}

// Subject returns the authenticated token subject, "" when unauthenticated.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(contextKey{}).(string)
	return s
}
