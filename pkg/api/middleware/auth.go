// Package middleware provides HTTP middleware for the management API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireToken returns a middleware enforcing a static bearer token on
// every request. An empty token disables authentication and the
// middleware passes requests through untouched.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !TokenMatches(token, r) {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenMatches reports whether the request carries the configured bearer
// token. An empty configured token accepts every request.
func TokenMatches(token string, r *http.Request) bool {
	if token == "" {
		return true
	}

	got, ok := extractBearerToken(r)
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// extractBearerToken extracts the token from a Bearer Authorization
// header. Returns the token string and true if successful, or empty
// string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid or missing bearer token"}`))
}
