// Package api implements the daystack REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const ownerKey ctxKey = iota

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier func(token string) (string, error)

// AuthMiddleware returns middleware that validates a Bearer session token.
// If enabled is false, all requests pass through with the empty owner
// (single-tenant local mode). If enabled is true, requests must carry a
// valid "Authorization: Bearer <token>" header; the verified user id
// becomes the owner for the request.
func AuthMiddleware(enabled bool, verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := verify(bearerToken(r))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, userID)))
		})
	}
}

// Owner returns the authenticated user id for the request, or the empty
// string in disabled-auth mode.
func Owner(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey).(string)
	return owner
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
