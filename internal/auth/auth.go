// Package auth trusts the upstream API gateway for end-user identity
// (X-User-Id / X-User-Role headers) and additionally checks a bearer token
// against a bcrypt hash for admin endpoints.
package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"

	RoleAdmin = "ADMIN"
)

type identityKey struct{}

type Identity struct {
	UserID string
	Role   string
}

func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// RequireUser rejects requests without an upstream-supplied identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerUserID)
		if userID == "" {
			http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
			return
		}
		id := Identity{UserID: userID, Role: r.Header.Get(headerUserRole)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// RequireAdmin passes requests carrying the admin role, or a bearer token
// matching tokenHash when one is configured.
func RequireAdmin(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(headerUserRole) == RoleAdmin {
				id := Identity{UserID: r.Header.Get(headerUserID), Role: RoleAdmin}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
				return
			}

			if tokenHash != "" {
				token := bearerToken(r)
				if token != "" && bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) == nil {
					id := Identity{UserID: "admin-token", Role: RoleAdmin}
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
					return
				}
			}

			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
