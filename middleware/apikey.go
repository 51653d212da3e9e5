package middleware

import (
	"context"
	"net/http"
)

// Roles a key can carry. RoleAdmin passes every role check.
const (
	RoleAdmin         = "ADMIN"
	RoleBooks         = "BOOKS"
	RoleAuthors       = "AUTHORS"
	RoleMembers       = "MEMBERS"
	RoleBorrowedBooks = "BORROWED_BOOKS"
)

type roleCtxKey struct{}

// APIKeyAuth rejects requests whose key header is missing or unknown and
// stores the key's role in the request context for RequireRole.
type APIKeyAuth struct {
	Header string
	Keys   map[string]string // key -> role
}

func (a *APIKeyAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.Header)
		if key == "" {
			http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
			return
		}
		role, ok := a.Keys[key]
		if !ok {
			http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), roleCtxKey{}, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route subtree to one role. Admin keys always pass.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ := r.Context().Value(roleCtxKey{}).(string)
			if got != role && got != RoleAdmin {
				http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleCtxKey{}).(string)
	return role, ok
}
