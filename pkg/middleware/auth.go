package middleware

import (
	"context"
	"net/http"

	"github.com/ekpono/booking-platform/pkg/logger"
)

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"

	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
)

// Identity extracts the authenticated user from the headers the
// upstream auth gateway injects. The service trusts the gateway
// unconditionally; requests without an identity are rejected before
// reaching any handler.
func Identity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID == "" {
				log.Warn("Request without authenticated identity",
					"request_id", requestIDFrom(r),
					"path", r.URL.Path,
					"method", r.Method,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Missing authenticated user identity"}`))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			if role := r.Header.Get(HeaderUserRole); role != "" {
				ctx = context.WithValue(ctx, UserRoleKey, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated user id placed in the context
// by Identity, or an empty string when absent.
func UserIDFrom(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func RoleFrom(ctx context.Context) string {
	if v := ctx.Value(UserRoleKey); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
