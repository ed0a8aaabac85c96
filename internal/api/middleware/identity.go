// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	userIDKey   contextKey = "user_id"
)

// Identity extracts caller identity from request headers. Authentication
// itself happens upstream; this server trusts the headers the gateway sets.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if tenant := strings.TrimSpace(r.Header.Get("X-Tenant-ID")); tenant != "" {
			ctx = context.WithValue(ctx, tenantIDKey, tenant)
		}
		if user := strings.TrimSpace(r.Header.Get("X-User-ID")); user != "" {
			ctx = context.WithValue(ctx, userIDKey, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID returns the tenant id from context, or "" when absent.
func GetTenantID(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		return v
	}
	return ""
}

// GetUserID returns the user id from context, or "" when absent.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
