package middleware

import (
	"context"

	"github.com/angelmondragon/wholesale-backoffice/pkg/auth"
)

type contextKey string

const (
	ctxUserID       contextKey = "user_id"
	ctxCapabilities contextKey = "capabilities"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// CapabilitiesFromContext returns the permission set resolved by Auth, or an
// empty set for unauthenticated requests.
func CapabilitiesFromContext(ctx context.Context) auth.Capabilities {
	if ctx == nil {
		return auth.Capabilities{}
	}
	if v, ok := ctx.Value(ctxCapabilities).(auth.Capabilities); ok {
		return v
	}
	return auth.Capabilities{}
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithCapabilities(ctx context.Context, caps auth.Capabilities) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCapabilities, caps)
}
