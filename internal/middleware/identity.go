// Package middleware provides the HTTP middleware stack: identity
// resolution, CORS, rate limiting, request logging and metrics.
package middleware

import (
	"context"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
)

type contextKey string

const identityKey contextKey = "acting_identity"

// WithIdentity stores the acting identity on the context.
func WithIdentity(ctx context.Context, ident identity.ActingIdentity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFrom returns the acting identity, or an empty anonymous identity
// when none was resolved.
func IdentityFrom(ctx context.Context) identity.ActingIdentity {
	if ident, ok := ctx.Value(identityKey).(identity.ActingIdentity); ok {
		return ident
	}
	return identity.Anonymous("")
}
