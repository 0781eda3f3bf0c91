// Package requestctx carries caller identity through request contexts.
//
// The stores never infer identity on their own: transports extract the
// caller's user ID and place it in context, and AnonymousUserID stands in
// whenever no identity was supplied.
package requestctx

import "context"

// AnonymousUserID is the identity used when a caller supplies none.
const AnonymousUserID = "anonymous"

// userIDContextKey is the context key for caller identity.
type userIDContextKey struct{}

// WithUserID stores a user identifier in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the user identifier stored in context, or
// AnonymousUserID when none was stored.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return AnonymousUserID
	}
	value, _ := ctx.Value(userIDContextKey{}).(string)
	if value == "" {
		return AnonymousUserID
	}
	return value
}
