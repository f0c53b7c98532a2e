package shared

import "context"

// Identity is the authenticated account an operation runs as.
type Identity struct {
	ID    string
	Email string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// RequireIdentity returns the identity or fails fast when none is present.
// A missing identity here is a programming-contract violation, not a
// recoverable runtime condition.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.ID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
