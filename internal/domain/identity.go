package domain

import "context"

// Identity is the authenticated caller as established by the auth middleware
type Identity struct {
	UserID   string
	UserName string
	IsAdmin  bool
}

type identityKey struct{}

// WithIdentity returns a context carrying the identity
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// PurchaseLedger answers whether a user received a product
type PurchaseLedger interface {
	HasDeliveredOrder(ctx context.Context, userID string, productID string) (bool, error)
}
