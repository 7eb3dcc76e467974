package auth

import "context"

type accountContextKey struct{}

// WithAccount stores the authenticated account view in the context.
// Derived auth state travels through the context explicitly; handlers
// never mutate the request.
func WithAccount(ctx context.Context, account AccountView) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext retrieves the authenticated account view, if any.
func AccountFromContext(ctx context.Context) (AccountView, bool) {
	account, ok := ctx.Value(accountContextKey{}).(AccountView)
	return account, ok
}
