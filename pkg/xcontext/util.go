package xcontext

import "context"

type userIDKey struct{}

// WithRequestUserID attaches the wallet address of the authenticated caller.
func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
