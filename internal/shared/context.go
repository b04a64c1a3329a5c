package shared

import "context"

type userIDContextKey struct{}

// ContextWithUserID stores the authenticated account ID in context.
func ContextWithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, id)
}

// UserIDFromContext extracts the authenticated account ID from context.
// The second return is false when the request carried no valid token.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(int64)
	return id, ok
}
