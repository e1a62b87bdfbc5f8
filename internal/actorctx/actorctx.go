// Package actorctx carries the authenticated caller and the request id on a
// context.Context so code below the HTTP layer, the logger included, can see
// them without importing gin.
package actorctx

import "context"

type (
	emailKey     struct{}
	requestIDKey struct{}
)

func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

func EmailFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(emailKey{}).(string)

	return v, ok && v != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)

	return v, ok && v != ""
}
