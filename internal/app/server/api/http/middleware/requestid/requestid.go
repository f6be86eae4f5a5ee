package requestid

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

const Header = "X-Request-Id"

type contextKey string

const requestIDKey contextKey = "requestID"

// Middleware tags every request with an id, reusing the caller's when
// it sends one, and echoes it in the response.
func Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		ctx.SetHeader(Header, id)
		next(huma.WithValue(ctx, requestIDKey, id))
	}
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
