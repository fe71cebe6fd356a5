package context

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDKey      = "request_id"
	fiberRequestIDKey = "X-Request-ID"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := context.Background()

	requestID, ok := c.Locals(fiberRequestIDKey).(string)
	if !ok || requestID == "" {
		requestID = c.Get(fiberRequestIDKey)

		if requestID == "" {
			requestID = "unknown"
		}
	}

	return WithRequestID(ctx, requestID)
}

// WithTimeout derives a request-scoped context carrying the request ID and
// bounded by timeout. A non-positive timeout yields a cancel-only context.
func WithTimeout(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := FromFiberCtx(c)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
