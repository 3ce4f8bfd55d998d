package constants

// contextKey keeps these keys from colliding with other packages' string keys.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	ContextKeyRequestID      contextKey = "request_id"
	ContextKeyIdempotencyKey contextKey = "idempotency_key"
)
