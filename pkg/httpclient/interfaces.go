package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	StatusCode() int
	Body() []byte
	String() string
	DecodeJSON(v any) error
}

// Transport performs a single request synchronously. Implementations must be
// safe for concurrent use; callers share one Transport across goroutines.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}
