package httpclient

import "fmt"

// ResponseError reports a failure raised by the transport after an HTTP
// response was received. Response is never nil.
type ResponseError struct {
	Response Response
	Err      error
}

func (e *ResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("http response status %d", e.Response.StatusCode())
	}
	return fmt.Sprintf("http response status %d: %v", e.Response.StatusCode(), e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }
