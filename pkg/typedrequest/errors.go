package typedrequest

import (
	"fmt"
	"strconv"
)

// ErrorResponse is the built-in error model. Servers that reply with an
// {"error": {...}} envelope decode into it directly.
type ErrorResponse struct {
	Detail *ErrorMsg `json:"error,omitempty"`
}

// ErrorMsg carries the structured error fields. Code holds the HTTP status as
// text when the server body could not be decoded.
type ErrorMsg struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (e ErrorResponse) Error() string {
	if e.Detail == nil {
		return "remote error"
	}
	msg, code := e.Detail.Message, e.Detail.Code
	switch {
	case code != "" && msg != "":
		return fmt.Sprintf("remote error %s: %s", code, msg)
	case code != "":
		return "remote error " + code
	case msg != "":
		return "remote error: " + msg
	default:
		return "remote error"
	}
}

// Code returns the error code, or "" when absent.
func (e ErrorResponse) Code() string {
	if e.Detail == nil {
		return ""
	}
	return e.Detail.Code
}

// Message returns the error message, or "" when absent.
func (e ErrorResponse) Message() string {
	if e.Detail == nil {
		return ""
	}
	return e.Detail.Message
}

// fallbackError synthesizes an ErrorResponse from an undecodable error body.
func fallbackError(status int, body string) ErrorResponse {
	return ErrorResponse{Detail: &ErrorMsg{
		Message: body,
		Code:    strconv.Itoa(status),
	}}
}

// RemoteError is returned when the server answered with an error response.
// Err holds the decoded error model, or an ErrorResponse fallback.
type RemoteError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("http status %d: %v", e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// SerializationError reports a request body that could not be encoded.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return "encode request body: " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

// DecodeError reports a response body that did not match the expected model.
type DecodeError struct {
	StatusCode int
	Target     string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s from status %d response: %v", e.Target, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
