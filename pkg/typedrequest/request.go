// Package typedrequest sends a single HTTP request and decodes the reply into
// a caller-chosen success model, or into a caller-chosen error model when the
// server answers with a status of 400 or above.
//
// A Client adds no concurrency of its own. It is safe for concurrent use
// whenever its Transport is, which holds for the default resty transport.
package typedrequest

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/Adda-Baaj/typed-request/pkg/httpclient"
)

// DefaultUserAgent identifies this client on outgoing requests.
const DefaultUserAgent = "TypedRequest/1.0"

// errorStatusThreshold is the first status treated as a remote error.
const errorStatusThreshold = 400

// Client binds a transport to the logging and header defaults used by Do.
type Client struct {
	transport httpclient.Transport
	log       Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithUserAgent overrides DefaultUserAgent. Blank values are ignored.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// New returns a Client sending through transport. A nil transport selects a
// resty transport with default settings.
func New(transport httpclient.Transport, opts ...Option) *Client {
	if transport == nil {
		transport = httpclient.NewRestyTransport()
	}
	c := &Client{
		transport: transport,
		log:       noopLogger{},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
)

// Default returns the shared Client used by Request.
func Default() *Client {
	defaultOnce.Do(func() { defaultClient = New(nil) })
	return defaultClient
}

// Request is Do with the shared default Client.
func Request[T any, E error](ctx context.Context, spec RequestSpec) (T, error) {
	return Do[T, E](ctx, Default(), spec)
}

// Do sends spec through c and decodes the response.
//
// On status < 400 the body is decoded into T. On status >= 400 the body is
// decoded into E and returned inside a *RemoteError; if that decode fails the
// RemoteError carries an ErrorResponse holding the raw body and status code
// instead. An error body that decodes to a nil E (JSON null into a pointer
// model) counts as a decode failure. A *httpclient.ResponseError from the
// transport is decoded into E without that fallback. Other transport errors
// are returned unchanged.
func Do[T any, E error](ctx context.Context, c *Client, spec RequestSpec) (T, error) {
	var zero T
	if c == nil {
		c = Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := c.build(spec)
	if err != nil {
		return zero, err
	}

	c.log.DebugObj("typed request sending", "request_meta", map[string]any{
		"method":     req.Method(),
		"url":        req.URL(),
		"body_bytes": len(req.Body()),
		"encoding":   spec.Encoding.ContentType(),
	})

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		var respErr *httpclient.ResponseError
		if errors.As(err, &respErr) && respErr.Response != nil {
			var e E
			decErr := respErr.Response.DecodeJSON(&e)
			if decErr == nil && isNil(e) {
				decErr = errNilPayload
			}
			if decErr != nil {
				return zero, &DecodeError{
					StatusCode: respErr.Response.StatusCode(),
					Target:     typeName[E](),
					Err:        decErr,
				}
			}
			return zero, c.remote(req, respErr.Response, e)
		}
		return zero, err
	}

	if resp.StatusCode() >= errorStatusThreshold {
		var e E
		decErr := resp.DecodeJSON(&e)
		if decErr == nil && isNil(e) {
			decErr = errNilPayload
		}
		if decErr != nil {
			c.log.DebugObj("typed request error body not decodable", "decode_meta", map[string]any{
				"status": resp.StatusCode(),
				"target": typeName[E](),
				"error":  decErr.Error(),
			})
			return zero, c.remote(req, resp, fallbackError(resp.StatusCode(), resp.String()))
		}
		return zero, c.remote(req, resp, e)
	}

	var out T
	if err := resp.DecodeJSON(&out); err != nil {
		return zero, &DecodeError{
			StatusCode: resp.StatusCode(),
			Target:     typeName[T](),
			Err:        err,
		}
	}
	return out, nil
}

// build turns spec into a transport request. Headers are applied in a fixed
// order so later entries win: defaults, caller headers, bearer, Content-Type.
func (c *Client) build(spec RequestSpec) (httpclient.Request, error) {
	body, err := spec.encodeBody()
	if err != nil {
		return httpclient.Request{}, err
	}

	req := httpclient.NewRequest(spec.Method, spec.URL)
	if body != nil && carriesBody(spec.Method) {
		req = req.WithBody(body)
	}

	req = req.
		WithHeader("Accept", contentTypeJSON).
		WithHeader("Cache-Control", "no-cache").
		WithHeader("User-Agent", c.userAgent).
		WithHeaders(spec.Headers)

	if spec.BearerToken != "" {
		req = req.WithHeader("Authorization", "Bearer "+spec.BearerToken)
	}

	return req.WithHeader("Content-Type", spec.Encoding.ContentType()), nil
}

func (c *Client) remote(req httpclient.Request, resp httpclient.Response, payload error) error {
	c.log.WarnObj("typed request remote error", "remote_error", map[string]any{
		"method": req.Method(),
		"url":    req.URL(),
		"status": resp.StatusCode(),
		"error":  payload.Error(),
	})
	return &RemoteError{
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
		Err:        payload,
	}
}

// errNilPayload reports an error body that decoded to a nil pointer, e.g. "null".
var errNilPayload = errors.New("error body decoded to nil")

// isNil reports whether e holds no usable value, which happens when E is a
// pointer or other nillable type and the body was JSON null.
func isNil[V any](e V) bool {
	v := reflect.ValueOf(any(e))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func typeName[V any]() string {
	return reflect.TypeOf((*V)(nil)).Elem().String()
}
