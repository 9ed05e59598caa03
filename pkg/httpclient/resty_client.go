package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client            *resty.Client
	failOnErrorStatus bool
}

// RestyOption configures a RestyTransport.
type RestyOption func(*RestyTransport)

// WithTimeout bounds each call. Zero leaves resty's default of no timeout.
func WithTimeout(timeout time.Duration) RestyOption {
	return func(t *RestyTransport) {
		if timeout > 0 {
			t.client.SetTimeout(timeout)
		}
	}
}

// WithFailOnErrorStatus makes statuses >= 400 surface as *ResponseError.
func WithFailOnErrorStatus(enabled bool) RestyOption {
	return func(t *RestyTransport) { t.failOnErrorStatus = enabled }
}

// WithRestyClient replaces the underlying client. Options applied earlier are
// lost, so pass it first.
func WithRestyClient(c *resty.Client) RestyOption {
	return func(t *RestyTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithRestyLogger routes resty's internal warnings to log.
func WithRestyLogger(log resty.Logger) RestyOption {
	return func(t *RestyTransport) {
		if log != nil {
			t.client.SetLogger(log)
		}
	}
}

// NewRestyTransport creates a RestyTransport with the given options applied in order.
func NewRestyTransport(opts ...RestyOption) *RestyTransport {
	t := &RestyTransport{client: newRestyBaseClient(0)}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom setup.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do performs req and returns the buffered response.
func (t *RestyTransport) Do(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := t.client.R().SetContext(ctx)
	for key, values := range req.header {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}
	if req.body != nil {
		r.SetBody(req.Body())
	}

	resp, err := r.Execute(req.method, req.url)
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			return nil, &ResponseError{Response: t.adapt(resp), Err: err}
		}
		return nil, err
	}

	adapted := t.adapt(resp)
	if t.failOnErrorStatus && resp.IsError() {
		return nil, &ResponseError{
			Response: adapted,
			Err:      fmt.Errorf("server returned %s", resp.Status()),
		}
	}
	return adapted, nil
}

func (t *RestyTransport) adapt(resp *resty.Response) Response {
	unmarshal := t.client.JSONUnmarshal
	if unmarshal == nil {
		unmarshal = json.Unmarshal
	}
	return &restyResponseAdapter{resp: resp, unmarshal: unmarshal}
}

// restyResponseAdapter adapts resty.Response to the Response interface.
type restyResponseAdapter struct {
	resp      *resty.Response
	unmarshal func([]byte, interface{}) error
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
func (r *restyResponseAdapter) String() string  { return string(r.resp.Body()) }

func (r *restyResponseAdapter) DecodeJSON(v any) error {
	return r.unmarshal(r.resp.Body(), v)
}
