package httpclient

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Request describes one outgoing call. Values are immutable: the With* methods
// return copies and never share header storage with the receiver.
type Request struct {
	method string
	url    string
	body   []byte
	header http.Header
}

// NewRequest returns a descriptor with no body and no headers.
func NewRequest(method, url string) Request {
	return Request{
		method: strings.ToUpper(strings.TrimSpace(method)),
		url:    url,
	}
}

func (r Request) Method() string { return r.method }
func (r Request) URL() string    { return r.url }

// Body returns a copy of the body bytes, or nil when none is attached.
func (r Request) Body() []byte {
	if r.body == nil {
		return nil
	}
	out := make([]byte, len(r.body))
	copy(out, r.body)
	return out
}

// Header returns a copy of the request headers.
func (r Request) Header() http.Header {
	return r.header.Clone()
}

// WithBody returns a copy of r carrying body.
func (r Request) WithBody(body []byte) Request {
	out := r
	if body == nil {
		out.body = nil
		return out
	}
	out.body = make([]byte, len(body))
	copy(out.body, body)
	return out
}

// WithHeader returns a copy of r with key set to value, replacing earlier values.
func (r Request) WithHeader(key, value string) Request {
	out := r
	out.header = r.header.Clone()
	if out.header == nil {
		out.header = make(http.Header, 1)
	}
	out.header.Set(strings.TrimSpace(key), value)
	return out
}

// WithHeaders applies headers via WithHeader in sorted key order, so when two
// keys differ only in case the one sorting last wins.
func (r Request) WithHeaders(headers map[string]string) Request {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := r
	for _, k := range keys {
		out = out.WithHeader(k, headers[k])
	}
	return out
}

// Validate checks that the descriptor can be put on the wire.
func (r Request) Validate() error {
	if r.method == "" {
		return fmt.Errorf("request method is empty")
	}
	if strings.TrimSpace(r.url) == "" {
		return fmt.Errorf("request url is empty")
	}
	for key, values := range r.header {
		if key == "" || strings.ContainsAny(key, "\r\n") {
			return fmt.Errorf("invalid header key %q", key)
		}
		for _, v := range values {
			if strings.ContainsAny(v, "\r\n") {
				return fmt.Errorf("invalid header value for %s", key)
			}
		}
	}
	return nil
}
