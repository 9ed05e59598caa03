package typedrequest

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Adda-Baaj/typed-request/pkg/httpclient"
	"github.com/Adda-Baaj/typed-request/pkg/params"
)

// fakeResponse is an in-memory httpclient.Response.
type fakeResponse struct {
	status int
	body   string
}

func (r fakeResponse) StatusCode() int { return r.status }
func (r fakeResponse) Body() []byte    { return []byte(r.body) }
func (r fakeResponse) String() string  { return r.body }
func (r fakeResponse) DecodeJSON(v any) error {
	return json.Unmarshal([]byte(r.body), v)
}

// fakeTransport records the last request and replies with a preset response or error.
type fakeTransport struct {
	resp  httpclient.Response
	err   error
	calls int
	last  httpclient.Request
}

func (f *fakeTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type echo struct {
	OK bool `json:"ok"`
}

func okTransport() *fakeTransport {
	return &fakeTransport{resp: fakeResponse{status: http.StatusOK, body: `{"ok":true}`}}
}

func TestDoEmptyBodySources(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		tr := okTransport()
		if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: method, URL: "https://example.com"}); err != nil {
			t.Fatalf("%s: Do: %v", method, err)
		}
		if tr.last.Body() != nil {
			t.Fatalf("%s: expected no body, got %q", method, tr.last.Body())
		}
	}
}

func TestDoDiscardsBodyForNonBodyMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodHead} {
		tr := okTransport()
		spec := RequestSpec{
			Method: method,
			URL:    "https://example.com",
			Body:   "raw",
			JSON:   params.Params{"a": params.Int(1)},
		}
		if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
			t.Fatalf("%s: Do: %v", method, err)
		}
		if tr.last.Body() != nil {
			t.Fatalf("%s: expected body discarded, got %q", method, tr.last.Body())
		}
	}
}

func TestDoBodyPrecedence(t *testing.T) {
	jsonParams := params.Params{"Hello": params.String("World!"), "Thing1": params.Int(2)}
	formParams := params.Params{"donkey": params.String("kong")}

	cases := []struct {
		name string
		spec RequestSpec
		want string
	}{
		{"raw wins", RequestSpec{Body: "raw", JSON: jsonParams, Form: formParams}, "raw"},
		{"json over form", RequestSpec{JSON: jsonParams, Form: formParams}, `{"Hello":"World!","Thing1":2}`},
		{"form only", RequestSpec{Form: formParams}, "donkey=kong"},
	}
	for _, tc := range cases {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
			tr := okTransport()
			spec := tc.spec
			spec.Method = method
			spec.URL = "https://example.com"
			if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
				t.Fatalf("%s/%s: Do: %v", tc.name, method, err)
			}
			if got := string(tr.last.Body()); got != tc.want {
				t.Fatalf("%s/%s: body %q want %q", tc.name, method, got, tc.want)
			}
		}
	}
}

func TestDoContentTypeFollowsEncodingNotBody(t *testing.T) {
	tr := okTransport()
	spec := RequestSpec{
		Method:   http.MethodPost,
		URL:      "https://example.com",
		JSON:     params.Params{"a": params.Int(1)},
		Encoding: EncodingForm,
	}
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := tr.last.Header().Get("Content-Type"); got != contentTypeForm {
		t.Fatalf("expected form content type, got %q", got)
	}
	if got := string(tr.last.Body()); got != `{"a":1}` {
		t.Fatalf("expected json body, got %q", got)
	}

	tr = okTransport()
	spec.Encoding = ""
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := tr.last.Header().Get("Content-Type"); got != contentTypeJSON {
		t.Fatalf("expected default json content type, got %q", got)
	}
}

func TestDoSetsStandardHeaders(t *testing.T) {
	tr := okTransport()
	spec := RequestSpec{
		Method:  http.MethodGet,
		URL:     "https://example.com",
		Headers: map[string]string{"x-custom": "1", "Content-Type": "text/plain"},
	}
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr, WithUserAgent("probe/2")), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	h := tr.last.Header()
	want := map[string]string{
		"Accept":        "application/json",
		"Cache-Control": "no-cache",
		"User-Agent":    "probe/2",
		"X-Custom":      "1",
		"Content-Type":  contentTypeJSON,
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("header %s: got %q want %q", k, got, v)
		}
	}
}

func TestDoBearerToken(t *testing.T) {
	tr := okTransport()
	spec := RequestSpec{Method: http.MethodGet, URL: "https://example.com", BearerToken: "s3cret"}
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := tr.last.Header().Get("Authorization"); got != "Bearer s3cret" {
		t.Fatalf("unexpected Authorization %q", got)
	}

	tr = okTransport()
	spec.BearerToken = ""
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if _, ok := tr.last.Header()["Authorization"]; ok {
		t.Fatalf("expected no Authorization header")
	}
}

func TestDoStatusThresholdBoundary(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: 399, body: `{"ok":true}`}}
	out, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})
	if err != nil {
		t.Fatalf("399 should succeed, got %v", err)
	}
	if !out.OK {
		t.Fatalf("expected decoded success value")
	}

	tr = &fakeTransport{resp: fakeResponse{status: 400, body: `{"error":{"message":"bad","code":"E1"}}`}}
	_, err = Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("400 should fail with *RemoteError, got %v", err)
	}
	var payload ErrorResponse
	if !errors.As(err, &payload) {
		t.Fatalf("expected decoded ErrorResponse in chain")
	}
	if payload.Code() != "E1" || payload.Message() != "bad" {
		t.Fatalf("unexpected payload %#v", payload.Detail)
	}
}

func TestDoFallbackWhenErrorBodyUndecodable(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: 502, body: "<html>bad gateway</html>"}}
	_, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var payload ErrorResponse
	if !errors.As(err, &payload) {
		t.Fatalf("expected fallback ErrorResponse, got %v", err)
	}
	d := payload.Detail
	if d == nil {
		t.Fatalf("fallback missing detail")
	}
	if d.Code != "502" || d.Message != "<html>bad gateway</html>" || d.Type != "" || d.Param != "" {
		t.Fatalf("unexpected fallback %#v", d)
	}
}

// customError is a caller-defined error model.
type customError struct {
	Reason string `json:"reason"`
}

func (e customError) Error() string { return e.Reason }

func TestDoFallbackIgnoresCustomErrorType(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: 500, body: "plain text"}}
	_, err := Do[echo, customError](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var custom customError
	if errors.As(err, &custom) {
		t.Fatalf("did not expect custom error for undecodable body")
	}
	var payload ErrorResponse
	if !errors.As(err, &payload) || payload.Code() != "500" {
		t.Fatalf("expected fallback with code 500, got %v", err)
	}
}

func TestDoDecodesCustomErrorType(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: 422, body: `{"reason":"invalid email"}`}}
	_, err := Do[echo, customError](context.Background(), New(tr), RequestSpec{Method: http.MethodPost, URL: "https://example.com"})

	var custom customError
	if !errors.As(err, &custom) || custom.Reason != "invalid email" {
		t.Fatalf("expected custom error, got %v", err)
	}
}

func TestDoSuccessDecodeFailureHasNoFallback(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: http.StatusOK, body: "not json"}}
	_, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	var payload ErrorResponse
	if errors.As(err, &payload) {
		t.Fatalf("success decode failure must not produce a fallback ErrorResponse")
	}
}

func TestDoTransportResponseErrorDecodesWithoutFallback(t *testing.T) {
	embedded := fakeResponse{status: 503, body: `{"error":{"message":"down"}}`}
	tr := &fakeTransport{err: &httpclient.ResponseError{Response: embedded, Err: errors.New("fail")}}
	_, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var payload ErrorResponse
	if !errors.As(err, &payload) || payload.Message() != "down" {
		t.Fatalf("expected decoded payload from embedded response, got %v", err)
	}

	embedded = fakeResponse{status: 503, body: "down"}
	tr = &fakeTransport{err: &httpclient.ResponseError{Response: embedded, Err: errors.New("fail")}}
	_, err = Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError without fallback, got %v", err)
	}
	if errors.As(err, &payload) {
		t.Fatalf("transport response error path must not synthesize a fallback")
	}
}

func TestDoPropagatesTransportError(t *testing.T) {
	cause := &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("connection refused")}
	tr := &fakeTransport{err: cause}
	_, err := Do[echo, ErrorResponse](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})
	if err != cause {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
}

func TestDoSerializationFailureSkipsNetwork(t *testing.T) {
	tr := okTransport()
	spec := RequestSpec{
		Method: http.MethodPost,
		URL:    "https://example.com",
		JSON:   params.Params{"bad": params.Number(math.NaN())},
	}
	_, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec)

	var serErr *SerializationError
	if !errors.As(err, &serErr) {
		t.Fatalf("expected *SerializationError, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("expected no network call, got %d", tr.calls)
	}
}

func TestEncodingContentType(t *testing.T) {
	cases := map[Encoding]string{
		"":           contentTypeJSON,
		EncodingJSON: contentTypeJSON,
		" JSON ":     contentTypeJSON,
		EncodingForm: contentTypeForm,
		"xml":        contentTypeForm,
	}
	for enc, want := range cases {
		if got := enc.ContentType(); got != want {
			t.Errorf("encoding %q: got %q want %q", enc, got, want)
		}
	}
}

func TestErrorResponseMessage(t *testing.T) {
	err := fallbackError(405, "method not allowed")
	if !strings.Contains(err.Error(), "405") || !strings.Contains(err.Error(), "method not allowed") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	if (ErrorResponse{}).Error() != "remote error" {
		t.Fatalf("unexpected empty error text")
	}
}

// ptrError is an error model with a pointer receiver.
type ptrError struct {
	Reason string `json:"reason"`
}

func (e *ptrError) Error() string { return e.Reason }

func TestDoPointerErrorModelNullBodyFallsBack(t *testing.T) {
	tr := &fakeTransport{resp: fakeResponse{status: 500, body: "null"}}
	_, err := Do[echo, *ptrError](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	var payload ErrorResponse
	if !errors.As(err, &payload) || payload.Code() != "500" || payload.Message() != "null" {
		t.Fatalf("expected fallback for null body, got %v", err)
	}

	tr = &fakeTransport{resp: fakeResponse{status: 409, body: `{"reason":"conflict"}`}}
	_, err = Do[echo, *ptrError](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})
	var custom *ptrError
	if !errors.As(err, &custom) || custom.Reason != "conflict" {
		t.Fatalf("expected decoded *ptrError, got %v", err)
	}
}

func TestDoPointerErrorModelNullBodyOnTransportPath(t *testing.T) {
	embedded := fakeResponse{status: 503, body: "null"}
	tr := &fakeTransport{err: &httpclient.ResponseError{Response: embedded, Err: errors.New("fail")}}
	_, err := Do[echo, *ptrError](context.Background(), New(tr), RequestSpec{Method: http.MethodGet, URL: "https://example.com"})

	var decErr *DecodeError
	if !errors.As(err, &decErr) || decErr.StatusCode != 503 {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if !errors.Is(err, errNilPayload) {
		t.Fatalf("expected nil payload cause, got %v", err)
	}
}

func TestDoBearerTokenSentVerbatim(t *testing.T) {
	tr := okTransport()
	spec := RequestSpec{Method: http.MethodGet, URL: "https://example.com", BearerToken: " tok "}
	if _, err := Do[echo, ErrorResponse](context.Background(), New(tr), spec); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := tr.last.Header().Get("Authorization"); got != "Bearer  tok " {
		t.Fatalf("expected token unmodified, got %q", got)
	}
}
