package typedrequest

import (
	"net/http"
	"strings"

	"github.com/Adda-Baaj/typed-request/pkg/params"
)

// Encoding selects the Content-Type sent with a request.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingForm Encoding = "form"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// ContentType maps the encoding onto a header value. Empty means JSON; any
// other value means form.
func (e Encoding) ContentType() string {
	switch strings.ToLower(strings.TrimSpace(string(e))) {
	case "", string(EncodingJSON):
		return contentTypeJSON
	default:
		return contentTypeForm
	}
}

// RequestSpec describes one call. At most one body source is serialized: Body
// wins over JSON, which wins over Form. Encoding only controls Content-Type;
// keeping it consistent with the chosen source is up to the caller.
type RequestSpec struct {
	Method      string
	URL         string
	Body        string
	JSON        params.Params
	Form        params.Params
	Encoding    Encoding
	BearerToken string
	Headers     map[string]string
}

// encodeBody returns the serialized body, or nil when no source is set.
func (s RequestSpec) encodeBody() ([]byte, error) {
	switch {
	case s.Body != "":
		return []byte(s.Body), nil
	case len(s.JSON) > 0:
		raw, err := params.EncodeJSON(s.JSON)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		return raw, nil
	case len(s.Form) > 0:
		return []byte(params.EncodeForm(s.Form)), nil
	default:
		return nil, nil
	}
}

func carriesBody(method string) bool {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
