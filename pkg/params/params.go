// Package params models request parameters as a closed set of JSON-compatible
// values and encodes them as JSON objects or URL form bodies.
package params

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Params maps parameter names to values.
type Params map[string]Value

// FromMap converts a generic decoded map into Params.
func FromMap(raw map[string]any) (Params, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(Params, len(raw))
	for k, v := range raw {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// EncodeJSON serializes p as a JSON object with sorted keys.
func EncodeJSON(p Params) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(p))
}

// FormPairs returns one escaped key=value entry per parameter in map order.
func FormPairs(p Params) []string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v.Text()))
	}
	return pairs
}

// EncodeForm renders p as an application/x-www-form-urlencoded body.
// Entry order is not stable.
func EncodeForm(p Params) string {
	return strings.Join(FormPairs(p), "&")
}
