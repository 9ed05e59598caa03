package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/typed-request/pkg/params"
	"github.com/Adda-Baaj/typed-request/pkg/typedrequest"
	"gopkg.in/yaml.v3"
)

// requestsFile represents the structure of the request definitions file.
type requestsFile struct {
	Requests []RequestConfig `json:"requests" yaml:"requests"`
}

// RequestConfig is a single request entry declared in the definitions file.
type RequestConfig struct {
	Name        string            `json:"name" yaml:"name"`
	Enabled     *bool             `json:"enabled" yaml:"enabled"`
	Method      string            `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	Body        string            `json:"body" yaml:"body"`
	JSON        map[string]any    `json:"json" yaml:"json"`
	Form        map[string]any    `json:"form" yaml:"form"`
	Encoding    string            `json:"encoding" yaml:"encoding"`
	BearerToken string            `json:"bearer_token" yaml:"bearer_token"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
}

// LoadRequests loads request definitions from a YAML/JSON file.
func LoadRequests(path string) ([]RequestConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	parsed, err := parseRequestsFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	seen := make(map[string]struct{}, len(parsed.Requests))
	out := make([]RequestConfig, 0, len(parsed.Requests))
	for i := range parsed.Requests {
		cfg := sanitizeRequestConfig(parsed.Requests[i])
		if err := validateRequestConfig(cfg); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate request name %q", cfg.Name)
		}
		seen[cfg.Name] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

// parseRequestsFile decodes the file content according to its extension,
// trying every known format when the extension is missing.
func parseRequestsFile(data []byte, ext string) (requestsFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: unmarshalJSONNumbers},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var f requestsFile
		err := d.fn(data, &f)
		if err == nil {
			return f, nil
		}
		lastErr = fmt.Errorf("decode %s requests: %w", d.name, err)
	}

	if lastErr == nil {
		return requestsFile{}, fmt.Errorf("requests file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return requestsFile{}, fmt.Errorf("requests file format not recognized (expected YAML or JSON): %w", lastErr)
}

// unmarshalJSONNumbers decodes JSON keeping numbers as json.Number so large
// integers survive conversion into params.
func unmarshalJSONNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// sanitizeRequestConfig trims and normalizes the request config fields.
func sanitizeRequestConfig(cfg RequestConfig) RequestConfig {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Encoding = strings.ToLower(strings.TrimSpace(cfg.Encoding))
	cfg.BearerToken = strings.TrimSpace(cfg.BearerToken)
	cfg.Headers = sanitizeHeaders(cfg.Headers)
	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateRequestConfig checks that required fields are present.
func validateRequestConfig(cfg RequestConfig) error {
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	if cfg.URL == "" {
		return fmt.Errorf("url is required for request %q", cfg.Name)
	}
	switch cfg.Encoding {
	case "", string(typedrequest.EncodingJSON), string(typedrequest.EncodingForm):
	default:
		return fmt.Errorf("unsupported encoding %q for request %q", cfg.Encoding, cfg.Name)
	}
	if _, err := params.FromMap(cfg.JSON); err != nil {
		return fmt.Errorf("json params for request %q: %w", cfg.Name, err)
	}
	if _, err := params.FromMap(cfg.Form); err != nil {
		return fmt.Errorf("form params for request %q: %w", cfg.Name, err)
	}
	return nil
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg RequestConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Spec converts the entry into a typedrequest.RequestSpec.
func (cfg RequestConfig) Spec() (typedrequest.RequestSpec, error) {
	jsonParams, err := params.FromMap(cfg.JSON)
	if err != nil {
		return typedrequest.RequestSpec{}, fmt.Errorf("json params: %w", err)
	}
	formParams, err := params.FromMap(cfg.Form)
	if err != nil {
		return typedrequest.RequestSpec{}, fmt.Errorf("form params: %w", err)
	}
	return typedrequest.RequestSpec{
		Method:      cfg.Method,
		URL:         cfg.URL,
		Body:        cfg.Body,
		JSON:        jsonParams,
		Form:        formParams,
		Encoding:    typedrequest.Encoding(cfg.Encoding),
		BearerToken: cfg.BearerToken,
		Headers:     cfg.Headers,
	}, nil
}
