package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/typed-request/internal/config"
	"github.com/Adda-Baaj/typed-request/internal/logger"
	"github.com/Adda-Baaj/typed-request/pkg/httpclient"
	"github.com/Adda-Baaj/typed-request/pkg/typedrequest"
)

// Runner executes the configured request definitions once, in file order,
// and logs the decoded outcome of each.
type Runner struct {
	cfg      *config.Config
	requests []RequestConfig
	client   *typedrequest.Client
	log      logger.Logger
}

// NewRunner builds a runner from config. A nil transport selects the resty
// transport configured from cfg.
func NewRunner(cfg *config.Config, transport httpclient.Transport, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	requests, err := LoadRequests(cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	names := make([]string, 0, len(requests))
	for _, r := range requests {
		names = append(names, r.Name)
	}
	log.InfoObj("request definitions loaded", "requests_meta", map[string]any{
		"count": len(names),
		"names": names,
	})

	if transport == nil {
		opts := []httpclient.RestyOption{
			httpclient.WithRestyClient(httpclient.NewRestyHTTPClient(cfg.HTTPTimeout)),
			httpclient.WithFailOnErrorStatus(cfg.FailOnErrorStatus),
		}
		if logger.S != nil {
			opts = append(opts, httpclient.WithRestyLogger(logger.S))
		}
		transport = httpclient.NewRestyTransport(opts...)
	}

	client := typedrequest.New(transport,
		typedrequest.WithLogger(log),
		typedrequest.WithUserAgent(cfg.UserAgent),
	)

	return &Runner{
		cfg:      cfg,
		requests: requests,
		client:   client,
		log:      log,
	}, nil
}

// Result records the outcome of one request definition.
type Result struct {
	Name       string         `json:"name"`
	StatusCode int            `json:"status_code,omitempty"`
	Response   map[string]any `json:"response,omitempty"`
	Err        error          `json:"-"`
}

// Run executes every enabled request and returns the joined failures.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}

	start := time.Now()
	var (
		results []Result
		errs    []error
	)
	for _, def := range r.requests {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !def.EnabledValue() {
			r.log.DebugObj("request skipped", "request_name", def.Name)
			continue
		}
		res := r.runOne(ctx, def)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("request %q: %w", def.Name, res.Err))
		}
	}

	r.log.InfoObj("requests completed", "run_meta", map[string]any{
		"executed":   len(results),
		"failed":     len(errs),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return results, errors.Join(errs...)
}

// runOne sends a single definition and logs the classified outcome.
func (r *Runner) runOne(ctx context.Context, def RequestConfig) Result {
	res := Result{Name: def.Name}
	spec, err := def.Spec()
	if err != nil {
		res.Err = err
		r.log.ErrorObj("request definition invalid", "request_error", map[string]any{
			"name":  def.Name,
			"error": err.Error(),
		})
		return res
	}

	out, err := typedrequest.Do[map[string]any, typedrequest.ErrorResponse](ctx, r.client, spec)
	if err != nil {
		res.Err = err
		var remote *typedrequest.RemoteError
		if errors.As(err, &remote) {
			res.StatusCode = remote.StatusCode
			r.log.WarnObj("request rejected by server", "request_remote_error", map[string]any{
				"name":   def.Name,
				"status": remote.StatusCode,
				"error":  remote.Err.Error(),
			})
			return res
		}
		r.log.ErrorObj("request failed", "request_error", map[string]any{
			"name":  def.Name,
			"error": err.Error(),
		})
		return res
	}

	res.Response = out
	r.log.InfoObj("request succeeded", "request_result", map[string]any{
		"name":     def.Name,
		"response": out,
	})
	return res
}
