// Package client talks to the template storage service and the document
// compilation service over HTTP.
//
// Both services share one base URL. Requests time out after
// [DefaultTimeout] and are retried with backoff on network errors and on
// 408, 413, 429 and 5xx responses. Failed responses become
// [errors.StatusError] values wrapped in a coded error whose message is
// taken from the response body when possible.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/buildinfo"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/httputil"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/observability"
)

const (
	// DefaultBaseURL is the service address used when none is configured.
	DefaultBaseURL = "http://app.pdfgen.orb.local:1234"

	// DefaultTimeout bounds each request attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultAttempts is the number of tries per request.
	DefaultAttempts = 3

	defaultBackoff = 500 * time.Millisecond
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Attempts   int
	Backoff    time.Duration
	Headers    map[string]string
	HTTPClient *http.Client
}

// Client is the shared HTTP client for both services.
type Client struct {
	base     *url.URL
	http     *http.Client
	attempts int
	backoff  time.Duration
	headers  map[string]string
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{base: base, http: hc, attempts: opts.Attempts, backoff: opts.Backoff, headers: opts.Headers}, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Templates returns the storage service API.
func (c *Client) Templates() *Templates { return &Templates{c: c} }

// Compiler returns the compilation service API.
func (c *Client) Compiler() *Compiler { return &Compiler{c: c} }

// fallback formats the message used when an error body carries none.
type fallback func(code int) string

func requestFailed(code int) string {
	return fmt.Sprintf("Request failed: %d %s", code, http.StatusText(code))
}

// do sends a request with retries and returns the successful response body.
// in is JSON-encoded when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in any, fb fallback, jsonKeys ...string) ([]byte, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request")
		}
	}
	target := c.base.ResolveReference(&url.URL{Path: path})

	var out []byte
	err := httputil.Retry(ctx, c.attempts, c.backoff, func() error {
		var err error
		out, err = c.attempt(ctx, method, target, payload, fb, jsonKeys)
		return err
	})
	return out, err
}

func (c *Client) attempt(ctx context.Context, method string, target *url.URL, payload []byte, fb fallback, jsonKeys []string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.API()
	ep := observability.Endpoint{Method: method, Path: target.Path}
	hooks.OnCall(ctx, ep)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnFailure(ctx, ep, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s failed", method, target.Path))
	}
	defer resp.Body.Close()
	hooks.OnStatus(ctx, ep, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s response", target.Path))
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	se := &errors.StatusError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Header.Get("Content-Type"), data, jsonKeys),
	}
	if se.Message == "" {
		se.Message = fb(resp.StatusCode)
	}
	err = errors.Wrap(se.Code(), se, "%s", se.Message)
	if httputil.RetryableStatus(resp.StatusCode) {
		return nil, httputil.Retryable(err)
	}
	return nil, err
}

// errorMessage extracts a message from an error body: the first non-empty
// string among jsonKeys for JSON bodies, the trimmed text otherwise.
func errorMessage(contentType string, body []byte, jsonKeys []string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	if mt == "application/json" || strings.HasSuffix(mt, "+json") {
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return ""
		}
		for _, k := range jsonKeys {
			if s, ok := fields[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}
