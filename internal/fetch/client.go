// Package fetch issues bounded HTTP GETs against untrusted upstreams.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mtlprog/catprice/internal/metrics"
)

var (
	// ErrTimeout means the per-call deadline fired before the response completed.
	ErrTimeout = errors.New("deadline exceeded")
	// ErrNetwork covers DNS, connect and transport failures.
	ErrNetwork = errors.New("network error")
	// ErrParse means the body was not the expected JSON.
	ErrParse = errors.New("parse error")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// Some upstreams reject non-browser agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodySize = 16 << 20

// Client performs GET requests where every call owns its own deadline. There are no retries.
type Client struct {
	upstream   string
	httpClient *http.Client
}

// NewClient creates a client whose calls are labelled with upstream in metrics.
func NewClient(upstream string) *Client {
	return NewClientWithHTTP(upstream, &http.Client{})
}

// NewClientWithHTTP creates a client on top of a caller-supplied http.Client.
func NewClientWithHTTP(upstream string, httpClient *http.Client) *Client {
	return &Client{upstream: upstream, httpClient: httpClient}
}

// Get fetches url, failing with ErrTimeout if deadline elapses first.
func (c *Client) Get(ctx context.Context, url string, deadline time.Duration) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, url, deadline)
	metrics.RecordUpstream(c.upstream, outcome(err), time.Since(start))
	return body, err
}

// GetJSON fetches url and unmarshals the body into dest.
func (c *Client) GetJSON(ctx context.Context, url string, deadline time.Duration, dest any) error {
	start := time.Now()
	body, err := c.get(ctx, url, deadline)
	if err == nil {
		if jerr := json.Unmarshal(body, dest); jerr != nil {
			err = fmt.Errorf("%w: %s: %v", ErrParse, url, jerr)
		}
	}
	metrics.RecordUpstream(c.upstream, outcome(err), time.Since(start))
	return err
}

func (c *Client) get(ctx context.Context, url string, deadline time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(ctx, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	return body, nil
}

func classify(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: GET %s", ErrTimeout, url)
	}
	return fmt.Errorf("%w: GET %s: %v", ErrNetwork, url, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrParse):
		return "parse"
	}
	if _, ok := StatusCode(err); ok {
		return "status"
	}
	return "network"
}
