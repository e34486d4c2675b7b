// Package fetcher provides the HTTP client used for the listing page
// and for artifact downloads. Transient failures (connection errors,
// 429 and 5xx responses) are retried with exponential backoff; a
// server-provided Retry-After delay is honored when present.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Some government hosts reject requests carrying the default Go user
// agent, so every request goes out with a browser-like header set.
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-IN,en;q=0.9",
	"Connection":      "close",
}

// Statuses worth another attempt. Anything else outside 2xx fails the
// request immediately.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// TransportError is a terminal fetch failure, reported only after the
// retry budget is exhausted or on a non-retryable response.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures a Client. Zero values fall back to the defaults
// used by the production watcher.
type Options struct {
	// MaxAttempts is the total request budget, shared across connect
	// and read failures. Defaults to 6.
	MaxAttempts int
	// Timeout bounds a single request end to end. Defaults to 2
	// minutes, large enough for artifact downloads; callers pass a
	// tighter context deadline for the listing fetch.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound requests. Defaults to 2.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client is an explicitly constructed, injectable HTTP client. Build
// one at process start and share it between the listing fetch and the
// artifact fetcher.
type Client struct {
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

// New builds a Client from opts.
func New(opts Options) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 6
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.MaxAttempts - 1
	rc.RetryWaitMin = 700 * time.Millisecond
	rc.RetryWaitMax = 30 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = &retryLogger{logger: opts.Logger}
	rc.CheckRetry = checkRetry
	// DefaultBackoff honors Retry-After on 429/503 responses.
	rc.Backoff = retryablehttp.DefaultBackoff

	return &Client{
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return retryableStatus[resp.StatusCode], nil
}

// Get fetches url and returns the response body. It fails with a
// *TransportError once the retry budget is exhausted or on the first
// non-retryable status.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

// GetDocument fetches url and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// retryLogger adapts slog to retryablehttp's LeveledLogger.
type retryLogger struct {
	logger *slog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}
