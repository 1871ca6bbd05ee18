package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL       = "https://data-api.polymarket.com"
	DefaultRetryAttempts = 3
	DefaultRetryBase     = time.Second
)

// Config controls the retry behavior of a Client. RetryAttempts is the total
// number of tries for one logical request; RetryBaseDelay doubles before
// each retry, no jitter.
type Config struct {
	BaseURL        string
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

type Client struct {
	host       string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   int
	baseDelay  time.Duration

	// sleep and onRetry are replaced in tests to assert retry schedules
	// without real delays or log scraping.
	sleep   func(ctx context.Context, d time.Duration) error
	onRetry func(attempt int, delay time.Duration, err error)
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data api error (%d): %s", e.Status, e.Body)
}

// Transient reports whether the status is worth retrying: rate limits and
// upstream server failures. Everything else fails immediately.
func (e *APIError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

func NewClient(httpClient *http.Client, cfg Config, logger *zap.Logger) *Client {
	host := cfg.BaseURL
	if host == "" {
		host = DefaultBaseURL
	}
	host = strings.TrimRight(host, "/")
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBase
	}
	return &Client{
		host:       host,
		httpClient: httpClient,
		logger:     logger,
		attempts:   attempts,
		baseDelay:  baseDelay,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// doRequest issues one logical GET, retrying transient failures (429, 5xx,
// transport errors) with exponential backoff. Non-transient API errors fail
// immediately; after the retry budget the final error is returned.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			if c.onRetry != nil {
				c.onRetry(attempt, delay, lastErr)
			}
			if c.logger != nil {
				c.logger.Warn("retrying data api request",
					zap.String("path", path),
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
					zap.Error(lastErr),
				)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.once(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Transient() {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// decodeArray unmarshals a JSON array body. Empty and null bodies are empty
// results, never errors.
func decodeArray[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) warnMalformed(path string, err error) {
	if c.logger != nil {
		c.logger.Warn("malformed data api response, treating as empty",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

// GetPositions fetches the open positions of one wallet. A malformed body
// degrades to an empty result with a warning.
func (c *Client) GetPositions(ctx context.Context, user string, limit int) ([]Position, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}
	query := url.Values{}
	query.Set("user", user)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.doRequest(ctx, "/positions", query)
	if err != nil {
		return nil, err
	}
	out, err := decodeArray[Position](body)
	if err != nil {
		c.warnMalformed("/positions", err)
		return nil, nil
	}
	return out, nil
}

// GetActivity fetches the activity feed of one wallet starting at the given
// unix timestamp.
func (c *Client) GetActivity(ctx context.Context, user string, limit int, start int64) ([]Activity, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}
	query := url.Values{}
	query.Set("user", user)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if start > 0 {
		query.Set("start", strconv.FormatInt(start, 10))
	}
	body, err := c.doRequest(ctx, "/activity", query)
	if err != nil {
		return nil, err
	}
	out, err := decodeArray[Activity](body)
	if err != nil {
		c.warnMalformed("/activity", err)
		return nil, nil
	}
	return out, nil
}

// GetValue fetches the current portfolio value of one wallet. Absence of
// data is zero, not an error.
func (c *Client) GetValue(ctx context.Context, user string) (float64, error) {
	if user == "" {
		return 0, fmt.Errorf("user is required")
	}
	query := url.Values{}
	query.Set("user", user)
	body, err := c.doRequest(ctx, "/value", query)
	if err != nil {
		return 0, err
	}
	out, err := decodeArray[portfolioValue](body)
	if err != nil {
		c.warnMalformed("/value", err)
		return 0, nil
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Value, nil
}
