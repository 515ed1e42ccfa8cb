package license

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"doimeta/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const maxBodyBytes = 4 << 20

// Fetcher downloads license lists with config-driven retry logic.
type Fetcher struct {
	client      *http.Client
	retryPolicy config.RetryPolicy
}

// NewFetcher creates a fetcher with the given retry policy.
func NewFetcher(retryPolicy config.RetryPolicy) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy: retryPolicy,
	}
}

// Fetch returns the body of url, retrying transport failures and retryable
// status codes.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	attempts := max(f.retryPolicy.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, f.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		body, retry, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, attempts, err)

		if !retry {
			break
		}
	}

	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, isRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
