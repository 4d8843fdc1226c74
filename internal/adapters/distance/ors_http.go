package distance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// StatusError is a non-2xx response from the routing service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ors status %d: %s", e.Code, e.Body)
}

// retryPolicy retries transient failures with exponential backoff.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

func (p retryPolicy) retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// run calls attempt until it succeeds, fails permanently, or ctx is done.
// A fresh request is built per attempt so request bodies can be re-read.
func (p retryPolicy) run(ctx context.Context, attempt func() (*http.Response, error)) (*http.Response, error) {
	wait := p.backoff
	tries := max(p.attempts, 1)

	var lastErr error
	for i := 0; i < tries; i++ {
		if i > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
			wait *= 2
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := attempt()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !p.retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (o *ORSProvider) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs one request built by build, turning error statuses into *StatusError.
func (o *ORSProvider) send(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	return o.retry.run(ctx, func() (*http.Response, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := o.session.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
		return resp, nil
	})
}
