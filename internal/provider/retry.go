package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// RetryProvider wraps a Provider with exponential backoff retry logic.
type RetryProvider struct {
	inner      Provider
	maxRetries int
	baseDelay  time.Duration
}

func WithRetry(p Provider, maxRetries int) *RetryProvider {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryProvider{inner: p, maxRetries: maxRetries, baseDelay: 500 * time.Millisecond}
}

func (r *RetryProvider) Name() string { return r.inner.Name() }

func (r *RetryProvider) Model() string { return r.inner.Model() }

func (r *RetryProvider) Chat(ctx context.Context, msgs []Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		reply, err := r.inner.Chat(ctx, msgs)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxRetries {
			if attempt == 0 {
				return "", err
			}
			return "", fmt.Errorf("after %d retries: %w", attempt, err)
		}
		if err := r.backoff(ctx, attempt); err != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 429, 500, 502, 503, 529:
			return true
		}
		return false
	}
	msg := err.Error()
	for _, s := range []string{"429", "500", "502", "503", "529", "connection refused", "timeout", "EOF", "reset by peer"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (r *RetryProvider) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
