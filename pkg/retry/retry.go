// Package retry runs provider calls with a bounded, backed-off retry loop.
// Only transient failures (timeouts, 5xx/429, dropped connections) are retried;
// everything else returns on the first attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// ErrTransient marks a failure as retryable when no richer signal exists.
var ErrTransient = errors.New("transient provider failure")

// StatusError is a non-200 answer from an HTTP provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the provider may succeed on a later attempt.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

type Policy struct {
	MaxAttempts     int           // total attempts including the first, minimum 1
	InitialInterval time.Duration // first backoff delay
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration // 0 disables the per-attempt deadline
	Limiter         *rate.Limiter // optional request pacing, shared across callers
}

// DefaultPolicy mirrors the process defaults in config.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		AttemptTimeout:  30 * time.Second,
	}
}

// NewLimiter returns nil for rps <= 0, which disables pacing.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// IsTransient classifies err as worth another attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Do runs op until it succeeds, fails permanently, or the attempt budget is spent.
// The returned error is the last failure, unwrapped from any backoff bookkeeping.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	operation := func() (T, error) {
		var zero T
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return zero, backoff.Permanent(err)
			}
		}

		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}

		res, err := op(attemptCtx)
		if err == nil {
			return res, nil
		}
		// The caller gave up; nothing left to retry for.
		if ctx.Err() != nil {
			return zero, backoff.Permanent(err)
		}
		if !IsTransient(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return res, err
}
