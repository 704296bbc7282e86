package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/TemirB/carts-service/internal/config"
)

// Do calls fn until it returns nil or the policy's attempts are used up.
func Do(ctx context.Context, policy config.Retry, fn func() error) error {
	return DoIf(ctx, policy, fn, func(error) bool { return true })
}

// DoIf is Do that stops early on errors for which retryable reports false.
// The last error from fn is returned.
func DoIf(ctx context.Context, policy config.Retry, fn func() error, retryable func(error) bool) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	d := policy.Base
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) || i == attempts-1 {
			return err
		}

		delay := d
		if policy.JitterFactor > 0 {
			jitter := 1 + policy.JitterFactor*(2*r.Float64()-1)
			delay = time.Duration(float64(delay) * jitter)
		}
		if policy.Max > 0 && delay > policy.Max {
			delay = policy.Max
		}

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}

		d *= 2
		if policy.Max > 0 && d > policy.Max {
			d = policy.Max
		}
	}
	return err
}
