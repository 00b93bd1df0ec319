package retryer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/plugins/common/retryer"
)

func TestRetryer(t *testing.T) {
	tests := map[string]struct {
		attempts  int
		failures  int
		expectErr bool
		calls     int
	}{
		"first-try": {
			attempts: 3,
			failures: 0,
			calls:    1,
		},
		"recovers": {
			attempts: 3,
			failures: 2,
			calls:    3,
		},
		"exhausted": {
			attempts:  3,
			failures:  5,
			expectErr: true,
			calls:     3,
		},
		"unlimited": {
			attempts: 0,
			failures: 4,
			calls:    5,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := &retryer.Retryer{RetryAttempts: test.attempts, RetryAfter: time.Millisecond}

			calls := 0
			err := r.Do(context.Background(), "test", logger.Mock(), func() error {
				calls++
				if calls <= test.failures {
					return errors.New("failure")
				}
				return nil
			})

			if test.expectErr != (err != nil) {
				t.Fatalf("unexpected error: %v", err)
			}

			if calls != test.calls {
				t.Fatalf("unexpected calls count, want: %v, got: %v", test.calls, calls)
			}
		})
	}
}

func TestRetryerInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &retryer.Retryer{RetryAttempts: 0, RetryAfter: time.Hour}
	err := r.Do(ctx, "test", logger.Mock(), func() error {
		return errors.New("failure")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
