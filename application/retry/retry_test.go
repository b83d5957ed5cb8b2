package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/plugincheck/plugincheck/application/retry"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

var errFlaky = errors.New("flaky")

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	}

	v, err := retry.Do(context.Background(), op, 3, retry.WithBackOff(noWait))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	}

	_, err := retry.Do(context.Background(), op, 3, retry.WithBackOff(noWait))
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errFlaky)

	var retryErr *domainerrors.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 3, retryErr.Attempts)
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	v, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}, 3, retry.WithBackOff(noWait))

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestDo_NonPositiveBudgetRunsOnce(t *testing.T) {
	for _, budget := range []int{0, -1} {
		calls := 0
		_, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
			calls++
			return 0, errFlaky
		}, budget, retry.WithBackOff(noWait))

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	}
}

func TestDo_NotRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	}, 5, retry.WithBackOff(noWait), retry.WithRetryIf(func(err error) bool {
		return !errors.Is(err, permanent)
	}))

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_Notify(t *testing.T) {
	var attempts []int
	_, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errFlaky
	}, 3, retry.WithBackOff(noWait), retry.WithNotify(func(err error, attempt int, wait time.Duration) {
		assert.ErrorIs(t, err, errFlaky)
		attempts = append(attempts, attempt)
	}))

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	slow := func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) }

	_, err := retry.Do(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errFlaky
	}, 3, retry.WithBackOff(slow))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledOperation(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, context.Canceled
	}, 3, retry.WithBackOff(noWait))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewExponentialBackOff_Bounded(t *testing.T) {
	b := retry.NewExponentialBackOff(10*time.Millisecond, 40*time.Millisecond, 2, 0.5)
	for i := 0; i < 10; i++ {
		d := b.NextBackOff()
		require.NotEqual(t, backoff.Stop, d)
		// Jitter spreads each interval by at most 50% around a value capped at 40ms.
		assert.LessOrEqual(t, d, 60*time.Millisecond)
		assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	}
}

func TestRetryableHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", &domainerrors.HTTPError{Method: "GET", URL: "u", Err: errors.New("connection reset")}, true},
		{"server error", &domainerrors.HTTPError{Method: "GET", URL: "u", StatusCode: 503}, true},
		{"not found", &domainerrors.HTTPError{Method: "GET", URL: "u", StatusCode: 404}, false},
		{"forbidden", &domainerrors.HTTPError{Method: "GET", URL: "u", StatusCode: 403}, false},
		{"request timeout", &domainerrors.HTTPError{Method: "GET", URL: "u", StatusCode: 408}, true},
		{"too many requests", &domainerrors.HTTPError{Method: "GET", URL: "u", StatusCode: 429}, true},
		{"cancelled", context.Canceled, false},
		{"plain", errFlaky, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.RetryableHTTP(tt.err))
		})
	}
}
