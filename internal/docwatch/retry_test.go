package docwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy()

	tests := []struct {
		name    string
		err     error
		attempt int
		want    bool
	}{
		{name: "nil error", err: nil, attempt: 0, want: false},
		{name: "attempts exhausted", err: errors.New("boom"), attempt: 3, want: false},
		{name: "context canceled", err: context.Canceled, attempt: 0, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, attempt: 1, want: false},
		{name: "server error", err: &StatusError{URL: "u", StatusCode: 503}, attempt: 0, want: true},
		{name: "rate limited", err: &StatusError{URL: "u", StatusCode: 429}, attempt: 1, want: true},
		{name: "not found", err: &StatusError{URL: "u", StatusCode: 404}, attempt: 0, want: false},
		{name: "forbidden", err: &StatusError{URL: "u", StatusCode: 403}, attempt: 0, want: false},
		{name: "network timeout", err: timeoutErr{}, attempt: 0, want: true},
		{name: "generic error", err: errors.New("connection reset"), attempt: 0, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, p.ShouldRetry(tc.err, tc.attempt))
		})
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	t.Parallel()

	p := NewRetryPolicy(5, 100*time.Millisecond, time.Second)

	for attempt := 0; attempt < 5; attempt++ {
		d := p.Backoff(attempt)
		require.Greater(t, d, time.Duration(0))
		require.LessOrEqual(t, d, time.Second)
	}
}

func TestNewRetryPolicyDefaults(t *testing.T) {
	t.Parallel()

	p := NewRetryPolicy(0, 0, 0)
	require.Equal(t, 3, p.maxAttempts)
	require.Equal(t, 250*time.Millisecond, p.baseDelay)
	require.Equal(t, 5*time.Second, p.maxDelay)
}
