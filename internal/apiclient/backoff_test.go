package apiclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryDelayGrowsMonotonically(t *testing.T) {
	base := 1 * time.Second
	max := 30 * time.Second

	var prev time.Duration
	for attempt := 1; attempt <= 4; attempt++ {
		d := retryDelay(base, max, attempt)
		require.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		require.LessOrEqual(t, d, max)
		prev = d
	}
}

func TestRetryDelayStaysWithinJitterBounds(t *testing.T) {
	base := 2 * time.Second
	max := 60 * time.Second

	for range 50 {
		// attempt 2 doubles the base: delay in [base, 2*base].
		d := retryDelay(base, max, 2)
		require.GreaterOrEqual(t, d, 2*time.Second)
		require.LessOrEqual(t, d, 4*time.Second)
	}
}

func TestRetryDelayCapsAtMax(t *testing.T) {
	d := retryDelay(1*time.Second, 5*time.Second, 10)
	require.Equal(t, 5*time.Second, d, "capped attempts wait the full max")
}

func TestRetryDelayStaysMonotonicPastTheCap(t *testing.T) {
	base := 1 * time.Second
	max := 10 * time.Second

	for range 200 {
		var prev time.Duration
		for attempt := 1; attempt <= 8; attempt++ {
			d := retryDelay(base, max, attempt)
			require.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
			require.LessOrEqual(t, d, max)
			prev = d
		}
	}
}

func TestRetryDelayDefaults(t *testing.T) {
	d := retryDelay(0, 0, 1)
	require.Greater(t, d, time.Duration(0))
	require.LessOrEqual(t, d, DefaultRetryBaseDelay)
}
