package apiclient

import (
	"math/rand/v2"
	"time"
)

// Default retry tuning. 429 responses bypass the attempt ceiling entirely;
// 5xx and network errors share it.
const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 1 * time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
	DefaultRetryAfter     = 5 * time.Second
)

// retryDelay returns base × 2^(attempt−1) with equal jitter below the cap.
// Pre-cap, equal jitter keeps attempt n in [d/2, d) and attempt n+1 in
// [d, 2d), so delays never shrink. Once the curve reaches max the delay is
// pinned there: re-rolling jitter at the cap could land below the previous
// attempt's delay.
func retryDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultRetryBaseDelay
	}
	if max <= 0 {
		max = DefaultRetryMaxDelay
	}
	if attempt < 1 {
		attempt = 1
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			break
		}
	}
	if d >= max {
		return max
	}

	half := d / 2
	if half <= 0 {
		return d
	}
	return half + time.Duration(rand.Int64N(int64(half)))
}
