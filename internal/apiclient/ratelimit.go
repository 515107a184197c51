package apiclient

import (
	"fmt"
	"sync"
	"time"
)

// Default admission limits. A browser session issuing more than the ceiling
// within the window is almost certainly stuck in a render loop; denying
// locally is cheaper than letting the backend return 429s.
const (
	DefaultRateLimitWindow  = 60 * time.Second
	DefaultRateLimitCeiling = 120
)

// criticalEndpoints are never denied: auth and health traffic must get
// through even when the window is saturated.
var criticalEndpoints = map[string]struct{}{
	PathLogin:   {},
	PathRefresh: {},
	PathHealth:  {},
}

type requestRecord struct {
	at       time.Time
	endpoint string
}

// admissionGate approximates client-side rate limiting with a sliding
// time-window log of recent requests.
type admissionGate struct {
	mu      sync.Mutex
	window  time.Duration
	ceiling int
	records []requestRecord

	now func() time.Time
}

func newAdmissionGate(window time.Duration, ceiling int) *admissionGate {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if ceiling <= 0 {
		ceiling = DefaultRateLimitCeiling
	}
	return &admissionGate{window: window, ceiling: ceiling, now: time.Now}
}

// Admit purges expired records, then either appends a new record and allows
// the call, or denies it with a terminal RateLimited error. Denials are
// never retried.
func (g *admissionGate) Admit(endpoint string) error {
	if _, ok := criticalEndpoints[endpoint]; ok {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-g.window)
	kept := g.records[:0]
	for _, rec := range g.records {
		if rec.at.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	g.records = kept

	if len(g.records) >= g.ceiling {
		return &APIError{
			Kind:    KindRateLimited,
			Message: fmt.Sprintf("too many requests in the last %s, slow down", g.window),
		}
	}

	g.records = append(g.records, requestRecord{at: g.now(), endpoint: endpoint})
	return nil
}

// Pending returns the current window occupancy. Advisory, used for logging.
func (g *admissionGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}
