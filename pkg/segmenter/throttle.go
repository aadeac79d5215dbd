package segmenter

import "time"

// throttle rate-limits full pipeline executions. The caller supplies the
// clock, which keeps the gate deterministic under test.
type throttle struct {
	lastRun     time.Time
	minInterval time.Duration
}

// allow reports whether a full run may start at the given time. The first
// invocation always runs.
func (t *throttle) allow(now time.Time) bool {
	if t.minInterval <= 0 || t.lastRun.IsZero() {
		return true
	}
	return now.Sub(t.lastRun) >= t.minInterval
}

// mark records a completed run. Failed frames are not marked, so a rejected
// buffer does not consume the next window.
func (t *throttle) mark(now time.Time) {
	t.lastRun = now
}

func (t *throttle) reset() {
	t.lastRun = time.Time{}
}
