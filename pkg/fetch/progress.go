package fetch

import "time"

// Phase describes where a transfer is in its lifecycle.
type Phase string

const (
	PhaseSkip        Phase = "skip"
	PhaseStart       Phase = "start"
	PhaseRestart     Phase = "restart"
	PhaseDownloading Phase = "downloading"
	PhaseDone        Phase = "done"
)

// ProgressEvent reports the state of a single transfer. Total is -1 when the
// server did not declare a content length.
type ProgressEvent struct {
	Filename string
	Phase    Phase
	Bytes    int64
	Total    int64
}

// ProgressFunc receives progress events. Events are observational only; the
// transfer does not depend on what the sink does with them.
type ProgressFunc func(ProgressEvent)

// throttle limits how often downloading events are emitted. The first call is
// always ready so short transfers still report at least once.
type throttle struct {
	interval time.Duration
	last     time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{interval: interval}
}

func (t *throttle) ready() bool {
	now := time.Now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
