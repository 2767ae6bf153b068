package engine

import "time"

// timer is a scoped one-shot resource: it schedules on creation and
// guarantees its callback never fires after Cancel returns. A pending-table
// entry holds exactly one timer; removing the entry always cancels it first.
type timer struct {
	t *time.Timer
}

func newTimer(d time.Duration, onFire func()) *timer {
	if d <= 0 {
		return &timer{}
	}
	return &timer{t: time.AfterFunc(d, onFire)}
}

// cancel stops the timer. Safe to call on a zero-value timer (no timeout
// was requested) or more than once.
func (t *timer) cancel() {
	if t == nil || t.t == nil {
		return
	}
	t.t.Stop()
}
