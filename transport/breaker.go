package transport

import (
	"fmt"
	"sync"
	"time"
)

// breakerState is a circuit breaker's current disposition toward new sends.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// sendBreaker guards AMQPSession.Send against hammering a broker that has
// started failing: after failureThreshold consecutive failures it opens and
// rejects sends outright until timeout elapses, then allows a trial send
// through in half-open state before fully closing again.
type sendBreaker struct {
	mu sync.Mutex

	state       breakerState
	failures    int
	openedAt    time.Time
	halfOpenTry bool

	failureThreshold int
	timeout          time.Duration
}

func newSendBreaker(failureThreshold int, timeout time.Duration) *sendBreaker {
	return &sendBreaker{failureThreshold: failureThreshold, timeout: timeout}
}

// Allow reports whether a send should proceed, transitioning open -> half-open
// once timeout has elapsed since the breaker tripped.
func (b *sendBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		if time.Since(b.openedAt) < b.timeout {
			return fmt.Errorf("%w: circuit open", ErrTransport)
		}
		b.state = breakerHalfOpen
		b.halfOpenTry = true
		return nil
	case breakerHalfOpen:
		if b.halfOpenTry {
			return fmt.Errorf("%w: circuit half-open trial in flight", ErrTransport)
		}
		return nil
	default:
		return nil
	}
}

// Record updates breaker state with the outcome of a send allowed by Allow.
func (b *sendBreaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.state = breakerClosed
		b.halfOpenTry = false
		return
	}

	b.halfOpenTry = false
	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.openedAt = time.Now()
		return
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = breakerOpen
		b.openedAt = time.Now()
	}
}
