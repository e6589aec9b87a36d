package services

import (
	"sync"
	"time"

	"github.com/yungbote/virtual-client-backend/internal/logger"
)

const (
	breakerClosed = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker guards the LLM provider. After failureThreshold consecutive
// failures it opens; once coolDown elapses the next caller probes half-open,
// and the first success closes it again. State is process-local.
type CircuitBreaker interface {
	Allow() bool
	RecordSuccess()
	RecordFailure()
	State() string
}

type circuitBreaker struct {
	log *logger.Logger
	mu  sync.Mutex

	state            int
	consecutiveFails int
	failureThreshold int
	coolDown         time.Duration
	openedAt         time.Time

	now func() time.Time
}

func NewCircuitBreaker(baseLog *logger.Logger, failureThreshold int, coolDown time.Duration) CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if coolDown <= 0 {
		coolDown = 30 * time.Second
	}
	return &circuitBreaker{
		log:              baseLog.With("service", "CircuitBreaker"),
		state:            breakerClosed,
		failureThreshold: failureThreshold,
		coolDown:         coolDown,
		now:              time.Now,
	}
}

func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerClosed, breakerHalfOpen:
		return true
	case breakerOpen:
		if b.now().Sub(b.openedAt) >= b.coolDown {
			b.state = breakerHalfOpen
			b.log.Info("Circuit breaker half-open, probing provider")
			return true
		}
		return false
	}
	return true
}

func (b *circuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != breakerClosed {
		b.log.Info("Circuit breaker closed after successful call")
	}
	b.state = breakerClosed
	b.consecutiveFails = 0
}

func (b *circuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFails++
	if b.state == breakerHalfOpen || b.consecutiveFails >= b.failureThreshold {
		if b.state != breakerOpen {
			b.log.Warn("Circuit breaker opened",
				"consecutive_failures", b.consecutiveFails,
				"cool_down", b.coolDown.String(),
			)
		}
		b.state = breakerOpen
		b.openedAt = b.now()
	}
}

func (b *circuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
