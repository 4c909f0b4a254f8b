package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen reports a call refused because the breaker is open.
var ErrCircuitOpen = errors.New("resilience: circuit open")

// State is the breaker state.
type State int

const (
	// StateClosed admits every call.
	StateClosed State = iota
	// StateOpen refuses every call.
	StateOpen
	// StateHalfOpen admits a single probe call.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the consecutive-failure count that opens the breaker.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before admitting a
	// probe. Default: 30 seconds.
	ResetTimeout time.Duration

	// OnStateChange, if set, is called on every transition.
	OnStateChange func(from, to State)
}

// Breaker is a consecutive-failure circuit breaker with an Allow/Record
// surface, for call sites whose result is not a plain error return (a cache
// read, say, where a backend failure is reported as a miss).
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Allow in half-open admits exactly one caller; the outcome of that
//   probe's Record decides whether the breaker closes or re-opens.
type Breaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
}

// NewBreaker creates a Breaker with defaults applied.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	return &Breaker{config: config, state: StateClosed}
}

// Allow reports whether a call may proceed. A true return from half-open
// claims the probe slot; the caller must follow up with Record.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentStateLocked() {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return false
	}
}

// Record accounts for the outcome of an admitted call. A nil err is a
// success; any other value is a failure.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentStateLocked()
	switch state {
	case StateClosed:
		if err != nil {
			b.failures++
			b.lastFailure = time.Now()
			if b.failures >= b.config.MaxFailures {
				b.transitionLocked(StateOpen)
			}
		} else {
			b.failures = 0
		}

	case StateHalfOpen:
		b.probing = false
		if err != nil {
			b.lastFailure = time.Now()
			b.transitionLocked(StateOpen)
		} else {
			b.failures = 0
			b.transitionLocked(StateClosed)
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

// Reset forces the breaker closed and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.transitionLocked(StateClosed)
}

func (b *Breaker) currentStateLocked() State {
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.config.ResetTimeout {
		b.transitionLocked(StateHalfOpen)
		b.probing = false
	}
	return b.state
}

func (b *Breaker) transitionLocked(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
