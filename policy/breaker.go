package policy

import (
	"sync"
	"time"
)

// BreakerState represents the state of the circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows all traffic.
	BreakerClosed BreakerState = iota
	// BreakerHalfOpen allows limited traffic to probe recovery.
	BreakerHalfOpen
	// BreakerOpen blocks all traffic.
	BreakerOpen
)

// BreakerConfig configures the rolling window circuit breaker.
type BreakerConfig struct {
	Window               time.Duration
	FailureRateThreshold float64
	MinSamples           int
	Cooldown             time.Duration
	HalfOpenMaxCalls     int
}

// breakerSlots subdivides the rolling window. Outcomes are counted per slot
// so pruning is O(slots) regardless of call rate.
const breakerSlots = 8

type breakerSlot struct {
	epoch int64
	ok    int
	fail  int
}

// Breaker trips when the failure rate over the trailing window crosses the
// configured threshold, cools down, then probes recovery half-open.
type Breaker struct {
	cfg       BreakerConfig
	upstream  string
	metrics   *Metrics
	slotWidth time.Duration

	mu              sync.Mutex
	state           BreakerState
	lastStateChange time.Time
	slots           [breakerSlots]breakerSlot
	probes          int
	probeSuccesses  int
}

// NewBreaker constructs a Breaker for the named upstream.
func NewBreaker(upstream string, cfg BreakerConfig, metrics *Metrics) *Breaker {
	width := cfg.Window / breakerSlots
	if width <= 0 {
		width = time.Millisecond
	}
	b := &Breaker{
		cfg:       cfg,
		upstream:  upstream,
		metrics:   metrics,
		slotWidth: width,
		state:     BreakerClosed,
	}
	b.updateMetrics(BreakerClosed)
	return b
}

// Allow reports whether the breaker permits executing a call at the given time.
func (b *Breaker) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshState(now)

	switch b.state {
	case BreakerOpen:
		return false
	case BreakerHalfOpen:
		if b.cfg.HalfOpenMaxCalls > 0 && b.probes >= b.cfg.HalfOpenMaxCalls {
			return false
		}
		b.probes++
	}
	return true
}

// Record records the outcome of a call.
func (b *Breaker) Record(now time.Time, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	slot := b.slot(now)
	if success {
		slot.ok++
	} else {
		slot.fail++
	}
	b.refreshState(now)

	if b.state != BreakerHalfOpen {
		return
	}
	if !success {
		b.transition(BreakerOpen, now)
		b.resetProbes()
		return
	}
	b.probeSuccesses++
	if b.cfg.HalfOpenMaxCalls > 0 && b.probeSuccesses >= b.cfg.HalfOpenMaxCalls {
		b.transition(BreakerClosed, now)
		b.resetProbes()
		// Outcomes recorded before the trip no longer describe the
		// upstream; start the window fresh.
		b.slots = [breakerSlots]breakerSlot{}
	}
}

// slot returns the counter bucket for now, recycling it when its last use
// was a full window ago.
func (b *Breaker) slot(now time.Time) *breakerSlot {
	epoch := now.UnixNano() / int64(b.slotWidth)
	s := &b.slots[int(epoch%breakerSlots)]
	if s.epoch != epoch {
		*s = breakerSlot{epoch: epoch}
	}
	return s
}

// totals sums outcomes across the slots still inside the window.
func (b *Breaker) totals(now time.Time) (ok, fail int) {
	oldest := now.UnixNano()/int64(b.slotWidth) - breakerSlots + 1
	for i := range b.slots {
		if b.slots[i].epoch >= oldest {
			ok += b.slots[i].ok
			fail += b.slots[i].fail
		}
	}
	return ok, fail
}

func (b *Breaker) refreshState(now time.Time) {
	switch b.state {
	case BreakerOpen:
		if now.Sub(b.lastStateChange) >= b.cfg.Cooldown {
			b.transition(BreakerHalfOpen, now)
			b.resetProbes()
		}
	case BreakerHalfOpen:
		// Leaving half-open is decided by probe outcomes in Record.
	case BreakerClosed:
		ok, fail := b.totals(now)
		total := ok + fail
		if total == 0 || total < b.cfg.MinSamples {
			return
		}
		if float64(fail)/float64(total) >= b.cfg.FailureRateThreshold {
			b.transition(BreakerOpen, now)
		}
	}
}

func (b *Breaker) transition(state BreakerState, now time.Time) {
	if b.state == state {
		return
	}
	b.state = state
	b.lastStateChange = now
	b.updateMetrics(state)
}

func (b *Breaker) resetProbes() {
	b.probes = 0
	b.probeSuccesses = 0
}

func (b *Breaker) updateMetrics(state BreakerState) {
	if b.metrics != nil {
		b.metrics.SetBreakerState(b.upstream, state)
	}
}

// State returns the current state of the breaker.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
