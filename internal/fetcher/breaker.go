package fetcher

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostUnavailable is returned when a host's breaker is open.
var ErrHostUnavailable = eris.New("fetcher: host temporarily unavailable")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// hostBreaker stops downloads from a host after consecutive failures so a
// batch of sources on a dead server fails fast. After cooldown one probe is
// let through; success closes the breaker, failure reopens it.
type hostBreaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu    sync.Mutex
	hosts map[string]*hostState
}

type hostState struct {
	state    breakerState
	failures int
	openedAt time.Time
}

func newHostBreaker(threshold int, cooldown time.Duration) *hostBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &hostBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		hosts:     make(map[string]*hostState),
	}
}

// allow returns ErrHostUnavailable while the host's breaker is open.
func (b *hostBreaker) allow(host string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	hs, ok := b.hosts[host]
	if !ok {
		return nil
	}
	switch hs.state {
	case breakerOpen:
		if b.now().Sub(hs.openedAt) < b.cooldown {
			return eris.Wrapf(ErrHostUnavailable, "host %s", host)
		}
		b.transition(host, hs, breakerHalfOpen)
		return nil
	case breakerHalfOpen:
		// Only the first probe after cooldown gets through.
		return eris.Wrapf(ErrHostUnavailable, "host %s", host)
	default:
		return nil
	}
}

// record updates the host's breaker with the outcome of a download.
func (b *hostBreaker) record(host string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hs, ok := b.hosts[host]
	if !ok {
		if err == nil {
			return
		}
		hs = &hostState{}
		b.hosts[host] = hs
	}

	if err == nil {
		if hs.state != breakerClosed {
			b.transition(host, hs, breakerClosed)
		}
		hs.failures = 0
		return
	}

	hs.failures++
	if hs.state == breakerHalfOpen || hs.failures >= b.threshold {
		hs.openedAt = b.now()
		if hs.state != breakerOpen {
			b.transition(host, hs, breakerOpen)
		}
	}
}

// release returns a half-open host to open without counting a failure, so the
// next download after cooldown can probe again. Used when a probe is
// cancelled before it says anything about the host.
func (b *hostBreaker) release(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hs, ok := b.hosts[host]; ok && hs.state == breakerHalfOpen {
		b.transition(host, hs, breakerOpen)
	}
}

// state reports the breaker state for host, for tests and logging.
func (b *hostBreaker) state(host string) breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hs, ok := b.hosts[host]; ok {
		return hs.state
	}
	return breakerClosed
}

func (b *hostBreaker) transition(host string, hs *hostState, to breakerState) {
	zap.L().Info("fetcher: host breaker state change",
		zap.String("host", host),
		zap.Stringer("from", hs.state),
		zap.Stringer("to", to),
		zap.Int("failures", hs.failures),
	)
	hs.state = to
}
