package harvest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/source"
)

// State represents the current state of the background harvester.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the poller.
type Status struct {
	State   State
	LastRun time.Time
	Added   int
	Error   error
}

// RunResult is emitted after every harvest run.
type RunResult struct {
	Result *Result
	Err    error

	// AuthFailed is set when the IMAP login was rejected. The poller keeps
	// running so a fixed password is picked up on the next tick.
	AuthFailed bool
}

// defaultRunTimeout bounds a single harvest run.
const defaultRunTimeout = 2 * time.Minute

// Poller runs a Harvester on a fixed interval until its context is
// cancelled. Each run looks back over the configured window.
type Poller struct {
	harvester *Harvester
	interval  time.Duration
	window    time.Duration
	limit     int
	timeout   time.Duration

	results   chan RunResult
	triggerCh chan struct{}

	mu     sync.Mutex
	status Status
	now    func() time.Time
}

// NewPoller creates a poller harvesting the last window of mail every
// interval, fetching at most limit envelopes per run.
func NewPoller(h *Harvester, interval, window time.Duration, limit int) *Poller {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Poller{
		harvester: h,
		interval:  interval,
		window:    window,
		limit:     limit,
		timeout:   defaultRunTimeout,
		results:   make(chan RunResult, 16),
		triggerCh: make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Results delivers one RunResult per run. Results are dropped when the
// channel is full rather than blocking the poller.
func (p *Poller) Results() <-chan RunResult {
	return p.results
}

// Trigger requests an immediate run. It never blocks.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current poller status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run harvests immediately and then on every tick or trigger until ctx
// is done. The results channel is closed on return.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.results)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		case <-p.triggerCh:
			p.runOnce(ctx)
		}
	}
}

// runOnce performs a single harvest and publishes its result.
func (p *Poller) runOnce(ctx context.Context) {
	p.setStatus(StateRunning, 0, nil)

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.harvester.Run(runCtx, p.now().Add(-p.window), p.limit)
	if err != nil {
		p.setStatus(StateError, 0, err)
		auth := source.IsAuthError(err)
		log.Warn().Err(err).Bool("auth", auth).Msg("harvest failed")
		p.sendResult(RunResult{Err: err, AuthFailed: auth})
		return
	}

	p.setStatus(StateIdle, len(res.Added), nil)
	log.Info().
		Int("envelopes", res.Envelopes).
		Int("addresses", res.Addresses).
		Int("added", len(res.Added)).
		Msg("harvest finished")
	p.sendResult(RunResult{Result: res})
}

func (p *Poller) setStatus(state State, added int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == StateIdle && err == nil {
		p.status.LastRun = p.now()
		p.status.Added = added
	}
}

func (p *Poller) sendResult(r RunResult) {
	select {
	case p.results <- r:
	default:
	}
}
