package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/iqama/internal/prayer"
)

// State is the coordinator's sync status.
type State int

const (
	Idle State = iota
	Pending
	InFlight
	Synced
	Unavailable
	LocalOnly
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case InFlight:
		return "syncing"
	case Synced:
		return "synced"
	case Unavailable:
		return "unavailable"
	case LocalOnly:
		return "local only"
	default:
		return "unknown"
	}
}

// Pusher uploads a full state to the remote.
type Pusher interface {
	Push(ctx context.Context, state prayer.AppState) error
}

// Options tunes a Coordinator.
type Options struct {
	// Debounce is the quiet period after the last Schedule before a push.
	Debounce time.Duration
	// PushTimeout bounds pushes started by the debounce timer or Tick.
	PushTimeout time.Duration
}

const (
	defaultDebounce    = 400 * time.Millisecond
	defaultPushTimeout = 10 * time.Second
)

// Status is a point-in-time copy of the coordinator's state.
type Status struct {
	State        State
	Pending      bool
	InFlight     bool
	LastError    error
	LastSyncedAt time.Time
}

type snapshot struct {
	state prayer.AppState
	key   string
}

// Coordinator debounces local edits into remote pushes. At most one push is
// in flight; only the newest pending snapshot is ever sent.
type Coordinator struct {
	pusher      Pusher
	debounce    time.Duration
	pushTimeout time.Duration

	mu           sync.Mutex
	state        State
	pending      *snapshot
	inFlight     bool
	idle         chan struct{}
	confirmed    string
	timer        *time.Timer
	lastErr      error
	lastSyncedAt time.Time
	held         bool
	closed       bool
}

// New returns a Coordinator pushing through p. A nil pusher puts the
// coordinator in local-only mode where every call is a no-op.
func New(p Pusher, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = defaultPushTimeout
	}
	c := &Coordinator{
		pusher:      p,
		debounce:    opts.Debounce,
		pushTimeout: opts.PushTimeout,
		state:       Idle,
	}
	if p == nil {
		c.state = LocalOnly
	}
	return c
}

// Schedule records state as the pending snapshot and re-arms the debounce
// timer. A state equal to the last confirmed one is a no-op that marks the
// coordinator synced. While held, the snapshot is recorded but no timer is
// armed.
func (c *Coordinator) Schedule(state prayer.AppState) {
	if c.pusher == nil {
		return
	}
	key := prayer.Snapshot(state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	// While a different snapshot is in flight, a revert to the confirmed
	// value still has to be sent after it.
	if key == c.confirmed && !c.inFlight {
		c.pending = nil
		c.stopTimerLocked()
		c.state = Synced
		return
	}

	c.pending = &snapshot{state: state.Clone(), key: key}
	if !c.inFlight {
		c.state = Pending
	}
	c.stopTimerLocked()
	if !c.held {
		c.timer = time.AfterFunc(c.debounce, c.fire)
	}
}

// Hold stops pushes from starting until Release. It waits for a push already
// in flight to finish, bounded by ctx; the hold stays in place on error.
func (c *Coordinator) Hold(ctx context.Context) error {
	if c.pusher == nil {
		return nil
	}
	c.mu.Lock()
	c.held = true
	c.stopTimerLocked()
	for c.inFlight {
		idle := c.idle
		c.mu.Unlock()
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	c.mu.Unlock()
	return nil
}

// Release ends a Hold. A snapshot recorded while held gets a fresh debounce
// timer.
func (c *Coordinator) Release() {
	if c.pusher == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
	if c.pending != nil && !c.closed {
		c.stopTimerLocked()
		c.timer = time.AfterFunc(c.debounce, c.fire)
	}
}

// Flush pushes the pending snapshot now, in the calling goroutine. It returns
// nil without pushing when nothing is pending, a push is already in flight or
// the coordinator is held.
// After a successful push a newer pending snapshot is pushed immediately.
func (c *Coordinator) Flush(ctx context.Context) error {
	if c.pusher == nil {
		return nil
	}
	for {
		c.mu.Lock()
		if c.pending == nil || c.inFlight || c.held {
			c.mu.Unlock()
			return nil
		}
		c.stopTimerLocked()
		sent := c.pending
		c.pending = nil
		c.inFlight = true
		c.idle = make(chan struct{})
		c.state = InFlight
		c.mu.Unlock()

		err := c.pusher.Push(ctx, sent.state)

		c.mu.Lock()
		c.inFlight = false
		close(c.idle)
		if err != nil {
			c.state = Unavailable
			c.lastErr = err
			if c.pending == nil {
				c.pending = sent
			}
			c.mu.Unlock()
			log.Warn().Err(err).Msg("remote push failed")
			return err
		}

		c.confirmed = sent.key
		c.lastErr = nil
		c.lastSyncedAt = time.Now()
		if c.pending != nil && c.pending.key == c.confirmed {
			c.pending = nil
		}
		if c.pending == nil {
			c.state = Synced
			c.mu.Unlock()
			log.Debug().Msg("remote push confirmed")
			return nil
		}
		c.state = Pending
		c.mu.Unlock()
	}
}

// Tick starts a background flush when a snapshot is pending and nothing is
// in flight. It never blocks.
func (c *Coordinator) Tick() {
	if c.pusher == nil {
		return
	}
	c.mu.Lock()
	ready := c.pending != nil && !c.inFlight && !c.held && !c.closed
	c.mu.Unlock()
	if ready {
		go c.fire()
	}
}

// FlushKeepalive is the teardown flush. It waits for any in-flight push to
// finish, then pushes whatever is still pending, until nothing is left. The
// whole call is bounded by timeout and does not depend on any caller context.
// Nothing is pushed while the coordinator is held.
func (c *Coordinator) FlushKeepalive(timeout time.Duration) error {
	if c.pusher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		c.mu.Lock()
		if c.inFlight {
			idle := c.idle
			c.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		done := c.pending == nil || c.held
		c.mu.Unlock()
		if done {
			return nil
		}
		if err := c.Flush(ctx); err != nil {
			return err
		}
	}
}

// MarkConfirmed records state as the remote's current content, as after a
// startup fetch that replaced local state. Any pending snapshot is dropped.
func (c *Coordinator) MarkConfirmed(state prayer.AppState) {
	if c.pusher == nil {
		return
	}
	key := prayer.Snapshot(state)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = key
	c.lastErr = nil
	c.lastSyncedAt = time.Now()
	c.pending = nil
	c.stopTimerLocked()
	if !c.inFlight {
		c.state = Synced
	}
}

// MarkUnavailable records a failed remote call made outside the coordinator,
// such as the startup fetch.
func (c *Coordinator) MarkUnavailable(err error) {
	if c.pusher == nil || err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if !c.inFlight {
		c.state = Unavailable
	}
}

// Status returns a copy of the current status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state,
		Pending:      c.pending != nil,
		InFlight:     c.inFlight,
		LastError:    c.lastErr,
		LastSyncedAt: c.lastSyncedAt,
	}
}

// Close stops the debounce timer. Pending snapshots are left untouched so a
// final FlushKeepalive can still send them.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
}

func (c *Coordinator) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), c.pushTimeout)
	defer cancel()
	// Failures are recorded in Status and logged by Flush.
	_ = c.Flush(ctx)
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
