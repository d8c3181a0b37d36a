package localstore

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// asyncWriter serializes fire-and-forget writes to one tier on a single
// goroutine. Only the latest queued value is kept; older ones are dropped
// without being written.
type asyncWriter struct {
	tier Tier
	key  string

	mu     sync.Mutex
	latest *string
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newAsyncWriter(tier Tier, key string) *asyncWriter {
	w := &asyncWriter{
		tier: tier,
		key:  key,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *asyncWriter) enqueue(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.latest = &value
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for range w.wake {
		w.drain()
	}
	w.drain()
}

func (w *asyncWriter) drain() {
	w.mu.Lock()
	value := w.latest
	w.latest = nil
	w.mu.Unlock()

	if value == nil {
		return
	}
	if err := w.tier.Set(w.key, *value); err != nil {
		log.Debug().Err(err).Str("tier", w.tier.Name()).Msg("async storage write failed")
	}
}

// close stops accepting values and waits until the last queued one is written.
func (w *asyncWriter) close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.wake)
	}
	w.mu.Unlock()
	<-w.done
}
