package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/iqama/internal/localstore"
	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/remote"
	"github.com/five82/iqama/internal/syncer"
)

// Field keys accepted by OnFieldChange besides the prayer names.
const (
	FieldName    = "name"
	FieldSunrise = "sunrise"
)

// Field is one on-screen value, as passed to CommitFields.
type Field struct {
	Loc int
	Key string
	Raw string
}

// Snapshot is the view of the session handed to renderers.
type Snapshot struct {
	State  prayer.AppState
	Sync   syncer.Status
	Remote bool
	// Revision changes whenever state is replaced wholesale by Bootstrap or
	// Hydrate. It is passed back to CommitFields.
	Revision uint64
}

// IsOffline reports whether the last remote call failed.
func (s Snapshot) IsOffline() bool {
	return s.Sync.State == syncer.Unavailable
}

// Options wires a Session. Remote may be nil for local-only operation.
type Options struct {
	Store  *localstore.Store
	Remote remote.Store
	Sync   syncer.Options
}

// Session owns the in-memory dataset and routes every change through local
// persistence and the sync coordinator.
type Session struct {
	mu  sync.RWMutex
	app prayer.AppState
	rev uint64

	store  *localstore.Store
	remote remote.Store
	sync   *syncer.Coordinator
}

// Open loads local state and builds the session.
func Open(opts Options) *Session {
	store := opts.Store
	if store == nil {
		store = localstore.New(nil, nil, nil)
	}

	return &Session{
		app:    store.Load(),
		store:  store,
		remote: opts.Remote,
		sync:   syncer.New(opts.Remote, opts.Sync),
	}
}

// OnFieldChange applies one raw input value. key is a prayer name, FieldName
// or FieldSunrise; loc is ignored for FieldSunrise. It returns the canonical
// value now held for the field and whether raw was accepted. Rejected input
// leaves the prior value in place. Accepted changes are saved locally before
// a push is scheduled.
func (s *Session) OnFieldChange(loc int, key, raw string) (string, bool) {
	s.mu.Lock()
	value, ok, changed := s.applyLocked(loc, key, raw)
	var snap prayer.AppState
	if changed {
		snap = s.app.Clone()
	}
	s.mu.Unlock()

	if changed {
		s.persist(snap)
	}
	return value, ok
}

// CommitFields re-derives state from every on-screen value and persists once
// if anything changed. rev is the Snapshot.Revision the values were loaded
// from; fields read before a wholesale replacement are ignored.
func (s *Session) CommitFields(rev uint64, fields []Field) bool {
	s.mu.Lock()
	if rev != s.rev {
		s.mu.Unlock()
		log.Debug().Uint64("rev", rev).Uint64("current", s.rev).Msg("stale commit ignored")
		return false
	}
	changed := false
	for _, f := range fields {
		if _, _, c := s.applyLocked(f.Loc, f.Key, f.Raw); c {
			changed = true
		}
	}
	var snap prayer.AppState
	if changed {
		snap = s.app.Clone()
	}
	s.mu.Unlock()

	if changed {
		s.persist(snap)
	}
	return changed
}

func (s *Session) applyLocked(loc int, key, raw string) (value string, ok bool, changed bool) {
	if key == FieldSunrise {
		prior := s.app.Sunrise
		next := ""
		if strings.TrimSpace(raw) != "" {
			parsed, valid := prayer.ParseTimeValue(raw)
			if !valid {
				return prior, false, false
			}
			next = parsed
		}
		s.app.Sunrise = next
		return next, true, next != prior
	}

	if loc < 0 || loc >= len(s.app.Masjids) {
		return "", false, false
	}
	location := &s.app.Masjids[loc]

	if key == FieldName {
		next := strings.TrimSpace(raw)
		if next == "" {
			next = prayer.DefaultName(loc)
		}
		prior := location.Name
		location.Name = next
		return next, true, next != prior
	}

	name, isPrayer := prayer.ParseName(key)
	if !isPrayer {
		return "", false, false
	}
	prior := location.Prayers[name]
	parsed, valid := prayer.ParseTimeValue(raw)
	if !valid {
		return prior, false, false
	}
	location.Prayers[name] = parsed
	return parsed, true, parsed != prior
}

func (s *Session) persist(snap prayer.AppState) {
	s.store.Save(snap)
	s.sync.Schedule(snap)
}

// Bootstrap runs the startup remote policy. When the remote has a row it
// replaces local state unconditionally and the first result is true. When it
// has none, local state is pushed to seed it. Transport failures mark sync
// unavailable and are returned; local state is untouched. Edits made while
// the fetch is outstanding are not pushed until it resolves.
func (s *Session) Bootstrap(ctx context.Context) (bool, error) {
	if s.remote == nil {
		return false, nil
	}

	if err := s.sync.Hold(ctx); err != nil {
		s.sync.Release()
		return false, fmt.Errorf("wait for push: %w", err)
	}

	fetched, found, err := s.remote.Fetch(ctx)
	if err != nil {
		s.sync.MarkUnavailable(err)
		s.sync.Release()
		log.Warn().Err(err).Msg("remote fetch failed")
		return false, fmt.Errorf("fetch remote: %w", err)
	}

	if !found {
		log.Info().Msg("remote record missing; seeding from local state")
		s.sync.Release()
		s.sync.Schedule(s.Snapshot().State)
		if err := s.sync.Flush(ctx); err != nil {
			return false, fmt.Errorf("seed remote: %w", err)
		}
		return false, nil
	}

	s.mu.Lock()
	s.app = fetched.Clone()
	s.rev++
	s.sync.MarkConfirmed(fetched)
	s.mu.Unlock()
	s.sync.Release()

	s.store.Save(fetched)
	log.Debug().Msg("local state replaced from remote")
	return true, nil
}

// Hydrate catches up with the structured local tier. It replaces and re-saves
// state when the tier holds something different. No push is scheduled.
func (s *Session) Hydrate() bool {
	current := s.Snapshot().State
	stored, differs := s.store.Hydrate(current)
	if !differs {
		return false
	}

	s.mu.Lock()
	s.app = stored.Clone()
	s.rev++
	s.mu.Unlock()

	s.store.Save(stored)
	log.Debug().Msg("local state hydrated from structured storage")
	return true
}

// Snapshot returns a deep copy of the current state and sync status.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	app := s.app.Clone()
	rev := s.rev
	s.mu.RUnlock()

	return Snapshot{
		State:    app,
		Sync:     s.sync.Status(),
		Remote:   s.remote != nil,
		Revision: rev,
	}
}

// NextPrayers returns the upcoming prayer for each location, in order.
func (s *Session) NextPrayers(now time.Time) []prayer.Next {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]prayer.Next, len(s.app.Masjids))
	for i, loc := range s.app.Masjids {
		out[i], _ = prayer.NextPrayer(loc.Prayers, now)
	}
	return out
}

// Retry starts a background push of any pending snapshot. It never blocks.
func (s *Session) Retry() {
	s.sync.Tick()
}

// FlushNow pushes the pending snapshot in the calling goroutine.
func (s *Session) FlushNow(ctx context.Context) error {
	return s.sync.Flush(ctx)
}

// Close saves locally, makes one bounded push attempt and releases storage.
func (s *Session) Close(timeout time.Duration) error {
	snap := s.Snapshot().State
	s.store.Save(snap)

	if err := s.sync.FlushKeepalive(timeout); err != nil {
		log.Warn().Err(err).Msg("final sync failed")
	}
	s.sync.Close()

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close local store: %w", err)
	}
	return nil
}
