package localstore

import (
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/five82/iqama/internal/prayer"
)

const (
	// StorageKey names the payload in the local file tier.
	StorageKey = "masjid-prayer-times"
	// CookieKey names the payload in the cookie tier.
	CookieKey = "masjid-prayer-times-cookie"
	// RecordKey names the payload in the structured tier.
	RecordKey = "masjid-prayer-times"

	localFileName  = "local.json"
	cookieFileName = "cookies.txt"
	sqliteFileName = "mpt-storage.db"
)

// Options selects which tiers Open enables.
type Options struct {
	Local      bool
	Cookie     bool
	Structured bool
}

// DefaultOptions enables every tier.
func DefaultOptions() Options {
	return Options{Local: true, Cookie: true, Structured: true}
}

// Store layers the three local tiers behind Load, Save and Hydrate. Tier
// failures are logged at debug level and never returned.
type Store struct {
	primary    Tier
	secondary  Tier
	structured Tier

	mu        sync.Mutex
	lastSaved string

	writer *asyncWriter
}

// Open builds a Store rooted at dir. A tier that cannot be opened is replaced
// by one that always reports ErrUnavailable.
func Open(dir string, opts Options) *Store {
	var primary, secondary, structured Tier = unavailableTier{name: "local"},
		unavailableTier{name: "cookie"}, unavailableTier{name: "structured"}

	if opts.Local {
		primary = NewFileTier(filepath.Join(dir, localFileName))
	}
	if opts.Cookie {
		secondary = NewCookieTier(filepath.Join(dir, cookieFileName))
	}
	if opts.Structured {
		tier, err := OpenSQLiteTier(filepath.Join(dir, sqliteFileName))
		if err != nil {
			log.Debug().Err(err).Msg("structured storage unavailable")
		} else {
			structured = tier
		}
	}
	return New(primary, secondary, structured)
}

// New builds a Store from explicit tiers. Nil tiers are treated as
// unavailable.
func New(primary, secondary, structured Tier) *Store {
	if primary == nil {
		primary = unavailableTier{name: "local"}
	}
	if secondary == nil {
		secondary = unavailableTier{name: "cookie"}
	}
	if structured == nil {
		structured = unavailableTier{name: "structured"}
	}
	return &Store{
		primary:    primary,
		secondary:  secondary,
		structured: structured,
		writer:     newAsyncWriter(structured, RecordKey),
	}
}

// Load reads the primary tier, falling back to the cookie tier when the
// primary is empty or failing. Missing or malformed data yields the defaults.
// Only a primary payload already in canonical form counts as saved, so the
// next Save rewrites legacy or cookie-only data into both tiers.
func (s *Store) Load() prayer.AppState {
	raw := s.get(s.primary, StorageKey)
	fromPrimary := raw != ""
	if !fromPrimary {
		raw = s.get(s.secondary, CookieKey)
	}

	state := prayer.Defaults()
	if raw != "" {
		state = prayer.Decode([]byte(raw))
	}

	saved := ""
	if fromPrimary && raw == prayer.Snapshot(state) {
		saved = raw
	}
	s.mu.Lock()
	s.lastSaved = saved
	s.mu.Unlock()
	return state
}

// Save writes state to every tier. The file and cookie tiers are skipped when
// the serialization matches the last save; the structured tier is always
// queued for an async write.
func (s *Store) Save(state prayer.AppState) {
	serialized := prayer.Snapshot(state)

	s.mu.Lock()
	if serialized != s.lastSaved {
		wrotePrimary := s.set(s.primary, StorageKey, serialized)
		wroteSecondary := s.set(s.secondary, CookieKey, serialized)
		// Only a snapshot that reached a tier counts as saved.
		if wrotePrimary || wroteSecondary {
			s.lastSaved = serialized
		}
	}
	s.mu.Unlock()

	s.writer.enqueue(serialized)
}

// Hydrate reads the structured tier and reports whether its content differs
// from current. The returned state is normalized.
func (s *Store) Hydrate(current prayer.AppState) (prayer.AppState, bool) {
	raw := s.get(s.structured, RecordKey)
	if raw == "" {
		return current, false
	}
	stored := prayer.Decode([]byte(raw))
	if stored.Equal(current) {
		return current, false
	}
	return stored, true
}

// Close waits for pending async writes and closes tiers that hold resources.
func (s *Store) Close() error {
	s.writer.close()

	var errs []error
	for _, tier := range []Tier{s.primary, s.secondary, s.structured} {
		if closer, ok := tier.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

func (s *Store) get(tier Tier, key string) string {
	value, err := tier.Get(key)
	if err != nil {
		log.Debug().Err(err).Str("tier", tier.Name()).Msg("storage read failed")
		return ""
	}
	return value
}

func (s *Store) set(tier Tier, key, value string) bool {
	if err := tier.Set(key, value); err != nil {
		log.Debug().Err(err).Str("tier", tier.Name()).Msg("storage write failed")
		return false
	}
	return true
}
