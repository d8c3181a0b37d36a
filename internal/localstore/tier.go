package localstore

import (
	"errors"
	"sync"
)

var (
	// ErrUnavailable reports a tier that is disabled or could not be opened.
	ErrUnavailable = errors.New("storage tier unavailable")
	// ErrTooLarge reports a value the tier refuses to hold.
	ErrTooLarge = errors.New("value exceeds tier size limit")
)

// Tier is one local key-value storage backend. Get returns "" with a nil
// error when the key is absent. Any error means the tier is unusable for that
// call; the Store treats it as a silent skip.
type Tier interface {
	Name() string
	Get(key string) (string, error)
	Set(key, value string) error
}

type unavailableTier struct {
	name string
}

func (t unavailableTier) Name() string { return t.name }

func (t unavailableTier) Get(string) (string, error) { return "", ErrUnavailable }

func (t unavailableTier) Set(string, string) error { return ErrUnavailable }

// MemoryTier is an in-process Tier, used by tests and as a stand-in when a
// persistent tier is not wanted.
type MemoryTier struct {
	mu     sync.Mutex
	label  string
	values map[string]string
	fail   bool
}

// NewMemoryTier returns an empty MemoryTier reporting the given name.
func NewMemoryTier(name string) *MemoryTier {
	return &MemoryTier{label: name, values: make(map[string]string)}
}

func (m *MemoryTier) Name() string { return m.label }

func (m *MemoryTier) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", ErrUnavailable
	}
	return m.values[key], nil
}

func (m *MemoryTier) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	m.values[key] = value
	return nil
}

// SetFail makes every later call return ErrUnavailable while fail is true.
func (m *MemoryTier) SetFail(fail bool) {
	m.mu.Lock()
	m.fail = fail
	m.mu.Unlock()
}
