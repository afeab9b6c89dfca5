package manager

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"llmserver/internal/catalog"
	"llmserver/internal/engine"
)

// Manager is the single authority over which artifacts of one class are
// resident. At most one handle exists per path.
type Manager struct {
	class        catalog.Class
	loader       engine.Loader
	log          zerolog.Logger
	publisher    EventPublisher
	acquireTries int

	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool

	// loads deduplicates concurrent construction per path.
	loads singleflight.Group
}

// New returns a Manager for class c using loader to construct handles.
func New(c catalog.Class, loader engine.Loader, log zerolog.Logger) *Manager {
	return NewWithConfig(ManagerConfig{Class: c, Loader: loader, Logger: log})
}

// Class reports the model class this manager serves.
func (m *Manager) Class() catalog.Class { return m.class }

// SetEventPublisher installs a publisher; nil restores the no-op default.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	e.Class = string(m.class)
	p.Publish(e)
}

// IsLoaded reports cache membership without side effects.
func (m *Manager) IsLoaded(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[path]
	return ok
}

// ListLoaded returns a sorted snapshot of resident paths.
func (m *Manager) ListLoaded() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.entries))
	for p := range m.entries {
		out = append(out, p)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}
