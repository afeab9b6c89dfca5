package manager

import (
	"errors"
	"sync"
	"time"

	"llmserver/internal/engine"
)

// GetOrLoad returns the resident handle for path, constructing it on first
// use. Concurrent calls for the same path share one construction; different
// paths load independently. A failed load leaves the cache unchanged.
func (m *Manager) GetOrLoad(path string) (engine.Model, error) {
	e, err := m.ensure(path)
	if err != nil {
		return nil, err
	}
	return e.model, nil
}

// Acquire returns the handle for path together with a release func that must
// be called once the caller is done with it. Unload of the same path waits
// until every acquired handle has been released.
func (m *Manager) Acquire(path string) (engine.Model, func(), error) {
	for i := 0; i < m.acquireTries; i++ {
		m.mu.RLock()
		e := m.entries[path]
		if e != nil {
			// Unload removes the entry before taking users for writing, so
			// no writer can be pending while the entry is still mapped.
			e.users.RLock()
		}
		m.mu.RUnlock()
		if e == nil {
			if _, err := m.ensure(path); err != nil {
				return nil, nil, err
			}
			continue
		}
		inflightRequests.WithLabelValues(string(m.class)).Inc()
		var once sync.Once
		release := func() {
			once.Do(func() {
				inflightRequests.WithLabelValues(string(m.class)).Dec()
				e.users.RUnlock()
			})
		}
		return e.model, release, nil
	}
	return nil, nil, loadFailedError{path: path, err: errUnstable}
}

func (m *Manager) ensure(path string) (*entry, error) {
	m.mu.RLock()
	e := m.entries[path]
	m.mu.RUnlock()
	if e != nil {
		return e, nil
	}
	v, err, _ := m.loads.Do(path, func() (any, error) {
		m.mu.RLock()
		e := m.entries[path]
		closed := m.closed
		m.mu.RUnlock()
		if e != nil {
			return e, nil
		}
		if closed {
			return nil, ErrClosed
		}
		return m.load(path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// load constructs a handle and inserts it. Only called from within the
// singleflight group for path.
func (m *Manager) load(path string) (*entry, error) {
	class := string(m.class)
	m.publish(Event{Name: EventLoadStart, Path: path})
	m.log.Info().Str("path", path).Msg("loading model")
	start := time.Now()

	mdl, err := m.loader.Load(path)
	if err == nil && mdl == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		loadsTotal.WithLabelValues(class, "error").Inc()
		m.publish(Event{Name: EventLoadError, Path: path, Fields: map[string]any{"error": err.Error()}})
		m.log.Error().Err(err).Str("path", path).Msg("model load failed")
		return nil, loadFailedError{path: path, err: err}
	}

	e := &entry{path: path, model: mdl, loadedAt: time.Now()}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = mdl.Close()
		return nil, ErrClosed
	}
	m.entries[path] = e
	m.mu.Unlock()

	dur := time.Since(start)
	loadsTotal.WithLabelValues(class, "success").Inc()
	loadDuration.WithLabelValues(class).Observe(dur.Seconds())
	modelsLoaded.WithLabelValues(class).Inc()
	m.publish(Event{Name: EventLoadDone, Path: path, Fields: map[string]any{"dur_ms": dur.Milliseconds()}})
	m.log.Info().Str("path", path).Dur("dur", dur).Msg("model loaded")
	return e, nil
}
