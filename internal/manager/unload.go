package manager

import (
	"runtime"
	"runtime/debug"
)

// Unload removes path from the cache, waits for in-flight users to release
// it, closes the handle and forces a reclamation pass. It reports false when
// path was not loaded.
func (m *Manager) Unload(path string) bool {
	m.mu.Lock()
	e := m.entries[path]
	if e == nil {
		m.mu.Unlock()
		return false
	}
	delete(m.entries, path)
	m.mu.Unlock()

	m.publish(Event{Name: EventUnloadStart, Path: path})
	m.release(e)
	reclaim()
	m.publish(Event{Name: EventUnloadDone, Path: path})
	m.log.Info().Str("path", path).Msg("model unloaded")
	return true
}

// Close unloads every resident handle. Later loads fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	entries := make([]*entry, 0, len(m.entries))
	for p, e := range m.entries {
		entries = append(entries, e)
		delete(m.entries, p)
	}
	m.mu.Unlock()

	for _, e := range entries {
		m.release(e)
	}
	if len(entries) > 0 {
		reclaim()
	}
	return nil
}

// release blocks until no request holds e, then frees the native handle.
func (m *Manager) release(e *entry) {
	e.users.Lock()
	defer e.users.Unlock()
	if err := e.model.Close(); err != nil {
		m.log.Warn().Err(err).Str("path", e.path).Msg("close model")
	}
	unloadsTotal.WithLabelValues(string(m.class)).Inc()
	modelsLoaded.WithLabelValues(string(m.class)).Dec()
}

// reclaim forces a collection and returns freed memory to the OS. Native
// handles are not reclaimed by ordinary finalization.
func reclaim() {
	runtime.GC()
	debug.FreeOSMemory()
}
