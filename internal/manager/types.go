package manager

import (
	"sync"
	"time"

	"llmserver/internal/engine"
)

// entry is a resident handle. Requests hold users for reading while they use
// the handle; Unload takes it for writing before closing the handle.
type entry struct {
	path     string
	model    engine.Model
	loadedAt time.Time
	users    sync.RWMutex
}
