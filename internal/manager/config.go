package manager

import (
	"github.com/rs/zerolog"

	"llmserver/internal/catalog"
	"llmserver/internal/engine"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultClass        = catalog.Chat
	defaultAcquireTries = 3
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Class     catalog.Class
	Loader    engine.Loader
	Logger    zerolog.Logger
	Publisher EventPublisher
	// AcquireTries bounds how often Acquire reloads a handle that was
	// unloaded between load and use.
	AcquireTries int
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		class:   cfg.Class,
		loader:  cfg.Loader,
		entries: make(map[string]*entry),
	}
	if m.class == "" {
		m.class = defaultClass
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	} else {
		m.publisher = noopPublisher{}
	}
	if cfg.AcquireTries <= 0 {
		m.acquireTries = defaultAcquireTries
	} else {
		m.acquireTries = cfg.AcquireTries
	}
	m.log = cfg.Logger.With().Str("component", "manager").Str("class", string(m.class)).Logger()
	return m
}
