package manager

import "github.com/rs/zerolog"

// Event represents a manager lifecycle event.
// Minimal and stable: name, class and artifact path plus optional fields.
type Event struct {
	Name   string
	Class  string
	Path   string
	Fields map[string]any
}

// Event names.
const (
	EventLoadStart   = "load_start"
	EventLoadDone    = "load_done"
	EventLoadError   = "load_error"
	EventUnloadStart = "unload_start"
	EventUnloadDone  = "unload_done"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher writes events to a zerolog logger at debug level.
type LogPublisher struct{ Logger zerolog.Logger }

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Debug().Str("event", e.Name).Str("class", e.Class).Str("path", e.Path)
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("model event")
}
