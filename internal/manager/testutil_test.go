package manager

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"llmserver/internal/engine"
)

type fakeModel struct {
	path   string
	closed atomic.Bool
}

func (f *fakeModel) Close() error {
	f.closed.Store(true)
	return nil
}

// countingLoader records constructions per path and can be slowed down or failed.
type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
	fail  map[string]error
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: map[string]int{}, fail: map[string]error{}}
}

func (l *countingLoader) Load(path string) (engine.Model, error) {
	l.mu.Lock()
	l.calls[path]++
	err := l.fail[path]
	d := l.delay
	l.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
	if err != nil {
		return nil, err
	}
	return &fakeModel{path: path}, nil
}

func (l *countingLoader) Calls(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[path]
}

var errCorrupt = errors.New("corrupt file")
