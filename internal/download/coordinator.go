// Package download fetches allow-listed model artifacts in the background and
// tracks in-flight transfers so listings can report them.
package download

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmserver/internal/catalog"
	"llmserver/pkg/types"
)

const defaultMaxConcurrent = 2

// Record marks an artifact as currently being fetched. Records exist from
// acceptance until the transfer finishes, successfully or not.
type Record struct {
	Filename   string
	Repository string
	Class      catalog.Class
	Status     string
	StartedAt  time.Time
}

// Fetcher transfers one artifact into destDir and returns the final file path.
// Implementations must not leave a file with the final name unless the
// transfer completed.
type Fetcher interface {
	Fetch(ctx context.Context, e catalog.Entry, destDir string) (string, error)
}

// Config configures a Coordinator.
type Config struct {
	// ModelsDir is the root holding the per-class subdirectories.
	ModelsDir string
	// MaxConcurrent bounds simultaneous transfers. Defaults to 2.
	MaxConcurrent int
	Fetcher       Fetcher
	Logger        zerolog.Logger
}

// Coordinator owns the in-flight download table.
type Coordinator struct {
	mu      sync.Mutex
	records map[string]Record

	modelsDir string
	fetcher   Fetcher
	log       zerolog.Logger

	// tokens restricts transfer concurrency.
	tokens chan struct{}
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Coordinator. A nil Fetcher is not allowed.
func New(cfg Config) *Coordinator {
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = defaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		records:   make(map[string]Record),
		modelsDir: cfg.ModelsDir,
		fetcher:   cfg.Fetcher,
		log:       cfg.Logger.With().Str("component", "download").Logger(),
		tokens:    make(chan struct{}, n),
		ctx:       ctx,
		cancel:    cancel,
	}
	for i := 0; i < n; i++ {
		c.tokens <- struct{}{}
	}
	return c
}

// ValidateRepository fails unless repo is allow-listed.
func (c *Coordinator) ValidateRepository(repo string) error {
	return catalog.ValidateRepository(repo)
}

// Start accepts a download of repo and returns immediately. The record is
// visible to Active before the transfer goroutine is dispatched. Starting a
// repository that is already in flight returns the existing record.
func (c *Coordinator) Start(repo string) (Record, error) {
	if err := catalog.ValidateRepository(repo); err != nil {
		return Record{}, err
	}
	entry, _ := catalog.Lookup(repo)
	dest := filepath.Join(c.modelsDir, entry.Class.Dir())

	c.mu.Lock()
	if rec, ok := c.records[entry.Filename]; ok {
		c.mu.Unlock()
		return rec, nil
	}
	rec := Record{
		Filename:   entry.Filename,
		Repository: entry.Repository,
		Class:      entry.Class,
		Status:     types.StatusDownloading,
		StartedAt:  time.Now(),
	}
	c.records[entry.Filename] = rec
	c.wg.Add(1)
	c.mu.Unlock()

	downloadsInflight.WithLabelValues(string(entry.Class)).Inc()
	c.log.Info().Str("repository", repo).Str("file", entry.Filename).Str("dest", dest).Msg("download accepted")
	go c.run(entry, dest)
	return rec, nil
}

func (c *Coordinator) run(entry catalog.Entry, dest string) {
	defer c.wg.Done()
	select {
	case <-c.tokens:
	case <-c.ctx.Done():
		c.finish(entry, "", c.ctx.Err(), 0)
		return
	}
	defer func() { c.tokens <- struct{}{} }()

	start := time.Now()
	path, err := c.fetcher.Fetch(c.ctx, entry, dest)
	c.finish(entry, path, err, time.Since(start))
}

// finish clears the record regardless of outcome. Failures are logged and
// never retried.
func (c *Coordinator) finish(entry catalog.Entry, path string, err error, dur time.Duration) {
	c.mu.Lock()
	delete(c.records, entry.Filename)
	c.mu.Unlock()

	class := string(entry.Class)
	downloadsInflight.WithLabelValues(class).Dec()
	if err != nil {
		downloadsTotal.WithLabelValues(class, "error").Inc()
		c.log.Error().Err(err).Str("repository", entry.Repository).Str("file", entry.Filename).Msg("download failed")
		return
	}
	downloadsTotal.WithLabelValues(class, "success").Inc()
	downloadDuration.WithLabelValues(class).Observe(dur.Seconds())
	c.log.Info().Str("repository", entry.Repository).Str("path", path).Dur("dur", dur).Msg("download complete")
}

// Active returns a snapshot of in-flight records ordered by filename.
func (c *Coordinator) Active() []Record {
	c.mu.Lock()
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

// Wait blocks until every accepted transfer has finished.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Shutdown cancels in-flight transfers and waits for workers to exit or ctx to expire.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
