// Package registry answers which models exist locally and in what state by
// combining a scan of the models directory with in-flight downloads.
package registry

import (
	"path/filepath"

	"llmserver/internal/catalog"
	"llmserver/internal/common/fsutil"
	"llmserver/internal/download"
	"llmserver/pkg/types"
)

// downloadingSize is reported in place of a size for in-flight artifacts.
const downloadingSize = "Downloading..."

// InFlight exposes the live download table.
type InFlight interface {
	Active() []download.Record
}

// Registry resolves model names against <root>/chat and <root>/embed.
type Registry struct {
	root      string
	downloads InFlight
}

// New returns a Registry rooted at dir. A leading '~' is expanded. downloads may be nil.
func New(dir string, downloads InFlight) (*Registry, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	return &Registry{root: abs, downloads: downloads}, nil
}

// Root is the absolute models directory.
func (r *Registry) Root() string { return r.root }

// ClassDir is the absolute directory holding artifacts of class c.
func (r *Registry) ClassDir(c catalog.Class) string { return filepath.Join(r.root, c.Dir()) }

// EnsureLayout creates the models directory and its class subdirectories.
func (r *Registry) EnsureLayout() error {
	for _, c := range catalog.Classes {
		if err := fsutil.EnsureDir(r.ClassDir(c)); err != nil {
			return err
		}
	}
	return nil
}

// ListAvailable lists completed artifacts of class c followed by in-flight
// downloads whose name is not already present. A completed file always wins
// over a stale download record with the same name.
func (r *Registry) ListAvailable(c catalog.Class) ([]types.ModelInfo, error) {
	arts, err := scanDir(r.ClassDir(c))
	if err != nil {
		return nil, err
	}
	out := make([]types.ModelInfo, 0, len(arts))
	seen := make(map[string]bool, len(arts))
	for _, a := range arts {
		rel, err := filepath.Rel(r.root, a.path)
		if err != nil {
			rel = a.path
		}
		out = append(out, types.ModelInfo{
			Name:   a.name,
			Path:   filepath.ToSlash(rel),
			Size:   formatSize(a.size),
			Status: types.StatusReadyToUse,
		})
		seen[a.name] = true
	}
	if r.downloads == nil {
		return out, nil
	}
	for _, rec := range r.downloads.Active() {
		if rec.Class != c {
			continue
		}
		name := fsutil.Stem(rec.Filename)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, types.ModelInfo{
			Name:   name,
			Path:   rec.Filename,
			Size:   downloadingSize,
			Status: types.StatusDownloading,
		})
	}
	return out, nil
}

// Resolve returns the absolute path of the artifact of class c whose stem is
// exactly name. When several files share that stem, the one listed by
// ListAvailable is returned. Missing models and unreadable directories report
// false.
func (r *Registry) Resolve(name string, c catalog.Class) (string, bool) {
	if name == "" {
		return "", false
	}
	arts, err := scanDir(r.ClassDir(c))
	if err != nil {
		return "", false
	}
	for _, a := range arts {
		if a.name == name {
			return a.path, true
		}
	}
	return "", false
}

// ListDownloadable dumps the static catalog for class c.
func (r *Registry) ListDownloadable(c catalog.Class) []types.DownloadableModel {
	entries := catalog.Downloadable(c)
	out := make([]types.DownloadableModel, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Info())
	}
	return out
}
