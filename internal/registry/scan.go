package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"

	"llmserver/internal/common/fsutil"
)

const artifactExt = ".gguf"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// artifact is a completed model file found on disk.
type artifact struct {
	name string
	path string
	size int64
}

// scanDir walks dir recursively for *.gguf files (case-insensitive) in lexical
// order. Names are unique: when several files share a stem, the first one
// walked wins and the rest are ignored. A missing dir yields no artifacts.
func scanDir(dir string) ([]artifact, error) {
	var out []artifact
	seen := make(map[string]bool)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), artifactExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		name := fsutil.Stem(p)
		if seen[name] {
			return nil
		}
		seen[name] = true
		out = append(out, artifact{name: name, path: p, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// formatSize renders a byte count with two decimals in base-1024 units, e.g. "8.53 GB".
func formatSize(n int64) string {
	return units.CustomSize("%.2f %s", float64(n), 1024.0, sizeUnits)
}
