package engine

import (
	"strings"

	parser "github.com/gpustack/gguf-parser-go"
)

// Metadata summarizes the GGUF header of an artifact.
type Metadata struct {
	Architecture string
	Parameters   string
	FileType     string
	Size         string
}

// Inspect parses the GGUF header of path. It fails for files that are not
// valid GGUF, which lets a load be rejected before native memory is touched.
func Inspect(path string) (Metadata, error) {
	f, err := parser.ParseGGUFFile(path)
	if err != nil {
		return Metadata{}, err
	}
	md := f.Metadata()
	return Metadata{
		Architecture: strings.TrimSpace(md.Architecture),
		Parameters:   md.Parameters.String(),
		FileType:     strings.TrimSpace(md.FileType.String()),
		Size:         md.Size.String(),
	}, nil
}
