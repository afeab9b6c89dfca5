// Package catalog holds the static allow-list of downloadable models and the
// model classes they belong to.
package catalog

import (
	"fmt"
	"strings"

	"llmserver/pkg/types"
)

// Class identifies a model family served by a dedicated memory manager.
type Class string

const (
	Chat      Class = "chat"
	Embedding Class = "embedding"
)

// Classes lists every supported class in display order.
var Classes = []Class{Chat, Embedding}

// Dir returns the subdirectory of the models directory holding artifacts of this class.
func (c Class) Dir() string {
	if c == Embedding {
		return "embed"
	}
	return "chat"
}

// ListingPath is the endpoint clients use to discover models of this class.
func (c Class) ListingPath() string {
	if c == Embedding {
		return "/v1/models/embeddings"
	}
	return "/v1/models/chat"
}

// Title returns the capitalized class name used in user-facing messages.
func (c Class) Title() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseClass maps a model_type value to a Class.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat":
		return Chat, nil
	case "embedding", "embed", "embeddings":
		return Embedding, nil
	default:
		return "", fmt.Errorf("invalid model_type %q: must be 'chat' or 'embedding'", s)
	}
}

// Entry is one allow-listed repository and the single GGUF file fetched from it.
type Entry struct {
	Repository string
	Filename   string
	Class      Class
}

// DownloadURL returns the Hugging Face resolve URL of the artifact under endpoint.
func (e Entry) DownloadURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + "/" + e.Repository + "/resolve/main/" + e.Filename
}

// Info returns the public representation of the entry.
func (e Entry) Info() types.DownloadableModel {
	return types.DownloadableModel{Name: e.Repository, Repository: e.Repository, Filename: e.Filename}
}

var entries = []Entry{
	{Repository: "unsloth/Qwen3-4B-Instruct-2507-GGUF", Filename: "Qwen3-4B-Instruct-2507-Q4_K_M.gguf", Class: Chat},
	{Repository: "lmstudio-community/Qwen3-30B-A3B-Instruct-2507-GGUF", Filename: "Qwen3-30B-A3B-Instruct-2507-Q3_K_L.gguf", Class: Chat},
	{Repository: "Qwen/Qwen3-Embedding-4B-GGUF", Filename: "Qwen3-Embedding-4B-Q4_K_M.gguf", Class: Embedding},
	{Repository: "Qwen/Qwen3-Embedding-8B-GGUF", Filename: "Qwen3-Embedding-8B-Q4_K_M.gguf", Class: Embedding},
}

// Downloadable returns the allow-listed entries of a class in table order.
func Downloadable(c Class) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Class == c {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds the allow-listed entry for a repository id. Matching is exact.
func Lookup(repo string) (Entry, bool) {
	for _, e := range entries {
		if e.Repository == repo {
			return e, true
		}
	}
	return Entry{}, false
}

// ValidateRepository fails unless repo is allow-listed.
func ValidateRepository(repo string) error {
	if _, ok := Lookup(repo); ok {
		return nil
	}
	return invalidRepositoryError{repo: repo}
}

func allowedRepositories() []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Repository)
	}
	return out
}
