// Package retrieval answers "which stored chunks are closest to this
// question" with an exact L2 nearest-neighbour scan over chunk embeddings
// produced through the embeddings endpoint.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultK is the number of chunks returned when k is not positive.
const DefaultK = 3

// Hit is one search result.
type Hit struct {
	Index    int
	Distance float64
	Text     string
}

// Embedder turns a question into a vector. *client.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Index holds one document's chunk vectors and texts, row-aligned.
type Index struct {
	dim     int
	vectors [][]float64
	chunks  []string
}

// NewIndex builds an index from row-aligned vectors and chunk texts.
func NewIndex(vectors [][]float32, chunks []string) (*Index, error) {
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("have %d embeddings for %d chunks", len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("zero-length embedding")
	}
	ix := &Index{dim: dim, vectors: make([][]float64, len(vectors)), chunks: append([]string(nil), chunks...)}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim)
		}
		ix.vectors[i] = widen(v)
	}
	return ix, nil
}

// EmbeddingsFile and ChunksFile name the per-document files under <dir>/<doc>/.
func EmbeddingsFile(dir, doc string) string {
	return filepath.Join(dir, doc, doc+"_chunk_embeddings.json")
}

func ChunksFile(dir, doc string) string {
	return filepath.Join(dir, doc, doc+"_chunks.json")
}

// Load reads a document's embeddings and chunk files from dir.
func Load(dir, doc string) (*Index, error) {
	var vectors [][]float32
	if err := readJSON(EmbeddingsFile(dir, doc), &vectors); err != nil {
		return nil, err
	}
	var chunks []string
	if err := readJSON(ChunksFile(dir, doc), &chunks); err != nil {
		return nil, err
	}
	ix, err := NewIndex(vectors, chunks)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc, err)
	}
	return ix, nil
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Len is the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Dim is the embedding dimension.
func (ix *Index) Dim() int { return ix.dim }

// Search returns the k chunks closest to query by Euclidean distance,
// nearest first. Ties keep index order. k is clamped to the index size.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), ix.dim)
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}
	q := widen(query)
	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Index: i, Distance: floats.Distance(q, v, 2), Text: ix.chunks[i]}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	return hits[:k], nil
}

// Relevant embeds question with model and returns the texts of the k closest chunks.
func (ix *Index) Relevant(ctx context.Context, e Embedder, model, question string, k int) ([]string, error) {
	q, err := e.Embed(ctx, model, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits, err := ix.Search(q, k)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Text
	}
	return out, nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
