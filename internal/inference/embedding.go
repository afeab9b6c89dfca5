package inference

import (
	"llmserver/internal/engine"
	"llmserver/pkg/types"
)

// NormalizeInput returns the request input as an ordered list of texts. An
// empty list stays empty and non-nil.
func NormalizeInput(in types.EmbeddingInput) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

// GenerateEmbeddings embeds each text with exactly one native call, in input
// order. The first failure aborts the batch and is returned as the runtime
// reported it.
func GenerateEmbeddings(model engine.EmbeddingModel, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := model.Embed(t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CountTokens sums the tokenized length of every text. Tokenization failures
// are returned instead of a partial count.
func CountTokens(model engine.EmbeddingModel, texts []string) (int, error) {
	total := 0
	for _, t := range texts {
		toks, err := model.Tokenize(t)
		if err != nil {
			return 0, err
		}
		total += len(toks)
	}
	return total, nil
}
