package inference

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmserver/pkg/types"
)

// fakeEmbedder returns [len(text), callIndex] and tokenizes on whitespace.
type fakeEmbedder struct {
	embedCalls []string
	tokErr     error
	embedErr   error
}

func (f *fakeEmbedder) Embed(text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.embedCalls = append(f.embedCalls, text)
	return []float32{float32(len(text)), float32(len(f.embedCalls) - 1)}, nil
}

func (f *fakeEmbedder) Tokenize(text string) ([]int32, error) {
	if f.tokErr != nil {
		return nil, f.tokErr
	}
	return make([]int32, len(strings.Fields(text))), nil
}

func (f *fakeEmbedder) Close() error { return nil }

func TestNormalizeInput(t *testing.T) {
	assert.Equal(t, []string{"a"}, NormalizeInput(types.EmbeddingInput{"a"}))
	assert.Nil(t, NormalizeInput(nil))
	assert.Equal(t, []string{}, NormalizeInput(types.EmbeddingInput{}))
}

func TestGenerateEmbeddings_OneCallPerInputInOrder(t *testing.T) {
	m := &fakeEmbedder{}
	vecs, err := GenerateEmbeddings(m, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []string{"a", "bb", "ccc"}, m.embedCalls)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
		assert.Equal(t, float32(i), v[1])
	}
}

func TestGenerateEmbeddings_BatchSizes(t *testing.T) {
	for _, n := range []int{0, 1, 50} {
		texts := make([]string, n)
		for i := range texts {
			texts[i] = strings.Repeat("x", i+1)
		}
		m := &fakeEmbedder{}
		vecs, err := GenerateEmbeddings(m, texts)
		require.NoError(t, err)
		require.Len(t, vecs, n)
		assert.Len(t, m.embedCalls, n)
		for i, v := range vecs {
			assert.Equal(t, float32(i+1), v[0], "order preserved at %d", i)
		}
	}
}

func TestGenerateEmbeddings_DuplicatesAreNotCollapsed(t *testing.T) {
	m := &fakeEmbedder{}
	vecs, err := GenerateEmbeddings(m, []string{"same", "same"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Len(t, m.embedCalls, 2)
}

func TestGenerateEmbeddings_Error(t *testing.T) {
	boom := errors.New("native embed failed")
	_, err := GenerateEmbeddings(&fakeEmbedder{embedErr: boom}, []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "native embed failed", "runtime errors reach the caller without a prefix")
}

func TestCountTokens(t *testing.T) {
	m := &fakeEmbedder{}
	n, err := CountTokens(m, []string{"one two", "three", "four five six"})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	boom := errors.New("tokenizer failed")
	_, err = CountTokens(&fakeEmbedder{tokErr: boom}, []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "tokenizer failed")
}
