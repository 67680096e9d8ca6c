package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func TestBestMatchPicksHighestCorrelation(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"lost blue backpack":  {1, 0},
		"found a backpack":    {0.9, 0.1},
		"found car keys":      {0.2, 0.8},
		"found a water flask": {0.3, 0.3},
	}}
	matcher := NewSemanticMatcher(embedder, SemanticThreshold)

	idx, score, err := matcher.BestMatch(context.Background(),
		"lost blue backpack",
		[]string{"found car keys", "found a backpack", "found a water flask"})

	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.9, score, 1e-6)
	// One batch call for candidates, one singleton call for the query.
	assert.Equal(t, 2, embedder.calls)
}

func TestBestMatchThresholdIsStrict(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"query":     {1, 0},
		"candidate": {0.5, 0},
	}}
	matcher := NewSemanticMatcher(embedder, SemanticThreshold)

	idx, score, err := matcher.BestMatch(context.Background(), "query", []string{"candidate"})

	assert.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.InDelta(t, 0.5, score, 1e-6)
}

func TestBestMatchNoCandidates(t *testing.T) {
	embedder := &stubEmbedder{}
	matcher := NewSemanticMatcher(embedder, SemanticThreshold)

	idx, _, err := matcher.BestMatch(context.Background(), "query", nil)

	assert.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Zero(t, embedder.calls)
}

func TestBestMatchEmbedderError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("service down")}
	matcher := NewSemanticMatcher(embedder, SemanticThreshold)

	idx, _, err := matcher.BestMatch(context.Background(), "query", []string{"candidate"})

	assert.Error(t, err)
	assert.Equal(t, -1, idx)
}
