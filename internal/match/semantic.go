package match

import (
	"context"
)

// SemanticThreshold is the minimum correlation (exclusive) for the best
// candidate to count as a match.
const SemanticThreshold = 0.5

// Embedder turns a batch of texts into fixed-dimension vectors, preserving
// input order. Implementations are expected to be safe for concurrent use;
// one instance is built at startup and shared across requests.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type SemanticMatcher struct {
	embedder  Embedder
	threshold float64
}

func NewSemanticMatcher(embedder Embedder, threshold float64) *SemanticMatcher {
	return &SemanticMatcher{embedder: embedder, threshold: threshold}
}

// BestMatch embeds the candidates as one batch and the query as a singleton
// batch, scores each candidate by inner product with the query vector, and
// returns the index and score of the best candidate when its score strictly
// exceeds the threshold. Returns index -1 when there is no match or no
// candidates.
func (m *SemanticMatcher) BestMatch(ctx context.Context, query string, candidates []string) (int, float64, error) {
	if len(candidates) == 0 {
		return -1, 0, nil
	}

	bank, err := m.embedder.Embed(ctx, candidates)
	if err != nil {
		return -1, 0, err
	}

	queryVecs, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return -1, 0, err
	}
	queryVec := queryVecs[0]

	// Single query, so the correlation "matrix" is just one score per
	// candidate and a single argmax suffices.
	best := -1
	bestScore := 0.0
	for i, vec := range bank {
		score := innerProduct(queryVec, vec)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if bestScore > m.threshold {
		return best, bestScore, nil
	}
	return -1, bestScore, nil
}

func innerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
