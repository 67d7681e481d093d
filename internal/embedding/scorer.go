package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Match is the best-scoring stored question for a query.
// Index is -1 when there was nothing to compare against.
type Match struct {
	Index int
	Score float64
}

// Scorer finds the stored question closest to a query.
type Scorer interface {
	Best(ctx context.Context, query string, questions []string) (Match, error)
}

// argmax returns the first index holding the maximum score.
func argmax(scores []float64) Match {
	best := Match{Index: -1}
	for i, s := range scores {
		if best.Index == -1 || s > best.Score {
			best = Match{Index: i, Score: s}
		}
	}
	return best
}

// TFIDFScorer fits a fresh TF-IDF vocabulary over the questions and the
// query on every call.
type TFIDFScorer struct{}

func (TFIDFScorer) Best(_ context.Context, query string, questions []string) (Match, error) {
	if len(questions) == 0 {
		return Match{Index: -1}, nil
	}
	docs := make([]string, 0, len(questions)+1)
	docs = append(docs, questions...)
	docs = append(docs, query)

	vectors := fitTFIDF(docs)
	q := vectors[len(vectors)-1]
	scores := make([]float64, len(questions))
	for i := range questions {
		scores[i] = dot(q, vectors[i])
	}
	return argmax(scores), nil
}

// EmbeddingScorer compares dense embeddings. Question vectors are cached by
// text, so after a memory mutation only the new questions are embedded.
type EmbeddingScorer struct {
	embedder Embedder
	cache    *lru.Cache[string, Vector]
}

// NewEmbeddingScorer creates a scorer caching up to cacheSize question vectors.
func NewEmbeddingScorer(e Embedder, cacheSize int) (*EmbeddingScorer, error) {
	if e == nil {
		return nil, fmt.Errorf("embedding scorer requires an embedder")
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, Vector](cacheSize)
	if err != nil {
		return nil, err
	}
	return &EmbeddingScorer{embedder: e, cache: cache}, nil
}

func (s *EmbeddingScorer) Best(ctx context.Context, query string, questions []string) (Match, error) {
	if len(questions) == 0 {
		return Match{Index: -1}, nil
	}
	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Match{Index: -1}, fmt.Errorf("embed query: %w", err)
	}
	scores := make([]float64, len(questions))
	for i, question := range questions {
		v, err := s.vector(ctx, question)
		if err != nil {
			return Match{Index: -1}, fmt.Errorf("embed question %d: %w", i, err)
		}
		scores[i] = CosineSimilarity(qv, v)
	}
	return argmax(scores), nil
}

func (s *EmbeddingScorer) vector(ctx context.Context, text string) (Vector, error) {
	if v, ok := s.cache.Get(text); ok {
		return v, nil
	}
	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(text, v)
	return v, nil
}

// Threshold returns the minimum score a match must exceed for a store of
// n entries.
type Threshold func(n int) float64

// FixedThreshold ignores the store size.
func FixedThreshold(v float64) Threshold {
	return func(int) float64 { return v }
}

// AdaptiveThreshold is lenient while the memory is small and stricter as it
// grows: 0.55 below 10 entries, 0.60 below 50, 0.65 otherwise.
func AdaptiveThreshold() Threshold {
	return func(n int) float64 {
		switch {
		case n < 10:
			return 0.55
		case n < 50:
			return 0.60
		default:
			return 0.65
		}
	}
}
