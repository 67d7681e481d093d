package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	e, err := New(ProviderConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Error("expected nil embedder when no provider configured")
	}
	if _, err := New(ProviderConfig{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Quelle est la capitale de l'été ? A 42")
	want := []string{"quelle", "est", "la", "capitale", "de", "été", "42"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTFIDFScorer_IdenticalScoresOne(t *testing.T) {
	questions := []string{
		"Quel temps fait-il à Paris ?",
		"Quelle est la capitale de la France ?",
		"Qui a écrit Les Misérables ?",
	}
	m, err := TFIDFScorer{}.Best(context.Background(), "Quelle est la capitale de la France ?", questions)
	if err != nil {
		t.Fatal(err)
	}
	if m.Index != 1 {
		t.Errorf("expected index 1, got %d", m.Index)
	}
	if math.Abs(m.Score-1.0) > 1e-9 {
		t.Errorf("expected score 1.0, got %f", m.Score)
	}
}

func TestTFIDFScorer_Unrelated(t *testing.T) {
	m, _ := TFIDFScorer{}.Best(context.Background(), "les chats dorment", []string{"quelle heure est-il"})
	if m.Index != 0 {
		t.Errorf("expected index 0, got %d", m.Index)
	}
	if m.Score != 0 {
		t.Errorf("expected score 0 for disjoint vocabularies, got %f", m.Score)
	}
}

func TestTFIDFScorer_TieGoesToFirst(t *testing.T) {
	m, _ := TFIDFScorer{}.Best(context.Background(), "bonjour le monde", []string{"bonjour le monde", "bonjour le monde"})
	if m.Index != 0 {
		t.Errorf("expected the first of tied entries, got %d", m.Index)
	}
}

func TestTFIDFScorer_Empty(t *testing.T) {
	m, err := TFIDFScorer{}.Best(context.Background(), "bonjour", nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Index != -1 {
		t.Errorf("expected -1, got %d", m.Index)
	}
}

type fakeEmbedder struct {
	vectors map[string]Vector
	calls   int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

func (f *fakeEmbedder) Dims() int { return 2 }

func TestEmbeddingScorer(t *testing.T) {
	fe := &fakeEmbedder{vectors: map[string]Vector{
		"salut":   {1, 0},
		"bonjour": {0.9, 0.1},
		"météo":   {0, 1},
	}}
	s, err := NewEmbeddingScorer(fe, 10)
	if err != nil {
		t.Fatal(err)
	}

	m, err := s.Best(context.Background(), "salut", []string{"météo", "bonjour"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Index != 1 {
		t.Errorf("expected index 1, got %d", m.Index)
	}
	if fe.calls != 3 {
		t.Errorf("expected 3 embed calls, got %d", fe.calls)
	}

	// Cached question vectors are reused; only the query is embedded again.
	s.Best(context.Background(), "salut", []string{"météo", "bonjour"})
	if fe.calls != 4 {
		t.Errorf("expected 4 embed calls after cache hit, got %d", fe.calls)
	}
}

func TestEmbeddingScorer_Error(t *testing.T) {
	s, _ := NewEmbeddingScorer(&fakeEmbedder{err: errors.New("down")}, 10)
	if _, err := s.Best(context.Background(), "a", []string{"b"}); err == nil {
		t.Error("expected error when the embedder fails")
	}
	if _, err := NewEmbeddingScorer(nil, 10); err == nil {
		t.Error("expected error for nil embedder")
	}
}

func TestThresholds(t *testing.T) {
	fixed := FixedThreshold(0.6)
	if fixed(0) != 0.6 || fixed(1000) != 0.6 {
		t.Error("fixed threshold must ignore store size")
	}

	adaptive := AdaptiveThreshold()
	cases := map[int]float64{0: 0.55, 9: 0.55, 10: 0.60, 49: 0.60, 50: 0.65, 100: 0.65}
	for n, want := range cases {
		if got := adaptive(n); got != want {
			t.Errorf("adaptive(%d) = %f, want %f", n, got, want)
		}
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{0.5, 0.5}}},
			"model":  "text-embedding-3-small",
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL, "key", "", 2, 5*time.Second)
	v, err := e.Embed(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v) != 2 || v[0] != 0.5 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": "all-minilm", "embeddings": [[1, 2, 3]]}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "all-minilm", 5*time.Second)
	if e.Dims() != 384 {
		t.Errorf("expected 384 dims, got %d", e.Dims())
	}
	v, err := e.Embed(context.Background(), "bonjour")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 3 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestOllamaEmbedderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "model \"absent\" not found"}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "absent", 5*time.Second)
	_, err := e.Embed(context.Background(), "bonjour")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
