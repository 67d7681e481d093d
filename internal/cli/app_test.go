package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/monchatbot/internal/chat"
	"github.com/rcliao/monchatbot/internal/config"
	"github.com/rcliao/monchatbot/internal/embedding"
	"github.com/rcliao/monchatbot/internal/metrics"
	"github.com/rcliao/monchatbot/internal/store"
)

func TestNewScorer(t *testing.T) {
	cfg := config.DefaultConfig()
	scorer, threshold, err := newScorer(cfg)
	require.NoError(t, err)
	assert.IsType(t, embedding.TFIDFScorer{}, scorer)
	assert.Equal(t, 0.6, threshold(500))

	cfg.Similarity.Adaptive = true
	_, threshold, err = newScorer(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.55, threshold(3))

	cfg.Similarity.Method = "embedding"
	cfg.Embedding.Provider = "ollama"
	scorer, _, err = newScorer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &embedding.EmbeddingScorer{}, scorer)

	cfg.Embedding.Provider = "word2vec"
	_, _, err = newScorer(cfg)
	assert.Error(t, err)
}

func TestNewRouterOffline(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Wikipedia.Enabled = false
	cfg.Router.Seed = 3

	s := store.NewJSONStore(store.Options{Path: filepath.Join(t.TempDir(), "memoire.json")}, nil)
	router, err := newRouter(cfg, s, metrics.New(), nil)
	require.NoError(t, err)

	reply := router.Respond(context.Background(), "Quel temps fait-il ?")
	assert.Equal(t, chat.StageLearned, reply.Stage)

	reply = router.Respond(context.Background(), "recherche sur google météo")
	assert.Equal(t, chat.StageCommand, reply.Stage)
	assert.Contains(t, reply.Text, "La recherche Google n'est pas configurée.")
}
