package cli

import (
	"log/slog"
	"math/rand/v2"

	"github.com/rcliao/monchatbot/internal/chat"
	"github.com/rcliao/monchatbot/internal/config"
	"github.com/rcliao/monchatbot/internal/embedding"
	"github.com/rcliao/monchatbot/internal/knowledge"
	"github.com/rcliao/monchatbot/internal/metrics"
	"github.com/rcliao/monchatbot/internal/store"
)

// newScorer returns the similarity scorer and threshold selected by cfg.
func newScorer(cfg *config.Config) (embedding.Scorer, embedding.Threshold, error) {
	threshold := embedding.FixedThreshold(cfg.Similarity.Threshold)
	if cfg.Similarity.Adaptive {
		threshold = embedding.AdaptiveThreshold()
	}
	if cfg.Similarity.Method != "embedding" {
		return embedding.TFIDFScorer{}, threshold, nil
	}

	e, err := embedding.New(embedding.ProviderConfig{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
		Timeout:  cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	scorer, err := embedding.NewEmbeddingScorer(e, cfg.Similarity.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	return scorer, threshold, nil
}

// newRouter wires the store, scorer and every configured knowledge source.
// Lookups are reported to m when it is non-nil.
func newRouter(cfg *config.Config, s store.Store, m *metrics.Metrics, logger *slog.Logger) (*chat.Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	scorer, threshold, err := newScorer(cfg)
	if err != nil {
		return nil, err
	}

	var observe knowledge.ObserveFunc
	if m != nil {
		observe = m.ObserveLookup
	}
	wrap := func(src knowledge.Source, cacheSize int) knowledge.Source {
		return knowledge.Observed(knowledge.NewCached(src, cacheSize), observe)
	}

	rc := chat.Config{
		Store:            s,
		Scorer:           scorer,
		Threshold:        threshold,
		Filter:           cfg.Router.Filter,
		Tone:             cfg.Router.Tone,
		MemorizeCommands: cfg.Router.MemorizeCommands,
		Logger:           logger,
	}
	if cfg.Router.Seed != 0 {
		rc.Rand = rand.New(rand.NewPCG(cfg.Router.Seed, cfg.Router.Seed))
	}

	if cfg.Wikipedia.Enabled {
		w := knowledge.NewWikipedia(knowledge.WikipediaConfig{
			BaseURL:   cfg.Wikipedia.BaseURL,
			Lang:      cfg.Wikipedia.Lang,
			Sentences: cfg.Wikipedia.Sentences,
			Timeout:   cfg.Wikipedia.Timeout,
		}, logger)
		rc.Wikipedia = wrap(w, cfg.Wikipedia.CacheSize)
	}

	if cfg.Google.Enabled() {
		g, err := knowledge.NewGoogle(knowledge.GoogleConfig{
			APIKey:        cfg.Google.APIKey,
			CX:            cfg.Google.CX,
			Endpoint:      cfg.Google.Endpoint,
			Results:       cfg.Google.Results,
			Timeout:       cfg.Google.Timeout,
			RatePerMinute: cfg.Google.RatePerMinute,
		}, logger)
		if err != nil {
			return nil, err
		}
		rc.Google = wrap(g, cfg.Google.CacheSize)
	} else {
		logger.Info("google search disabled", "reason", "google.api_key and google.cx not set")
	}

	if cfg.Generative.Enabled {
		g, err := knowledge.NewGenerative(knowledge.GenerativeConfig{
			BaseURL:     cfg.Generative.BaseURL,
			APIKey:      cfg.Generative.APIKey,
			Model:       cfg.Generative.Model,
			Personality: cfg.Generative.Personality,
			MaxTokens:   cfg.Generative.MaxTokens,
			Temperature: cfg.Generative.Temperature,
			Timeout:     cfg.Generative.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		rc.Generative = knowledge.Observed(g, observe)
		if cfg.Generative.Math {
			rc.Math = wrap(knowledge.NewMathSolver(g), knowledge.DefaultCacheSize)
		}
	}

	return chat.New(rc)
}
