// Package config loads the chatbot configuration from a YAML file and
// MONCHATBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Memory     MemoryConfig     `yaml:"memory" mapstructure:"memory"`
	Similarity SimilarityConfig `yaml:"similarity" mapstructure:"similarity"`
	Embedding  EmbeddingConfig  `yaml:"embedding" mapstructure:"embedding"`
	Router     RouterConfig     `yaml:"router" mapstructure:"router"`
	Wikipedia  WikipediaConfig  `yaml:"wikipedia" mapstructure:"wikipedia"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Generative GenerativeConfig `yaml:"generative" mapstructure:"generative"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type MemoryConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"`
	MaxSize int    `yaml:"max_size" mapstructure:"max_size"`
}

type SimilarityConfig struct {
	// Method is "tfidf" or "embedding".
	Method    string  `yaml:"method" mapstructure:"method"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Adaptive  bool    `yaml:"adaptive" mapstructure:"adaptive"`
	CacheSize int     `yaml:"cache_size" mapstructure:"cache_size"`
}

type EmbeddingConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"`
	Model    string        `yaml:"model" mapstructure:"model"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type RouterConfig struct {
	Tone             bool `yaml:"tone" mapstructure:"tone"`
	Filter           bool `yaml:"filter" mapstructure:"filter"`
	MemorizeCommands bool `yaml:"memorize_commands" mapstructure:"memorize_commands"`
	// Seed makes random replies reproducible; 0 seeds from the runtime.
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

type WikipediaConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Lang      string        `yaml:"lang" mapstructure:"lang"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Sentences int           `yaml:"sentences" mapstructure:"sentences"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"`
}

type GoogleConfig struct {
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	CX            string        `yaml:"cx" mapstructure:"cx"`
	Endpoint      string        `yaml:"endpoint" mapstructure:"endpoint"`
	Results       int           `yaml:"results" mapstructure:"results"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	CacheSize     int           `yaml:"cache_size" mapstructure:"cache_size"`
}

// Enabled reports whether both credentials are set.
func (g GoogleConfig) Enabled() bool {
	return g.APIKey != "" && g.CX != ""
}

type GenerativeConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Personality string        `yaml:"personality" mapstructure:"personality"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Math routes arithmetic messages to the model.
	Math bool `yaml:"math" mapstructure:"math"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ShutdownTimeout: 10 * time.Second,
		},
		Memory: MemoryConfig{
			Backend: "json",
			Path:    "MémoireDuChatbot.json",
			MaxSize: 100,
		},
		Similarity: SimilarityConfig{
			Method:    "tfidf",
			Threshold: 0.6,
			CacheSize: 256,
		},
		Embedding: EmbeddingConfig{
			Timeout: 30 * time.Second,
		},
		Router: RouterConfig{
			Tone:   true,
			Filter: true,
		},
		Wikipedia: WikipediaConfig{
			Enabled:   true,
			Lang:      "fr",
			Sentences: 2,
			Timeout:   5 * time.Second,
			CacheSize: 128,
		},
		Google: GoogleConfig{
			Results:       3,
			Timeout:       5 * time.Second,
			RatePerMinute: 60,
			CacheSize:     128,
		},
		Generative: GenerativeConfig{
			BaseURL:     "https://api.mistral.ai/v1",
			APIKey:      "$MISTRAL_API_KEY",
			Model:       "mistral-small-latest",
			Personality: "assistant",
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     20 * time.Second,
			Math:        true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)

	v.SetDefault("memory.backend", c.Memory.Backend)
	v.SetDefault("memory.path", c.Memory.Path)
	v.SetDefault("memory.max_size", c.Memory.MaxSize)

	v.SetDefault("similarity.method", c.Similarity.Method)
	v.SetDefault("similarity.threshold", c.Similarity.Threshold)
	v.SetDefault("similarity.adaptive", c.Similarity.Adaptive)
	v.SetDefault("similarity.cache_size", c.Similarity.CacheSize)

	v.SetDefault("embedding.provider", c.Embedding.Provider)
	v.SetDefault("embedding.model", c.Embedding.Model)
	v.SetDefault("embedding.base_url", c.Embedding.BaseURL)
	v.SetDefault("embedding.api_key", c.Embedding.APIKey)
	v.SetDefault("embedding.timeout", c.Embedding.Timeout)

	v.SetDefault("router.tone", c.Router.Tone)
	v.SetDefault("router.filter", c.Router.Filter)
	v.SetDefault("router.memorize_commands", c.Router.MemorizeCommands)
	v.SetDefault("router.seed", c.Router.Seed)

	v.SetDefault("wikipedia.enabled", c.Wikipedia.Enabled)
	v.SetDefault("wikipedia.lang", c.Wikipedia.Lang)
	v.SetDefault("wikipedia.base_url", c.Wikipedia.BaseURL)
	v.SetDefault("wikipedia.sentences", c.Wikipedia.Sentences)
	v.SetDefault("wikipedia.timeout", c.Wikipedia.Timeout)
	v.SetDefault("wikipedia.cache_size", c.Wikipedia.CacheSize)

	v.SetDefault("google.api_key", c.Google.APIKey)
	v.SetDefault("google.cx", c.Google.CX)
	v.SetDefault("google.endpoint", c.Google.Endpoint)
	v.SetDefault("google.results", c.Google.Results)
	v.SetDefault("google.timeout", c.Google.Timeout)
	v.SetDefault("google.rate_per_minute", c.Google.RatePerMinute)
	v.SetDefault("google.cache_size", c.Google.CacheSize)

	v.SetDefault("generative.enabled", c.Generative.Enabled)
	v.SetDefault("generative.base_url", c.Generative.BaseURL)
	v.SetDefault("generative.api_key", c.Generative.APIKey)
	v.SetDefault("generative.model", c.Generative.Model)
	v.SetDefault("generative.personality", c.Generative.Personality)
	v.SetDefault("generative.max_tokens", c.Generative.MaxTokens)
	v.SetDefault("generative.temperature", c.Generative.Temperature)
	v.SetDefault("generative.timeout", c.Generative.Timeout)
	v.SetDefault("generative.math", c.Generative.Math)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

// expandEnv replaces $NAME references with the environment value. Unset
// variables expand to the empty string.
func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(strings.TrimPrefix(match, "$"))
	})
}

// Load reads the configuration. An empty path searches ./monchatbot.yaml;
// a missing file leaves the defaults in place. MONCHATBOT_SECTION_KEY
// environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("monchatbot")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MONCHATBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Embedding.APIKey = expandEnv(cfg.Embedding.APIKey)
	cfg.Google.APIKey = expandEnv(cfg.Google.APIKey)
	cfg.Google.CX = expandEnv(cfg.Google.CX)
	cfg.Generative.APIKey = expandEnv(cfg.Generative.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Memory.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("config: memory.backend %q must be json or sqlite", c.Memory.Backend)
	}
	if c.Memory.Path == "" {
		return fmt.Errorf("config: memory.path is required")
	}
	if c.Memory.MaxSize < 1 {
		return fmt.Errorf("config: memory.max_size must be positive, got %d", c.Memory.MaxSize)
	}

	switch c.Similarity.Method {
	case "tfidf":
	case "embedding":
		if c.Embedding.Provider == "" {
			return fmt.Errorf("config: similarity.method embedding requires embedding.provider")
		}
	default:
		return fmt.Errorf("config: similarity.method %q must be tfidf or embedding", c.Similarity.Method)
	}
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold >= 1 {
		return fmt.Errorf("config: similarity.threshold %.2f must be in [0, 1)", c.Similarity.Threshold)
	}

	if c.Generative.Enabled {
		if c.Generative.Model == "" {
			return fmt.Errorf("config: generative.model is required when generative is enabled")
		}
		switch c.Generative.Personality {
		case "", "assistant", "humor", "pro":
		default:
			return fmt.Errorf("config: generative.personality %q must be assistant, humor or pro", c.Generative.Personality)
		}
	}
	if (c.Google.APIKey == "") != (c.Google.CX == "") {
		return fmt.Errorf("config: google.api_key and google.cx must be set together")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q must be text or json", c.Log.Format)
	}
	return nil
}
