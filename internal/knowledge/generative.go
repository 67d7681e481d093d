package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Personalities shape how the generative model is prompted.
const (
	PersonalityAssistant = "assistant"
	PersonalityHumor     = "humor"
	PersonalityPro       = "pro"
)

const frenchPersona = "Tu es un assistant utile et précis qui répond uniquement en français."

// GenerativeConfig configures the OpenAI-compatible completion client.
type GenerativeConfig struct {
	// BaseURL points at any OpenAI-compatible API (OpenAI, Mistral, Ollama, vLLM).
	BaseURL     string
	APIKey      string
	Model       string
	Personality string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Generative completes prompts with a chat model.
type Generative struct {
	client      *openai.Client
	model       string
	personality string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// NewGenerative creates a generative source.
func NewGenerative(cfg GenerativeConfig, logger *slog.Logger) (*Generative, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("generative model requires a model name")
	}
	if logger == nil {
		logger = slog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	clientCfg.HTTPClient = newHTTPClient(timeout)

	personality := cfg.Personality
	if personality == "" {
		personality = PersonalityAssistant
	}
	logger.Info("initializing generative client", "model", cfg.Model, "personality", personality)
	return &Generative{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		personality: personality,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

func (g *Generative) Name() string { return "generative" }

// FormatPrompt applies the configured personality to a user message.
func (g *Generative) FormatPrompt(input string) string {
	switch g.personality {
	case PersonalityHumor:
		return "Réponds de façon drôle : " + input
	case PersonalityPro:
		return "Réponds comme un expert professionnel : " + input
	default:
		return "Tu es un assistant utile. " + input
	}
}

// Lookup answers query in the configured personality.
func (g *Generative) Lookup(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	return g.Complete(ctx, g.FormatPrompt(query))
}

// Complete sends prompt as a single user turn after the French persona.
func (g *Generative) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: frenchPersona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if g.maxTokens > 0 {
		req.MaxTokens = g.maxTokens
	}
	if g.temperature > 0 {
		req.Temperature = g.temperature
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices: %w", ErrNotFound)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completion: empty content: %w", ErrNotFound)
	}
	g.logger.Debug("chat completion received", "finish_reason", resp.Choices[0].FinishReason)
	return content, nil
}

// Completer is the part of Generative the math solver needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MathSolver asks a chat model to evaluate or explain an expression.
type MathSolver struct {
	completer Completer
}

// NewMathSolver creates a solver backed by c.
func NewMathSolver(c Completer) *MathSolver {
	return &MathSolver{completer: c}
}

func (m *MathSolver) Name() string { return "math" }

// Lookup returns only the final result unless the expression asks for an
// explanation ("explique"), in which case the steps are requested too.
func (m *MathSolver) Lookup(ctx context.Context, expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", ErrEmptyQuery
	}
	return m.completer.Complete(ctx, MathPrompt(expression))
}

// MathPrompt builds the solver prompt for expression.
func MathPrompt(expression string) string {
	if strings.Contains(strings.ToLower(expression), "explique") {
		return "En français : explique étape par étape comment résoudre l'expression mathématique suivante, " +
			"puis donne la réponse finale à la fin :\n" + expression
	}
	return "En français : calcule cette expression mathématique et donne uniquement le résultat final, sans explication :\n" + expression
}
