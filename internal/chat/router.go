// Package chat decides how the chatbot answers a message: small talk,
// explicit search commands, reuse of a memorized answer, or a lookup in
// external knowledge sources whose answer is then memorized.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/rcliao/monchatbot/internal/embedding"
	"github.com/rcliao/monchatbot/internal/knowledge"
	"github.com/rcliao/monchatbot/internal/model"
	"github.com/rcliao/monchatbot/internal/store"
)

// Stage names the routing step that produced a reply.
type Stage string

const (
	StageEmpty     Stage = "empty"
	StageFiltered  Stage = "filtered"
	StageSmallTalk Stage = "smalltalk"
	StageCommand   Stage = "command"
	StageMath      Stage = "math"
	StageLearned   Stage = "learned"
	StageMemory    Stage = "memory"
	StageFallback  Stage = "fallback"
	StageUnknown   Stage = "unknown"
)

// Stages lists every stage in routing order.
var Stages = []Stage{
	StageEmpty, StageFiltered, StageSmallTalk, StageCommand, StageMath,
	StageLearned, StageMemory, StageFallback, StageUnknown,
}

const (
	emptyReply   = "Je n'ai pas bien saisi ta question, pourrais-tu reformuler s'il te plaît ?"
	unknownReply = "Je ne connais pas encore la réponse, mais je vais l'apprendre."
)

// Reply is the answer to one message.
type Reply struct {
	Text  string
	Stage Stage
}

// Config wires a Router. Store and Scorer are required; any nil knowledge
// source is skipped.
type Config struct {
	Store     store.Store
	Scorer    embedding.Scorer
	Threshold embedding.Threshold

	Wikipedia  knowledge.Source
	Google     knowledge.Source
	Generative knowledge.Source
	Math       knowledge.Source

	// Intents defaults to DefaultIntents.
	Intents []Intent
	// Blocklist defaults to DefaultBlocklist when Filter is set.
	Blocklist []string
	Filter    bool
	Tone      bool
	// MemorizeCommands stores (query, result) after a successful command.
	MemorizeCommands bool

	// Rand drives every random choice; seed it for reproducible replies.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Router answers messages.
type Router struct {
	store     store.Store
	scorer    embedding.Scorer
	threshold embedding.Threshold

	sources  map[commandKind]knowledge.Source
	fallback []knowledge.Source
	math     knowledge.Source

	intents []compiledIntent
	filter  *contentFilter

	tone             bool
	memorizeCommands bool
	rnd              *picker
	logger           *slog.Logger
}

// New creates a Router from cfg.
func New(cfg Config) (*Router, error) {
	if cfg.Store == nil {
		return nil, errors.New("router requires a store")
	}
	if cfg.Scorer == nil {
		return nil, errors.New("router requires a scorer")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.Threshold
	if threshold == nil {
		threshold = embedding.FixedThreshold(0.6)
	}
	intents := cfg.Intents
	if intents == nil {
		intents = DefaultIntents()
	}

	r := &Router{
		store:            cfg.Store,
		scorer:           cfg.Scorer,
		threshold:        threshold,
		sources:          make(map[commandKind]knowledge.Source),
		math:             cfg.Math,
		intents:          compileIntents(intents),
		tone:             cfg.Tone,
		memorizeCommands: cfg.MemorizeCommands,
		rnd:              newPicker(cfg.Rand),
		logger:           logger,
	}
	if cfg.Filter {
		blocklist := cfg.Blocklist
		if blocklist == nil {
			blocklist = DefaultBlocklist
		}
		r.filter = newContentFilter(blocklist)
	}

	if cfg.Wikipedia != nil {
		r.sources[cmdWikipedia] = cfg.Wikipedia
	}
	if cfg.Google != nil {
		r.sources[cmdGoogle] = cfg.Google
	}
	if cfg.Math != nil {
		r.sources[cmdMath] = cfg.Math
	}
	for _, src := range []knowledge.Source{cfg.Generative, cfg.Google, cfg.Wikipedia} {
		if src != nil {
			r.fallback = append(r.fallback, src)
		}
	}
	return r, nil
}

// Respond answers message. It never fails: collaborator errors become
// apologetic replies and persistence errors are logged by the store.
func (r *Router) Respond(ctx context.Context, message string) Reply {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Reply{Text: emptyReply, Stage: StageEmpty}
	}
	folded := Fold(msg)

	if r.filter != nil && r.filter.blocked(folded) {
		r.logger.Info("message refused by content filter")
		return Reply{Text: refusal, Stage: StageFiltered}
	}

	// Small talk never shadows an explicit command such as
	// "recherche sur wikipedia bonjour".
	cmd, rest, isCommand := matchCommand(msg)
	if !isCommand {
		if in, ok := matchIntent(r.intents, folded); ok {
			return Reply{Text: r.rnd.pick(in.responses), Stage: StageSmallTalk}
		}
	}

	if isCommand {
		return Reply{Text: r.runCommand(ctx, cmd, rest), Stage: StageCommand}
	}
	if r.math != nil && IsMath(msg) {
		return Reply{Text: r.runCommand(ctx, commandFor(cmdMath), msg), Stage: StageMath}
	}

	if reply, ok := r.fromMemory(ctx, msg); ok {
		return reply
	}
	return r.fromKnowledge(ctx, msg)
}

func (r *Router) runCommand(ctx context.Context, cmd command, raw string) string {
	query := StripPoliteness(raw)
	if query == "" {
		return cmd.clarify
	}
	src, ok := r.sources[cmd.kind]
	if !ok {
		return r.rnd.decorate(r.tone, cmd.unavailable)
	}

	res, err := src.Lookup(ctx, query)
	res = strings.TrimSpace(res)
	switch {
	case err == nil && res != "":
		r.logger.Info("command answered", "source", src.Name())
		if r.memorizeCommands {
			r.remember(ctx, query, res)
		}
		return r.rnd.decorate(r.tone, cmd.found+res)
	case err == nil, errors.Is(err, knowledge.ErrNotFound):
		return r.rnd.decorate(r.tone, cmd.notFound)
	case errors.Is(err, knowledge.ErrDisambiguation):
		return r.rnd.decorate(r.tone, cmd.ambiguous)
	default:
		r.logger.Warn("command lookup failed", "source", src.Name(), "error", err)
		return r.rnd.decorate(r.tone, cmd.failed)
	}
}

// fromMemory reuses a stored response whose question is similar enough.
// An empty memory learns the message with the placeholder response.
func (r *Router) fromMemory(ctx context.Context, msg string) (Reply, bool) {
	entries, err := r.store.Entries(ctx)
	if err != nil {
		r.logger.Warn("memory read failed", "error", err)
		return Reply{}, false
	}
	if len(entries) == 0 {
		r.remember(ctx, msg, model.Placeholder)
		return Reply{
			Text:  "Je n'ai encore rien appris, mais je retiens : \"" + msg + "\"",
			Stage: StageLearned,
		}, true
	}

	questions := make([]string, len(entries))
	for i, e := range entries {
		questions[i] = e.Question
	}
	match, err := r.scorer.Best(ctx, msg, questions)
	if err != nil {
		r.logger.Warn("similarity scoring failed", "error", err)
		return Reply{}, false
	}
	threshold := r.threshold(len(entries))
	if match.Index < 0 || match.Score <= threshold {
		r.logger.Debug("no similar question", "score", match.Score, "threshold", threshold)
		return Reply{}, false
	}
	r.logger.Debug("memory match", "index", match.Index, "score", match.Score)
	return Reply{Text: r.rnd.decorate(r.tone, entries[match.Index].Response), Stage: StageMemory}, true
}

// fromKnowledge asks each fallback source in turn and memorizes the first
// answer, or the placeholder when every source fails.
func (r *Router) fromKnowledge(ctx context.Context, msg string) Reply {
	for _, src := range r.fallback {
		res, err := src.Lookup(ctx, msg)
		if err != nil {
			r.logger.Info("fallback source failed", "source", src.Name(), "error", err)
			continue
		}
		res = strings.TrimSpace(res)
		if res == "" {
			continue
		}
		r.remember(ctx, msg, res)
		return Reply{Text: r.rnd.decorate(r.tone, res), Stage: StageFallback}
	}
	r.remember(ctx, msg, model.Placeholder)
	return Reply{Text: unknownReply, Stage: StageUnknown}
}

func (r *Router) remember(ctx context.Context, question, response string) {
	if err := r.store.Append(ctx, model.Entry{Question: question, Response: response}); err != nil {
		r.logger.Error("failed to memorize entry", "error", err)
	}
}
