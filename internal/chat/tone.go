package chat

import (
	"math/rand/v2"
	"sync"
)

// Reactions prefix replies when the human tone is enabled.
var Reactions = []string{
	"😊", "👍", "Ça me fait plaisir de t'aider !", "Super question !",
	"Tu es brillant(e) !", "Hmm...", "Intéressant...", "Voyons voir...",
	"C'est une bonne question.", "Je réfléchis...",
	"Je ne suis pas une boule de cristal, mais je crois que c'est ça ! 😂",
	"Si j'avais un euro à chaque fois qu'on me pose cette question... 💸",
	"Je suis un bot, mais je commence à comprendre les humains ! 🤖",
	"Je suis pas parfait, mais j'essaie ! 😅",
}

// picker draws from a shared *rand.Rand, which is not safe for
// concurrent use on its own.
type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker(rnd *rand.Rand) *picker {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &picker{rnd: rnd}
}

func (p *picker) pick(choices []string) string {
	if len(choices) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return choices[p.rnd.IntN(len(choices))]
}

// decorate prefixes text with a random reaction when enabled.
func (p *picker) decorate(enabled bool, text string) string {
	if !enabled {
		return text
	}
	return p.pick(Reactions) + " " + text
}
