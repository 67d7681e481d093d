package chat

// Intent is a small-talk category answered from a fixed response set.
type Intent struct {
	Name string
	// Phrases match anywhere in the message on word boundaries.
	Phrases []string
	// Exact phrases match only the whole message.
	Exact     []string
	Responses []string
}

// DefaultIntents returns the built-in French small-talk intents. Earlier
// intents win when a message matches several.
func DefaultIntents() []Intent {
	return []Intent{
		{
			Name:    "greeting",
			Phrases: []string{"bonjour", "salut", "coucou", "hello", "hey", "bonsoir"},
			Responses: []string{
				"Bonjour ! Comment puis-je t'aider aujourd'hui ?",
				"Salut ! Ravi de te voir.",
				"Coucou ! Que puis-je faire pour toi ?",
			},
		},
		{
			Name:    "wellbeing",
			Phrases: []string{"comment ça va", "comment vas-tu", "comment allez-vous", "tu vas bien", "tu es en forme", "t'es en forme"},
			Exact:   []string{"ça va", "ça va ?", "la forme ?", "en forme ?"},
			Responses: []string{
				"Je vais très bien, merci ! Et toi ?",
				"Tout roule de mon côté ! Et toi, comment ça va ?",
				"Je suis un bot, donc toujours en forme ! 😄",
			},
		},
		{
			Name:    "thanks",
			Phrases: []string{"merci", "je te remercie", "thanks"},
			Responses: []string{
				"Avec plaisir !",
				"De rien, c'est normal !",
				"Je t'en prie, n'hésite pas si tu as d'autres questions.",
			},
		},
		{
			Name:    "farewell",
			Phrases: []string{"au revoir", "à bientôt", "à plus", "bye", "bonne nuit", "bonne journée", "bonne soirée"},
			Responses: []string{
				"Au revoir ! À bientôt.",
				"À la prochaine !",
				"Bonne journée à toi !",
			},
		},
		{
			Name:    "identity",
			Phrases: []string{"qui es-tu", "tu es qui", "comment tu t'appelles", "quel est ton nom", "es-tu un robot", "tu es un robot"},
			Responses: []string{
				"Je suis MonChatbot, un assistant qui apprend de nos conversations.",
				"Je suis un petit chatbot francophone. Pose-moi une question !",
			},
		},
		{
			Name:  "affirmation",
			Exact: []string{"oui", "ouais", "d'accord", "ok", "okay", "parfait", "super", "cool", "exactement"},
			Responses: []string{
				"Parfait !",
				"Très bien !",
				"Super, continuons !",
			},
		},
		{
			Name:  "negation",
			Exact: []string{"non", "nan", "pas du tout", "non merci", "jamais"},
			Responses: []string{
				"D'accord, pas de souci.",
				"Très bien, comme tu veux.",
				"Entendu !",
			},
		},
	}
}

type compiledIntent struct {
	name      string
	phrases   []string
	exact     map[string]bool
	responses []string
}

func compileIntents(intents []Intent) []compiledIntent {
	out := make([]compiledIntent, 0, len(intents))
	for _, in := range intents {
		if len(in.Responses) == 0 {
			continue
		}
		c := compiledIntent{name: in.Name, exact: make(map[string]bool), responses: in.Responses}
		for _, p := range in.Phrases {
			if f := Fold(p); f != "" {
				c.phrases = append(c.phrases, f)
			}
		}
		for _, p := range in.Exact {
			if f := Fold(p); f != "" {
				c.exact[f] = true
			}
		}
		out = append(out, c)
	}
	return out
}

// matchIntent returns the intent for the folded message. Whole-message
// matches take precedence so "non merci" is a negation, not thanks.
func matchIntent(intents []compiledIntent, folded string) (compiledIntent, bool) {
	for _, in := range intents {
		if in.exact[folded] {
			return in, true
		}
	}
	for _, in := range intents {
		for _, p := range in.phrases {
			if containsPhrase(folded, p) {
				return in, true
			}
		}
	}
	return compiledIntent{}, false
}
