package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Ça va ?":                 "ca va",
		"Comment tu t'appelles ?": "comment tu t appelles",
		"  Élève   ÉNERGIQUE!! ":  "eleve energique",
		"Où est-ce ?":             "ou est ce",
		"":                        "",
		"?!":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Fold(in), in)
	}
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, containsPhrase("bonjour toi", "bonjour"))
	assert.True(t, containsPhrase("dis moi au revoir", "au revoir"))
	assert.False(t, containsPhrase("they are here", "hey"))
	assert.False(t, containsPhrase("anything", ""))
}

func TestStripPoliteness(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"la tour Eiffel s'il te plaît", "la tour Eiffel"},
		{"la tour Eiffel s’il te plait", "la tour Eiffel"},
		{"stp, Victor Hugo merci !", "Victor Hugo"},
		{"peux-tu chercher Lyon svp", "chercher Lyon"},
		{"Mercier", "Mercier"},
		{"  merci  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripPoliteness(tt.in), tt.in)
	}
}

func TestMatchCommand(t *testing.T) {
	cmd, rest, ok := matchCommand("Recherche sur Google  les volcans")
	assert.True(t, ok)
	assert.Equal(t, cmdGoogle, cmd.kind)
	assert.Equal(t, "  les volcans", rest)

	cmd, rest, ok = matchCommand("calcule")
	assert.True(t, ok)
	assert.Equal(t, cmdMath, cmd.kind)
	assert.Empty(t, rest)

	_, _, ok = matchCommand("recherche sur wiki chat")
	assert.False(t, ok)
	_, _, ok = matchCommand("calculer 2+2")
	assert.False(t, ok)
}

func TestSplitWords(t *testing.T) {
	head, rest, ok := splitWords("  un deux trois quatre", 2)
	assert.True(t, ok)
	assert.Equal(t, "un deux", head)
	assert.Equal(t, " trois quatre", rest)

	_, _, ok = splitWords("un", 2)
	assert.False(t, ok)
}

func TestIsMath(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"2+2", true},
		{"12 * (3 - 1)", true},
		{"x^2 = 16", true},
		{"2x + 3 = 7 ?", true},
		{"Quelle est la dérivée de x au carré ?", true},
		{"combien font 7 fois 8", true},
		{"3 plus 4", true},
		{"Je n'en peux plus", false},
		{"Bonjour tout le monde", false},
		{"Le 12/05 je pars, c'est sûr !", false},
		{"Que vaut sin(30) ?", true},
		{"log 100", true},
		{"Combien font 15 % de 80", true},
		{"Quel est le plus grand pays en 2024 ?", false},
		{"Combien de fois la France a gagné en 1998 ?", false},
		{"Il est né en 1990, il a moins de chance", false},
		{"Événements du 12/05/2024", false},
		{"Le log du serveur 3 est plein", false},
		{"12/5", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMath(tt.msg), tt.msg)
	}
}

func TestMatchIntentPrefersExact(t *testing.T) {
	intents := compileIntents(DefaultIntents())

	in, ok := matchIntent(intents, Fold("Non merci"))
	assert.True(t, ok)
	assert.Equal(t, "negation", in.name)

	in, ok = matchIntent(intents, Fold("Merci pour tout"))
	assert.True(t, ok)
	assert.Equal(t, "thanks", in.name)

	_, ok = matchIntent(intents, Fold("Non, je voulais parler de Mars"))
	assert.False(t, ok)
}
