package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Command trigger phrases, matched case- and accent-insensitively at the
// start of a message.
const (
	WikipediaTrigger = "recherche sur wikipedia "
	GoogleTrigger    = "recherche sur google "
	MathTrigger      = "calcule "
)

type commandKind int

const (
	cmdWikipedia commandKind = iota
	cmdGoogle
	cmdMath
)

type command struct {
	kind    commandKind
	trigger string
	words   int

	clarify     string
	found       string
	notFound    string
	ambiguous   string
	failed      string
	unavailable string
}

var commands = []command{
	{
		kind:        cmdWikipedia,
		trigger:     WikipediaTrigger,
		clarify:     "Tu dois me dire ce que tu veux que je cherche sur Wikipédia.",
		found:       "Voici ce que j'ai trouvé sur Wikipédia :\n",
		notFound:    "Désolé, rien trouvé de pertinent sur Wikipédia.",
		ambiguous:   "Ta recherche correspond à plusieurs pages Wikipédia, peux-tu préciser ?",
		failed:      "Désolé, la recherche Wikipédia a échoué. Réessaie un peu plus tard.",
		unavailable: "La recherche Wikipédia n'est pas disponible pour le moment.",
	},
	{
		kind:        cmdGoogle,
		trigger:     GoogleTrigger,
		clarify:     "Tu dois me dire ce que tu veux que je cherche sur Google.",
		found:       "Voici ce que j'ai trouvé sur Google :\n",
		notFound:    "Désolé, aucun résultat pertinent sur Google.",
		ambiguous:   "Désolé, aucun résultat pertinent sur Google.",
		failed:      "Désolé, la recherche Google a échoué. Réessaie un peu plus tard.",
		unavailable: "La recherche Google n'est pas configurée.",
	},
	{
		kind:        cmdMath,
		trigger:     MathTrigger,
		clarify:     "Tu dois entrer une expression mathématique à résoudre.",
		notFound:    "Désolé, je n'ai pas trouvé la réponse à ce calcul.",
		ambiguous:   "Désolé, je n'ai pas trouvé la réponse à ce calcul.",
		failed:      "Désolé, je n'ai pas réussi à résoudre ce calcul.",
		unavailable: "Le calcul n'est pas disponible pour le moment.",
	},
}

func init() {
	for i := range commands {
		commands[i].words = len(strings.Fields(commands[i].trigger))
	}
}

// matchCommand returns the command whose trigger starts msg and the raw
// text following the trigger.
func matchCommand(msg string) (command, string, bool) {
	for _, c := range commands {
		head, rest, ok := splitWords(msg, c.words)
		if ok && Fold(head) == Fold(c.trigger) {
			return c, rest, true
		}
	}
	return command{}, "", false
}

func commandFor(kind commandKind) command {
	for _, c := range commands {
		if c.kind == kind {
			return c
		}
	}
	panic(fmt.Sprintf("chat: unknown command kind %d", kind))
}

// splitWords splits s after its first n whitespace-separated words.
func splitWords(s string, n int) (head, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	words, inWord := 0, false
	for idx, r := range s {
		space := unicode.IsSpace(r)
		if space && inWord {
			words++
			if words == n {
				return s[:idx], s[idx:], true
			}
		}
		inWord = !space
	}
	if inWord && words+1 == n {
		return s, "", true
	}
	return "", "", false
}

// politePhrases are removed from command queries.
var politePhrases = []string{
	"s'il te plaît", "s'il te plait", "s'il vous plaît", "s'il vous plait",
	"stp", "svp", "merci", "please", "peux-tu", "pourrais-tu", "est-ce que tu peux",
	"tu peux", "je voudrais", "j'aimerais", "dis-moi",
}

var politeRe = compilePolite(politePhrases)

func compilePolite(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	alts := make([]string, len(sorted))
	for i, p := range sorted {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(p), "'", "['’]")
	}
	return regexp.MustCompile(`(?i)(^|[\s,;:.!?])(?:` + strings.Join(alts, "|") + `)([\s,;:.!?]|$)`)
}

// StripPoliteness removes politeness phrases from a command query and
// trims the punctuation left behind.
func StripPoliteness(q string) string {
	for i := 0; i < 4; i++ {
		next := politeRe.ReplaceAllString(q, "$1 $2")
		if next == q {
			break
		}
		q = next
	}
	q = strings.Join(strings.Fields(q), " ")
	return strings.Trim(q, " ,;:.!?")
}

var (
	// mathStructure accepts only digits, operators and identifiers.
	mathStructure = regexp.MustCompile(`^[\p{L}\d\s.,+\-*/^=()²³?]+$`)
	arithmetic    = regexp.MustCompile(`\d\s*[+\-*/×÷]\s*\d`)
	calendarDate  = regexp.MustCompile(`\b(?:\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})\b`)

	// Operator words count only between operands, on folded text.
	operatorWords = regexp.MustCompile(`\d (?:plus|moins|fois|divise par|multiplie par|puissance) \d`)
	powerWords    = regexp.MustCompile(`\d (?:au carre|au cube)\b`)
	percentWords  = regexp.MustCompile(`(?:\bpourcentage de \d|\d\s*% de \d)`)
	// Function names count only when applied to something.
	functionCall = regexp.MustCompile(`\b(?:sin|cos|tan|log|ln|exp|sqrt)\s*(?:\(|\d)`)
)

// mathVocabulary marks a message as math on its own.
var mathVocabulary = []string{
	"dérivée", "dériver", "intégrale", "primitive", "factorielle",
	"racine carrée", "équation", "combien font", "combien fait",
	"résous", "résoudre", "explique le calcul",
}

var foldedVocabulary = foldAll(mathVocabulary)

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Fold(s)
	}
	return out
}

// IsMath reports whether msg looks like a mathematical expression. The
// heuristic misfires on ordinary sentences made only of words and "=".
func IsMath(msg string) bool {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return false
	}
	if mathStructure.MatchString(msg) {
		if strings.ContainsAny(msg, "=^") {
			return true
		}
		if arithmetic.MatchString(calendarDate.ReplaceAllString(msg, " ")) {
			return true
		}
	}
	folded := Fold(msg)
	for _, k := range foldedVocabulary {
		if containsPhrase(folded, k) {
			return true
		}
	}
	lower := strings.ToLower(msg)
	return operatorWords.MatchString(folded) ||
		powerWords.MatchString(folded) ||
		percentWords.MatchString(lower) ||
		functionCall.MatchString(lower)
}
