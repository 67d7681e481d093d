package chat

const refusal = "Restons courtois, s'il te plaît. Je suis là pour t'aider !"

// DefaultBlocklist holds the profane terms rejected by the content filter.
var DefaultBlocklist = []string{
	"connard", "connasse", "salaud", "salope", "pute", "putain", "enculé",
	"enculer", "merde", "bâtard", "fdp", "ntm", "nique", "niquer",
	"ta gueule", "ferme ta gueule", "abruti", "débile",
}

type contentFilter struct {
	terms []string
}

func newContentFilter(terms []string) *contentFilter {
	f := &contentFilter{}
	for _, t := range terms {
		if folded := Fold(t); folded != "" {
			f.terms = append(f.terms, folded)
		}
	}
	return f
}

// blocked reports whether the folded message contains a blocklisted term
// as a whole word or phrase.
func (f *contentFilter) blocked(folded string) bool {
	for _, t := range f.terms {
		if containsPhrase(folded, t) {
			return true
		}
	}
	return false
}
