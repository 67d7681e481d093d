// Package chunker splits prose into sentences and trims it to a bounded
// snippet for chat replies.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMaxSentences = 2
	DefaultMaxChars     = 600
)

// Options configures snippet trimming.
type Options struct {
	MaxSentences int
	MaxChars     int
}

// DefaultOptions returns default trimming options.
func DefaultOptions() Options {
	return Options{
		MaxSentences: DefaultMaxSentences,
		MaxChars:     DefaultMaxChars,
	}
}

// abbreviations never end a sentence.
var abbreviations = map[string]bool{
	"m.": true, "mme.": true, "mlle.": true, "dr.": true, "st.": true,
	"ste.": true, "etc.": true, "av.": true, "apr.": true, "env.": true,
	"p.": true, "cf.": true, "no.": true, "vol.": true, "c.-à-d.": true,
	"j.-c.": true, "mr.": true, "mrs.": true,
}

// Sentences splits text on sentence-ending punctuation followed by
// whitespace. Abbreviations and initials do not end a sentence.
func Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' && r != '…' {
			continue
		}
		end := i + utf8.RuneLen(r)
		// Swallow closing quotes/brackets and repeated punctuation.
		for end < len(text) {
			next, size := utf8.DecodeRuneInString(text[end:])
			if strings.ContainsRune(".!?…»\")]", next) {
				end += size
				continue
			}
			// French typography puts a space before the closing guillemet.
			if unicode.IsSpace(next) {
				if after, asize := utf8.DecodeRuneInString(text[end+size:]); after == '»' {
					end += size + asize
					continue
				}
			}
			break
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				continue
			}
		}
		if r == '.' && isAbbreviation(text[start:end]) {
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isAbbreviation reports whether the last word of s is a known
// abbreviation or a single-letter initial.
func isAbbreviation(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(fields[len(fields)-1])
	if abbreviations[last] {
		return true
	}
	return utf8.RuneCountInString(last) == 2 && unicode.IsLetter([]rune(last)[0])
}

// Trim keeps the first opts.MaxSentences sentences of text and caps the
// result at opts.MaxChars runes, cutting on a word boundary.
func Trim(text string, opts Options) string {
	if opts.MaxSentences == 0 && opts.MaxChars == 0 {
		opts = DefaultOptions()
	}

	out := strings.TrimSpace(text)
	if opts.MaxSentences > 0 {
		sentences := Sentences(out)
		if len(sentences) > opts.MaxSentences {
			sentences = sentences[:opts.MaxSentences]
		}
		out = strings.Join(sentences, " ")
	}
	if opts.MaxChars > 0 && utf8.RuneCountInString(out) > opts.MaxChars {
		runes := []rune(out)
		cut := string(runes[:opts.MaxChars])
		if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
			cut = cut[:idx]
		}
		out = strings.TrimSpace(cut) + "…"
	}
	return out
}

// FirstParagraph returns the first line of text holding at least minRunes
// runes, falling back to the first non-blank line.
func FirstParagraph(text string, minRunes int) string {
	first := ""
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) >= minRunes {
			return t
		}
		if first == "" {
			first = t
		}
	}
	return first
}
