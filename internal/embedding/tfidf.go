package embedding

import (
	"math"
	"regexp"
	"strings"
)

// tokenRe matches runs of two or more word characters, Unicode aware.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into word tokens of length >= 2.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// sparseVector maps a term to its weight.
type sparseVector map[string]float64

// fitTFIDF weights every document with smoothed TF-IDF and l2-normalises
// the result: idf(t) = ln((1+n)/(1+df(t))) + 1.
func fitTFIDF(docs []string) []sparseVector {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := map[string]int{}
	for i, doc := range docs {
		tf := map[string]int{}
		for _, tok := range Tokenize(doc) {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	vectors := make([]sparseVector, n)
	for i, tf := range counts {
		v := make(sparseVector, len(tf))
		var norm float64
		for term, c := range tf {
			idf := math.Log(float64(1+n)/float64(1+df[term])) + 1
			w := float64(c) * idf
			v[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range v {
				v[term] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// dot is the cosine similarity of two l2-normalised sparse vectors.
func dot(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}
