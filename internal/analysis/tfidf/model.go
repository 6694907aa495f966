// Package tfidf ranks training patterns by cosine similarity to a query.
package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the vocabulary to the most frequent terms.
const DefaultMaxFeatures = 1000

// ErrEmptyVocabulary is returned when no pattern contributes a term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: patterns contain only stop words")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Document is one training pattern labelled with its intent tag.
type Document struct {
	Tag  string
	Text string
}

// Match is the best scoring pattern for a query.
type Match struct {
	Tag     string
	Pattern string
	Score   float64
}

type vector map[int]float64

// Model is a fitted TF-IDF index. It is immutable after Fit and safe for
// concurrent use.
type Model struct {
	vocab   map[string]int
	idf     []float64
	docs    []Document
	vectors []vector
}

// Fit builds the index over docs with English stop words removed.
func Fit(docs []Document, maxFeatures int) (*Model, error) {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	tokenized := make([][]string, len(docs))
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range docs {
		tokens := tokenize(doc.Text)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			termCount[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}
	if len(termCount) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	m := &Model{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		docs:  append([]Document(nil), docs...),
	}
	n := float64(len(docs))
	for i, term := range terms {
		m.vocab[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	m.vectors = make([]vector, len(docs))
	for i, tokens := range tokenized {
		m.vectors[i] = m.vectorize(tokens)
	}
	return m, nil
}

// Len returns the number of indexed patterns.
func (m *Model) Len() int {
	return len(m.docs)
}

// Best returns the pattern most similar to query. Ties go to the pattern
// indexed first. ok is false when the best score does not exceed threshold.
func (m *Model) Best(query string, threshold float64) (Match, bool) {
	q := m.vectorize(tokenize(query))

	best := Match{}
	bestIdx := -1
	for i, v := range m.vectors {
		score := dot(q, v)
		if bestIdx < 0 || score > best.Score {
			bestIdx = i
			best = Match{Tag: m.docs[i].Tag, Pattern: m.docs[i].Text, Score: score}
		}
	}
	if bestIdx < 0 {
		return Match{}, false
	}
	return best, best.Score > threshold
}

func (m *Model) vectorize(tokens []string) vector {
	v := make(vector)
	for _, tok := range tokens {
		if idx, ok := m.vocab[tok]; ok {
			v[idx]++
		}
	}

	var norm float64
	for idx, tf := range v {
		w := tf * m.idf[idx]
		v[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for idx := range v {
		v[idx] /= norm
	}
	return v
}

func dot(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}
