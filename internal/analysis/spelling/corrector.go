// Package spelling repairs common misspellings of the domain vocabulary
// before intent matching.
package spelling

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	minWordLen      = 3
	matchThreshold  = 0.7
	confidentRatio  = 0.8
	maxEditDistance = 2
	minEditWordLen  = 4
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Entry is a canonical word and the misspellings known for it.
type Entry struct {
	Word       string
	Variations []string
}

// DefaultDictionary covers the vocabulary users ask about most.
var DefaultDictionary = []Entry{
	{"internship", []string{"intership", "internsip", "intrenship", "interenship"}},
	{"course", []string{"corse", "cource", "coarse", "coruse"}},
	{"python", []string{"pythn", "pyton", "pythoon"}},
	{"java", []string{"jva", "jaava", "jave"}},
	{"machine", []string{"machin", "mashine", "machiene"}},
	{"learning", []string{"lernning", "learnig", "lerning"}},
	{"artificial", []string{"artifical", "artficial", "artifitial"}},
	{"intelligence", []string{"inteligence", "intelligance", "intelgence"}},
	{"brainovision", []string{"brainovison", "brainovisin"}},
	{"program", []string{"programme", "progrm", "progam"}},
	{"training", []string{"trainig", "trainning", "traning"}},
	{"stipend", []string{"stiped", "stipnd", "stepend"}},
	{"workshop", []string{"workshp", "wrokshop"}},
	{"hackathon", []string{"hakathon", "hackaton"}},
	{"admission", []string{"admision", "admisson"}},
	{"contact", []string{"contct", "contat", "conatct"}},
}

// Corrector rewrites words to the closest dictionary entry.
type Corrector struct {
	dict []Entry
}

// New returns a corrector over dict, or DefaultDictionary when dict is empty.
func New(dict []Entry) *Corrector {
	if len(dict) == 0 {
		dict = DefaultDictionary
	}
	return &Corrector{dict: dict}
}

// Correct lowercases text and replaces each word with its best dictionary
// match. Words shorter than three characters are kept as typed; other
// words lose their punctuation.
func (c *Corrector) Correct(text string) string {
	words := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(words))
	for _, word := range words {
		out = append(out, c.correctWord(word))
	}
	return strings.Join(out, " ")
}

func (c *Corrector) correctWord(word string) string {
	clean := nonWord.ReplaceAllString(word, "")
	if utf8.RuneCountInString(clean) < minWordLen {
		return word
	}

	best := clean
	highest := 0.0
	for _, entry := range c.dict {
		candidates := append([]string{entry.Word}, entry.Variations...)
		for _, candidate := range candidates {
			if r := Ratio(clean, candidate); r > highest && r > matchThreshold {
				highest = r
				best = entry.Word
			}
		}
	}

	if highest < confidentRatio && utf8.RuneCountInString(clean) >= minEditWordLen {
		for _, entry := range c.dict {
			if levenshtein.ComputeDistance(clean, entry.Word) <= maxEditDistance {
				return entry.Word
			}
		}
	}
	return best
}

// Ratio is the SequenceMatcher similarity of a and b compared rune by rune,
// in [0, 1].
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
