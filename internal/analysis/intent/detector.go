// Package intent maps a question to the topic it is about using weighted
// keyword groups.
package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/brainovision/campus-assistant/backend/internal/analysis/spelling"
)

// Label names a topic the assistant can answer.
type Label string

const (
	None        Label = ""
	Internship  Label = "internship"
	Courses     Label = "courses"
	Python      Label = "python"
	Java        Label = "java"
	AIML        Label = "ai_ml"
	DataScience Label = "data_science"
	Contact     Label = "contact"
	About       Label = "about"
)

const (
	exactWeight    = 2
	fuzzyWeight    = 1
	fuzzyMinLen    = 4
	fuzzyThreshold = 0.8
)

// Group is the keyword list of one label.
type Group struct {
	Label    Label
	Keywords []string
}

// DefaultGroups lists topics in priority order; ties go to the earlier one.
var DefaultGroups = []Group{
	{Internship, []string{"internship", "stipend", "work experience", "practical training", "industrial training", "on-job training"}},
	{Courses, []string{"course", "program", "training", "learn", "study", "subject", "curriculum", "syllabus"}},
	{Python, []string{"python", "django", "flask", "full stack"}},
	{Java, []string{"java", "spring", "hibernate", "j2ee"}},
	{AIML, []string{"artificial intelligence", "machine learning", "ai", "ml", "neural network", "deep learning"}},
	{DataScience, []string{"data science", "data analytics", "big data", "data analysis"}},
	{Contact, []string{"contact", "phone", "email", "address", "location", "reach"}},
	{About, []string{"about", "company", "brainovision", "who are you", "what is"}},
}

// Decision is the detected label with its score.
type Decision struct {
	Label Label
	Score int
}

// Detector scores text against keyword groups.
type Detector struct {
	groups []Group
}

// NewDetector returns a detector over groups, or DefaultGroups when empty.
func NewDetector(groups []Group) *Detector {
	if len(groups) == 0 {
		groups = DefaultGroups
	}
	return &Detector{groups: groups}
}

// Detect returns the best scoring label, or None when nothing matched.
//
// A keyword found verbatim in the text adds 2. Otherwise every text word
// longer than three characters that is close to any word of the keyword
// adds 1.
func (d *Detector) Detect(text string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Decision{Label: None}
	}
	words := strings.Fields(normalized)

	best := Decision{Label: None}
	for _, group := range d.groups {
		score := 0
		for _, keyword := range group.Keywords {
			if strings.Contains(normalized, keyword) {
				score += exactWeight
				continue
			}
			score += fuzzyHits(words, keyword)
		}
		if score > best.Score {
			best = Decision{Label: group.Label, Score: score}
		}
	}
	return best
}

func fuzzyHits(words []string, keyword string) int {
	parts := strings.Fields(keyword)
	hits := 0
	for _, word := range words {
		if utf8.RuneCountInString(word) < fuzzyMinLen {
			continue
		}
		for _, part := range parts {
			if spelling.Ratio(word, part) > fuzzyThreshold {
				hits += fuzzyWeight
				break
			}
		}
	}
	return hits
}
