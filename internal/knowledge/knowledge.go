// Package knowledge holds the assistant's built-in answers and the
// training sets used to learn from the website.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed intents.yaml
var defaultData []byte

const sitePlaceholder = "{site}"

// Intent is a tag with example questions and interchangeable answers.
type Intent struct {
	Tag       string   `yaml:"tag" json:"tag"`
	Patterns  []string `yaml:"patterns" json:"patterns"`
	Responses []string `yaml:"responses" json:"responses"`
}

// TrainingSet is an intent whose answers depend on what the website says.
type TrainingSet struct {
	Tag           string   `yaml:"tag"`
	Pages         []string `yaml:"pages"`
	Mentions      string   `yaml:"mentions"`
	Patterns      []string `yaml:"patterns"`
	SiteResponses []string `yaml:"site_responses"`
	Responses     []string `yaml:"responses"`
}

// Topics are the fixed answers given once a question's topic is known.
type Topics struct {
	InternshipSite        string `yaml:"internship_site"`
	Internship            string `yaml:"internship"`
	InternshipUnavailable string `yaml:"internship_unavailable"`
	CoursesList           string `yaml:"courses_list"`
	Courses               string `yaml:"courses"`
	CoursesUnavailable    string `yaml:"courses_unavailable"`
	Python                string `yaml:"python"`
	Java                  string `yaml:"java"`
	AIML                  string `yaml:"ai_ml"`
	DataScience           string `yaml:"data_science"`
	About                 string `yaml:"about"`
	Contact               string `yaml:"contact"`
	CourseTopic           string `yaml:"course_topic"`
}

// Base is the complete built-in knowledge.
type Base struct {
	Welcome    string        `yaml:"welcome"`
	ErrorReply string        `yaml:"error_reply"`
	Topics     Topics        `yaml:"topics"`
	Fallbacks  []string      `yaml:"fallbacks"`
	Training   []TrainingSet `yaml:"training"`
	Defaults   []Intent      `yaml:"defaults"`
}

// Load parses the embedded knowledge for the given website.
func Load(siteURL string) (*Base, error) {
	return Parse(defaultData, siteURL)
}

// Parse decodes knowledge from YAML and substitutes siteURL.
func Parse(data []byte, siteURL string) (*Base, error) {
	var base Base
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("decode knowledge: %w", err)
	}
	if err := base.validate(); err != nil {
		return nil, err
	}

	site := strings.TrimRight(siteURL, "/")
	base.expand(func(s string) string { return strings.ReplaceAll(s, sitePlaceholder, site) })
	return &base, nil
}

func (b *Base) validate() error {
	var errs []error
	if strings.TrimSpace(b.Welcome) == "" {
		errs = append(errs, errors.New("knowledge: welcome text is empty"))
	}
	if len(b.Fallbacks) == 0 {
		errs = append(errs, errors.New("knowledge: no fallbacks"))
	}
	seen := make(map[string]struct{})
	check := func(tag string, patterns, responses []string) {
		if tag == "" {
			errs = append(errs, errors.New("knowledge: intent without tag"))
			return
		}
		if _, dup := seen[tag]; dup {
			errs = append(errs, fmt.Errorf("knowledge: duplicate tag %q", tag))
		}
		seen[tag] = struct{}{}
		if len(patterns) == 0 || len(responses) == 0 {
			errs = append(errs, fmt.Errorf("knowledge: intent %q needs patterns and responses", tag))
		}
	}
	for _, set := range b.Training {
		check(set.Tag, set.Patterns, set.Responses)
	}
	for _, in := range b.Defaults {
		check(in.Tag, in.Patterns, in.Responses)
	}
	return errors.Join(errs...)
}

func (b *Base) expand(fn func(string) string) {
	b.Welcome = fn(b.Welcome)
	b.ErrorReply = fn(b.ErrorReply)

	t := &b.Topics
	for _, field := range []*string{
		&t.InternshipSite, &t.Internship, &t.InternshipUnavailable,
		&t.CoursesList, &t.Courses, &t.CoursesUnavailable,
		&t.Python, &t.Java, &t.AIML, &t.DataScience,
		&t.About, &t.Contact, &t.CourseTopic,
	} {
		*field = fn(*field)
	}

	expandAll(b.Fallbacks, fn)
	for i := range b.Training {
		expandAll(b.Training[i].SiteResponses, fn)
		expandAll(b.Training[i].Responses, fn)
	}
	for i := range b.Defaults {
		expandAll(b.Defaults[i].Responses, fn)
	}
}

func expandAll(items []string, fn func(string) string) {
	for i := range items {
		items[i] = fn(items[i])
	}
}

// Build picks the answers of every training set for the scraped pages and
// appends the default intents. pages maps a page key such as "courses" to
// its extracted text blocks.
func (b *Base) Build(pages map[string][]string) []Intent {
	intents := make([]Intent, 0, len(b.Training)+len(b.Defaults))
	for _, set := range b.Training {
		intents = append(intents, Intent{
			Tag:       set.Tag,
			Patterns:  append([]string(nil), set.Patterns...),
			Responses: append([]string(nil), set.responsesFor(pages)...),
		})
	}
	for _, in := range b.Defaults {
		intents = append(intents, Intent{
			Tag:       in.Tag,
			Patterns:  append([]string(nil), in.Patterns...),
			Responses: append([]string(nil), in.Responses...),
		})
	}
	return intents
}

func (s TrainingSet) responsesFor(pages map[string][]string) []string {
	if len(s.Pages) == 0 || len(s.SiteResponses) == 0 {
		return s.Responses
	}

	var blocks []string
	for _, page := range s.Pages {
		blocks = append(blocks, pages[page]...)
	}

	confirmed := len(blocks) > 0
	if s.Mentions != "" {
		confirmed = strings.Contains(strings.ToLower(strings.Join(blocks, " ")), strings.ToLower(s.Mentions))
	}
	if confirmed {
		return s.SiteResponses
	}
	return s.Responses
}

// CourseTopic renders the generic answer for a course topic label such as
// "ai_ml".
func (b *Base) CourseTopic(label string) string {
	return strings.ReplaceAll(b.Topics.CourseTopic, "{topic}", titleLabel(label))
}

// CoursesList renders the heading list answer.
func (b *Base) CoursesList(headings []string) string {
	lines := make([]string, 0, len(headings))
	for _, h := range headings {
		lines = append(lines, "• "+h)
	}
	return strings.ReplaceAll(b.Topics.CoursesList, "{courses}", strings.Join(lines, "\n"))
}

func titleLabel(label string) string {
	words := strings.Fields(strings.ReplaceAll(label, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
