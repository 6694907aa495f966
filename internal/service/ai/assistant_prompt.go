package ai

import (
	"fmt"
	"strings"
)

// PromptTemplate describes how the assistant presents itself to the model.
type PromptTemplate struct {
	SystemPrompt string
	Hints        []string
	ContextRules []string
}

// DefaultTemplate is the admissions assistant persona.
var DefaultTemplate = PromptTemplate{
	SystemPrompt: "You are the Brainovision Solutions AI assistant, answering visitors of the institute website.",
	Hints: []string{
		"Be friendly, concise and professional.",
		"Use **bold** for headings and start list items with •.",
		"Keep answers under 120 words.",
	},
	ContextRules: []string{
		"Only answer questions about courses, internships, admissions, the company and how to contact it.",
		"Never invent fees, dates or phone numbers.",
		"When unsure, point the visitor to the website.",
	},
}

// BuildSystemPrompt renders the template for a site URL and the topic the
// question was classified as, if any.
func BuildSystemPrompt(tmpl PromptTemplate, siteURL, topic string) string {
	var b strings.Builder
	b.WriteString(tmpl.SystemPrompt)
	fmt.Fprintf(&b, "\n\nOfficial website: %s", siteURL)

	if len(tmpl.Hints) > 0 {
		b.WriteString("\n\nStyle:\n- ")
		b.WriteString(strings.Join(tmpl.Hints, "\n- "))
	}
	if len(tmpl.ContextRules) > 0 {
		b.WriteString("\n\nRules:\n- ")
		b.WriteString(strings.Join(tmpl.ContextRules, "\n- "))
	}
	if topic != "" {
		fmt.Fprintf(&b, "\n\nThe visitor is most likely asking about: %s.", strings.ReplaceAll(topic, "_", " "))
	}
	return b.String()
}
