package spelling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectFixesKnownMisspellings(t *testing.T) {
	c := New(nil)

	cases := map[string]string{
		"intership":               "internship",
		"what corse do you offer": "what course do you offer",
		"pythn course":            "python course",
		"Brainovison?":            "brainovision",
		"jaava":                   "java",
	}
	for in, want := range cases {
		assert.Equal(t, want, c.Correct(in), "input %q", in)
	}
}

func TestCorrectKeepsShortWords(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "is ai ok?", c.Correct("is AI ok?"))
}

func TestCorrectStripsPunctuationFromLongerWords(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "hello world", c.Correct("hello, world!"))
}

func TestCorrectFallsBackToEditDistance(t *testing.T) {
	c := New([]Entry{{Word: "java"}})
	// "jovo" scores 0.5 against "java" but is two edits away.
	assert.Equal(t, "java", c.Correct("jovo"))
	assert.Equal(t, "jovos", New([]Entry{{Word: "java"}}).Correct("jovos"))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("python", "python"), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
	// 2*M/T with M=5 matching runes and T=11.
	assert.InDelta(t, 10.0/11.0, Ratio("pythn", "python"), 1e-9)
}
