package widget

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "bold", in: "**bold**", want: "<strong>bold</strong>"},
		{name: "newline", in: "a\nb", want: "a<br>b"},
		{
			name: "link",
			in:   "Visit https://x.com now",
			want: `Visit <a href="https://x.com" target="_blank">https://x.com</a> now`,
		},
		{
			name: "link at end of line",
			in:   "See http://example.org/courses\nthanks",
			want: `See <a href="http://example.org/courses" target="_blank">http://example.org/courses</a><br>thanks`,
		},
		{
			name: "bold link",
			in:   "**https://x.com**",
			want: `<strong><a href="https://x.com" target="_blank">https://x.com</a></strong>`,
		},
		{
			name: "link ends at unicode space",
			in:   "go https://x.com\u00a0now",
			want: "go <a href=\"https://x.com\" target=\"_blank\">https://x.com</a>\u00a0now",
		},
		{name: "non-greedy bold", in: "**a** and **b**", want: "<strong>a</strong> and <strong>b</strong>"},
		{name: "unclosed bold", in: "**open", want: "**open"},
		{name: "escapes markup", in: `<script>alert("x")</script>`, want: "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"},
		{name: "escapes inside bold", in: "**<b>**", want: "<strong>&lt;b&gt;</strong>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMessage(tt.in))
		})
	}
}

func TestFormatMessageSingleAnchorKeepsURLText(t *testing.T) {
	out := FormatMessage("Visit https://x.com now")
	assert.Equal(t, 1, strings.Count(out, "<a "))
	assert.Equal(t, 1, strings.Count(out, "</a>"))
	assert.Contains(t, out, ">https://x.com</a>")
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "09:05 AM", FormatTimestamp(time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "11:30 PM", FormatTimestamp(time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)))
}
