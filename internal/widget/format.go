package widget

import (
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s\p{Z}]+`)
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// FormatMessage turns plain chat text into the HTML fragment shown in a
// message bubble. The text is escaped first, so the only markup in the
// result is the anchors, line breaks and strong spans produced here.
// A URL runs up to the next whitespace, Unicode spaces included. Trailing
// asterisks are left outside the anchor so "**https://x.com**" becomes a
// bold link rather than a link whose href contains the bold markup.
func FormatMessage(raw string) string {
	out := html.EscapeString(raw)
	out = urlPattern.ReplaceAllStringFunc(out, linkify)
	out = strings.ReplaceAll(out, "\n", "<br>")
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	return out
}

func linkify(match string) string {
	url := strings.TrimRight(match, "*")
	if strings.HasSuffix(url, "://") {
		return match
	}
	return `<a href="` + url + `" target="_blank">` + url + `</a>` + match[len(url):]
}

// FormatTimestamp renders the display time attached to each message,
// e.g. "03:07 PM".
func FormatTimestamp(t time.Time) string {
	return t.Format("03:04 PM")
}
