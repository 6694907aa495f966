// Package site fetches the institute website and extracts the text the
// assistant learns from.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/brainovision/campus-assistant/backend/internal/config"
)

// Page keys returned by ScrapeSite.
const (
	PageHome       = "homepage"
	PageCourses    = "courses"
	PageInternship = "internship"
	PageAbout      = "about"
	PageContact    = "contact"
)

const maxBodyBytes = 4 << 20

// StatusError reports a page that answered with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// IsStatusError reports whether err came from a non-2xx answer.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Scraper reads pages below a base URL.
type Scraper struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

// NewScraper creates a scraper from the site configuration.
func NewScraper(cfg config.SiteConfig, logger *zap.Logger) *Scraper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// URL joins path to the base URL.
func (s *Scraper) URL(path string) string {
	if path == "" {
		return s.baseURL
	}
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// ScrapeSite collects the text blocks of the homepage and the courses,
// internship, about and contact pages. A page that fails is logged and
// left empty.
func (s *Scraper) ScrapeSite(ctx context.Context) map[string][]string {
	pages := []struct{ key, path string }{
		{PageHome, ""},
		{PageCourses, "courses"},
		{PageInternship, "internship"},
		{PageAbout, "about"},
		{PageContact, "contact"},
	}

	out := make(map[string][]string, len(pages))
	for _, p := range pages {
		blocks, err := s.ScrapePage(ctx, s.URL(p.path))
		if err != nil {
			s.logger.Warn("scrape page failed", zap.String("page", p.key), zap.Error(err))
			blocks = nil
		}
		out[p.key] = blocks
	}
	return out
}

// ScrapePage extracts the title, h1-h3 headings, paragraphs and list items
// of a page, in that order. Scripts and styles are ignored.
func (s *Scraper) ScrapePage(ctx context.Context, url string) ([]string, error) {
	doc, err := s.fetch(ctx, url, true)
	if err != nil {
		return nil, err
	}
	stripNodes(doc, atom.Script, atom.Style)

	var content []string
	if titles := findAll(doc, atom.Title); len(titles) > 0 {
		content = append(content, "Page Title: "+textOf(titles[0]))
	}
	for _, h := range findAll(doc, atom.H1, atom.H2, atom.H3) {
		if text := textOf(h); runeLen(text) > 5 {
			content = append(content, "Heading: "+text)
		}
	}
	for _, p := range findAll(doc, atom.P) {
		if text := textOf(p); runeLen(text) > 20 {
			content = append(content, text)
		}
	}
	for _, list := range findAll(doc, atom.Ul, atom.Ol) {
		for _, item := range findAll(list, atom.Li) {
			if text := textOf(item); runeLen(text) > 10 {
				content = append(content, "• "+text)
			}
		}
	}
	return content, nil
}

// Headings returns the h1-h4 texts among the first limit headings of a
// page that are between 4 and 99 characters long.
func (s *Scraper) Headings(ctx context.Context, url string, limit int) ([]string, error) {
	doc, err := s.fetch(ctx, url, false)
	if err != nil {
		return nil, err
	}

	headings := findAll(doc, atom.H1, atom.H2, atom.H3, atom.H4)
	if limit > 0 && len(headings) > limit {
		headings = headings[:limit]
	}

	var out []string
	for _, h := range headings {
		text := textOf(h)
		if n := runeLen(text); n > 3 && n < 100 {
			out = append(out, text)
		}
	}
	return out, nil
}

// PageText returns the visible text of a page, lowercased.
func (s *Scraper) PageText(ctx context.Context, url string) (string, error) {
	doc, err := s.fetch(ctx, url, true)
	if err != nil {
		return "", err
	}
	return strings.ToLower(textOf(doc)), nil
}

func (s *Scraper) fetch(ctx context.Context, url string, requireOK bool) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if requireOK && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	s.logger.Debug("fetched page", zap.String("url", url), zap.Int("status", resp.StatusCode))
	return doc, nil
}

func findAll(root *html.Node, tags ...atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, tag := range tags {
				if n.DataAtom == tag {
					out = append(out, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func stripNodes(root *html.Node, tags ...atom.Atom) {
	for _, n := range findAll(root, tags...) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// textOf concatenates the text below n with runs of whitespace collapsed.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
