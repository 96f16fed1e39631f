// Package scraper fetches article pages and extracts readable body text.
package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Elements removed before any text extraction.
var strippedElements = []string{"script", "style", "nav", "footer", "aside"}

// Boilerplate phrases stripped from extracted text.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subscribe to.*?newsletter`),
	regexp.MustCompile(`(?i)follow us on.*?twitter`),
	regexp.MustCompile(`(?i)copyright.*?\d{4}`),
	regexp.MustCompile(`(?i)all rights reserved`),
	regexp.MustCompile(`(?i)terms of use`),
	regexp.MustCompile(`(?i)privacy policy`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extractor pulls article text out of arbitrary news pages using an ordered
// selector table. Selectors are configuration, not code: a new site means a
// new selector entry, not a new extractor.
type Extractor struct {
	selectors []string
	client    *http.Client
}

func NewExtractor(selectors []string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		selectors: selectors,
		client:    &http.Client{Timeout: timeout},
	}
}

// Extract returns cleaned article text and the page's cover image URL, or
// empty strings when the page cannot be fetched or yields no content. Errors
// are absorbed here: the harvester treats an empty result as "discard entry".
func (e *Extractor) Extract(pageURL string) (string, string) {
	text, image, err := e.extract(pageURL)
	if err != nil {
		slog.Warn("content extraction failed", "url", pageURL, "err", err)
		return "", ""
	}
	return text, image
}

func (e *Extractor) extract(pageURL string) (string, string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	return e.FromDocument(doc), ImageFromDocument(doc, pageURL), nil
}

// FromDocument runs the selector table against an already parsed document.
func (e *Extractor) FromDocument(doc *goquery.Document) string {
	for _, el := range strippedElements {
		doc.Find(el).Remove()
	}

	var parts []string
	for _, selector := range e.selectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		sel.Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			break
		}
	}

	// Fallback: first 10 paragraphs anywhere in the document.
	if len(parts) == 0 {
		doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 10 {
				return false
			}
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
			return true
		})
	}

	return Clean(strings.Join(parts, " "))
}

// ImageFromDocument returns the page's cover image: the og:image meta tag
// when present, otherwise the first <img>. Relative references are resolved
// against the page URL.
func ImageFromDocument(doc *goquery.Document, pageURL string) string {
	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && content != "" {
		return resolveRef(pageURL, content)
	}
	if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
		return resolveRef(pageURL, src)
	}
	return ""
}

func resolveRef(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(r).String()
}

// Clean collapses whitespace and strips known boilerplate phrases.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	for _, pattern := range boilerplatePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}
