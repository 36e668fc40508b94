// Package goquery extracts article text from HTML using goquery, with
// pattern-based fallbacks for markup the tree parser reads differently.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/revise"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Boilerplate markers. Body text is cut at the first occurrence of either.
const (
	RelatedMarker     = "関連の夢"
	OtherDreamsMarker = "あなたは他にどんな夢を見ましたか？"
)

const (
	titleSelector = `[class*="article_title"]`
	bodySelector  = `[class*="article_body"]`
)

var (
	titlePattern     = regexp.MustCompile(`(?is)<[^>]*class=["'][^"']*article_title[^"']*["'][^>]*>(.*?)</[^>]*>`)
	containerPattern = regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*article_body[^"']*["'][^>]*>(.*?)</div>`)
	startTagPattern  = regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*article_body[^"']*["'][^>]*>`)
	paragraphPattern = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`)
)

var strictPolicy = bluemonday.StrictPolicy()

// Strategy is one way of finding the article body in raw HTML.
// It returns an empty string when it finds nothing.
type Strategy struct {
	Name    string
	Extract func(src string) string
}

// DefaultStrategies returns the body strategies in priority order, from the
// most structural to the most permissive.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "paragraphs", Extract: ExtractParagraphs},
		{Name: "container", Extract: ExtractContainer},
		{Name: "containers", Extract: ExtractContainers},
		{Name: "span", Extract: ExtractSpan},
	}
}

// Ensure ArticleExtractor implements revise.Extractor at compile time.
var _ revise.Extractor = (*ArticleExtractor)(nil)

// ArticleExtractor pulls the title and body out of pages that mark them
// with article_title and article_body classes.
type ArticleExtractor struct {
	strategies []Strategy
}

// NewArticleExtractor creates an ArticleExtractor using DefaultStrategies.
func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{strategies: DefaultStrategies()}
}

// NewArticleExtractorWithStrategies creates an ArticleExtractor with a
// custom strategy chain.
func NewArticleExtractorWithStrategies(strategies []Strategy) *ArticleExtractor {
	return &ArticleExtractor{strategies: strategies}
}

// Extract returns the article title and cleaned body. It never fails;
// parts that cannot be found are empty.
func (e *ArticleExtractor) Extract(src string) (*revise.ExtractResult, error) {
	result := &revise.ExtractResult{Title: ExtractTitle(src)}
	for _, s := range e.strategies {
		body := s.Extract(src)
		if strings.TrimSpace(body) == "" {
			continue
		}
		result.Body = CleanBody(body)
		result.Strategy = s.Name
		break
	}
	return result, nil
}

// ExtractTitle returns the text of the first element whose class contains
// article_title. The text is not otherwise cleaned.
func ExtractTitle(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err == nil {
		if sel := doc.Find(titleSelector).First(); sel.Length() > 0 {
			if text := sel.Text(); text != "" {
				return text
			}
		}
	}
	if m := titlePattern.FindStringSubmatch(src); m != nil {
		return stripTags(m[1])
	}
	return ""
}

// ExtractParagraphs walks every article_body element of the parsed tree
// and keeps its paragraphs. A container without paragraphs contributes
// its whole text.
func ExtractParagraphs(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var blocks []string
	doc.Find(bodySelector).Each(func(_ int, container *goquery.Selection) {
		paragraphs := container.Find("p")
		if paragraphs.Length() == 0 {
			if text := revise.CollapseWhitespace(container.Text()); text != "" {
				blocks = append(blocks, text)
			}
			return
		}
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if text, ok := keepParagraph(p.Text()); ok {
				blocks = append(blocks, text)
			}
		})
	})
	return strings.Join(blocks, "\n\n")
}

// ExtractContainer matches the first article_body div up to its first
// closing tag and keeps its paragraphs, or its stripped text when it has none.
func ExtractContainer(src string) string {
	m := containerPattern.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	if blocks, found := matchParagraphs(m[1]); found {
		return strings.Join(blocks, "\n\n")
	}
	return stripTags(m[1])
}

// ExtractContainers is ExtractContainer applied to every article_body div
// of the document, with the surviving text of each concatenated.
func ExtractContainers(src string) string {
	var blocks []string
	for _, m := range containerPattern.FindAllStringSubmatch(src, -1) {
		if paragraphs, found := matchParagraphs(m[1]); found {
			blocks = append(blocks, paragraphs...)
			continue
		}
		if text := strings.TrimSpace(stripTags(m[1])); text != "" {
			blocks = append(blocks, text)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// ExtractSpan slices the raw HTML from the first article_body start tag to
// the next </div> and strips the markup. No paragraph filtering is applied.
func ExtractSpan(src string) string {
	loc := startTagPattern.FindStringIndex(src)
	if loc == nil {
		return ""
	}
	const closeTag = "</div>"
	end := strings.Index(src[loc[0]:], closeTag)
	if end < 0 {
		return ""
	}
	return stripTags(src[loc[0] : loc[0]+end+len(closeTag)])
}

// CleanBody collapses whitespace and cuts the text at the first
// boilerplate marker.
func CleanBody(body string) string {
	body = revise.CollapseWhitespace(body)
	for _, marker := range []string{RelatedMarker, OtherDreamsMarker} {
		if i := strings.Index(body, marker); i >= 0 {
			body = body[:i]
		}
	}
	return strings.TrimSpace(body)
}

// matchParagraphs returns the kept paragraphs of fragment and whether the
// fragment had any paragraph elements at all.
func matchParagraphs(fragment string) ([]string, bool) {
	matches := paragraphPattern.FindAllStringSubmatch(fragment, -1)
	if len(matches) == 0 {
		return nil, false
	}
	var blocks []string
	for _, m := range matches {
		if text, ok := keepParagraph(stripTags(m[1])); ok {
			blocks = append(blocks, text)
		}
	}
	return blocks, true
}

// keepParagraph trims text and drops empty, placeholder and
// related-entries paragraphs.
func keepParagraph(text string) (string, bool) {
	text = strings.TrimSpace(text)
	switch {
	case text == "", text == "&nbsp;", text == "\u00a0":
		return "", false
	case strings.Contains(text, RelatedMarker):
		return "", false
	}
	return text, true
}

func stripTags(fragment string) string {
	return html.UnescapeString(strictPolicy.Sanitize(fragment))
}
