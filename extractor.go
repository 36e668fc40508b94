package revise

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the default cap, in characters, on the content handed
// to the completion service.
const MaxContentLength = 3000

// ElisionMarker is appended to content cut at the length cap.
const ElisionMarker = "...(略)"

// ExtractResult holds the article text extracted from an HTML page.
type ExtractResult struct {
	// Title is the text of the article title element, markup stripped.
	Title string

	// Body is the article body with whitespace collapsed and trailing
	// boilerplate removed.
	Body string

	// Strategy names the body strategy that produced Body.
	// Empty when no strategy found anything.
	Strategy string
}

// Empty reports whether neither a title nor a body was found.
func (r *ExtractResult) Empty() bool {
	return r.Title == "" && r.Body == ""
}

// Extractor extracts article text from HTML pages.
type Extractor interface {
	// Extract processes raw HTML and returns the article title and body.
	// Malformed HTML is not an error; missing parts come back empty.
	Extract(html string) (*ExtractResult, error)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces every whitespace run with a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ComposeContent joins title and body into the text sent for analysis.
// The result is whitespace-collapsed and, when max > 0, cut to max
// characters with ElisionMarker appended.
func ComposeContent(title, body string, max int) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("\n\n")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(body)

	content := CollapseWhitespace(sb.String())
	if max > 0 && utf8.RuneCountInString(content) > max {
		content = string([]rune(content)[:max]) + ElisionMarker
	}
	return content
}
