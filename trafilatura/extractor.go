// Package trafilatura extracts the main text of arbitrary pages. It is a
// diagnostic aid for pages whose markup lacks the article classes.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/revise"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements revise.Extractor at compile time.
var _ revise.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title from metadata and the main content as
// whitespace-collapsed text.
func (e *Extractor) Extract(rawHTML string) (*revise.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, revise.Errorf(revise.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return nil, revise.Errorf(revise.EEMPTY, "no main content found: %v", err)
	}

	return &revise.ExtractResult{
		Title:    strings.TrimSpace(result.Metadata.Title),
		Body:     revise.CollapseWhitespace(result.ContentText),
		Strategy: "trafilatura",
	}, nil
}
