package mock

import "github.com/fwojciec/revise"

var _ revise.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of revise.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*revise.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*revise.ExtractResult, error) {
	return e.ExtractFn(html)
}
