package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

var _ revise.Improver = (*Improver)(nil)

// Improver is a mock implementation of revise.Improver.
type Improver struct {
	AnalyzeIssuesFn func(ctx context.Context, content string, metrics revise.PageMetrics) (string, error)
	RewriteFn       func(ctx context.Context, content, issues string) (string, error)
}

func (i *Improver) AnalyzeIssues(ctx context.Context, content string, metrics revise.PageMetrics) (string, error) {
	return i.AnalyzeIssuesFn(ctx, content, metrics)
}

func (i *Improver) Rewrite(ctx context.Context, content, issues string) (string, error) {
	return i.RewriteFn(ctx, content, issues)
}
