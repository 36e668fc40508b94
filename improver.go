package revise

import "context"

// Improver runs the two-stage rewrite of an article.
type Improver interface {
	// AnalyzeIssues explains why the content performs poorly given its metrics.
	AnalyzeIssues(ctx context.Context, content string, metrics PageMetrics) (string, error)

	// Rewrite produces an improved version of content addressing issues.
	Rewrite(ctx context.Context, content, issues string) (string, error)
}
