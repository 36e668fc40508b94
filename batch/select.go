package batch

import (
	"cmp"
	"slices"

	"github.com/fwojciec/revise"
)

// SelectTargets parses the data rows of a sheet snapshot and returns them
// in processing order: ascending impressions, ties broken by ascending
// click-through rate, original order otherwise. At most limit rows are
// returned; a limit of 0 or less returns all of them.
//
// rows[0] is the header. Each returned row keeps its index into rows.
func SelectTargets(rows [][]string, limit int) []*revise.ArticleRow {
	if len(rows) <= 1 {
		return []*revise.ArticleRow{}
	}

	targets := make([]*revise.ArticleRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		targets = append(targets, revise.ParseArticleRow(i, rows[i]))
	}

	slices.SortStableFunc(targets, func(a, b *revise.ArticleRow) int {
		if c := cmp.Compare(a.Metrics.Impressions, b.Metrics.Impressions); c != 0 {
			return c
		}
		return cmp.Compare(a.Metrics.ClickThroughRate(), b.Metrics.ClickThroughRate())
	})

	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	return targets
}
