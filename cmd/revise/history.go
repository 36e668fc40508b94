package main

import (
	"fmt"

	"github.com/fwojciec/revise"
)

// previewLength is the number of characters shown per text without --full.
const previewLength = 200

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	rows, err := deps.Batch.Targets(deps.Ctx, 0)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	var row *revise.ArticleRow
	for _, r := range rows {
		if r.Row == c.Row {
			row = r
			break
		}
	}
	if row == nil {
		err := revise.Errorf(revise.ENOTFOUND, "row %d not found", c.Row)
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	m := row.Metrics
	fmt.Fprintf(deps.Stdout, "%s\n", m.URL)
	fmt.Fprintf(deps.Stdout, "impressions %d, clicks %d, CTR %.2f%%, position %.1f\n",
		m.Impressions, m.Clicks, m.ClickThroughRate()*100, m.Position)

	if len(row.History) == 0 {
		fmt.Fprintln(deps.Stdout, "\nNo improvements yet.")
		return nil
	}

	for i, rec := range row.History {
		fmt.Fprintf(deps.Stdout, "\n#%d  %s\n", i+1, rec.Timestamp)
		fmt.Fprintf(deps.Stdout, "original: %s\n", c.text(rec.Original))
		fmt.Fprintf(deps.Stdout, "issues:   %s\n", c.text(rec.Issues))
		fmt.Fprintf(deps.Stdout, "improved: %s\n", c.text(rec.Improved))
	}
	return nil
}

func (c *HistoryCmd) text(s string) string {
	if c.Full {
		return s
	}
	return truncate(revise.CollapseWhitespace(s), previewLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
