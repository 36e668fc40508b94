package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/revise"
)

// Run executes the targets command.
func (c *TargetsCmd) Run(deps *Dependencies) error {
	targets, err := deps.Batch.Targets(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(deps.Stdout, "No rows found.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tIMPRESSIONS\tCLICKS\tCTR\tPOSITION\tIMPROVED\tURL")
	for _, t := range targets {
		m := t.Metrics
		fmt.Fprintf(w, "%d\t%d\t%d\t%.2f%%\t%.1f\t%d\t%s\n",
			t.Row, m.Impressions, m.Clicks, m.ClickThroughRate()*100, m.Position, len(t.History), m.URL)
	}
	return w.Flush()
}
