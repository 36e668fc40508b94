package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/revise"
)

// Run executes the campaigns command.
func (c *CampaignsCmd) Run(deps *Dependencies) error {
	if c.Delete != "" {
		if err := deps.Progress.DeleteProgress(deps.Ctx, c.Delete); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Deleted campaign %s\n", c.Delete)
		return nil
	}

	progresses, err := deps.Progress.FindProgresses(deps.Ctx, revise.ProgressFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	if len(progresses) == 0 {
		fmt.Fprintln(deps.Stdout, "No campaigns found. Use 'revise run' to start one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROCESSED\tSUCCEEDED\tFAILED\tSKIPPED\tSTATE\tUPDATED")
	for _, p := range progresses {
		state := "running"
		if p.Done() {
			state = "done"
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%d\t%d\t%d\t%s\t%s\n",
			p.CampaignID, p.Processed(), min(p.Limit, p.Total),
			len(p.Successes), len(p.Errors), len(p.Skipped),
			state, p.UpdatedAt.Format(time.DateTime))
	}
	return w.Flush()
}
