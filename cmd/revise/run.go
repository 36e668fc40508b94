package main

import (
	"fmt"

	"github.com/fwojciec/revise"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	limit := c.Limit
	if limit == 0 && c.Campaign == "" {
		limit = deps.Config.Limit
	}

	progress, err := deps.Runner.Run(deps.Ctx, c.Campaign, limit, func(r *revise.StepResult) {
		if r.Unit == nil {
			return
		}
		fmt.Fprintf(deps.Stdout, "[%d/%d] %s: %s\n", r.Progress.Processed(), min(r.Progress.Limit, r.Progress.Total), r.Unit.Status, r.Unit.Message)
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		if progress != nil {
			fmt.Fprintf(deps.Stderr, "Resume with: revise run --campaign %s\n", progress.CampaignID)
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nCampaign %s: %d succeeded, %d failed, %d skipped\n",
		progress.CampaignID, len(progress.Successes), len(progress.Errors), len(progress.Skipped))
	return nil
}
