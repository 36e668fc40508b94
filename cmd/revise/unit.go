package main

import (
	"fmt"

	"github.com/fwojciec/revise"
)

// Run executes the unit command.
func (c *UnitCmd) Run(deps *Dependencies) error {
	unit, err := deps.Batch.ProcessRow(deps.Ctx, c.Row, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, unit.Message)
	if !unit.Succeeded() {
		return revise.Errorf(revise.EINTERNAL, "row %d was not improved", c.Row)
	}

	rec := unit.Record
	fmt.Fprintf(deps.Stdout, "\nWritten to %s at %s\n", unit.Range, rec.Timestamp)
	fmt.Fprintf(deps.Stdout, "\n## Issues\n\n%s\n", rec.Issues)
	fmt.Fprintf(deps.Stdout, "\n## Improved\n\n%s\n", rec.Improved)
	return nil
}
