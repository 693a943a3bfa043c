package main

import (
	"fmt"

	"github.com/fwojciec/sitescope"
)

// Run executes the "runs list" command.
func (c *RunsListCmd) Run(deps *Dependencies) error {
	filter := sitescope.RunFilter{Limit: c.Limit}
	if c.Kind != "" {
		kind := sitescope.RunKind(c.Kind)
		filter.Kind = &kind
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'sitescope crawl --save' to archive one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-5s  %4d pages  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Kind, r.Pages, r.StartURL)
	}

	return nil
}

// Run executes the "runs show" command.
func (c *RunsShowCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, string(run.Result))
	return nil
}

// Run executes the "runs rm" command.
func (c *RunsRmCmd) Run(deps *Dependencies) error {
	if err := deps.Runs.DeleteRun(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "deleted run %s\n", c.ID)
	return nil
}
