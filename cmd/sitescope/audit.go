package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/sitescope"
)

// Run executes the audit command.
func (c *AuditCmd) Run(deps *Dependencies) error {
	req := sitescope.AuditRequest{
		URLs:      c.URLs,
		UserAgent: c.UserAgent,
	}
	if req.UserAgent == "" {
		req.UserAgent = deps.Config.UserAgent
	}

	results, err := deps.Auditor.Audit(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
		return err
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(payload))

	if c.Save {
		run := &sitescope.Run{
			Kind:     sitescope.RunKindAudit,
			StartURL: strings.Join(c.URLs, " "),
			Pages:    len(results),
			Result:   payload,
		}
		if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "saved run %s\n", run.ID)
	}

	return nil
}
