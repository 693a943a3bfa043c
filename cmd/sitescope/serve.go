package main

import (
	"fmt"

	ssgin "github.com/fwojciec/sitescope/gin"
)

// Run executes the serve command. It blocks until the listener fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := ssgin.NewServer(deps.Crawler, deps.Auditor, deps.Runs, deps.Config, deps.Logger)

	deps.Logger.Info("serving", "addr", c.Addr)
	if err := server.ListenAndServe(c.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
