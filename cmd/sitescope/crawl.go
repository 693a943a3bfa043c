package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sitescope"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	req := sitescope.CrawlRequest{
		StartURL:          c.URL,
		MaxDepth:          c.Depth,
		MaxPages:          c.MaxPages,
		IncludeSubdomains: c.IncludeSubdomains,
		RespectRobots:     deps.Config.RespectRobots && !c.NoRobots,
		UserAgent:         c.UserAgent,
	}
	if req.MaxDepth < 0 {
		req.MaxDepth = deps.Config.MaxDepth
	}
	if req.MaxPages < 0 {
		req.MaxPages = deps.Config.MaxPages
	}
	if req.UserAgent == "" {
		req.UserAgent = deps.Config.UserAgent
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescope.ErrorMessage(err))
		return err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(payload))

	if c.Save {
		run := &sitescope.Run{
			Kind:     sitescope.RunKindCrawl,
			StartURL: req.StartURL,
			Pages:    result.Stats.PagesFetched,
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
