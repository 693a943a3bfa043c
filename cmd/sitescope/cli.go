package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/sitescope"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Config  sitescope.Config
	Logger  *slog.Logger
	Crawler sitescope.CrawlService
	Auditor sitescope.AuditService
	Runs    sitescope.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl CrawlCmd `cmd:"" help:"Crawl a site and print its URL inventory"`
	Audit AuditCmd `cmd:"" help:"Audit indexability signals for a list of URLs"`
	Runs  RunsCmd  `cmd:"" help:"Inspect archived crawl and audit runs"`
	Serve ServeCmd `cmd:"" help:"Start the HTTP API server"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL               string `arg:"" help:"Start URL"`
	Depth             int    `short:"d" default:"-1" help:"Maximum link depth (default from config)"`
	MaxPages          int    `short:"p" default:"-1" help:"Maximum pages fetched (default from config)"`
	IncludeSubdomains bool   `short:"s" help:"Treat subdomains of the start host as internal"`
	NoRobots          bool   `help:"Ignore robots.txt"`
	UserAgent         string `short:"u" help:"User agent override"`
	Save              bool   `help:"Archive the result"`
}

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	URLs      []string `arg:"" help:"URLs to audit"`
	UserAgent string   `short:"u" help:"User agent override"`
	Save      bool     `help:"Archive the result"`
}

// RunsCmd groups the archive subcommands.
type RunsCmd struct {
	List RunsListCmd `cmd:"" default:"1" help:"List archived runs"`
	Show RunsShowCmd `cmd:"" help:"Print an archived run's result"`
	Rm   RunsRmCmd   `cmd:"" help:"Delete an archived run"`
}

// RunsListCmd is the "runs list" subcommand.
type RunsListCmd struct {
	Kind  string `help:"Filter by kind (crawl or audit)"`
	Limit int    `default:"20" help:"Maximum rows listed"`
}

// RunsShowCmd is the "runs show" subcommand.
type RunsShowCmd struct {
	ID string `arg:"" help:"Run ID"`
}

// RunsRmCmd is the "runs rm" subcommand.
type RunsRmCmd struct {
	ID string `arg:"" help:"Run ID"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" env:"SITESCOPE_ADDR" help:"Listen address"`
}
