package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/fwojciec/sitescope"
	"github.com/fwojciec/sitescope/audit"
	"github.com/fwojciec/sitescope/crawl"
	"github.com/fwojciec/sitescope/goquery"
	sshttp "github.com/fwojciec/sitescope/http"
	siteslog "github.com/fwojciec/sitescope/slog"
	"github.com/fwojciec/sitescope/sqlite"
)

func main() {
	// A missing .env file is fine; the environment wins over file values.
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Config holds the resolved process defaults.
	Config sitescope.Config

	// SQLite database backing the run archive.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Crawler sitescope.CrawlService
	Auditor sitescope.AuditService
	Runs    sitescope.RunService
}

// NewMain returns a new instance of Main with defaults resolved from the
// environment.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Config: configFromEnv(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Config: m.Config,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitescope"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitescope --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITESCOPE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger := newLogger(stderr)

	extensions, err := loadExtensions(m.Config.ExtensionsPath)
	if err != nil {
		return fmt.Errorf("failed to load ignored extensions from %q: %w", m.Config.ExtensionsPath, err)
	}

	fetcher := sshttp.NewFetcher(sshttp.WithTimeout(m.Config.Timeout))
	parserSvc := goquery.NewParser()

	var limiter sitescope.HostLimiter
	if m.Config.RPS > 0 {
		limiter = crawl.NewHostLimiter(m.Config.RPS)
	}

	m.Crawler = siteslog.NewLoggingCrawlService(&crawl.Crawler{
		Fetcher:     siteslog.NewLoggingFetcher(fetcher, logger),
		Robots:      sshttp.NewRobotsService(nil),
		Sitemaps:    siteslog.NewLoggingSitemapService(sshttp.NewSitemapService(nil), logger),
		Parser:      parserSvc,
		Extensions:  extensions,
		Limiter:     limiter,
		Concurrency: m.Config.Concurrency,
	}, logger)

	m.Auditor = siteslog.NewLoggingAuditService(&audit.Auditor{
		Fetcher:     fetcher,
		Parser:      parserSvc,
		Concurrency: m.Config.Concurrency,
	}, logger)

	m.Runs = siteslog.NewLoggingRunService(sqlite.NewRunService(m.DB), logger)

	deps.Crawler = m.Crawler
	deps.Auditor = m.Auditor
	deps.Runs = m.Runs
	deps.Logger = logger

	return kongCtx.Run(deps)
}

// loadExtensions resolves the ignored-extensions filter: an explicit path
// overrides the embedded asset list.
func loadExtensions(path string) (*sitescope.ExtensionFilter, error) {
	if path == "" {
		return sitescope.DefaultExtensionFilter(), nil
	}
	return sitescope.LoadExtensionFilter(path)
}

func defaultDBPath() string {
	if path := os.Getenv("SITESCOPE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitescope.db"
	}
	dir := filepath.Join(home, ".sitescope")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitescope.db")
}
