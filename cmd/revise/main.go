package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/batch"
	"github.com/fwojciec/revise/fs"
	"github.com/fwojciec/revise/gemini"
	"github.com/fwojciec/revise/goquery"
	revisehttp "github.com/fwojciec/revise/http"
	"github.com/fwojciec/revise/improve"
	revredis "github.com/fwojciec/revise/redis"
	"github.com/fwojciec/revise/rod"
	revsheets "github.com/fwojciec/revise/sheets"
	revslog "github.com/fwojciec/revise/slog"
	"github.com/fwojciec/revise/sqlite"
	"github.com/fwojciec/revise/trafilatura"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. When set they replace the
	// connections Run would otherwise open.
	Sheets    revise.SheetService
	Completer revise.Completer
	Fetcher   revise.Fetcher
	Progress  revise.ProgressService

	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases every connection opened by Run.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("revise"),
		kong.Description("Improve low-performing pages listed in a spreadsheet."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'revise --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if cli.Config != "" {
		if cfg, err = LoadConfigFile(cli.Config); err != nil {
			return err
		}
	}
	cli.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	defer m.Close()
	if err := m.wire(ctx, commandName(kongCtx), deps); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// wire opens only the services the command needs.
func (m *Main) wire(ctx context.Context, command string, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	switch command {
	case "extract":
		return m.wireExtraction(deps)

	case "campaigns":
		progress, err := m.openProgress(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Progress = progress
		return nil

	case "targets", "history":
		sheets, err := m.openSheets(ctx, cfg, logger)
		if err != nil {
			return err
		}
		deps.Batch = revslog.NewLoggingBatchService(batch.NewOrchestrator(sheets, nil, nil, nil, nil), logger)
		return nil
	}

	sheets, err := m.openSheets(ctx, cfg, logger)
	if err != nil {
		return err
	}
	completer, err := m.openCompleter(ctx, cfg, deps.Stderr)
	if err != nil {
		return err
	}
	progress, err := m.openProgress(ctx, cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if err := m.wireExtraction(deps); err != nil {
		return err
	}

	o := batch.NewOrchestrator(
		sheets,
		deps.Fetcher,
		deps.Extractor,
		improve.NewPipeline(revslog.NewLoggingCompleter(completer, logger)),
		progress,
	)
	o.Delay = cfg.Delay
	o.MaxContentLength = cfg.MaxContentLength
	o.Location = loc

	deps.Batch = revslog.NewLoggingBatchService(o, logger)
	deps.Runner = o
	deps.Progress = progress
	return nil
}

func (m *Main) wireExtraction(deps *Dependencies) error {
	cfg := deps.Config
	fetcher := m.Fetcher
	switch {
	case fetcher != nil:
	case cfg.Browser:
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(cfg.FetchTimeout),
			rod.WithUserAgent(revisehttp.DefaultUserAgent),
		)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, f.Close)
		fetcher = f
	default:
		f := revisehttp.NewFetcher(revisehttp.WithTimeout(cfg.FetchTimeout))
		m.closers = append(m.closers, f.Close)
		fetcher = f
	}
	deps.Fetcher = revslog.NewLoggingFetcher(fetcher, deps.Logger)
	deps.Extractor = revslog.NewLoggingExtractor(goquery.NewArticleExtractor(), deps.Logger)
	deps.Generic = revslog.NewLoggingExtractor(trafilatura.NewExtractor(), deps.Logger)
	return nil
}

func (m *Main) openSheets(ctx context.Context, cfg *Config, logger *slog.Logger) (revise.SheetService, error) {
	sheets := m.Sheets
	if sheets == nil {
		if err := cfg.RequireSheet(); err != nil {
			return nil, err
		}
		var opts []option.ClientOption
		switch {
		case cfg.Credentials != "":
			opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
		case cfg.SheetsAPIKey != "":
			opts = append(opts, option.WithAPIKey(cfg.SheetsAPIKey))
		}
		svc, err := revsheets.Open(ctx, cfg.SpreadsheetID, cfg.SheetName, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		sheets = svc
	}
	return revslog.NewLoggingSheetService(fs.NewFallbackSheetService(sheets, cfg.FallbackDir), logger), nil
}

func (m *Main) openCompleter(ctx context.Context, cfg *Config, stderr io.Writer) (revise.Completer, error) {
	if m.Completer != nil {
		return m.Completer, nil
	}
	if cfg.GeminiAPIKey == "" {
		fmt.Fprintln(stderr, "Hint: get an API key at https://aistudio.google.com/apikey")
		return nil, revise.Errorf(revise.EINVALID, "GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return gemini.NewCompleter(client,
		gemini.WithModel(cfg.Model),
		gemini.WithRateLimit(cfg.RateLimit),
	), nil
}

func (m *Main) openProgress(ctx context.Context, cfg *Config) (revise.ProgressService, error) {
	if m.Progress != nil {
		return m.Progress, nil
	}
	switch cfg.Store {
	case StoreRedis:
		client, err := revredis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		m.closers = append(m.closers, client.Close)
		return revredis.NewProgressService(client, cfg.RedisPrefix), nil
	default:
		db := sqlite.NewDB(cfg.DBPath)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
		}
		m.closers = append(m.closers, db.Close)
		return sqlite.NewProgressService(db), nil
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandName returns the subcommand of a parsed command line, without
// its positional arguments.
func commandName(ctx *kong.Context) string {
	name, _, _ := strings.Cut(ctx.Command(), " ")
	return name
}
