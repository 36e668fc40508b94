package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/batch"
)

// Runner drives a whole campaign in one process.
type Runner interface {
	Run(ctx context.Context, campaignID string, limit int, fn batch.ProgressFunc) (*revise.BatchProgress, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    *Config
	Batch     revise.BatchService
	Runner    Runner
	Progress  revise.ProgressService
	Fetcher   revise.Fetcher
	Extractor revise.Extractor

	// Generic extracts main text from pages without article classes.
	Generic revise.Extractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" env:"REVISE_CONFIG" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	SpreadsheetID string  `name:"spreadsheet-id" env:"SPREADSHEET_ID" help:"Spreadsheet holding the page metrics"`
	SheetName     string  `env:"SHEET_NAME" help:"Sheet name within the spreadsheet"`
	Credentials   string  `type:"path" env:"GOOGLE_APPLICATION_CREDENTIALS" help:"Service account key file"`
	SheetsAPIKey  string  `name:"sheets-api-key" env:"GOOGLE_SHEETS_API_KEY" help:"Sheets API key (read-only access)"`
	GeminiAPIKey  string  `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model         string  `env:"REVISE_MODEL" help:"Gemini model"`
	RateLimit     float64 `env:"REVISE_RATE_LIMIT" help:"Maximum completion requests per second"`
	Store         string  `env:"REVISE_STORE" help:"Progress store: sqlite or redis"`
	DB            string  `name:"db" type:"path" env:"REVISE_DB" help:"SQLite database path"`
	RedisURL      string  `name:"redis-url" env:"REVISE_REDIS_URL" help:"Redis URL for the redis store"`
	FallbackDir   string  `type:"path" env:"REVISE_FALLBACK_DIR" help:"Directory for failed sheet writes"`
	Browser       bool    `env:"REVISE_BROWSER" help:"Render pages in headless Chrome before extraction"`
	Timezone      string  `env:"REVISE_TIMEZONE" help:"Time zone for record timestamps"`

	Serve     ServeCmd     `cmd:"" help:"Serve the batch endpoints over HTTP"`
	Run       RunCmd       `cmd:"" help:"Run or resume a campaign to completion"`
	Unit      UnitCmd      `cmd:"" help:"Improve a single row"`
	Targets   TargetsCmd   `cmd:"" help:"List rows in processing order"`
	History   HistoryCmd   `cmd:"" help:"Show the improvement history of a row"`
	Extract   ExtractCmd   `cmd:"" help:"Show the article text extracted from a URL"`
	Campaigns CampaignsCmd `cmd:"" help:"List or delete stored campaigns"`
}

// Apply overlays the flags that were set on cfg.
func (c *CLI) Apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.SpreadsheetID, c.SpreadsheetID)
	set(&cfg.SheetName, c.SheetName)
	set(&cfg.Credentials, c.Credentials)
	set(&cfg.SheetsAPIKey, c.SheetsAPIKey)
	set(&cfg.GeminiAPIKey, c.GeminiAPIKey)
	set(&cfg.Model, c.Model)
	set(&cfg.Store, c.Store)
	set(&cfg.DBPath, c.DB)
	set(&cfg.RedisURL, c.RedisURL)
	set(&cfg.FallbackDir, c.FallbackDir)
	set(&cfg.Timezone, c.Timezone)
	if c.Browser {
		cfg.Browser = true
	}
	if c.RateLimit > 0 {
		cfg.RateLimit = c.RateLimit
	}
	if c.Serve.Addr != "" {
		cfg.Addr = c.Serve.Addr
	}
	if c.Serve.Delay != nil {
		cfg.Delay = *c.Serve.Delay
	}
	if c.Run.Delay != nil {
		cfg.Delay = *c.Run.Delay
	}
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string         `env:"REVISE_ADDR" help:"Listen address"`
	Delay *time.Duration `help:"Pause between units"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Campaign string         `help:"Campaign ID to resume; empty starts a new one"`
	Limit    int            `short:"n" help:"Number of pages to process"`
	Delay    *time.Duration `help:"Pause between units"`
}

// UnitCmd is the "unit" subcommand.
type UnitCmd struct {
	Row int    `arg:"" help:"Data row index (1 is the first row below the header)"`
	URL string `arg:"" optional:"" help:"URL to use when the row has none"`
}

// TargetsCmd is the "targets" subcommand.
type TargetsCmd struct {
	Limit int `short:"n" help:"Number of rows to list; 0 lists every row"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Row  int  `arg:"" help:"Data row index"`
	Full bool `help:"Show full original and improved text"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string `arg:"" help:"Page URL"`
	Generic bool   `short:"g" help:"Use a general-purpose extractor instead of the article classes"`
}

// CampaignsCmd is the "campaigns" subcommand.
type CampaignsCmd struct {
	Limit  int    `short:"n" default:"20" help:"Number of campaigns to list"`
	Delete string `help:"Delete the campaign with this ID"`
}
