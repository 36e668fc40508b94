package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/batch"
	main "github.com/fwojciec/revise/cmd/revise"
	"github.com/fwojciec/revise/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: main.DefaultConfig(),
	}
}

type runnerFunc func(ctx context.Context, campaignID string, limit int, fn batch.ProgressFunc) (*revise.BatchProgress, error)

func (f runnerFunc) Run(ctx context.Context, campaignID string, limit int, fn batch.ProgressFunc) (*revise.BatchProgress, error) {
	return f(ctx, campaignID, limit, fn)
}

func TestRunCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports every unit and a summary", func(t *testing.T) {
		t.Parallel()

		var gotID string
		var gotLimit int
		runner := runnerFunc(func(_ context.Context, id string, limit int, fn batch.ProgressFunc) (*revise.BatchProgress, error) {
			gotID, gotLimit = id, limit
			p := &revise.BatchProgress{CampaignID: "c1", Total: 2, Limit: 2}
			p.Successes = append(p.Successes, "fetched, analyzed and improved https://a")
			fn(&revise.StepResult{Progress: p, Unit: &revise.UnitResult{Status: revise.UnitSucceeded, Message: p.Successes[0]}, HasMore: true})
			p.Skipped = append(p.Skipped, "row 2 has no URL; skipping")
			fn(&revise.StepResult{Progress: p, Unit: &revise.UnitResult{Status: revise.UnitSkipped, Message: p.Skipped[0]}})
			return p, nil
		})

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := testDeps(stdout, stderr)
		deps.Runner = runner

		err := (&main.RunCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Empty(t, gotID)
		assert.Equal(t, revise.DefaultLimit, gotLimit)
		out := stdout.String()
		assert.Contains(t, out, "[1/2] succeeded: fetched, analyzed and improved https://a")
		assert.Contains(t, out, "[2/2] skipped: row 2 has no URL; skipping")
		assert.Contains(t, out, "Campaign c1: 1 succeeded, 0 failed, 1 skipped")
	})

	t.Run("resuming keeps the stored limit", func(t *testing.T) {
		t.Parallel()

		var gotLimit = -1
		runner := runnerFunc(func(_ context.Context, _ string, limit int, _ batch.ProgressFunc) (*revise.BatchProgress, error) {
			gotLimit = limit
			return &revise.BatchProgress{CampaignID: "c1"}, nil
		})

		deps := testDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Runner = runner

		err := (&main.RunCmd{Campaign: "c1"}).Run(deps)

		require.NoError(t, err)
		assert.Zero(t, gotLimit)
	})

	t.Run("prints resume hint on interruption", func(t *testing.T) {
		t.Parallel()

		runner := runnerFunc(func(context.Context, string, int, batch.ProgressFunc) (*revise.BatchProgress, error) {
			return &revise.BatchProgress{CampaignID: "c9"}, context.Canceled
		})

		stderr := &bytes.Buffer{}
		deps := testDeps(&bytes.Buffer{}, stderr)
		deps.Runner = runner

		err := (&main.RunCmd{Limit: 3}).Run(deps)

		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, stderr.String(), "revise run --campaign c9")
	})
}

func TestUnitCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints record of a successful unit", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			ProcessRowFn: func(_ context.Context, row int, url string) (*revise.UnitResult, error) {
				assert.Equal(t, 3, row)
				assert.Equal(t, "https://fallback", url)
				return &revise.UnitResult{
					Row:     3,
					Status:  revise.UnitSucceeded,
					Message: "fetched, analyzed and improved https://a",
					Record:  &revise.ImprovementRecord{Issues: "too short", Improved: "longer text", Timestamp: "2024-05-01 10:00:00"},
					Range:   &revise.CellRange{StartColumn: "F", EndColumn: "I", RowNumber: 4},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		err := (&main.UnitCmd{Row: 3, URL: "https://fallback"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Written to F4:I4 at 2024-05-01 10:00:00")
		assert.Contains(t, out, "too short")
		assert.Contains(t, out, "longer text")
	})

	t.Run("fails when the unit fails", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			ProcessRowFn: func(context.Context, int, string) (*revise.UnitResult, error) {
				return &revise.UnitResult{Status: revise.UnitFailed, Message: "could not fetch https://a: HTTP 404"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		err := (&main.UnitCmd{Row: 1}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "HTTP 404")
	})

	t.Run("reports missing row", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			ProcessRowFn: func(context.Context, int, string) (*revise.UnitResult, error) {
				return nil, revise.Errorf(revise.ENOTFOUND, "row 40 not found")
			},
		}

		stderr := &bytes.Buffer{}
		deps := testDeps(&bytes.Buffer{}, stderr)
		deps.Batch = batchSvc

		err := (&main.UnitCmd{Row: 40}).Run(deps)

		assert.Equal(t, revise.ENOTFOUND, revise.ErrorCode(err))
		assert.Contains(t, stderr.String(), "row 40 not found")
	})
}

func sampleRows() []*revise.ArticleRow {
	return []*revise.ArticleRow{
		{
			Row:     2,
			Metrics: revise.PageMetrics{URL: "https://b", Impressions: 10, Clicks: 1, Position: 4.2},
			History: []*revise.ImprovementRecord{{
				Original:  strings.Repeat("あ", 300),
				Issues:    "タイトルが弱い",
				Timestamp: "2024-01-01 09:00:00",
				Improved:  "改善版",
			}},
		},
		{Row: 1, Metrics: revise.PageMetrics{URL: "https://a", Impressions: 100}},
	}
}

func TestTargetsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists rows in order", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			TargetsFn: func(_ context.Context, limit int) ([]*revise.ArticleRow, error) {
				assert.Equal(t, 2, limit)
				return sampleRows(), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		err := (&main.TargetsCmd{Limit: 2}).Run(deps)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "IMPRESSIONS")
		assert.Contains(t, lines[1], "https://b")
		assert.Contains(t, lines[1], "10.00%")
		assert.Contains(t, lines[2], "https://a")
	})

	t.Run("shows message for empty sheet", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			TargetsFn: func(context.Context, int) ([]*revise.ArticleRow, error) {
				return []*revise.ArticleRow{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		require.NoError(t, (&main.TargetsCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "No rows")
	})

	t.Run("returns snapshot error", func(t *testing.T) {
		t.Parallel()

		batchSvc := &mock.BatchService{
			TargetsFn: func(context.Context, int) ([]*revise.ArticleRow, error) {
				return nil, errors.New("quota exceeded")
			},
		}

		stderr := &bytes.Buffer{}
		deps := testDeps(&bytes.Buffer{}, stderr)
		deps.Batch = batchSvc

		require.Error(t, (&main.TargetsCmd{}).Run(deps))
		assert.Contains(t, stderr.String(), "quota exceeded")
	})
}

func TestHistoryCmd_Run(t *testing.T) {
	t.Parallel()

	batchSvc := &mock.BatchService{
		TargetsFn: func(context.Context, int) ([]*revise.ArticleRow, error) {
			return sampleRows(), nil
		},
	}

	t.Run("truncates text by default", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		require.NoError(t, (&main.HistoryCmd{Row: 2}).Run(deps))
		out := stdout.String()
		assert.Contains(t, out, "https://b")
		assert.Contains(t, out, "#1  2024-01-01 09:00:00")
		assert.Contains(t, out, strings.Repeat("あ", 200)+"...")
		assert.NotContains(t, out, strings.Repeat("あ", 201))
		assert.Contains(t, out, "改善版")
	})

	t.Run("shows full text with full flag", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		require.NoError(t, (&main.HistoryCmd{Row: 2, Full: true}).Run(deps))
		assert.Contains(t, stdout.String(), strings.Repeat("あ", 300))
	})

	t.Run("row without history", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Batch = batchSvc

		require.NoError(t, (&main.HistoryCmd{Row: 1}).Run(deps))
		assert.Contains(t, stdout.String(), "No improvements yet.")
	})

	t.Run("unknown row", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Batch = batchSvc

		err := (&main.HistoryCmd{Row: 9}).Run(deps)

		assert.Equal(t, revise.ENOTFOUND, revise.ErrorCode(err))
	})
}

func TestExtractCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints composed content", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				assert.Equal(t, "https://example.com/dream", url)
				return "<html></html>", nil
			},
		}
		deps.Extractor = &mock.Extractor{
			ExtractFn: func(string) (*revise.ExtractResult, error) {
				return &revise.ExtractResult{Title: "夢占い", Body: "本文", Strategy: "paragraphs"}, nil
			},
		}

		err := (&main.ExtractCmd{URL: "https://example.com/dream"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "title:    夢占い")
		assert.Contains(t, out, "strategy: paragraphs")
		assert.Contains(t, out, "夢占い 本文")
	})

	t.Run("empty extraction is an error", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) { return "<p>x</p>", nil },
		}
		deps.Extractor = &mock.Extractor{
			ExtractFn: func(string) (*revise.ExtractResult, error) { return &revise.ExtractResult{}, nil },
		}

		err := (&main.ExtractCmd{URL: "https://example.com"}).Run(deps)

		assert.Equal(t, revise.EEMPTY, revise.ErrorCode(err))
	})

	t.Run("fetch error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := testDeps(&bytes.Buffer{}, stderr)
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "", revise.Errorf(revise.EFETCH, "HTTP 503 for %s", url)
			},
		}

		err := (&main.ExtractCmd{URL: "https://example.com"}).Run(deps)

		assert.Equal(t, revise.EFETCH, revise.ErrorCode(err))
		assert.Contains(t, stderr.String(), "HTTP 503")
	})
}

func TestCampaignsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists campaigns", func(t *testing.T) {
		t.Parallel()

		progress := &mock.ProgressService{
			FindProgressesFn: func(_ context.Context, filter revise.ProgressFilter) ([]*revise.BatchProgress, error) {
				assert.Equal(t, 20, filter.Limit)
				return []*revise.BatchProgress{
					{CampaignID: "c1", Total: 3, Offset: 2, Limit: 3, Successes: []string{"a", "b"}, Errors: []string{"c"}, UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
					{CampaignID: "c2", Total: 5, Offset: 0, Limit: 5, Skipped: []string{"s"}},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Progress = progress

		require.NoError(t, (&main.CampaignsCmd{Limit: 20}).Run(deps))
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "c1")
		assert.Contains(t, lines[1], "3/3")
		assert.Contains(t, lines[1], "done")
		assert.Contains(t, lines[1], "2024-01-02 03:04:05")
		assert.Contains(t, lines[2], "running")
	})

	t.Run("shows message when empty", func(t *testing.T) {
		t.Parallel()

		progress := &mock.ProgressService{
			FindProgressesFn: func(context.Context, revise.ProgressFilter) ([]*revise.BatchProgress, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Progress = progress

		require.NoError(t, (&main.CampaignsCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "No campaigns found")
	})

	t.Run("deletes a campaign", func(t *testing.T) {
		t.Parallel()

		var deleted string
		progress := &mock.ProgressService{
			DeleteProgressFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Progress = progress

		require.NoError(t, (&main.CampaignsCmd{Delete: "c1"}).Run(deps))
		assert.Equal(t, "c1", deleted)
		assert.Contains(t, stdout.String(), "Deleted campaign c1")
	})

	t.Run("delete unknown campaign", func(t *testing.T) {
		t.Parallel()

		progress := &mock.ProgressService{
			DeleteProgressFn: func(_ context.Context, id string) error {
				return revise.Errorf(revise.ENOTFOUND, "campaign %s not found", id)
			},
		}

		deps := testDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Progress = progress

		err := (&main.CampaignsCmd{Delete: "zz"}).Run(deps)

		assert.Equal(t, revise.ENOTFOUND, revise.ErrorCode(err))
	})
}

func TestServeCmd_Run(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout := &bytes.Buffer{}
	deps := testDeps(stdout, &bytes.Buffer{})
	deps.Ctx = ctx
	deps.Config.Addr = "127.0.0.1:0"
	deps.Batch = &mock.BatchService{}

	err := (&main.ServeCmd{}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "listening on http://127.0.0.1:")
}

func TestExtractCmd_Generic(t *testing.T) {
	t.Parallel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	deps := testDeps(stdout, stderr)
	deps.Fetcher = &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) { return "<article>x</article>", nil },
	}
	deps.Extractor = &mock.Extractor{
		ExtractFn: func(string) (*revise.ExtractResult, error) {
			t.Fatal("article extractor should not be used")
			return nil, nil
		},
	}
	deps.Generic = &mock.Extractor{
		ExtractFn: func(string) (*revise.ExtractResult, error) {
			return &revise.ExtractResult{Title: "T", Body: "main text", Strategy: "trafilatura"}, nil
		},
	}

	err := (&main.ExtractCmd{URL: "https://example.com", Generic: true}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "strategy: trafilatura")
	assert.Contains(t, stdout.String(), "T main text")
}
