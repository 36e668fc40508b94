// Package batch runs improvement campaigns: one page per step, with
// progress persisted between steps so a campaign can be driven by
// redirects, polling, or a supervising loop.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/revise"
	"github.com/google/uuid"
)

// DefaultDelay is the pause after each unit that has a successor.
const DefaultDelay = 2 * time.Second

// Ensure Orchestrator implements revise.BatchService at compile time.
var _ revise.BatchService = (*Orchestrator)(nil)

// Orchestrator drives improvement campaigns over the rows of a sheet.
// Zero-valued tuning fields disable the behaviour they control.
type Orchestrator struct {
	Sheets    revise.SheetService
	Fetcher   revise.Fetcher
	Extractor revise.Extractor
	Improver  revise.Improver
	Progress  revise.ProgressService

	// Delay is applied after a unit when the campaign has more units.
	Delay time.Duration

	// MaxContentLength caps the characters sent for analysis.
	MaxContentLength int

	// Location is used for record timestamps. Nil uses the time as
	// returned by Now.
	Location *time.Location

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time

	// NewID generates campaign IDs. Nil uses random UUIDs.
	NewID func() string
}

// NewOrchestrator creates an Orchestrator with the default delay and
// content cap.
func NewOrchestrator(sheets revise.SheetService, fetcher revise.Fetcher, extractor revise.Extractor, improver revise.Improver, progress revise.ProgressService) *Orchestrator {
	return &Orchestrator{
		Sheets:           sheets,
		Fetcher:          fetcher,
		Extractor:        extractor,
		Improver:         improver,
		Progress:         progress,
		Delay:            DefaultDelay,
		MaxContentLength: revise.MaxContentLength,
	}
}

// ProgressFunc receives the result of every step of Run.
type ProgressFunc func(result *revise.StepResult)

// Step processes the unit at req.Offset of the campaign's target set.
//
// An Offset of 0 starts the campaign afresh, discarding any earlier
// progress stored under the same ID. Targets are selected from a fresh
// sheet snapshot on every step. Only failures to read the snapshot or to
// save progress are returned as errors; a failing unit is recorded and
// the campaign continues.
//
// A continuing campaign only accepts the offset after its stored cursor.
// Offsets already recorded return the stored progress without processing
// anything, and offsets beyond the next unit are EINVALID.
func (o *Orchestrator) Step(ctx context.Context, req revise.StepRequest) (*revise.StepResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = revise.DefaultLimit
	}
	if req.Offset < 0 {
		return nil, revise.Errorf(revise.EINVALID, "offset must not be negative")
	}

	progress, err := o.loadProgress(ctx, req.CampaignID, req.Offset)
	if err != nil {
		return nil, err
	}
	if req.Offset > 0 && progress.Processed() > 0 {
		switch {
		case req.Offset <= progress.Offset:
			return &revise.StepResult{
				Progress:   progress,
				NextOffset: progress.Offset + 1,
				HasMore:    !progress.Done(),
			}, nil
		case req.Offset > progress.Offset+1:
			return nil, revise.Errorf(revise.EINVALID, "offset %d skips ahead of campaign %s; next offset is %d",
				req.Offset, progress.CampaignID, progress.Offset+1)
		}
	}

	rows, err := o.Sheets.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet snapshot: %w", err)
	}
	targets := SelectTargets(rows, limit)

	progress.Total = len(targets)
	progress.Offset = req.Offset
	progress.Limit = limit

	var unit *revise.UnitResult
	if req.Offset < len(targets) {
		unit = o.process(ctx, targets[req.Offset])
		progress.Record(unit)
	}

	progress.UpdatedAt = o.now()
	if err := o.Progress.SaveProgress(ctx, progress); err != nil {
		if unit != nil {
			return nil, fmt.Errorf("save progress after %q: %w", unit.Message, err)
		}
		return nil, fmt.Errorf("save progress: %w", err)
	}

	result := &revise.StepResult{
		Progress:   progress,
		Unit:       unit,
		NextOffset: req.Offset + 1,
		HasMore:    unit != nil && !progress.Done(),
	}
	if result.HasMore {
		o.sleep(ctx)
	}
	return result, nil
}

// Run drives a campaign to completion, calling fn after every step.
// A campaign found in the progress store resumes after its last recorded
// unit; an unknown or empty campaignID starts a new campaign. A limit of
// 0 keeps the limit of a resumed campaign.
func (o *Orchestrator) Run(ctx context.Context, campaignID string, limit int, fn ProgressFunc) (*revise.BatchProgress, error) {
	offset := 0
	if campaignID != "" {
		p, err := o.Progress.FindProgress(ctx, campaignID)
		switch {
		case revise.ErrorCode(err) == revise.ENOTFOUND:
		case err != nil:
			return nil, err
		case p.Processed() > 0 && p.Done():
			return p, nil
		case p.Processed() > 0:
			offset = p.Offset + 1
			if limit <= 0 {
				limit = p.Limit
			}
		}
	}
	if campaignID == "" {
		campaignID = o.newID()
	}

	var progress *revise.BatchProgress
	for {
		if err := ctx.Err(); err != nil {
			return progress, err
		}

		result, err := o.Step(ctx, revise.StepRequest{CampaignID: campaignID, Offset: offset, Limit: limit})
		if err != nil {
			return progress, err
		}
		progress = result.Progress
		if fn != nil {
			fn(result)
		}
		if !result.HasMore {
			return progress, nil
		}
		offset = result.NextOffset
	}
}

// ProcessRow runs one unit for the data row at index row, outside any
// campaign. The row's own URL is used; url is the fallback for rows that
// have none.
func (o *Orchestrator) ProcessRow(ctx context.Context, row int, url string) (*revise.UnitResult, error) {
	if row <= 0 {
		return nil, revise.Errorf(revise.EINVALID, "row must be a positive data row index")
	}
	if url == "" {
		return nil, revise.Errorf(revise.EINVALID, "url required")
	}

	rows, err := o.Sheets.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet snapshot: %w", err)
	}
	if row >= len(rows) {
		return nil, revise.Errorf(revise.ENOTFOUND, "row %d not found", row)
	}

	article := revise.ParseArticleRow(row, rows[row])
	if article.Metrics.URL == "" {
		article.Metrics.URL = url
	}
	return o.process(ctx, article), nil
}

// Targets returns up to limit rows in processing order. A limit of 0
// returns every data row.
func (o *Orchestrator) Targets(ctx context.Context, limit int) ([]*revise.ArticleRow, error) {
	rows, err := o.Sheets.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet snapshot: %w", err)
	}
	return SelectTargets(rows, limit), nil
}

// Append writes record after the last cell of the data row at index row.
// The row is re-read immediately before the write so the record lands
// after any history appended since the campaign snapshot was taken.
func (o *Orchestrator) Append(ctx context.Context, row int, record *revise.ImprovementRecord) (revise.CellRange, error) {
	rows, err := o.Sheets.Rows(ctx)
	if err != nil {
		return revise.CellRange{}, revise.Errorf(revise.EPERSIST, "read row %d: %v", row, revise.ErrorMessage(err))
	}
	if row <= 0 || row >= len(rows) {
		return revise.CellRange{}, revise.Errorf(revise.ENOTFOUND, "row %d not found", row)
	}

	existing := max(len(rows[row]), revise.HistoryOffset)
	rng := revise.ComputeAppendRange(existing, revise.HistoryFields, row+1)
	if err := o.Sheets.WriteRange(ctx, rng, [][]string{record.Cells()}); err != nil {
		return rng, err
	}
	return rng, nil
}

// process runs the fetch, extract, analyze, rewrite and persist cycle for
// one row. It never returns an error; failures are described in the
// result message.
func (o *Orchestrator) process(ctx context.Context, row *revise.ArticleRow) *revise.UnitResult {
	url := row.Metrics.URL
	unit := &revise.UnitResult{Row: row.Row, URL: url}

	if url == "" {
		return skip(unit, "row %d has no URL; skipping", row.Row)
	}

	html, err := o.Fetcher.Fetch(ctx, url)
	if err != nil {
		return fail(unit, "could not fetch %s: %s", url, revise.ErrorMessage(err))
	}

	extracted, err := o.Extractor.Extract(html)
	if err != nil {
		return fail(unit, "could not extract %s: %s", url, revise.ErrorMessage(err))
	}
	if extracted.Empty() {
		return skip(unit, "no article_title or article_body found at %s; skipping", url)
	}

	content := revise.ComposeContent(extracted.Title, extracted.Body, o.MaxContentLength)

	issues, err := o.Improver.AnalyzeIssues(ctx, content, row.Metrics)
	if err != nil {
		return fail(unit, "could not analyze %s: %s", url, revise.ErrorMessage(err))
	}
	improved, err := o.Improver.Rewrite(ctx, content, issues)
	if err != nil {
		return fail(unit, "could not rewrite %s: %s", url, revise.ErrorMessage(err))
	}

	unit.Record = &revise.ImprovementRecord{
		Original:  content,
		Issues:    issues,
		Timestamp: o.timestamp(),
		Improved:  improved,
	}

	rng, err := o.Append(ctx, row.Row, unit.Record)
	if rng != (revise.CellRange{}) {
		unit.Range = &rng
	}
	if err != nil {
		return fail(unit, "could not save improvement for %s: %s", url, revise.ErrorMessage(err))
	}

	unit.Status = revise.UnitSucceeded
	unit.Message = fmt.Sprintf("fetched, analyzed and improved %s", url)
	return unit
}

func (o *Orchestrator) loadProgress(ctx context.Context, campaignID string, offset int) (*revise.BatchProgress, error) {
	if offset == 0 {
		if campaignID == "" {
			campaignID = o.newID()
		}
		return &revise.BatchProgress{CampaignID: campaignID}, nil
	}
	if campaignID == "" {
		return nil, revise.Errorf(revise.EINVALID, "campaign ID required to continue at offset %d", offset)
	}

	p, err := o.Progress.FindProgress(ctx, campaignID)
	if revise.ErrorCode(err) == revise.ENOTFOUND {
		return &revise.BatchProgress{CampaignID: campaignID}, nil
	} else if err != nil {
		return nil, err
	}
	return p, nil
}

func (o *Orchestrator) sleep(ctx context.Context) {
	if o.Delay <= 0 {
		return
	}
	timer := time.NewTimer(o.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) timestamp() string {
	t := o.now()
	if o.Location != nil {
		t = t.In(o.Location)
	}
	return t.Format(revise.TimestampFormat)
}

func (o *Orchestrator) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func fail(unit *revise.UnitResult, format string, args ...any) *revise.UnitResult {
	unit.Status = revise.UnitFailed
	unit.Message = fmt.Sprintf(format, args...)
	return unit
}

func skip(unit *revise.UnitResult, format string, args ...any) *revise.UnitResult {
	unit.Status = revise.UnitSkipped
	unit.Message = fmt.Sprintf(format, args...)
	return unit
}
