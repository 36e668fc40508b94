package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/revise"
)

// Ensure LoggingBatchService implements revise.BatchService.
var _ revise.BatchService = (*LoggingBatchService)(nil)

// LoggingBatchService wraps a BatchService and logs every unit outcome.
type LoggingBatchService struct {
	next   revise.BatchService
	logger *slog.Logger
}

// NewLoggingBatchService creates a new LoggingBatchService.
func NewLoggingBatchService(next revise.BatchService, logger *slog.Logger) *LoggingBatchService {
	return &LoggingBatchService{next: next, logger: logger}
}

// Step delegates to the wrapped service and logs the unit and cursor.
func (s *LoggingBatchService) Step(ctx context.Context, req revise.StepRequest) (result *revise.StepResult, err error) {
	defer func(begin time.Time) {
		campaign := req.CampaignID
		if result != nil {
			campaign = result.Progress.CampaignID
		}
		attrs := []any{"campaign", campaign, "offset", req.Offset, "limit", req.Limit}
		if result != nil {
			attrs = append(attrs, "total", result.Progress.Total, "has_more", result.HasMore)
			attrs = append(attrs, unitAttrs(result.Unit)...)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("batch step", attrs...)
	}(time.Now())
	return s.next.Step(ctx, req)
}

// ProcessRow delegates to the wrapped service and logs the unit.
func (s *LoggingBatchService) ProcessRow(ctx context.Context, row int, url string) (unit *revise.UnitResult, err error) {
	defer func(begin time.Time) {
		attrs := append([]any{"row", row}, unitAttrs(unit)...)
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("process row", attrs...)
	}(time.Now())
	return s.next.ProcessRow(ctx, row, url)
}

// Targets delegates to the wrapped service.
func (s *LoggingBatchService) Targets(ctx context.Context, limit int) (targets []*revise.ArticleRow, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("targets",
			"limit", limit,
			"count", len(targets),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Targets(ctx, limit)
}

func unitAttrs(u *revise.UnitResult) []any {
	if u == nil {
		return nil
	}
	return []any{"url", u.URL, "status", string(u.Status), "message", u.Message}
}
