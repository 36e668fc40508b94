package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/revise"
)

// Ensure LoggingSheetService implements revise.SheetService.
var _ revise.SheetService = (*LoggingSheetService)(nil)

// LoggingSheetService wraps a SheetService with logging.
type LoggingSheetService struct {
	next   revise.SheetService
	logger *slog.Logger
}

// NewLoggingSheetService creates a new LoggingSheetService.
func NewLoggingSheetService(next revise.SheetService, logger *slog.Logger) *LoggingSheetService {
	return &LoggingSheetService{next: next, logger: logger}
}

// Rows delegates to the wrapped service and logs the snapshot size.
func (s *LoggingSheetService) Rows(ctx context.Context) (rows [][]string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("sheet read",
			"rows", len(rows),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rows(ctx)
}

// WriteRange delegates to the wrapped service and logs the range written.
// Failed writes are logged at error level.
func (s *LoggingSheetService) WriteRange(ctx context.Context, rng revise.CellRange, values [][]string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "sheet write",
			"range", rng.String(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WriteRange(ctx, rng, values)
}
