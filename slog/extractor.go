package slog

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/revise"
)

// Ensure LoggingExtractor implements revise.Extractor.
var _ revise.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. The body is logged as
// a length and an xxhash fingerprint, so repeated extractions of an
// unchanged page can be spotted in the logs.
type LoggingExtractor struct {
	next   revise.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next revise.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
func (e *LoggingExtractor) Extract(html string) (result *revise.ExtractResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"html_bytes", len(html)}
		if result != nil {
			attrs = append(attrs,
				"title", result.Title,
				"strategy", result.Strategy,
				"body_chars", utf8.RuneCountInString(result.Body),
				"body_hash", Fingerprint(result.Body),
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html)
}

// Fingerprint returns the xxhash of s as 16 hex digits.
func Fingerprint(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
