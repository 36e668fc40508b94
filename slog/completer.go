package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/revise"
)

// Ensure LoggingCompleter implements revise.Completer.
var _ revise.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging. Prompt and completion
// text is not logged, only its size.
type LoggingCompleter struct {
	next   revise.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next revise.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the call.
func (c *LoggingCompleter) Complete(ctx context.Context, system, user string) (text string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("complete",
			"prompt_chars", utf8.RuneCountInString(user),
			"completion_chars", utf8.RuneCountInString(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, system, user)
}
