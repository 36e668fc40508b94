// Package fs keeps a local record of sheet writes that could not be
// persisted remotely.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/revise"
)

// LogPrefix and LogSuffix frame the date in fallback log file names.
const (
	LogPrefix = "sheet_updates_"
	LogSuffix = ".log"
)

// LogPath returns the fallback log file for the day of t.
func LogPath(dir string, t time.Time) string {
	return filepath.Join(dir, LogPrefix+t.Format("2006-01-02")+LogSuffix)
}

// FormatEntry renders one failed write as it appears in the log:
// a timestamped range line, the values as JSON, and a blank line.
func FormatEntry(t time.Time, rng revise.CellRange, values [][]string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - range: %s\ndata: %s\n", t.Format(revise.TimestampFormat), rng, buf.String()), nil
}

// Ensure FallbackSheetService implements revise.SheetService at compile time.
var _ revise.SheetService = (*FallbackSheetService)(nil)

// FallbackSheetService wraps a SheetService and appends every write the
// wrapped service rejects to a dated log file under dir. The log is
// write-only; nothing reads it back.
type FallbackSheetService struct {
	next revise.SheetService
	dir  string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// NewFallbackSheetService creates a new FallbackSheetService.
func NewFallbackSheetService(next revise.SheetService, dir string) *FallbackSheetService {
	return &FallbackSheetService{next: next, dir: dir, Now: time.Now}
}

// Rows delegates to the wrapped service.
func (s *FallbackSheetService) Rows(ctx context.Context) ([][]string, error) {
	return s.next.Rows(ctx)
}

// WriteRange delegates to the wrapped service. On failure the write is
// logged locally and EPERSIST is returned either way.
func (s *FallbackSheetService) WriteRange(ctx context.Context, rng revise.CellRange, values [][]string) error {
	err := s.next.WriteRange(ctx, rng, values)
	if err == nil {
		return nil
	}

	path, logErr := s.append(rng, values)
	if logErr != nil {
		return revise.Errorf(revise.EPERSIST, "%s (fallback log failed: %v)", revise.ErrorMessage(err), logErr)
	}
	return revise.Errorf(revise.EPERSIST, "%s (saved to %s)", revise.ErrorMessage(err), path)
}

func (s *FallbackSheetService) append(rng revise.CellRange, values [][]string) (string, error) {
	now := s.Now()
	entry, err := FormatEntry(now, rng, values)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	path := LogPath(s.dir, now)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
