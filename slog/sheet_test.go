package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/mock"
	revslog "github.com/fwojciec/revise/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSheetService_Rows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := &mock.SheetService{
		RowsFn: func(context.Context) ([][]string, error) {
			return [][]string{{"url"}, {"a"}, {"b"}}, nil
		},
	}

	rows, err := revslog.NewLoggingSheetService(inner, logger).Rows(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "rows=3")
}

func TestLoggingSheetService_WriteRange(t *testing.T) {
	t.Parallel()

	rng := revise.CellRange{StartColumn: "F", EndColumn: "I", RowNumber: 3}

	t.Run("logs the range at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SheetService{
			WriteRangeFn: func(context.Context, revise.CellRange, [][]string) error { return nil },
		}

		err := revslog.NewLoggingSheetService(inner, logger).WriteRange(context.Background(), rng, [][]string{{"a"}})

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "range=F3:I3")
	})

	t.Run("logs failed writes at error level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SheetService{
			WriteRangeFn: func(context.Context, revise.CellRange, [][]string) error {
				return errors.New("quota")
			},
		}

		err := revslog.NewLoggingSheetService(inner, logger).WriteRange(context.Background(), rng, [][]string{{"a"}})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "err=quota")
	})
}
