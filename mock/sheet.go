package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

var _ revise.SheetService = (*SheetService)(nil)

// SheetService is a mock implementation of revise.SheetService.
type SheetService struct {
	RowsFn       func(ctx context.Context) ([][]string, error)
	WriteRangeFn func(ctx context.Context, rng revise.CellRange, values [][]string) error
}

func (s *SheetService) Rows(ctx context.Context) ([][]string, error) {
	return s.RowsFn(ctx)
}

func (s *SheetService) WriteRange(ctx context.Context, rng revise.CellRange, values [][]string) error {
	return s.WriteRangeFn(ctx, rng, values)
}
