package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

var _ revise.BatchService = (*BatchService)(nil)

// BatchService is a mock implementation of revise.BatchService.
type BatchService struct {
	StepFn       func(ctx context.Context, req revise.StepRequest) (*revise.StepResult, error)
	ProcessRowFn func(ctx context.Context, row int, url string) (*revise.UnitResult, error)
	TargetsFn    func(ctx context.Context, limit int) ([]*revise.ArticleRow, error)
}

func (s *BatchService) Step(ctx context.Context, req revise.StepRequest) (*revise.StepResult, error) {
	return s.StepFn(ctx, req)
}

func (s *BatchService) ProcessRow(ctx context.Context, row int, url string) (*revise.UnitResult, error) {
	return s.ProcessRowFn(ctx, row, url)
}

func (s *BatchService) Targets(ctx context.Context, limit int) ([]*revise.ArticleRow, error) {
	return s.TargetsFn(ctx, limit)
}
