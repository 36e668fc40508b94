package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

var _ revise.ProgressService = (*ProgressService)(nil)

// ProgressService is a mock implementation of revise.ProgressService.
type ProgressService struct {
	FindProgressFn   func(ctx context.Context, campaignID string) (*revise.BatchProgress, error)
	FindProgressesFn func(ctx context.Context, filter revise.ProgressFilter) ([]*revise.BatchProgress, error)
	SaveProgressFn   func(ctx context.Context, progress *revise.BatchProgress) error
	DeleteProgressFn func(ctx context.Context, campaignID string) error
}

func (s *ProgressService) FindProgress(ctx context.Context, campaignID string) (*revise.BatchProgress, error) {
	return s.FindProgressFn(ctx, campaignID)
}

func (s *ProgressService) FindProgresses(ctx context.Context, filter revise.ProgressFilter) ([]*revise.BatchProgress, error) {
	return s.FindProgressesFn(ctx, filter)
}

func (s *ProgressService) SaveProgress(ctx context.Context, progress *revise.BatchProgress) error {
	return s.SaveProgressFn(ctx, progress)
}

func (s *ProgressService) DeleteProgress(ctx context.Context, campaignID string) error {
	return s.DeleteProgressFn(ctx, campaignID)
}
