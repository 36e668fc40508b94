package revise

import (
	"context"
	"time"
)

// DefaultLimit is the number of pages a campaign processes when no limit
// is given.
const DefaultLimit = 5

// BatchProgress is the cumulative state of a campaign. It is persisted
// between units so that each unit can run in its own request.
type BatchProgress struct {
	CampaignID string    `json:"campaignId"`
	Total      int       `json:"total"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
	Successes  []string  `json:"successes"`
	Errors     []string  `json:"errors"`
	Skipped    []string  `json:"skipped"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate returns an error if the progress contains invalid fields.
func (p *BatchProgress) Validate() error {
	if p.CampaignID == "" {
		return Errorf(EINVALID, "campaign ID required")
	}
	if p.Limit <= 0 {
		return Errorf(EINVALID, "campaign limit must be positive")
	}
	if p.Offset < 0 {
		return Errorf(EINVALID, "campaign offset must not be negative")
	}
	return nil
}

// Processed returns the number of units recorded so far.
func (p *BatchProgress) Processed() int {
	return len(p.Successes) + len(p.Errors) + len(p.Skipped)
}

// Done reports whether the unit at Offset was the last one of the campaign.
func (p *BatchProgress) Done() bool {
	return p.Offset+1 >= min(p.Limit, p.Total)
}

// Record appends the unit message to the list matching its status.
func (p *BatchProgress) Record(u *UnitResult) {
	switch u.Status {
	case UnitSucceeded:
		p.Successes = append(p.Successes, u.Message)
	case UnitSkipped:
		p.Skipped = append(p.Skipped, u.Message)
	default:
		p.Errors = append(p.Errors, u.Message)
	}
}

// ProgressService persists campaign progress.
type ProgressService interface {
	// FindProgress retrieves a campaign by ID.
	// Returns ENOTFOUND if the campaign does not exist.
	FindProgress(ctx context.Context, campaignID string) (*BatchProgress, error)

	// FindProgresses retrieves campaigns, most recently updated first.
	FindProgresses(ctx context.Context, filter ProgressFilter) ([]*BatchProgress, error)

	// SaveProgress creates or replaces a campaign.
	SaveProgress(ctx context.Context, progress *BatchProgress) error

	// DeleteProgress removes a campaign.
	// Returns ENOTFOUND if the campaign does not exist.
	DeleteProgress(ctx context.Context, campaignID string) error
}

// ProgressFilter represents a filter for FindProgresses.
type ProgressFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
