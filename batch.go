package revise

import "context"

// UnitStatus is the outcome of one unit of a campaign.
type UnitStatus string

// UnitStatus constants.
const (
	UnitSucceeded UnitStatus = "succeeded"
	UnitFailed    UnitStatus = "failed"
	UnitSkipped   UnitStatus = "skipped"
)

// UnitResult reports one page's fetch, extract, analyze, rewrite and
// persist cycle.
type UnitResult struct {
	Row     int
	URL     string
	Status  UnitStatus
	Message string

	// Record is set once both completion stages have succeeded, even if
	// the write that followed failed.
	Record *ImprovementRecord

	// Range is where Record was written or attempted.
	Range *CellRange
}

// Succeeded reports whether the unit completed and was persisted.
func (u *UnitResult) Succeeded() bool {
	return u.Status == UnitSucceeded
}

// StepRequest identifies the unit of a campaign to process.
type StepRequest struct {
	// CampaignID may be empty when Offset is 0; a new ID is assigned.
	CampaignID string
	Offset     int
	Limit      int
}

// StepResult is the outcome of a single campaign step.
type StepResult struct {
	Progress *BatchProgress

	// Unit is nil when Offset was past the end of the target set.
	Unit *UnitResult

	NextOffset int
	HasMore    bool
}

// BatchService drives improvement campaigns one unit at a time.
type BatchService interface {
	// Step processes the unit at req.Offset and records it in the
	// campaign's progress. An Offset of 0 starts the campaign afresh.
	// Only a failure to read the sheet snapshot or to persist progress
	// is returned as an error; unit failures are reported in the result.
	Step(ctx context.Context, req StepRequest) (*StepResult, error)

	// ProcessRow runs a single unit for the data row at index row,
	// outside any campaign. Returns ENOTFOUND if the row does not exist.
	ProcessRow(ctx context.Context, row int, url string) (*UnitResult, error)

	// Targets returns up to limit rows in processing order.
	// A limit of 0 returns every data row.
	Targets(ctx context.Context, limit int) ([]*ArticleRow, error)
}
