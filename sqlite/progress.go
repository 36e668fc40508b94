package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.ProgressService = (*ProgressService)(nil)

// ProgressService implements revise.ProgressService using SQLite.
type ProgressService struct {
	db *DB
}

// NewProgressService creates a new ProgressService.
func NewProgressService(db *DB) *ProgressService {
	return &ProgressService{db: db}
}

// FindProgress retrieves a campaign by ID.
func (s *ProgressService) FindProgress(ctx context.Context, campaignID string) (*revise.BatchProgress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, total, cursor, max_units, successes, errors, skipped, updated_at
		FROM campaigns
		WHERE id = ?
	`, campaignID)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, revise.Errorf(revise.ENOTFOUND, "campaign not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindProgresses retrieves campaigns, most recently updated first.
func (s *ProgressService) FindProgresses(ctx context.Context, filter revise.ProgressFilter) ([]*revise.BatchProgress, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, total, cursor, max_units, successes, errors, skipped, updated_at
		FROM campaigns
		ORDER BY updated_at DESC, id`)

	var args []any
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progresses := make([]*revise.BatchProgress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		progresses = append(progresses, p)
	}
	return progresses, rows.Err()
}

// SaveProgress creates or replaces a campaign. UpdatedAt is set to the
// current time when zero.
func (s *ProgressService) SaveProgress(ctx context.Context, p *revise.BatchProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	successes, err := encodeList(p.Successes)
	if err != nil {
		return err
	}
	errs, err := encodeList(p.Errors)
	if err != nil {
		return err
	}
	skipped, err := encodeList(p.Skipped)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, total, cursor, max_units, successes, errors, skipped, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total = excluded.total,
			cursor = excluded.cursor,
			max_units = excluded.max_units,
			successes = excluded.successes,
			errors = excluded.errors,
			skipped = excluded.skipped,
			updated_at = excluded.updated_at
	`, p.CampaignID, p.Total, p.Offset, p.Limit, successes, errs, skipped,
		formatTime(p.UpdatedAt))
	return err
}

// DeleteProgress removes a campaign.
func (s *ProgressService) DeleteProgress(ctx context.Context, campaignID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, campaignID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return revise.Errorf(revise.ENOTFOUND, "campaign not found")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (*revise.BatchProgress, error) {
	var (
		p                        revise.BatchProgress
		successes, errs, skipped string
		updatedAt                string
	)
	if err := row.Scan(&p.CampaignID, &p.Total, &p.Offset, &p.Limit,
		&successes, &errs, &skipped, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.Successes, err = decodeList(successes, "successes"); err != nil {
		return nil, err
	}
	if p.Errors, err = decodeList(errs, "errors"); err != nil {
		return nil, err
	}
	if p.Skipped, err = decodeList(skipped, "skipped"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
