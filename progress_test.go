package revise_test

import (
	"testing"

	"github.com/fwojciec/revise"
	"github.com/stretchr/testify/assert"
)

func TestBatchProgress_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires campaign ID", func(t *testing.T) {
		t.Parallel()

		err := (&revise.BatchProgress{Limit: 5}).Validate()
		assert.Equal(t, revise.EINVALID, revise.ErrorCode(err))
	})

	t.Run("requires positive limit", func(t *testing.T) {
		t.Parallel()

		err := (&revise.BatchProgress{CampaignID: "c", Limit: 0}).Validate()
		assert.Equal(t, revise.EINVALID, revise.ErrorCode(err))
	})

	t.Run("accepts valid progress", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, (&revise.BatchProgress{CampaignID: "c", Limit: 5}).Validate())
	})
}

func TestBatchProgress_Record(t *testing.T) {
	t.Parallel()

	p := &revise.BatchProgress{CampaignID: "c", Limit: 5}

	p.Record(&revise.UnitResult{Status: revise.UnitSucceeded, Message: "ok"})
	p.Record(&revise.UnitResult{Status: revise.UnitFailed, Message: "bad"})
	p.Record(&revise.UnitResult{Status: revise.UnitSkipped, Message: "empty"})

	assert.Equal(t, []string{"ok"}, p.Successes)
	assert.Equal(t, []string{"bad"}, p.Errors)
	assert.Equal(t, []string{"empty"}, p.Skipped)
	assert.Equal(t, 3, p.Processed())
}

func TestBatchProgress_Done(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset int
		limit  int
		total  int
		want   bool
	}{
		{"first of five", 0, 5, 10, false},
		{"last of limit", 4, 5, 10, true},
		{"fewer targets than limit", 2, 5, 3, true},
		{"middle", 2, 5, 3 + 5, false},
		{"no targets", 0, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &revise.BatchProgress{Offset: tt.offset, Limit: tt.limit, Total: tt.total}
			assert.Equal(t, tt.want, p.Done())
		})
	}
}
