package revise_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/revise"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := revise.Errorf(revise.ENOTFOUND, "row %d not found", 7)

	assert.Equal(t, revise.ENOTFOUND, revise.ErrorCode(err))
	assert.Equal(t, "row 7 not found", revise.ErrorMessage(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, revise.ErrorCode(nil))
	})

	t.Run("wrapped application error", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("snapshot: %w", revise.Errorf(revise.EUPSTREAM, "bad shape"))
		assert.Equal(t, revise.EUPSTREAM, revise.ErrorCode(err))
	})

	t.Run("plain error is internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, revise.EINTERNAL, revise.ErrorCode(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, revise.ErrorMessage(nil))
	})

	t.Run("plain error keeps its text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "connection refused", revise.ErrorMessage(errors.New("connection refused")))
	})
}
