package batch_test

import (
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowIndexes(targets []*revise.ArticleRow) []int {
	idx := make([]int, len(targets))
	for i, t := range targets {
		idx[i] = t.Row
	}
	return idx
}

func TestSelectTargets(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"url", "clicks", "impressions", "ctr", "position"},
		{"https://example.com/1", "1", "10"},
		{"https://example.com/2", "2", "5"},
		{"https://example.com/3", "0", "5"},
		{"https://example.com/4", "1", "20"},
	}

	t.Run("sorts by impressions then click-through rate", func(t *testing.T) {
		t.Parallel()

		targets := batch.SelectTargets(rows, 0)

		assert.Equal(t, []int{3, 2, 1, 4}, rowIndexes(targets))
		assert.Equal(t, "https://example.com/3", targets[0].Metrics.URL)
	})

	t.Run("takes the first limit rows", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []int{3, 2}, rowIndexes(batch.SelectTargets(rows, 2)))
	})

	t.Run("returns every row when limit exceeds them", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, batch.SelectTargets(rows, 50), 4)
	})

	t.Run("keeps sheet order for equal metrics", func(t *testing.T) {
		t.Parallel()

		tied := [][]string{
			{"header"},
			{"https://example.com/a", "1", "10"},
			{"https://example.com/b", "1", "10"},
			{"https://example.com/c", "1", "10"},
		}

		assert.Equal(t, []int{1, 2, 3}, rowIndexes(batch.SelectTargets(tied, 0)))
	})

	t.Run("ranks rows without impressions first", func(t *testing.T) {
		t.Parallel()

		mixed := [][]string{
			{"header"},
			{"https://example.com/a", "3", "1,200"},
			{"https://example.com/b"},
			{"https://example.com/c", "0", "0"},
		}

		assert.Equal(t, []int{2, 3, 1}, rowIndexes(batch.SelectTargets(mixed, 0)))
	})

	t.Run("orders extreme impression counts", func(t *testing.T) {
		t.Parallel()

		extreme := [][]string{
			{"header"},
			{"https://example.com/a", "0", "1e30"},
			{"https://example.com/b", "0", "-5"},
			{"https://example.com/c", "0", "7"},
		}

		assert.Equal(t, []int{2, 3, 1}, rowIndexes(batch.SelectTargets(extreme, 0)))
	})

	t.Run("returns empty for header-only sheet", func(t *testing.T) {
		t.Parallel()

		require.NotNil(t, batch.SelectTargets([][]string{{"url"}}, 5))
		assert.Empty(t, batch.SelectTargets([][]string{{"url"}}, 5))
		assert.Empty(t, batch.SelectTargets(nil, 5))
	})
}
