package revise

import "context"

// SheetService reads and writes the spreadsheet backing ArticleRow data.
// Row 0 of Rows is the header.
type SheetService interface {
	// Rows returns a snapshot of every row of the sheet.
	Rows(ctx context.Context) ([][]string, error)

	// WriteRange writes values into rng. Returns EPERSIST when the write
	// is not confirmed.
	WriteRange(ctx context.Context, rng CellRange, values [][]string) error
}
