// Package sheets implements revise.SheetService on top of the Google
// Sheets v4 API.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/revise"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputOption makes the API parse written cells as if typed by a user.
const valueInputOption = "USER_ENTERED"

// Ensure SheetService implements revise.SheetService at compile time.
var _ revise.SheetService = (*SheetService)(nil)

// SheetService reads and writes a single sheet of a spreadsheet.
type SheetService struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetService creates a SheetService on an existing API client.
func NewSheetService(svc *sheets.Service, spreadsheetID, sheetName string) *SheetService {
	return &SheetService{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// Open creates the API client and a SheetService for the named sheet.
// Credentials are passed as client options, for example
// option.WithCredentialsFile.
func Open(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*SheetService, error) {
	if spreadsheetID == "" {
		return nil, revise.Errorf(revise.EINVALID, "spreadsheet ID required")
	}
	if sheetName == "" {
		return nil, revise.Errorf(revise.EINVALID, "sheet name required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return NewSheetService(svc, spreadsheetID, sheetName), nil
}

// Rows returns every row of the sheet as formatted strings.
// Trailing empty cells are omitted by the API, so rows may differ in length.
func (s *SheetService) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, QuoteSheetName(s.sheetName)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

// WriteRange writes values into rng. A response reporting no updated
// cells is EPERSIST.
func (s *SheetService) WriteRange(ctx context.Context, rng revise.CellRange, values [][]string) error {
	a1 := QuoteSheetName(s.sheetName) + "!" + rng.String()

	body := &sheets.ValueRange{Values: make([][]any, len(values))}
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		body.Values[i] = cells
	}

	resp, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, a1, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return revise.Errorf(revise.EPERSIST, "write %s: %v", a1, err)
	}
	if resp.UpdatedCells == 0 {
		return revise.Errorf(revise.EPERSIST, "write %s: no cells updated", a1)
	}
	return nil
}

// QuoteSheetName returns name in the form accepted in A1 notation.
// Names made of letters, digits and underscores are returned unchanged;
// anything else is wrapped in single quotes with embedded quotes doubled.
func QuoteSheetName(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
