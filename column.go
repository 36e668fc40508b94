package revise

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CellRange is a single-row A1 range such as F3:I3.
// It is computed for each write and never persisted.
type CellRange struct {
	StartColumn string `json:"startColumn"`
	EndColumn   string `json:"endColumn"`
	RowNumber   int    `json:"rowNumber"`
}

// String renders the range in A1 notation.
func (r CellRange) String() string {
	return fmt.Sprintf("%s%d:%s%d", r.StartColumn, r.RowNumber, r.EndColumn, r.RowNumber)
}

// Overlaps reports whether r and o share at least one cell.
func (r CellRange) Overlaps(o CellRange) bool {
	if r.RowNumber != o.RowNumber {
		return false
	}
	rs, re, err := r.bounds()
	if err != nil {
		return false
	}
	os, oe, err := o.bounds()
	if err != nil {
		return false
	}
	return rs <= oe && os <= re
}

func (r CellRange) bounds() (int, int, error) {
	start, err := ColumnIndex(r.StartColumn)
	if err != nil {
		return 0, 0, err
	}
	end, err := ColumnIndex(r.EndColumn)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ColumnLetters converts a zero-based column index to spreadsheet letters
// using bijective base-26: 0 is A, 25 is Z, 26 is AA. Negative indexes
// yield an empty string.
func ColumnLetters(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for index >= 0 {
		buf = append([]byte{byte('A' + index%26)}, buf...)
		index = index/26 - 1
	}
	return string(buf)
}

// ColumnIndex is the inverse of ColumnLetters. Letters are case-insensitive.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, Errorf(EINVALID, "column letters required")
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, Errorf(EINVALID, "invalid column letters %q", letters)
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1, nil
}

// ComputeAppendRange returns the range that writes fields cells directly
// after the existing cells of a row. rowNumber is the 1-based sheet row.
//
// The range never overlaps earlier writes as long as existing comes from a
// fresh read of the row.
func ComputeAppendRange(existing, fields, rowNumber int) CellRange {
	return CellRange{
		StartColumn: ColumnLetters(existing),
		EndColumn:   ColumnLetters(existing + fields - 1),
		RowNumber:   rowNumber,
	}
}

var cellRangePattern = regexp.MustCompile(`^([A-Za-z]+)(\d+):([A-Za-z]+)(\d+)$`)

// ParseCellRange parses a single-row A1 range. A leading sheet name
// ("Sheet1!F3:I3") is ignored.
func ParseCellRange(s string) (CellRange, error) {
	if i := strings.LastIndex(s, "!"); i >= 0 {
		s = s[i+1:]
	}
	m := cellRangePattern.FindStringSubmatch(s)
	if m == nil {
		return CellRange{}, Errorf(EINVALID, "invalid range %q", s)
	}
	if m[2] != m[4] {
		return CellRange{}, Errorf(EINVALID, "range %q spans more than one row", s)
	}
	row, err := strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return CellRange{}, Errorf(EINVALID, "invalid row in range %q", s)
	}
	r := CellRange{
		StartColumn: strings.ToUpper(m[1]),
		EndColumn:   strings.ToUpper(m[3]),
		RowNumber:   row,
	}
	start, end, err := r.bounds()
	if err != nil {
		return CellRange{}, err
	}
	if end < start {
		return CellRange{}, Errorf(EINVALID, "range %q ends before it starts", s)
	}
	return r, nil
}
