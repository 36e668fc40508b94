package revise

import (
	"math"
	"strconv"
	"strings"
)

// Sheet layout. Column A holds the URL followed by the search metrics;
// improvement history starts at HistoryOffset in groups of HistoryFields.
const (
	ColumnURL         = 0
	ColumnClicks      = 1
	ColumnImpressions = 2
	ColumnCTR         = 3
	ColumnPosition    = 4

	HistoryOffset = 5
	HistoryFields = 4
)

// TimestampFormat is the layout of ImprovementRecord.Timestamp.
const TimestampFormat = "2006-01-02 15:04:05"

// PageMetrics holds the search-performance numbers of one page.
type PageMetrics struct {
	URL         string  `json:"url"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// ClickThroughRate returns clicks divided by impressions, or zero when
// the page has no impressions. It is computed rather than read from the
// CTR column, whose formatting varies between exports.
func (m PageMetrics) ClickThroughRate() float64 {
	if m.Impressions <= 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

// ImprovementRecord is one analyze-and-rewrite cycle stored in a row.
type ImprovementRecord struct {
	Original  string `json:"original"`
	Issues    string `json:"issues"`
	Timestamp string `json:"timestamp"`
	Improved  string `json:"improved"`
}

// Cells returns the record in sheet column order.
func (r *ImprovementRecord) Cells() []string {
	return []string{r.Original, r.Issues, r.Timestamp, r.Improved}
}

// ArticleRow is a parsed data row of the sheet.
type ArticleRow struct {
	// Row is the index of the row in the sheet values, where 0 is the
	// header. The A1 row number is Row+1.
	Row     int                  `json:"row"`
	Metrics PageMetrics          `json:"metrics"`
	History []*ImprovementRecord `json:"history"`

	// Width is the number of cells the row currently holds.
	Width int `json:"width"`
}

// RowNumber returns the 1-based sheet row number used in A1 ranges.
func (r *ArticleRow) RowNumber() int {
	return r.Row + 1
}

// Latest returns the most recent history record, or nil.
func (r *ArticleRow) Latest() *ImprovementRecord {
	if len(r.History) == 0 {
		return nil
	}
	return r.History[len(r.History)-1]
}

// ParseArticleRow reads metrics and history from the cells of a data row.
// Missing or malformed metric cells read as zero. A history group whose
// first cell is empty is not a record.
func ParseArticleRow(row int, cells []string) *ArticleRow {
	r := &ArticleRow{
		Row: row,
		Metrics: PageMetrics{
			URL:         strings.TrimSpace(cell(cells, ColumnURL)),
			Clicks:      parseCount(cell(cells, ColumnClicks)),
			Impressions: parseCount(cell(cells, ColumnImpressions)),
			CTR:         parseDecimal(cell(cells, ColumnCTR)),
			Position:    parseDecimal(cell(cells, ColumnPosition)),
		},
		Width: len(cells),
	}
	for i := HistoryOffset; i < len(cells); i += HistoryFields {
		if cells[i] == "" {
			continue
		}
		r.History = append(r.History, &ImprovementRecord{
			Original:  cells[i],
			Issues:    cell(cells, i+1),
			Timestamp: cell(cells, i+2),
			Improved:  cell(cells, i+3),
		})
	}
	return r
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// parseCount reads integers the way sheet exports format them:
// "1,234" and "12.0" both parse.
// parseCount reads a non-negative count. Negative or unparsable cells
// read as zero and huge values saturate at math.MaxInt.
func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err == nil && f >= math.MaxInt:
		return math.MaxInt
	case err == nil && f > 0:
		return int(f)
	case err != nil && f == math.Inf(1):
		// ParseFloat reports ErrRange with ±Inf for out-of-range input.
		return math.MaxInt
	}
	return 0
}

func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
