package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"golens/domain/explain"
)

// ReportWriter renders aggregation statistics into an xlsx workbook: one
// sheet per label, conditions ordered best average rank first.
type ReportWriter struct{}

// NewReportWriter creates a report writer.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// Write saves the workbook to path, overwriting any existing file.
func (w *ReportWriter) Write(stats *explain.AggregationStats, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, label := range stats.LabelKeys() {
		sheet := sanitizeSheetName(label)
		if first {
			// Rename the default sheet instead of leaving an empty Sheet1.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("renaming sheet for label %q: %w", label, err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("creating sheet for label %q: %w", label, err)
			}
		}

		if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"condition", "average_rank", "support"}); err != nil {
			return err
		}
		for i, row := range stats.Ranking(label) {
			cell := fmt.Sprintf("A%d", i+2)
			if err := f.SetSheetRow(sheet, cell, &[]interface{}{row.Condition, row.AverageRank, row.Support}); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report workbook: %w", err)
	}
	return nil
}

// sanitizeSheetName keeps label names inside Excel's 31-char sheet limit and
// strips characters Excel rejects.
func sanitizeSheetName(label string) string {
	replacer := map[rune]rune{'\\': '_', '/': '_', '?': '_', '*': '_', '[': '_', ']': '_', ':': '_'}
	out := make([]rune, 0, len(label))
	for _, r := range label {
		if repl, bad := replacer[r]; bad {
			r = repl
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "report"
	}
	if len(out) > 31 {
		out = out[:31]
	}
	return string(out)
}
