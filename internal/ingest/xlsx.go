package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/snstools/snsmaster/internal/schema"
)

// readXLSX extracts the first sheet of a workbook as header + data rows.
// Shared-string resolution and cell typing are excelize's problem; once the
// headers are normalized the result is indistinguishable from a CSV load.
func readXLSX(path string) ([]schema.RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets in workbook")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return buildRows(rows[0], rows[1:]), nil
}
