package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const kindXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func extractXLSX(content []byte) Result {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("open XLSX: %w", err)}
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("rows for sheet %q: %w", sheet, err)}
		}
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
	}
	return textResult(buf.String())
}
