package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"license-monitor/internal/report"
)

// WriteLicensesCSV renders only the Licenses sheet, for the single-sheet export.
func WriteLicensesCSV(w io.Writer, exp report.Export) error {
	buf := bufio.NewWriter(w)
	cw := csv.NewWriter(buf)
	cw.UseCRLF = true

	sheet := exp.LicensesSheet()
	if err := cw.Write(sheet.Header); err != nil {
		return err
	}
	record := make([]string, len(sheet.Header))
	for _, row := range sheet.Rows {
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// Write renders exp in the requested format.
func Write(w io.Writer, format string, exp report.Export) error {
	switch format {
	case "", FormatXLSX:
		return WriteWorkbook(w, exp)
	case FormatCSV:
		return WriteLicensesCSV(w, exp)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
