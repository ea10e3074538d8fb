package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"license-monitor/internal/report"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Filename embeds the report date, e.g. License_Monitor_Report_2026-10-19.xlsx.
func Filename(now time.Time, format string) string {
	return fmt.Sprintf("License_Monitor_Report_%s.%s", now.Format("2006-01-02"), format)
}

// ContentType is the MIME type of a rendered export.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteWorkbook renders every sheet of exp into one XLSX document.
func WriteWorkbook(w io.Writer, exp report.Export) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range exp.Sheets() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("new sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet report.Sheet) error {
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	rows := append([][]any{header}, sheet.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
