package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"license-monitor/internal/license"
	"license-monitor/internal/report"
)

var now = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func sampleExport() report.Export {
	snap := license.Snapshot{
		Licenses: []license.License{{
			ID: "l1", SoftwareName: "Slack Business", LicenseKey: "SLACK-1", TotalSeats: 100, UsedSeats: 1,
			ExpirationDate: license.Date{Year: 2026, Month: time.December, Day: 31},
		}},
		Users:       []license.User{{ID: "u1", Name: "John Smith", Email: "john.smith@company.com"}},
		Assignments: []license.Assignment{{ID: "a1", UserID: "u1", LicenseID: "l1", AccessDate: license.Date{Year: 2026, Month: time.January, Day: 15}}},
	}
	return report.BuildExport(snap, now)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "License_Monitor_Report_2026-10-19.xlsx", Filename(now, FormatXLSX))
	assert.Equal(t, "License_Monitor_Report_2026-10-19.csv", Filename(now, FormatCSV))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleExport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Licenses", "Users", "Assignments", "Expiration Report"}, f.GetSheetList())

	rows, err := f.GetRows("Licenses")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Software Name", rows[0][0])
	assert.Equal(t, []string{"Slack Business", "SLACK-1", "100", "1", "99", "Dec 31, 2026", "73", "Active"}, rows[1])

	rows, err = f.GetRows("Expiration Report")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "John Smith", rows[1][5])

	rows, err = f.GetRows("Assignments")
	require.NoError(t, err)
	assert.Equal(t, "Jan 15, 2026", rows[1][3])
}

func TestWriteLicensesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleExport()))
	assert.Contains(t, buf.String(), "\r\n")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Available Seats", records[0][4])
	assert.Equal(t, "99", records[1][4])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.ErrorContains(t, Write(&bytes.Buffer{}, "pdf", sampleExport()), "unsupported export format")
}
