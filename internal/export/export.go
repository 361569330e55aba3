// Package export renders incident listings as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"sentra/backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Incidents"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var Header = []string{
	"Reference",
	"Title",
	"Category",
	"Priority",
	"Status",
	"Location",
	"Incident Date",
	"Reporter",
	"Assigned To",
	"Created At",
	"Updated At",
	"Description",
}

var columnWidths = []float64{26, 40, 14, 10, 12, 24, 14, 24, 24, 20, 20, 60}

const timeLayout = "2006-01-02 15:04"

// FileName is the suggested download name for a workbook generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("incidents-%s.xlsx", t.UTC().Format("20060102-150405"))
}

// WriteIncidents writes one row per incident under a frozen header row.
// Anonymous incidents never show a reporter.
func WriteIncidents(w io.Writer, incidents []models.Incident) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i := range incidents {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := incidentRow(&incidents[i])
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func incidentRow(inc *models.Incident) []any {
	return []any{
		inc.ReferenceID,
		inc.Title,
		string(inc.Category),
		string(inc.Priority),
		string(inc.Status),
		inc.Location,
		formatDate(inc.IncidentDate),
		reporterLabel(inc),
		userLabel(inc.Assignee),
		inc.CreatedAt.UTC().Format(timeLayout),
		inc.UpdatedAt.UTC().Format(timeLayout),
		inc.Description,
	}
}

func reporterLabel(inc *models.Incident) string {
	if inc.IsAnonymous {
		return "Anonymous"
	}
	return userLabel(inc.Reporter)
}

func userLabel(u *models.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s <%s>", u.Name, u.Email))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
