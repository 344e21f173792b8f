package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/export"
)

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	Filename string
	MimeType string
	Data     []byte
}

var logbookColumns = []export.Column{
	{Key: "week", Title: "Week", Weight: 0.8},
	{Key: "submitted_at", Title: "Submitted", Weight: 1.1},
	{Key: "activities", Title: "Activities", Weight: 3},
	{Key: "challenges", Title: "Challenges", Weight: 2},
	{Key: "learnings", Title: "Learnings", Weight: 2},
	{Key: "status", Title: "Status", Weight: 0.7},
	{Key: "grade", Title: "Grade", Weight: 0.5},
	{Key: "feedback", Title: "Feedback", Weight: 1.6},
}

func logbookTable(intern *models.Intern, logbooks []models.Logbook) export.Table {
	rows := make([]map[string]string, 0, len(logbooks))
	for _, lb := range logbooks {
		rows = append(rows, map[string]string{
			"week":         lb.Week,
			"submitted_at": lb.SubmittedAt.Format("2006-01-02 15:04"),
			"activities":   lb.Activities,
			"challenges":   deref(lb.Challenges),
			"learnings":    deref(lb.Learnings),
			"status":       string(lb.Status),
			"grade":        deref(lb.Grade),
			"feedback":     deref(lb.Feedback),
		})
	}
	return export.Table{
		Title:    "Logbook reports: " + intern.FullName(),
		Subtitle: fmt.Sprintf("Matric number %s, %d report(s)", intern.MatricNumber, len(logbooks)),
		Columns:  logbookColumns,
		Rows:     rows,
	}
}

func renderExport(format, basename string, table export.Table) (*ExportFile, error) {
	switch strings.ToLower(format) {
	case "", ExportCSV:
		data, err := export.RenderCSV(table)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv")
		}
		return &ExportFile{Filename: basename + ".csv", MimeType: "text/csv", Data: data}, nil
	case ExportPDF:
		data, err := export.RenderPDF(table)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render pdf")
		}
		return &ExportFile{Filename: basename + ".pdf", MimeType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
