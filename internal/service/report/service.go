package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/report"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

// RecordSource yields the attendance records an export covers, already
// restricted to what the viewer may see.
type RecordSource interface {
	Export(ctx context.Context, viewer user.User, filter attendance.ExportFilter) ([]attendance.Record, error)
}

type ReportServiceImpl struct {
	records RecordSource
	now     func() time.Time
}

func NewReportService(records RecordSource) report.ReportService {
	return &ReportServiceImpl{
		records: records,
		now:     time.Now,
	}
}

// ExportTimesheet implements report.ReportService.
func (s *ReportServiceImpl) ExportTimesheet(ctx context.Context, viewer user.User, filter attendance.ExportFilter) (report.File, error) {
	records, err := s.records.Export(ctx, viewer, filter)
	if err != nil {
		return report.File{}, err
	}
	if filter.Format == "" {
		filter.Format = report.FormatXLSX
	}

	sheet := report.BuildTimesheet(records, filter.StartDate, filter.EndDate, s.now())
	name := fmt.Sprintf("folha-ponto_%s_%s.%s", filter.StartDate, filter.EndDate, filter.Format)

	var file report.File
	switch filter.Format {
	case report.FormatXLSX:
		content, err := renderXLSX(sheet)
		if err != nil {
			return report.File{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
		}
		file = report.File{
			Filename:    name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}
	case report.FormatPDF:
		content, err := renderPDF(sheet)
		if err != nil {
			return report.File{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
		}
		file = report.File{
			Filename:    name,
			ContentType: "application/pdf",
			Content:     content,
		}
	default:
		return report.File{}, report.ErrUnsupportedFormat
	}

	slog.Info("Timesheet exported",
		"by", viewer.Email,
		"format", filter.Format,
		"start_date", filter.StartDate,
		"end_date", filter.EndDate,
		"rows", len(sheet.Rows),
	)
	return file, nil
}
