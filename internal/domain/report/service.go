package report

import (
	"context"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

type ReportService interface {
	// ExportTimesheet renders the records visible to viewer in the requested format.
	ExportTimesheet(ctx context.Context, viewer user.User, filter attendance.ExportFilter) (File, error)
}
