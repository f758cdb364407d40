package report

import "errors"

var (
	ErrUnsupportedFormat      = errors.New("export format must be xlsx or pdf")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
