package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/report"
)

// Column widths in millimetres for a landscape A4 page with 10mm margins.
var pdfWidths = []float64{20, 38, 48, 16, 16, 16, 16, 16, 16, 18, 22, 35}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func renderPDF(sheet report.Timesheet) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	// Core fonts are cp1252; accents need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(31, 78, 120)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range report.Columns {
			pdf.CellFormat(pdfWidths[i], 7, tr(col), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 7)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Folha de ponto"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Período: %s a %s", sheet.StartDate, sheet.EndDate)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Gerado em: "+sheet.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range sheet.Rows {
		if pdf.GetY()+6 > pageHeight-bottom-5 {
			pdf.AddPage()
			header()
		}
		for i, cell := range row.Cells() {
			pdf.CellFormat(pdfWidths[i], 6, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(sheet.Summary) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, "Resumo", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, s := range sheet.Summary {
			line := fmt.Sprintf("%s <%s>: %d dias registrados, %d encerrados, total %s",
				s.EmployeeName, s.EmployeeEmail, s.DaysRecorded, s.DaysClosed, s.Worked)
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
