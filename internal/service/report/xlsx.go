package report

import (
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	timesheetSheet = "Ponto"
	summarySheet   = "Resumo"
)

var summaryColumns = []string{"Colaborador", "E-mail", "Dias registrados", "Dias encerrados", "Total trabalhado"}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
}

// writeTable writes a header row followed by rows, styling and freezing the header.
func writeTable(f *excelize.File, sheet string, header []string, rows [][]string, style int) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func renderXLSX(sheet report.Timesheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", timesheetSheet); err != nil {
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		rows = append(rows, r.Cells())
	}
	if err := writeTable(f, timesheetSheet, report.Columns, rows, style); err != nil {
		return nil, err
	}
	// Names and e-mails are wider than times.
	if err := f.SetColWidth(timesheetSheet, "B", "C", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(timesheetSheet, "L", "L", 40); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := make([][]string, 0, len(sheet.Summary))
	for _, s := range sheet.Summary {
		summary = append(summary, []string{
			s.EmployeeName,
			s.EmployeeEmail,
			itoa(s.DaysRecorded),
			itoa(s.DaysClosed),
			s.Worked,
		})
	}
	if err := writeTable(f, summarySheet, summaryColumns, summary, style); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
