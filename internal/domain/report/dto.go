package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/worktime"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Columns of the timesheet, in output order.
var Columns = []string{
	"Data",
	"Colaborador",
	"E-mail",
	"Entrada",
	"Início almoço",
	"Fim almoço",
	"Início HTP",
	"Fim HTP",
	"Saída",
	"Almoço",
	"Total trabalhado",
	"Alertas",
}

// Timesheet is the content of an export before rendering.
type Timesheet struct {
	StartDate   string
	EndDate     string
	GeneratedAt time.Time
	Rows        []TimesheetRow
	Summary     []EmployeeSummary
}

type TimesheetRow struct {
	Date          string
	EmployeeName  string
	EmployeeEmail string
	Entry         string
	LunchStart    string
	LunchEnd      string
	HTPStart      string
	HTPEnd        string
	Exit          string
	Lunch         string
	Worked        string
	Flags         string
}

// Cells returns the row in Columns order.
func (r TimesheetRow) Cells() []string {
	return []string{
		r.Date,
		r.EmployeeName,
		r.EmployeeEmail,
		r.Entry,
		r.LunchStart,
		r.LunchEnd,
		r.HTPStart,
		r.HTPEnd,
		r.Exit,
		r.Lunch,
		r.Worked,
		r.Flags,
	}
}

// EmployeeSummary totals the closed days of one employee.
type EmployeeSummary struct {
	EmployeeName  string
	EmployeeEmail string
	DaysRecorded  int
	DaysClosed    int
	Worked        string
}

// File is an export ready to be sent to the client.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var flagLabels = map[attendance.Flag]string{
	attendance.FlagLunchTooShort:       "almoço curto",
	attendance.FlagLunchTooLong:        "almoço longo",
	attendance.FlagExceedsMaxWorkday:   "acima da jornada máxima",
	attendance.FlagBelowDefaultWorkday: "abaixo da jornada padrão",
}

func flagText(flags []attendance.Flag) string {
	labels := make([]string, 0, len(flags))
	for _, f := range flags {
		if label, ok := flagLabels[f]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, string(f))
		}
	}
	return strings.Join(labels, ", ")
}

// BuildTimesheet lays records out by date then employee and totals the
// worked time of each employee. Open days count as recorded but not closed.
func BuildTimesheet(records []attendance.Record, startDate, endDate string, generatedAt time.Time) Timesheet {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b attendance.Record) int {
		return cmp.Or(strings.Compare(a.Date, b.Date), strings.Compare(a.EmployeeEmail, b.EmployeeEmail))
	})

	sheet := Timesheet{
		StartDate:   startDate,
		EndDate:     endDate,
		GeneratedAt: generatedAt,
		Rows:        make([]TimesheetRow, 0, len(sorted)),
	}

	type total struct {
		summary EmployeeSummary
		minutes int
	}
	totals := map[string]*total{}
	var order []string

	for _, r := range sorted {
		name := deref(r.EmployeeName)
		sheet.Rows = append(sheet.Rows, TimesheetRow{
			Date:          r.Date,
			EmployeeName:  name,
			EmployeeEmail: r.EmployeeEmail,
			Entry:         deref(r.EntryTime),
			LunchStart:    deref(r.LunchStartTime),
			LunchEnd:      deref(r.LunchEndTime),
			HTPStart:      deref(r.HTPStartTime),
			HTPEnd:        deref(r.HTPEndTime),
			Exit:          deref(r.ExitTime),
			Lunch:         deref(r.LunchDuration),
			Worked:        deref(r.TotalWorkedDuration),
			Flags:         flagText(r.Flags),
		})

		t, ok := totals[r.EmployeeEmail]
		if !ok {
			t = &total{summary: EmployeeSummary{EmployeeName: name, EmployeeEmail: r.EmployeeEmail}}
			totals[r.EmployeeEmail] = t
			order = append(order, r.EmployeeEmail)
		}
		t.summary.DaysRecorded++
		if r.TotalWorkedDuration != nil {
			if d, err := worktime.ParseDuration(*r.TotalWorkedDuration); err == nil {
				t.minutes += d.TotalMinutes()
				t.summary.DaysClosed++
			}
		}
	}

	slices.Sort(order)
	for _, email := range order {
		t := totals[email]
		t.summary.Worked = worktime.FromMinutes(t.minutes).String()
		sheet.Summary = append(sheet.Summary, t.summary)
	}
	return sheet
}
