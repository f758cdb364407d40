package attendance

import (
	"strings"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK ACTION DTOs
// ========================================

type LocationInput struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	CapturedAt *string  `json:"captured_at,omitempty"` // RFC3339
}

// RecordRequest is the body of every clock action. A client that could not
// get a fix sends location_error instead of location.
type RecordRequest struct {
	Checkpoint    Checkpoint     `json:"-"`
	Location      *LocationInput `json:"location,omitempty"`
	LocationError *string        `json:"location_error,omitempty"`
}

func (r *RecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Checkpoint.IsValid() {
		errs.Add("checkpoint", "invalid checkpoint")
	}

	if r.Location != nil {
		if !geo.ValidCoordinates(r.Location.Latitude, r.Location.Longitude) {
			errs.Add("location", "latitude must be between -90 and 90 and longitude between -180 and 180")
		}
		if r.Location.Accuracy != nil && *r.Location.Accuracy < 0 {
			errs.Add("location.accuracy", "accuracy must not be negative")
		}
		if r.Location.CapturedAt != nil {
			if _, ok := validator.IsValidDateTime(*r.Location.CapturedAt); !ok {
				errs.Add("location.captured_at", "captured_at must be an RFC3339 timestamp")
			}
		}
	}

	if r.LocationError != nil && !validator.IsInSlice(*r.LocationError, geo.DeviceReasons) {
		errs.Add("location_error", "location_error must be one of: "+strings.Join(geo.DeviceReasons, ", "))
	}

	return errs.Err()
}

// Fix converts the request into the gate's input. A reported device failure
// wins over a location sent alongside it.
func (r *RecordRequest) Fix() *geo.Fix {
	if r.LocationError != nil {
		return &geo.Fix{Failure: geo.Reason(*r.LocationError)}
	}
	if r.Location == nil {
		return nil
	}
	fix := &geo.Fix{Latitude: r.Location.Latitude, Longitude: r.Location.Longitude}
	if r.Location.Accuracy != nil {
		fix.AccuracyMeters = *r.Location.Accuracy
	}
	if r.Location.CapturedAt != nil {
		fix.CapturedAt, _ = validator.IsValidDateTime(*r.Location.CapturedAt)
	}
	return fix
}

// StoredLocation is what is kept on the record for the checkpoint.
func (r *RecordRequest) StoredLocation() *Location {
	fix := r.Fix()
	if fix == nil || fix.Failure != geo.ReasonNone {
		return nil
	}
	return &Location{Latitude: fix.Latitude, Longitude: fix.Longitude, AccuracyMeters: fix.AccuracyMeters}
}

type RecordResult struct {
	Success      bool               `json:"success"`
	RecordedTime string             `json:"recorded_time"`
	Record       AttendanceResponse `json:"record"`
}

// ========================================
// READ DTOs
// ========================================

type AttendanceResponse struct {
	ID                  string                  `json:"id"`
	EmployeeEmail       string                  `json:"employee_email"`
	EmployeeName        string                  `json:"employee_name,omitempty"`
	Date                string                  `json:"date"`
	State               State                   `json:"state"`
	EntryTime           *string                 `json:"entry_time"`
	LunchStartTime      *string                 `json:"lunch_start_time"`
	LunchEndTime        *string                 `json:"lunch_end_time"`
	HTPStartTime        *string                 `json:"htp_start_time"`
	HTPEndTime          *string                 `json:"htp_end_time"`
	ExitTime            *string                 `json:"exit_time"`
	TotalWorkedDuration *string                 `json:"total_worked_duration"`
	LunchDuration       *string                 `json:"lunch_duration"`
	Locations           map[Checkpoint]Location `json:"locations,omitempty"`
	Flags               []Flag                  `json:"flags"`
	CreatedAt           string                  `json:"created_at"`
	UpdatedAt           string                  `json:"updated_at"`
}

func ToResponse(r Record) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                  r.ID,
		EmployeeEmail:       r.EmployeeEmail,
		Date:                r.Date,
		State:               StateOf(&r),
		EntryTime:           r.EntryTime,
		LunchStartTime:      r.LunchStartTime,
		LunchEndTime:        r.LunchEndTime,
		HTPStartTime:        r.HTPStartTime,
		HTPEndTime:          r.HTPEndTime,
		ExitTime:            r.ExitTime,
		TotalWorkedDuration: r.TotalWorkedDuration,
		LunchDuration:       r.LunchDuration,
		Locations:           r.Locations,
		Flags:               r.Flags,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           r.UpdatedAt.Format(time.RFC3339),
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if resp.Flags == nil {
		resp.Flags = []Flag{}
	}
	return resp
}

type TodayResponse struct {
	Date            string              `json:"date"`
	State           State               `json:"state"`
	Record          *AttendanceResponse `json:"record"`
	NextCheckpoints []Checkpoint        `json:"next_checkpoints"`
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeEmail *string `json:"employee_email,omitempty"`
	Date          *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate     *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate       *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Set by the service from the viewer's scope; nil means everyone.
	Emails []string `json:"-"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc (by date)
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.EmployeeEmail != nil {
		email := validator.NormalizeEmail(*f.EmployeeEmail)
		f.EmployeeEmail = &email
		if !validator.IsValidEmail(email) {
			errs.Add("employee_email", "invalid email format")
		}
	}

	validateDates(&errs, f.Date, f.StartDate, f.EndDate)

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be one of: asc, desc")
	}

	return errs.Err()
}

// ExportFilter selects the records of a timesheet export. The range is required.
type ExportFilter struct {
	EmployeeEmail *string
	StartDate     string
	EndDate       string
	Format        string // xlsx, pdf
}

func (f *ExportFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Format == "" {
		f.Format = "xlsx"
	}
	if !validator.IsInSlice(f.Format, []string{"xlsx", "pdf"}) {
		errs.Add("format", "format must be one of: xlsx, pdf")
	}
	if f.EmployeeEmail != nil {
		email := validator.NormalizeEmail(*f.EmployeeEmail)
		f.EmployeeEmail = &email
	}

	start, okStart := validator.IsValidDate(f.StartDate)
	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if end.Sub(start) > 366*24*time.Hour {
			errs.Add("end_date", "export range must not exceed one year")
		}
	}

	return errs.Err()
}

// AttendanceFilter returns the listing filter matching this export.
func (f ExportFilter) AttendanceFilter() AttendanceFilter {
	start, end := f.StartDate, f.EndDate
	return AttendanceFilter{
		EmployeeEmail: f.EmployeeEmail,
		StartDate:     &start,
		EndDate:       &end,
		Page:          1,
		Limit:         0,
		SortOrder:     "asc",
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func validateDates(errs *validator.ValidationErrors, date, startDate, endDate *string) {
	if date != nil && *date != "" {
		if _, valid := validator.IsValidDate(*date); !valid {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	var start, end time.Time
	var okStart, okEnd bool
	if startDate != nil && *startDate != "" {
		if start, okStart = validator.IsValidDate(*startDate); !okStart {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if endDate != nil && *endDate != "" {
		if end, okEnd = validator.IsValidDate(*endDate); !okEnd {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}
