package absence

import (
	"io"
	"strings"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
)

const MaxDocumentSize = 10 << 20

var documentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Document is an uploaded file attached to a submission.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type SubmitRequest struct {
	EmployeeEmail string    `json:"-"`
	Date          string    `json:"date"`
	Kind          string    `json:"kind"`
	Justification string    `json:"justification"`
	Document      *Document `json:"-"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	if validator.IsEmpty(r.Kind) {
		errs.Add("kind", "kind is required")
	} else if !validator.IsInSlice(r.Kind, Kinds) {
		errs.Add("kind", "kind must be one of: "+strings.Join(Kinds, ", "))
	}

	r.Justification = strings.TrimSpace(r.Justification)
	if r.Justification == "" {
		errs.Add("justification", "justification is required")
	} else if len(r.Justification) > 2000 {
		errs.Add("justification", "justification must not exceed 2000 characters")
	}

	if r.Document != nil {
		name := strings.ToLower(r.Document.Filename)
		ext := ""
		if i := strings.LastIndex(name, "."); i >= 0 {
			ext = name[i:]
		}
		if !validator.IsInSlice(ext, documentExtensions) {
			errs.Add("document", "invalid file type: only pdf, jpg, jpeg, png allowed")
		} else if r.Document.Size > MaxDocumentSize {
			errs.Add("document", "document size must not exceed 10MB")
		}
	}

	return errs.Err()
}

type ReviewRequest struct {
	ID              string  `json:"-"`
	Decision        string  `json:"decision"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// Validate checks the shape only; the decision itself is judged by Request.Review
// so an unknown decision is reported as an invalid transition.
func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid absence request id")
	}
	if validator.IsEmpty(r.Decision) {
		errs.Add("decision", "decision is required")
	}
	if r.RejectionReason != nil {
		reason := strings.TrimSpace(*r.RejectionReason)
		r.RejectionReason = &reason
		if len(reason) > 1000 {
			errs.Add("rejection_reason", "rejection_reason must not exceed 1000 characters")
		}
	}

	return errs.Err()
}

type AbsenceFilter struct {
	EmployeeEmail *string
	Status        *string
	Kind          *string
	StartDate     *string
	EndDate       *string

	// Set by the service from the viewer's scope; nil means everyone.
	Emails []string

	Page  int
	Limit int
}

func (f *AbsenceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.EmployeeEmail != nil {
		email := validator.NormalizeEmail(*f.EmployeeEmail)
		f.EmployeeEmail = &email
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", "status must be one of: "+strings.Join(Statuses, ", "))
	}
	if f.Kind != nil && !validator.IsInSlice(*f.Kind, Kinds) {
		errs.Add("kind", "kind must be one of: "+strings.Join(Kinds, ", "))
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type AbsenceResponse struct {
	ID              string  `json:"id"`
	EmployeeEmail   string  `json:"employee_email"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	Kind            Kind    `json:"kind"`
	Justification   string  `json:"justification"`
	DocumentLink    *string `json:"document_link"`
	Status          Status  `json:"status"`
	SubmittedAt     string  `json:"submitted_at"`
	ReviewedAt      *string `json:"reviewed_at"`
	ReviewerEmail   *string `json:"reviewer_email"`
	RejectionReason *string `json:"rejection_reason"`
}

func ToResponse(r Request) AbsenceResponse {
	resp := AbsenceResponse{
		ID:              r.ID,
		EmployeeEmail:   r.EmployeeEmail,
		Date:            r.Date,
		Kind:            r.Kind,
		Justification:   r.Justification,
		DocumentLink:    r.DocumentLink,
		Status:          r.Status,
		SubmittedAt:     r.SubmittedAt.Format(time.RFC3339),
		ReviewerEmail:   r.ReviewerEmail,
		RejectionReason: r.RejectionReason,
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.ReviewedAt != nil {
		reviewedAt := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	return resp
}

type ListAbsenceResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []AbsenceResponse `json:"requests"`
}
