package absence

import "time"

type Kind string

const (
	KindUnexcusedAbsence   Kind = "unexcused_absence"
	KindMedicalCertificate Kind = "medical_certificate"
	KindLeave              Kind = "leave"
)

var Kinds = []string{string(KindUnexcusedAbsence), string(KindMedicalCertificate), string(KindLeave)}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}

// Request is a justification for one day of absence. Approved and rejected
// are terminal.
type Request struct {
	ID              string
	EmployeeEmail   string
	Date            string // YYYY-MM-DD
	Kind            Kind
	Justification   string
	DocumentLink    *string
	Status          Status
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
	ReviewerEmail   *string
	RejectionReason *string

	// Relationships (for responses)
	EmployeeName *string
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// Review moves a pending request to its terminal status.
func (r *Request) Review(decision Status, reviewerEmail string, rejectionReason *string, at time.Time) error {
	if decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidTransition
	}
	if !r.IsPending() {
		return ErrNotPending
	}
	if decision == StatusRejected && (rejectionReason == nil || *rejectionReason == "") {
		return ErrRejectionReasonRequired
	}

	r.Status = decision
	r.ReviewedAt = &at
	r.ReviewerEmail = &reviewerEmail
	if decision == StatusRejected {
		r.RejectionReason = rejectionReason
	} else {
		r.RejectionReason = nil
	}
	return nil
}
