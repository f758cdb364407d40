package coordination

import (
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
)

type CreateCoordinationRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	CoordinatorEmails []string `json:"coordinator_emails"`
}

func (r *CreateCoordinationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	r.CoordinatorEmails = normalizeEmails(&errs, r.CoordinatorEmails)

	return errs.Err()
}

type UpdateCoordinationRequest struct {
	ID                string    `json:"-"`
	Name              *string   `json:"name,omitempty"`
	Description       *string   `json:"description,omitempty"`
	CoordinatorEmails *[]string `json:"coordinator_emails,omitempty"`
}

func (r *UpdateCoordinationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid coordination id")
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 255 {
			errs.Add("name", "name must not exceed 255 characters")
		}
	}
	if r.CoordinatorEmails != nil {
		emails := normalizeEmails(&errs, *r.CoordinatorEmails)
		r.CoordinatorEmails = &emails
	}

	return errs.Err()
}

func normalizeEmails(errs *validator.ValidationErrors, emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = validator.NormalizeEmail(e)
		if !validator.IsValidEmail(e) {
			errs.Add("coordinator_emails", "invalid email: "+e)
			continue
		}
		if !validator.IsInSlice(e, out) {
			out = append(out, e)
		}
	}
	return out
}

type CoordinationResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	CoordinatorEmails []string `json:"coordinator_emails"`
	MemberCount       int      `json:"member_count"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func ToResponse(c Coordination) CoordinationResponse {
	emails := c.CoordinatorEmails
	if emails == nil {
		emails = []string{}
	}
	return CoordinationResponse{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		CoordinatorEmails: emails,
		MemberCount:       c.MemberCount,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         c.UpdatedAt.Format(time.RFC3339),
	}
}
