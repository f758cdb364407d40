package absence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/email"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/sse"
	"github.com/ponto-escolar/ponto-backend-go/internal/service/file"
)

const notifyTimeout = 30 * time.Second

const EventAbsenceReviewed = "absence.reviewed"

// EventPublisher pushes live events to a user's open streams.
type EventPublisher interface {
	Publish(recipient string, event sse.Event)
}

type AbsenceServiceImpl struct {
	absence.AbsenceRepository
	scopeResolver user.ScopeResolver
	fileService   file.FileService
	emailService  email.EmailService
	events        EventPublisher
	now           func() time.Time
	// async runs notifications outside the request.
	async func(func())
}

func NewAbsenceService(
	absenceRepo absence.AbsenceRepository,
	scopeResolver user.ScopeResolver,
	fileService file.FileService,
	emailService email.EmailService,
	events EventPublisher,
) absence.AbsenceService {
	return &AbsenceServiceImpl{
		AbsenceRepository: absenceRepo,
		scopeResolver:     scopeResolver,
		fileService:       fileService,
		emailService:      emailService,
		events:            events,
		now:               time.Now,
		async:             func(f func()) { go f() },
	}
}

// Submit implements absence.AbsenceService. A document that fails to upload
// does not block the submission.
func (s *AbsenceServiceImpl) Submit(ctx context.Context, actor user.User, req absence.SubmitRequest) (absence.AbsenceResponse, error) {
	req.EmployeeEmail = actor.Email
	if err := req.Validate(); err != nil {
		return absence.AbsenceResponse{}, err
	}

	exists, err := s.AbsenceRepository.ExistsForDate(ctx, req.EmployeeEmail, req.Date)
	if err != nil {
		return absence.AbsenceResponse{}, fmt.Errorf("failed to check existing request: %w", err)
	}
	if exists {
		return absence.AbsenceResponse{}, absence.ErrDuplicateForDate
	}

	newRequest := absence.Request{
		EmployeeEmail: req.EmployeeEmail,
		Date:          req.Date,
		Kind:          absence.Kind(req.Kind),
		Justification: req.Justification,
		Status:        absence.StatusPending,
		SubmittedAt:   s.now().UTC(),
	}

	if req.Document != nil && s.fileService != nil {
		link, err := s.fileService.UploadAbsenceDocument(ctx, req.EmployeeEmail, req.Date, *req.Document)
		if err != nil {
			slog.Error("Absence document upload failed, submitting without it",
				"employee_email", req.EmployeeEmail,
				"date", req.Date,
				"filename", req.Document.Filename,
				"error", err,
			)
		} else {
			newRequest.DocumentLink = &link
		}
	}

	created, err := s.AbsenceRepository.Create(ctx, newRequest)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	slog.Info("Absence request submitted",
		"id", created.ID,
		"employee_email", created.EmployeeEmail,
		"date", created.Date,
		"kind", created.Kind,
		"has_document", created.DocumentLink != nil,
	)
	return absence.ToResponse(created), nil
}

// Review implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Review(ctx context.Context, reviewer user.User, req absence.ReviewRequest) (absence.AbsenceResponse, error) {
	if err := req.Validate(); err != nil {
		return absence.AbsenceResponse{}, err
	}
	if !user.HasPermission(reviewer, user.PermissionAbsenceReview) {
		return absence.AbsenceResponse{}, user.ErrInsufficientPermissions
	}

	current, err := s.AbsenceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if current.EmployeeEmail == reviewer.Email {
		return absence.AbsenceResponse{}, absence.ErrSelfReview
	}

	scope, err := s.scopeResolver.TeamScope(ctx, reviewer)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if !scope.Includes(current.EmployeeEmail) {
		return absence.AbsenceResponse{}, user.ErrOutsideCoordination
	}

	if err := current.Review(absence.Status(req.Decision), reviewer.Email, req.RejectionReason, s.now().UTC()); err != nil {
		return absence.AbsenceResponse{}, err
	}

	reviewed, err := s.AbsenceRepository.UpdateReview(ctx, current)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	slog.Info("Absence request reviewed",
		"id", reviewed.ID,
		"employee_email", reviewed.EmployeeEmail,
		"status", reviewed.Status,
		"reviewer", reviewer.Email,
	)

	s.notifyReviewed(ctx, reviewed)
	return absence.ToResponse(reviewed), nil
}

// notifyReviewed tells the employee on their open streams and by email.
// Failures are logged only.
func (s *AbsenceServiceImpl) notifyReviewed(ctx context.Context, req absence.Request) {
	if s.events != nil {
		s.events.Publish(req.EmployeeEmail, sse.Event{Name: EventAbsenceReviewed, Data: absence.ToResponse(req)})
	}
	if s.emailService == nil {
		return
	}

	msg := email.AbsenceReviewedMessage{
		To:       req.EmployeeEmail,
		Date:     req.Date,
		Kind:     string(req.Kind),
		Approved: req.Status == absence.StatusApproved,
	}
	if req.EmployeeName != nil {
		msg.EmployeeName = *req.EmployeeName
	}
	if req.ReviewerEmail != nil {
		msg.ReviewerEmail = *req.ReviewerEmail
	}
	if req.RejectionReason != nil {
		msg.RejectionReason = *req.RejectionReason
	}

	notifyCtx := context.WithoutCancel(ctx)
	s.async(func() {
		ctx, cancel := context.WithTimeout(notifyCtx, notifyTimeout)
		defer cancel()
		if err := s.emailService.SendAbsenceReviewed(ctx, msg); err != nil {
			slog.Error("Failed to send absence review email", "id", req.ID, "to", msg.To, "error", err)
		}
	})
}

// Get implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Get(ctx context.Context, viewer user.User, id string) (absence.AbsenceResponse, error) {
	req, err := s.AbsenceRepository.GetByID(ctx, id)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if req.EmployeeEmail == viewer.Email {
		return absence.ToResponse(req), nil
	}

	if !user.HasPermission(viewer, user.PermissionAbsenceViewTeam) {
		return absence.AbsenceResponse{}, user.ErrInsufficientPermissions
	}
	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if !scope.Includes(req.EmployeeEmail) {
		return absence.AbsenceResponse{}, user.ErrOutsideCoordination
	}
	return absence.ToResponse(req), nil
}

// MyRequests implements absence.AbsenceService.
func (s *AbsenceServiceImpl) MyRequests(ctx context.Context, actor user.User, filter absence.AbsenceFilter) (absence.ListAbsenceResponse, error) {
	filter.EmployeeEmail = nil
	if err := filter.Validate(); err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	filter.Emails = []string{actor.Email}
	return s.list(ctx, filter)
}

// List implements absence.AbsenceService.
func (s *AbsenceServiceImpl) List(ctx context.Context, viewer user.User, filter absence.AbsenceFilter) (absence.ListAbsenceResponse, error) {
	if err := filter.Validate(); err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	if !scope.All {
		filter.Emails = scope.Emails
	}
	return s.list(ctx, filter)
}

func (s *AbsenceServiceImpl) list(ctx context.Context, filter absence.AbsenceFilter) (absence.ListAbsenceResponse, error) {
	requests, total, err := s.AbsenceRepository.List(ctx, filter)
	if err != nil {
		return absence.ListAbsenceResponse{}, fmt.Errorf("failed to list absence requests: %w", err)
	}

	responses := make([]absence.AbsenceResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, absence.ToResponse(r))
	}

	return absence.ListAbsenceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}
