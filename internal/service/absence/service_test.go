package absence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/email"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAbsenceRepo struct {
	requests   map[string]absence.Request
	lastFilter absence.AbsenceFilter
}

func newMemoryAbsenceRepo() *memoryAbsenceRepo {
	return &memoryAbsenceRepo{requests: map[string]absence.Request{}}
}

func (m *memoryAbsenceRepo) Create(_ context.Context, req absence.Request) (absence.Request, error) {
	for _, r := range m.requests {
		if r.EmployeeEmail == req.EmployeeEmail && r.Date == req.Date {
			return absence.Request{}, absence.ErrDuplicateForDate
		}
	}
	req.ID = fmt.Sprintf("req-%d", len(m.requests)+1)
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryAbsenceRepo) GetByID(_ context.Context, id string) (absence.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return absence.Request{}, absence.ErrRequestNotFound
	}
	return r, nil
}

func (m *memoryAbsenceRepo) ExistsForDate(_ context.Context, email string, date string) (bool, error) {
	for _, r := range m.requests {
		if r.EmployeeEmail == email && r.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAbsenceRepo) UpdateReview(_ context.Context, req absence.Request) (absence.Request, error) {
	stored, ok := m.requests[req.ID]
	if !ok {
		return absence.Request{}, absence.ErrRequestNotFound
	}
	if !stored.IsPending() {
		return absence.Request{}, absence.ErrNotPending
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryAbsenceRepo) List(_ context.Context, filter absence.AbsenceFilter) ([]absence.Request, int64, error) {
	m.lastFilter = filter
	var out []absence.Request
	for _, r := range m.requests {
		if filter.Emails != nil && !(user.Scope{Emails: filter.Emails}).Includes(r.EmployeeEmail) {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

type staticScope struct{ scope user.Scope }

func (f staticScope) TeamScope(context.Context, user.User) (user.Scope, error) { return f.scope, nil }

type fakeFiles struct{ err error }

func (f fakeFiles) UploadAbsenceDocument(_ context.Context, email string, date string, doc absence.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "http://files.test/" + email + "/" + date + "/" + doc.Filename, nil
}

func (f fakeFiles) DeleteFile(context.Context, string) error { return nil }

func (f fakeFiles) GetFileURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return key, nil
}

type recordingMailer struct {
	sent []email.AbsenceReviewedMessage
	err  error
}

func (r *recordingMailer) SendAbsenceReviewed(_ context.Context, msg email.AbsenceReviewedMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) SendAccountActivated(context.Context, string, string, string) error {
	return nil
}

func member(email string, role user.Role) user.User {
	return user.User{
		ID:         email,
		Email:      email,
		Roles:      []user.Role{role},
		ActiveRole: role,
		Status:     user.StatusActive,
	}
}

var (
	ana   = member("ana@escola.edu.br", user.RoleColaborador)
	caio  = member("caio@escola.edu.br", user.RoleColaborador)
	coord = member("coord@escola.edu.br", user.RoleCoordenador)
)

type harness struct {
	svc    *AbsenceServiceImpl
	repo   *memoryAbsenceRepo
	mailer *recordingMailer
	hub    *sse.Hub
}

func newHarness(scope user.Scope, files fakeFiles) *harness {
	h := &harness{repo: newMemoryAbsenceRepo(), mailer: &recordingMailer{}, hub: sse.NewHub()}
	h.svc = NewAbsenceService(h.repo, staticScope{scope}, files, h.mailer, h.hub).(*AbsenceServiceImpl)
	h.svc.now = func() time.Time { return time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC) }
	h.svc.async = func(f func()) { f() }
	return h
}

func (h *harness) submit(t *testing.T, actor user.User, date string) absence.AbsenceResponse {
	t.Helper()
	resp, err := h.svc.Submit(context.Background(), actor, absence.SubmitRequest{
		Date:          date,
		Kind:          string(absence.KindMedicalCertificate),
		Justification: "consulta médica",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmit(t *testing.T) {
	h := newHarness(user.Scope{All: true}, fakeFiles{})

	resp, err := h.svc.Submit(context.Background(), ana, absence.SubmitRequest{
		EmployeeEmail: "someone-else@escola.edu.br",
		Date:          "2024-03-12",
		Kind:          string(absence.KindMedicalCertificate),
		Justification: "  consulta médica  ",
		Document:      &absence.Document{Filename: "atestado.pdf", Size: 1024, Content: strings.NewReader("pdf")},
	})
	require.NoError(t, err)

	assert.Equal(t, ana.Email, resp.EmployeeEmail)
	assert.Equal(t, absence.StatusPending, resp.Status)
	assert.Equal(t, "consulta médica", resp.Justification)
	require.NotNil(t, resp.DocumentLink)
	assert.Contains(t, *resp.DocumentLink, "atestado.pdf")
	assert.Equal(t, "2024-03-13T09:00:00Z", resp.SubmittedAt)

	_, err = h.svc.Submit(context.Background(), ana, absence.SubmitRequest{
		Date:          "2024-03-12",
		Kind:          string(absence.KindLeave),
		Justification: "again",
	})
	assert.ErrorIs(t, err, absence.ErrDuplicateForDate)
}

func TestSubmit_UploadFailureStillSubmits(t *testing.T) {
	h := newHarness(user.Scope{All: true}, fakeFiles{err: errors.New("drive quota exceeded")})

	resp, err := h.svc.Submit(context.Background(), ana, absence.SubmitRequest{
		Date:          "2024-03-12",
		Kind:          string(absence.KindLeave),
		Justification: "viagem",
		Document:      &absence.Document{Filename: "comprovante.png", Size: 10, Content: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.DocumentLink)
	assert.Len(t, h.repo.requests, 1)
}

func TestReview_ApproveNotifiesEmployee(t *testing.T) {
	h := newHarness(user.Scope{Emails: []string{ana.Email}}, fakeFiles{})
	ctx := context.Background()

	_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
	assert.ErrorIs(t, err, absence.ErrRequestNotFound)

	h.pendingFor(t, ana)
	stream, closeStream := h.hub.Subscribe(ana.Email)
	defer closeStream()
	resp, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, absence.StatusApproved, resp.Status)
	require.NotNil(t, resp.ReviewerEmail)
	assert.Equal(t, coord.Email, *resp.ReviewerEmail)
	require.NotNil(t, resp.ReviewedAt)
	assert.Equal(t, "2024-03-13T09:00:00Z", *resp.ReviewedAt)

	require.Len(t, h.mailer.sent, 1)
	assert.True(t, h.mailer.sent[0].Approved)
	assert.Equal(t, ana.Email, h.mailer.sent[0].To)
	assert.Equal(t, coord.Email, h.mailer.sent[0].ReviewerEmail)

	require.Len(t, stream, 1)
	event := <-stream
	assert.Equal(t, EventAbsenceReviewed, event.Name)
	assert.Equal(t, absence.StatusApproved, event.Data.(absence.AbsenceResponse).Status)

	_, err = h.svc.Review(ctx, coord, absence.ReviewRequest{
		ID:              reviewID,
		Decision:        "rejected",
		RejectionReason: ptr("late"),
	})
	assert.ErrorIs(t, err, absence.ErrNotPending)
	assert.Len(t, h.mailer.sent, 1)
}

const reviewID = "0190f5a4-0000-7000-8000-00000000000a"

func (h *harness) pendingFor(t *testing.T, owner user.User) {
	t.Helper()
	h.repo.requests[reviewID] = absence.Request{
		ID:            reviewID,
		EmployeeEmail: owner.Email,
		Date:          "2024-03-12",
		Kind:          absence.KindLeave,
		Justification: "viagem",
		Status:        absence.StatusPending,
	}
}

func ptr(s string) *string { return &s }

func TestReview_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection requires reason", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.pendingFor(t, ana)
		_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "rejected"})
		assert.ErrorIs(t, err, absence.ErrRejectionReasonRequired)
		stored := h.repo.requests[reviewID]
		assert.True(t, stored.IsPending())
	})

	t.Run("rejection with reason", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.pendingFor(t, ana)
		resp, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "rejected", RejectionReason: ptr("sem documento")})
		require.NoError(t, err)
		assert.Equal(t, absence.StatusRejected, resp.Status)
		require.Len(t, h.mailer.sent, 1)
		assert.Equal(t, "sem documento", h.mailer.sent[0].RejectionReason)
	})

	t.Run("unknown decision", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.pendingFor(t, ana)
		_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "pending"})
		assert.ErrorIs(t, err, absence.ErrInvalidTransition)
	})

	t.Run("outside coordination", func(t *testing.T) {
		h := newHarness(user.Scope{Emails: []string{caio.Email}}, fakeFiles{})
		h.pendingFor(t, ana)
		_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
		assert.ErrorIs(t, err, user.ErrOutsideCoordination)
	})

	t.Run("own request", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.pendingFor(t, coord)
		_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
		assert.ErrorIs(t, err, absence.ErrSelfReview)
	})

	t.Run("collaborator cannot review", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.pendingFor(t, ana)
		_, err := h.svc.Review(ctx, caio, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	})

	t.Run("mail failure does not fail review", func(t *testing.T) {
		h := newHarness(user.Scope{All: true}, fakeFiles{})
		h.mailer.err = errors.New("smtp down")
		h.pendingFor(t, ana)
		_, err := h.svc.Review(ctx, coord, absence.ReviewRequest{ID: reviewID, Decision: "approved"})
		assert.NoError(t, err)
	})
}

func TestGet_OwnerOrTeam(t *testing.T) {
	h := newHarness(user.Scope{Emails: []string{caio.Email}}, fakeFiles{})
	h.pendingFor(t, ana)
	ctx := context.Background()

	_, err := h.svc.Get(ctx, ana, reviewID)
	assert.NoError(t, err)

	_, err = h.svc.Get(ctx, caio, reviewID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = h.svc.Get(ctx, coord, reviewID)
	assert.ErrorIs(t, err, user.ErrOutsideCoordination)
}

func TestMyRequestsAndList_Scoped(t *testing.T) {
	h := newHarness(user.Scope{Emails: []string{caio.Email}}, fakeFiles{})
	h.submit(t, ana, "2024-03-11")
	h.submit(t, caio, "2024-03-11")
	ctx := context.Background()

	mine, err := h.svc.MyRequests(ctx, ana, absence.AbsenceFilter{EmployeeEmail: ptr(caio.Email)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Equal(t, ana.Email, mine.Requests[0].EmployeeEmail)

	team, err := h.svc.List(ctx, coord, absence.AbsenceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), team.TotalCount)
	assert.Equal(t, caio.Email, team.Requests[0].EmployeeEmail)
	assert.Equal(t, 20, team.Limit)
}
