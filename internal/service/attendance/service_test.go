package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/settings"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAttendanceRepo struct {
	records      map[string]attendance.Record
	nextID       int
	beforeUpdate func(r *memoryAttendanceRepo)
	lastFilter   attendance.AttendanceFilter
	failWith     error
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{records: map[string]attendance.Record{}}
}

func (m *memoryAttendanceRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	for _, r := range m.records {
		if r.EmployeeEmail == rec.EmployeeEmail && r.Date == rec.Date {
			return attendance.Record{}, attendance.ErrAlreadyRecorded
		}
	}
	m.nextID++
	rec.ID = fmt.Sprintf("rec-%d", m.nextID)
	rec.Version = 1
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryAttendanceRepo) Update(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate(m)
	}
	stored, ok := m.records[rec.ID]
	if !ok || stored.Version != rec.Version {
		return attendance.Record{}, attendance.ErrAlreadyRecorded
	}
	rec.Version++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memoryAttendanceRepo) GetByEmployeeAndDate(_ context.Context, email string, date string) (*attendance.Record, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, r := range m.records {
		if r.EmployeeEmail == email && r.Date == date {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *memoryAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	m.lastFilter = filter
	var out []attendance.Record
	for _, r := range m.records {
		if filter.Emails != nil && !(user.Scope{Emails: filter.Emails}).Includes(r.EmployeeEmail) {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memoryAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

type staticSettings struct{ s settings.Settings }

func (f staticSettings) Current(context.Context) (settings.Settings, error) { return f.s, nil }

func (f staticSettings) Update(context.Context, user.User, settings.UpdateSettingsRequest) (settings.Settings, error) {
	return f.s, nil
}

type staticScope struct{ scope user.Scope }

func (f staticScope) TeamScope(context.Context, user.User) (user.Scope, error) { return f.scope, nil }

var workplace = settings.Settings{
	WorkplaceLatitude:         -23.5505,
	WorkplaceLongitude:        -46.6333,
	AllowedRadiusMeters:       100,
	GeolocationTimeoutSeconds: 10,
	GeolocationMaxAgeSeconds:  60,
	WorkdayDefaultHours:       8,
	WorkdayMaxHours:           10,
	LunchDefaultMinutes:       60,
	LunchMinMinutes:           30,
	LunchMaxMinutes:           120,
	Timezone:                  "UTC",
}

func employee(teacher bool) user.User {
	return user.User{
		ID:         "u1",
		Email:      "ana@escola.edu.br",
		Roles:      []user.Role{user.RoleColaborador},
		ActiveRole: user.RoleColaborador,
		Status:     user.StatusActive,
		IsTeacher:  teacher,
	}
}

type harness struct {
	svc   *AttendanceServiceImpl
	repo  *memoryAttendanceRepo
	clock time.Time
}

func newHarness(cfg settings.Settings, scope user.Scope) *harness {
	h := &harness{repo: newMemoryAttendanceRepo()}
	h.svc = NewAttendanceService(h.repo, staticSettings{cfg}, staticScope{scope}).(*AttendanceServiceImpl)
	h.svc.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) record(t *testing.T, actor user.User, cp attendance.Checkpoint, hhmm string) (attendance.RecordResult, error) {
	t.Helper()
	at, err := time.Parse("2006-01-02 15:04", "2024-03-12 "+hhmm)
	require.NoError(t, err)
	h.clock = at
	return h.svc.Record(context.Background(), actor, attendance.RecordRequest{Checkpoint: cp})
}

func TestRecord_FullDay(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	actor := employee(false)

	res, err := h.record(t, actor, attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "08:00", res.RecordedTime)
	assert.Equal(t, "2024-03-12", res.Record.Date)
	assert.Equal(t, attendance.StateEntered, res.Record.State)

	_, err = h.record(t, actor, attendance.CheckpointLunchStart, "12:00")
	require.NoError(t, err)
	_, err = h.record(t, actor, attendance.CheckpointLunchEnd, "13:00")
	require.NoError(t, err)
	res, err = h.record(t, actor, attendance.CheckpointExit, "17:00")
	require.NoError(t, err)

	require.NotNil(t, res.Record.TotalWorkedDuration)
	require.NotNil(t, res.Record.LunchDuration)
	assert.Equal(t, "8h 0m", *res.Record.TotalWorkedDuration)
	assert.Equal(t, "1h 0m", *res.Record.LunchDuration)
	assert.Empty(t, res.Record.Flags)
	assert.Equal(t, attendance.StateExited, res.Record.State)

	_, err = h.record(t, actor, attendance.CheckpointExit, "17:05")
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
}

func TestRecord_ExitComputesFlags(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	actor := employee(false)

	_, err := h.record(t, actor, attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	_, err = h.record(t, actor, attendance.CheckpointLunchStart, "12:00")
	require.NoError(t, err)
	_, err = h.record(t, actor, attendance.CheckpointLunchEnd, "12:10")
	require.NoError(t, err)
	res, err := h.record(t, actor, attendance.CheckpointExit, "14:00")
	require.NoError(t, err)

	assert.ElementsMatch(t, []attendance.Flag{attendance.FlagLunchTooShort, attendance.FlagBelowDefaultWorkday}, res.Record.Flags)
}

func TestRecord_UsesWorkplaceTimezone(t *testing.T) {
	cfg := workplace
	cfg.Timezone = "America/Sao_Paulo"
	h := newHarness(cfg, user.Scope{All: true})

	// 01:30 UTC on the 13th is still the evening of the 12th in São Paulo.
	h.clock = time.Date(2024, 3, 13, 1, 30, 0, 0, time.UTC)
	res, err := h.svc.Record(context.Background(), employee(false), attendance.RecordRequest{Checkpoint: attendance.CheckpointEntry})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12", res.Record.Date)
	assert.Equal(t, "22:30", res.RecordedTime)
}

func TestRecord_PredecessorMissing(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})

	_, err := h.record(t, employee(false), attendance.CheckpointLunchStart, "12:00")
	assert.ErrorIs(t, err, attendance.ErrPredecessorMissing)
	assert.Empty(t, h.repo.records)
}

func TestRecord_HTPRequiresTeacher(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})

	_, err := h.record(t, employee(false), attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	_, err = h.record(t, employee(false), attendance.CheckpointHTPStart, "09:00")
	assert.ErrorIs(t, err, attendance.ErrHTPNotAllowed)

	teacher := employee(true)
	teacher.Email = "bia@escola.edu.br"
	_, err = h.record(t, teacher, attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	res, err := h.record(t, teacher, attendance.CheckpointHTPStart, "09:00")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateOnHTP, res.Record.State)
}

func TestRecord_GeolocationGate(t *testing.T) {
	cfg := workplace
	cfg.GeolocationEnabled = true
	h := newHarness(cfg, user.Scope{All: true})
	h.clock = time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("missing location", func(t *testing.T) {
		_, err := h.svc.Record(ctx, employee(false), attendance.RecordRequest{Checkpoint: attendance.CheckpointEntry})
		assert.ErrorIs(t, err, attendance.ErrLocationRequired)
	})

	t.Run("permission denied", func(t *testing.T) {
		reason := "permission_denied"
		_, err := h.svc.Record(ctx, employee(false), attendance.RecordRequest{
			Checkpoint:    attendance.CheckpointEntry,
			LocationError: &reason,
		})
		var gateErr *attendance.GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Equal(t, geo.ReasonPermissionDenied, gateErr.Decision.Reason)
	})

	t.Run("outside radius", func(t *testing.T) {
		_, err := h.svc.Record(ctx, employee(false), attendance.RecordRequest{
			Checkpoint: attendance.CheckpointEntry,
			Location:   &attendance.LocationInput{Latitude: -23.5600, Longitude: -46.6333},
		})
		assert.ErrorIs(t, err, attendance.ErrOutsideAllowedArea)
		var gateErr *attendance.GateError
		require.ErrorAs(t, err, &gateErr)
		require.NotNil(t, gateErr.Decision.DistanceMeters)
		assert.InDelta(t, 1056, *gateErr.Decision.DistanceMeters, 5)
	})

	t.Run("stale fix", func(t *testing.T) {
		capturedAt := "2024-03-12T07:55:00Z"
		_, err := h.svc.Record(ctx, employee(false), attendance.RecordRequest{
			Checkpoint: attendance.CheckpointEntry,
			Location:   &attendance.LocationInput{Latitude: -23.5505, Longitude: -46.6333, CapturedAt: &capturedAt},
		})
		assert.ErrorIs(t, err, attendance.ErrLocationRequired)
	})

	assert.Empty(t, h.repo.records)

	t.Run("inside radius stores location", func(t *testing.T) {
		accuracy := 12.0
		res, err := h.svc.Record(ctx, employee(false), attendance.RecordRequest{
			Checkpoint: attendance.CheckpointEntry,
			Location:   &attendance.LocationInput{Latitude: -23.5506, Longitude: -46.6334, Accuracy: &accuracy},
		})
		require.NoError(t, err)
		loc, ok := res.Record.Locations[attendance.CheckpointEntry]
		require.True(t, ok)
		assert.Equal(t, 12.0, loc.AccuracyMeters)
	})
}

func TestRecord_LostRaceReportsAlreadyRecorded(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	actor := employee(false)

	_, err := h.record(t, actor, attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)

	h.repo.beforeUpdate = func(r *memoryAttendanceRepo) {
		for id, rec := range r.records {
			rec.Version++
			r.records[id] = rec
		}
	}
	_, err = h.record(t, actor, attendance.CheckpointExit, "17:00")
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
}

func TestRecord_StoreUnavailable(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	h.repo.failWith = database.ErrStoreUnavailable

	_, err := h.record(t, employee(false), attendance.CheckpointEntry, "08:00")
	assert.ErrorIs(t, err, database.ErrStoreUnavailable)
}

func TestRecord_ValidationError(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})

	_, err := h.svc.Record(context.Background(), employee(false), attendance.RecordRequest{
		Checkpoint: attendance.CheckpointEntry,
		Location:   &attendance.LocationInput{Latitude: 120, Longitude: 0},
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, attendance.ErrLocationRequired))
}

func TestToday(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	h.clock = time.Date(2024, 3, 12, 7, 0, 0, 0, time.UTC)

	today, err := h.svc.Today(context.Background(), employee(true))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNoRecord, today.State)
	assert.Nil(t, today.Record)
	assert.Equal(t, []attendance.Checkpoint{attendance.CheckpointEntry}, today.NextCheckpoints)

	_, err = h.record(t, employee(true), attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	today, err = h.svc.Today(context.Background(), employee(true))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateEntered, today.State)
	require.NotNil(t, today.Record)
	assert.Contains(t, today.NextCheckpoints, attendance.CheckpointHTPStart)
}

func TestList_ScopedToTeam(t *testing.T) {
	h := newHarness(workplace, user.Scope{Emails: []string{"ana@escola.edu.br"}})
	other := employee(false)
	other.Email = "caio@escola.edu.br"

	_, err := h.record(t, employee(false), attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)
	_, err = h.record(t, other, attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)

	coordinator := employee(false)
	coordinator.Roles = []user.Role{user.RoleCoordenador}
	coordinator.ActiveRole = user.RoleCoordenador

	list, err := h.svc.List(context.Background(), coordinator, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, []string{"ana@escola.edu.br"}, h.repo.lastFilter.Emails)
	assert.Equal(t, 1, list.TotalPages)
}

func TestMyHistory_IgnoresRequestedEmail(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	someoneElse := "caio@escola.edu.br"

	_, err := h.svc.MyHistory(context.Background(), employee(false), attendance.AttendanceFilter{EmployeeEmail: &someoneElse})
	require.NoError(t, err)
	assert.Nil(t, h.repo.lastFilter.EmployeeEmail)
	assert.Equal(t, []string{"ana@escola.edu.br"}, h.repo.lastFilter.Emails)
}

func TestExport_AllRowsAscending(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})

	_, err := h.svc.Export(context.Background(), employee(false), attendance.ExportFilter{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, 0, h.repo.lastFilter.Limit)
	assert.Equal(t, "asc", h.repo.lastFilter.SortOrder)
	assert.Nil(t, h.repo.lastFilter.Emails)
}

func TestDelete_RequiresAdministrator(t *testing.T) {
	h := newHarness(workplace, user.Scope{All: true})
	res, err := h.record(t, employee(false), attendance.CheckpointEntry, "08:00")
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.Delete(context.Background(), employee(false), res.Record.ID), user.ErrInsufficientPermissions)

	admin := employee(false)
	admin.Roles = []user.Role{user.RoleAdministrador}
	admin.ActiveRole = user.RoleAdministrador
	require.NoError(t, h.svc.Delete(context.Background(), admin, res.Record.ID))
	assert.Empty(t, h.repo.records)
}
