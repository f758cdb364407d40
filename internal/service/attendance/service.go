package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/settings"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/worktime"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	settingsService settings.SettingsService
	scopeResolver   user.ScopeResolver
	now             func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	settingsService settings.SettingsService,
	scopeResolver user.ScopeResolver,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		settingsService:      settingsService,
		scopeResolver:        scopeResolver,
		now:                  time.Now,
	}
}

// localNow returns the current instant in the workplace timezone.
func (s *AttendanceServiceImpl) localNow(cfg settings.Settings) time.Time {
	return s.now().In(cfg.Location())
}

// Record implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Record(ctx context.Context, actor user.User, req attendance.RecordRequest) (attendance.RecordResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResult{}, err
	}

	cfg, err := s.settingsService.Current(ctx)
	if err != nil {
		return attendance.RecordResult{}, err
	}
	now := s.localNow(cfg)
	date := now.Format("2006-01-02")
	at := worktime.FormatClock(now)

	decision := geo.Evaluate(req.Fix(), cfg.GateConfig(), now)
	if !decision.Permitted {
		slog.Warn("Clock action refused by geolocation gate",
			"employee_email", actor.Email,
			"checkpoint", req.Checkpoint,
			"reason", decision.Reason,
		)
		return attendance.RecordResult{}, &attendance.GateError{Decision: decision}
	}

	if req.Checkpoint.IsHTP() && !actor.IsTeacher {
		return attendance.RecordResult{}, attendance.ErrHTPNotAllowed
	}

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.Email, date)
	if err != nil {
		return attendance.RecordResult{}, fmt.Errorf("failed to load today's record: %w", err)
	}
	rec := attendance.Record{EmployeeEmail: actor.Email, Date: date}
	if existing != nil {
		rec = *existing
	}

	if err := attendance.Apply(&rec, req.Checkpoint, at, req.StoredLocation()); err != nil {
		return attendance.RecordResult{}, err
	}
	if req.Checkpoint == attendance.CheckpointExit {
		rec.Flags = attendance.EvaluateFlags(&rec, cfg.WorkdayRules())
	}

	var saved attendance.Record
	if rec.IsNew() {
		saved, err = s.AttendanceRepository.Create(ctx, rec)
	} else {
		saved, err = s.AttendanceRepository.Update(ctx, rec)
	}
	if err != nil {
		return attendance.RecordResult{}, err
	}

	slog.Info("Attendance checkpoint recorded",
		"employee_email", actor.Email,
		"date", date,
		"checkpoint", req.Checkpoint,
		"time", at,
	)

	return attendance.RecordResult{
		Success:      true,
		RecordedTime: at,
		Record:       attendance.ToResponse(saved),
	}, nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context, actor user.User) (attendance.TodayResponse, error) {
	cfg, err := s.settingsService.Current(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	date := s.localNow(cfg).Format("2006-01-02")

	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.Email, date)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}

	resp := attendance.TodayResponse{
		Date:            date,
		State:           attendance.StateOf(rec),
		NextCheckpoints: attendance.NextCheckpoints(rec, actor.IsTeacher),
	}
	if rec != nil {
		r := attendance.ToResponse(*rec)
		resp.Record = &r
	}
	return resp, nil
}

// MyHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MyHistory(ctx context.Context, actor user.User, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.EmployeeEmail = nil
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.Emails = []string{actor.Email}
	return s.list(ctx, filter)
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, viewer user.User, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !scope.All {
		filter.Emails = scope.Emails
	}
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToResponse(r))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// Export implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Export(ctx context.Context, viewer user.User, filter attendance.ExportFilter) ([]attendance.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return nil, err
	}

	listFilter := filter.AttendanceFilter()
	if !scope.All {
		listFilter.Emails = scope.Emails
	}

	records, _, err := s.AttendanceRepository.List(ctx, listFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for export: %w", err)
	}
	return records, nil
}

// Delete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Delete(ctx context.Context, actor user.User, id string) error {
	if !user.HasPermission(actor, user.PermissionAttendanceManage) {
		return user.ErrInsufficientPermissions
	}

	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Attendance record deleted",
		"id", id,
		"employee_email", rec.EmployeeEmail,
		"date", rec.Date,
		"by", actor.Email,
	)
	return nil
}
