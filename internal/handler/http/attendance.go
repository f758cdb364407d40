package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/report"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	LunchStart(w http.ResponseWriter, r *http.Request)
	LunchEnd(w http.ResponseWriter, r *http.Request)
	HTPStart(w http.ResponseWriter, r *http.Request)
	HTPEnd(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)

	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportService     report.ReportService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reportService report.ReportService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		reportService:     reportService,
	}
}

func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointEntry)
}

func (h *attendanceHandlerImpl) LunchStart(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointLunchStart)
}

func (h *attendanceHandlerImpl) LunchEnd(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointLunchEnd)
}

func (h *attendanceHandlerImpl) HTPStart(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointHTPStart)
}

func (h *attendanceHandlerImpl) HTPEnd(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointHTPEnd)
}

func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, attendance.CheckpointExit)
}

// record decodes the optional location body and applies the checkpoint.
func (h *attendanceHandlerImpl) record(w http.ResponseWriter, r *http.Request, checkpoint attendance.Checkpoint) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Record attendance decode error", "checkpoint", checkpoint, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Checkpoint = checkpoint

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Record(r.Context(), actor, req)
	if err != nil {
		slog.Warn("Record attendance refused", "checkpoint", checkpoint, "user", actor.Email, "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Attendance recorded", "checkpoint", checkpoint, "user", actor.Email)
	response.SuccessWithMessage(w, "Attendance recorded successfully", result)
}

func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	today, err := h.attendanceService.Today(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, today)
}

func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := parseAttendanceFilter(r)
	filter.EmployeeEmail = nil

	result, err := h.attendanceService.MyHistory(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.List(r.Context(), viewer, parseAttendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Export streams a timesheet file instead of the JSON envelope.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := attendance.ExportFilter{
		EmployeeEmail: queryString(r, "employee_email"),
		StartDate:     query.Get("start_date"),
		EndDate:       query.Get("end_date"),
		Format:        query.Get("format"),
	}

	file, err := h.reportService.ExportTimesheet(r.Context(), viewer, filter)
	if err != nil {
		slog.Error("Timesheet export failed", "user", viewer.Email, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Content)
}

func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.attendanceService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Attendance record deleted", "id", id, "by", actor.Email)
	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}

func parseAttendanceFilter(r *http.Request) attendance.AttendanceFilter {
	page, limit := pagination(r)
	return attendance.AttendanceFilter{
		EmployeeEmail: queryString(r, "employee_email"),
		Date:          queryString(r, "date"),
		StartDate:     queryString(r, "start_date"),
		EndDate:       queryString(r, "end_date"),
		Page:          page,
		Limit:         limit,
		SortOrder:     r.URL.Query().Get("sort_order"),
	}
}
