package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
)

type AbsenceHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type absenceHandlerImpl struct {
	absenceService absence.AbsenceService
}

func NewAbsenceHandler(absenceService absence.AbsenceService) AbsenceHandler {
	return &absenceHandlerImpl{absenceService: absenceService}
}

// Submit accepts either a JSON body or a multipart form whose 'data' field
// carries the JSON and whose optional 'document' field carries the file.
func (h *absenceHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req absence.SubmitRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(absence.MaxDocumentSize); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}

		dataJSON := r.FormValue("data")
		if dataJSON == "" {
			response.BadRequest(w, "Field 'data' is required", nil)
			return
		}
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("Failed to unmarshal JSON data", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}

		file, fileHeader, err := r.FormFile("document")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		if err == nil {
			defer file.Close()
			req.Document = &absence.Document{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Size:        fileHeader.Size,
				Content:     file,
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit absence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// The owner always comes from the session.
	req.EmployeeEmail = actor.Email

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.absenceService.Submit(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Absence request submitted", "id", result.ID, "user", actor.Email)
	response.Created(w, "Absence request submitted successfully", result)
}

func (h *absenceHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := parseAbsenceFilter(r)
	filter.EmployeeEmail = nil

	result, err := h.absenceService.MyRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *absenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.absenceService.List(r.Context(), viewer, parseAbsenceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *absenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.absenceService.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *absenceHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req absence.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Review absence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.absenceService.Review(r.Context(), reviewer, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Absence request reviewed", "id", req.ID, "decision", req.Decision, "by", reviewer.Email)
	response.SuccessWithMessage(w, "Absence request reviewed successfully", result)
}

func parseAbsenceFilter(r *http.Request) absence.AbsenceFilter {
	page, limit := pagination(r)
	return absence.AbsenceFilter{
		EmployeeEmail: queryString(r, "employee_email"),
		Status:        queryString(r, "status"),
		Kind:          queryString(r, "kind"),
		StartDate:     queryString(r, "start_date"),
		EndDate:       queryString(r, "end_date"),
		Page:          page,
		Limit:         limit,
	}
}
