package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
)

type CoordinationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Members(w http.ResponseWriter, r *http.Request)
}

type coordinationHandlerImpl struct {
	coordinationService coordination.CoordinationService
}

func NewCoordinationHandler(coordinationService coordination.CoordinationService) CoordinationHandler {
	return &coordinationHandlerImpl{coordinationService: coordinationService}
}

func (h *coordinationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req coordination.CreateCoordinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateCoordination decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.coordinationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Coordination created successfully", result)
}

func (h *coordinationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req coordination.UpdateCoordinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateCoordination decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.coordinationService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Coordination updated successfully", result)
}

func (h *coordinationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.coordinationService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Coordination deleted successfully", nil)
}

func (h *coordinationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.coordinationService.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *coordinationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.coordinationService.List(r.Context(), viewer)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *coordinationHandlerImpl) Members(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.coordinationService.Members(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
