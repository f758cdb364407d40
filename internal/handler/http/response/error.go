package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/auth"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/report"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/worktime"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // empty means err.Error()
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	// Auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", ""},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", ""},
	{auth.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired"},
	{auth.ErrRefreshTokenRevoked, http.StatusUnauthorized, "REFRESH_TOKEN_REVOKED", "Refresh token revoked"},
	{auth.ErrEmailNotVerified, http.StatusForbidden, "EMAIL_NOT_VERIFIED", ""},
	{auth.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE", ""},

	// Users and roles
	{user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action"},
	{user.ErrUserInactive, http.StatusForbidden, "ACCOUNT_INACTIVE", ""},
	{user.ErrOutsideCoordination, http.StatusForbidden, "OUTSIDE_COORDINATION", ""},
	{user.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{user.ErrUserEmailExists, http.StatusConflict, "EMAIL_EXISTS", ""},
	{user.ErrCannotModifySelf, http.StatusConflict, "CANNOT_MODIFY_SELF", ""},
	{user.ErrRoleNotAssigned, http.StatusUnprocessableEntity, "ROLE_NOT_ASSIGNED", ""},
	{user.ErrInvalidRole, http.StatusUnprocessableEntity, "INVALID_ROLE", ""},

	// Attendance
	{attendance.ErrHTPNotAllowed, http.StatusForbidden, "HTP_NOT_ALLOWED", ""},
	{attendance.ErrRecordNotFound, http.StatusNotFound, "RECORD_NOT_FOUND", "Attendance record not found"},
	{attendance.ErrPredecessorMissing, http.StatusConflict, "PREDECESSOR_MISSING", ""},
	{attendance.ErrAlreadyRecorded, http.StatusConflict, "ALREADY_RECORDED", ""},
	{attendance.ErrRecordClosed, http.StatusConflict, "RECORD_CLOSED", ""},
	{attendance.ErrOutOfOrder, http.StatusConflict, "OUT_OF_ORDER", ""},
	{attendance.ErrInvalidCheckpoint, http.StatusUnprocessableEntity, "INVALID_CHECKPOINT", ""},
	{worktime.ErrEndBeforeStart, http.StatusUnprocessableEntity, "END_BEFORE_START", ""},
	{worktime.ErrNegativeDuration, http.StatusUnprocessableEntity, "NEGATIVE_DURATION", ""},

	// Absences
	{absence.ErrRequestNotFound, http.StatusNotFound, "ABSENCE_NOT_FOUND", "Absence request not found"},
	{absence.ErrDuplicateForDate, http.StatusConflict, "DUPLICATE_FOR_DATE", ""},
	{absence.ErrNotPending, http.StatusConflict, "NOT_PENDING", ""},
	{absence.ErrSelfReview, http.StatusForbidden, "SELF_REVIEW", ""},
	{absence.ErrInvalidTransition, http.StatusUnprocessableEntity, "INVALID_TRANSITION", ""},
	{absence.ErrRejectionReasonRequired, http.StatusUnprocessableEntity, "REJECTION_REASON_REQUIRED", ""},

	// Coordinations
	{coordination.ErrCoordinationNotFound, http.StatusNotFound, "COORDINATION_NOT_FOUND", "Coordination not found"},
	{coordination.ErrCoordinationNameExists, http.StatusConflict, "COORDINATION_NAME_EXISTS", ""},
	{coordination.ErrCoordinationNotEmpty, http.StatusConflict, "COORDINATION_NOT_EMPTY", ""},
	{coordination.ErrCoordinatorRoleMissing, http.StatusUnprocessableEntity, "COORDINATOR_ROLE_MISSING", ""},

	// Reports
	{report.ErrUnsupportedFormat, http.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT", ""},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var gateErr *attendance.GateError
	if errors.As(err, &gateErr) {
		writeGateError(w, gateErr)
		return
	}

	if errors.Is(err, database.ErrStoreUnavailable) {
		slog.Error("Store unavailable", "error", err)
		ServiceUnavailable(w, "The service is temporarily unavailable, please try again")
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			Error(w, m.status, m.code, message, nil)
			return
		}
	}

	slog.Error("Unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}

func writeGateError(w http.ResponseWriter, gateErr *attendance.GateError) {
	d := gateErr.Decision
	details := map[string]string{"reason": string(d.Reason)}
	if d.DistanceMeters != nil {
		details["distance_meters"] = strconv.FormatFloat(*d.DistanceMeters, 'f', 0, 64)
	}

	if errors.Is(gateErr, attendance.ErrOutsideAllowedArea) {
		Error(w, http.StatusForbidden, "OUTSIDE_ALLOWED_AREA", gateErr.Error(), details)
		return
	}
	Error(w, http.StatusUnprocessableEntity, "LOCATION_REQUIRED", gateErr.Error(), details)
}
