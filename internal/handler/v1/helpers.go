package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, appointment.ErrNotFound),
		errors.Is(err, doctor.ErrNotFound),
		errors.Is(err, patient.ErrNotFound),
		errors.Is(err, clinicalrecord.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrSlotTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SLOT_TAKEN"})

	case errors.Is(err, doctor.ErrAlreadyExists),
		errors.Is(err, patient.ErrAlreadyExists),
		errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrInvalidSlot),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrSundayNotBookable),
		errors.Is(err, appointment.ErrSpecialtyRequired),
		errors.Is(err, appointment.ErrAlreadyAttended),
		errors.Is(err, clinicalrecord.ErrDiagnosisRequired),
		errors.Is(err, patient.ErrInvalidDocumentType),
		errors.Is(err, patient.ErrDocumentRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service temporarily unavailable"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
