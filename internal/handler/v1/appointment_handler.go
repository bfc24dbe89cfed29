package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
	"github.com/clinicadelvalle/agenda-api/internal/middleware"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type bookRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
	Specialty string    `json:"specialty" binding:"required"`
	Notes     string    `json:"notes"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	claims := middleware.Claims(c)

	a, err := h.svc.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Specialty: req.Specialty,
		Notes:     req.Notes,
		CreatedBy: claims.UserID,
	}, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid patient_id"})
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid doctor_id"})
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		q.Status = &st
	}
	if raw := c.Query("from"); raw != "" {
		q.DateFrom = &raw
	}
	if raw := c.Query("to"); raw != "" {
		q.DateTo = &raw
	}

	page, err := h.svc.List(c.Request.Context(), q, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"appointments": page.Appointments,
		"total_count":  page.TotalCount,
		"page":         page.Page,
		"page_size":    page.PageSize,
		"total_pages":  page.TotalPages,
	})
}

// ListForDoctor returns a doctor's schedule. Doctors may only read their own.
func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	claims := middleware.Claims(c)
	if claims.Role == domain.RoleDoctor && (claims.DoctorID == nil || *claims.DoctorID != id) {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	q := &appointment.ListQuery{
		DoctorID: &id,
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("date"); raw != "" {
		q.DateFrom = &raw
		q.DateTo = &raw
	}

	page, err := h.svc.List(c.Request.Context(), q, claims)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page.Appointments)
}

// ListForPatient returns a patient's appointments; the service clamps patient
// callers to their own id.
func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	q := &appointment.ListQuery{
		PatientID: &id,
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	}

	page, err := h.svc.List(c.Request.Context(), q, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page.Appointments)
}

type attendRequest struct {
	Diagnosis    string                       `json:"diagnosis" binding:"required"`
	Medications  []clinicalrecord.Medication  `json:"medications"`
	Observations string                       `json:"observations"`
	Procedures   []string                     `json:"procedures"`
	Leave        *clinicalrecord.MedicalLeave `json:"medical_leave"`
	Notes        string                       `json:"notes"`
}

func (h *AppointmentHandler) Attend(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req attendRequest
	if !bindJSON(c, &req) {
		return
	}
	claims := middleware.Claims(c)

	a, err := h.svc.Attend(c.Request.Context(), id, &clinicalrecord.CreateRecordCommand{
		AppointmentID: id,
		Diagnosis:     req.Diagnosis,
		Medications:   req.Medications,
		Observations:  req.Observations,
		Procedures:    req.Procedures,
		Leave:         req.Leave,
		Notes:         req.Notes,
		CreatedBy:     claims.UserID,
	}, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id, middleware.Claims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

func (h *AppointmentHandler) GetRecord(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	rec, err := h.svc.GetRecord(c.Request.Context(), id, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rec)
}
