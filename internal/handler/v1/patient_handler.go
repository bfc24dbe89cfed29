package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/internal/middleware"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type PatientHandler struct {
	svc     *service.PatientService
	apptSvc *service.AppointmentService
}

func NewPatientHandler(svc *service.PatientService, apptSvc *service.AppointmentService) *PatientHandler {
	return &PatientHandler{svc: svc, apptSvc: apptSvc}
}

type createPatientRequest struct {
	FirstName      string     `json:"first_name" binding:"required"`
	LastName       string     `json:"last_name" binding:"required"`
	DocumentType   string     `json:"document_type" binding:"required"`
	DocumentNumber string     `json:"document_number" binding:"required"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	EPS            string     `json:"eps"`
	Notes          string     `json:"notes"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.CreatePatient(c.Request.Context(), &patient.CreatePatientCommand{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentType:   patient.DocumentType(req.DocumentType),
		DocumentNumber: req.DocumentNumber,
		DateOfBirth:    req.DateOfBirth,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		City:           req.City,
		EPS:            req.EPS,
		Notes:          req.Notes,
	}, middleware.Claims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetPatient(c.Request.Context(), id, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type updatePatientRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	EPS       *string `json:"eps"`
	Notes     *string `json:"notes"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdatePatient(c.Request.Context(), id, &patient.UpdatePatientCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		EPS:       req.EPS,
		Notes:     req.Notes,
	}, middleware.Claims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), id, middleware.Claims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.svc.ListPatients(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

// Records returns the patient's clinical history, newest first.
func (h *PatientHandler) Records(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	records, err := h.apptSvc.PatientHistory(c.Request.Context(), id, middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, records)
}
