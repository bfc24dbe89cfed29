package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
	"github.com/clinicadelvalle/agenda-api/internal/middleware"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type DoctorHandler struct {
	svc     *service.DoctorService
	apptSvc *service.AppointmentService
}

func NewDoctorHandler(svc *service.DoctorService, apptSvc *service.AppointmentService) *DoctorHandler {
	return &DoctorHandler{svc: svc, apptSvc: apptSvc}
}

type createDoctorRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Specialty      string `json:"specialty" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	LicenseNumber  string `json:"license_number"`
	Sede           string `json:"sede"`
	Password       string `json:"password" binding:"required"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.svc.CreateDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		DocumentNumber: req.DocumentNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialty:      req.Specialty,
		Email:          req.Email,
		Phone:          req.Phone,
		LicenseNumber:  req.LicenseNumber,
		Sede:           req.Sede,
		Password:       req.Password,
	}, middleware.Claims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context(), &doctor.ListDoctorsQuery{
		Sede:      c.Query("sede"),
		Specialty: c.Query("specialty"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

// Availability returns the free slots for a doctor on a date. The date query
// parameter is YYYY-MM-DD; omitting it yields the full daily grid.
func (h *DoctorHandler) Availability(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	slots, err := h.apptSvc.Availability(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"doctor_id": id,
		"date":      c.Query("date"),
		"slots":     slots,
	})
}
