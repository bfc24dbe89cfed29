package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicadelvalle/agenda-api/internal/middleware"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}

func (h *ReportHandler) Appointments(c *gin.Context) {
	rep, err := h.svc.Appointments(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rep)
}
