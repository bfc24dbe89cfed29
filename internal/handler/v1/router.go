package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/config"
	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/middleware"
	"github.com/clinicadelvalle/agenda-api/internal/service"
	"github.com/clinicadelvalle/agenda-api/pkg/auth"
	"github.com/clinicadelvalle/agenda-api/pkg/metrics"
)

type RouterDeps struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *metrics.Collector
	JWT            *auth.JWTManager
	AuthSvc        *service.AuthService
	AppointmentSvc *service.AppointmentService
	DoctorSvc      *service.DoctorService
	PatientSvc     *service.PatientService
	ReportSvc      *service.ReportService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Observe(deps.Metrics, deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthSvc)
	apptHandler := NewAppointmentHandler(deps.AppointmentSvc)
	doctorHandler := NewDoctorHandler(deps.DoctorSvc, deps.AppointmentSvc)
	patientHandler := NewPatientHandler(deps.PatientSvc, deps.AppointmentSvc)
	reportHandler := NewReportHandler(deps.ReportSvc)

	api := r.Group("/api/v1")

	// Public surface: registration, login, and the doctor directory with
	// its availability grid.
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/doctors", doctorHandler.List)
	api.GET("/doctors/:id", doctorHandler.Get)
	api.GET("/doctors/:id/availability", doctorHandler.Availability)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(deps.JWT))

	authed.POST("/appointments", apptHandler.Book)
	authed.GET("/appointments", apptHandler.List)
	authed.GET("/appointments/:id", apptHandler.Get)
	authed.DELETE("/appointments/:id", apptHandler.Cancel)
	authed.GET("/appointments/:id/record", apptHandler.GetRecord)

	clinical := authed.Group("")
	clinical.Use(middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin))
	clinical.PUT("/appointments/:id/attend", apptHandler.Attend)
	clinical.GET("/doctors/:id/appointments", apptHandler.ListForDoctor)

	authed.GET("/patients/:id", patientHandler.Get)
	authed.PUT("/patients/:id", patientHandler.Update)
	authed.GET("/patients/:id/appointments", apptHandler.ListForPatient)
	authed.GET("/patients/:id/records", patientHandler.Records)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/doctors", doctorHandler.Create)
	admin.POST("/patients", patientHandler.Create)
	admin.GET("/patients", patientHandler.List)
	admin.DELETE("/patients/:id", patientHandler.Delete)
	admin.GET("/reports/summary", reportHandler.Summary)
	admin.GET("/reports/appointments", reportHandler.Appointments)

	return r
}
