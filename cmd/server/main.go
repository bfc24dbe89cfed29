package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/config"
	"github.com/clinicadelvalle/agenda-api/internal/cache"
	v1 "github.com/clinicadelvalle/agenda-api/internal/handler/v1"
	"github.com/clinicadelvalle/agenda-api/internal/repository"
	"github.com/clinicadelvalle/agenda-api/internal/service"
	"github.com/clinicadelvalle/agenda-api/pkg/auth"
	"github.com/clinicadelvalle/agenda-api/pkg/database"
	"github.com/clinicadelvalle/agenda-api/pkg/logger"
	"github.com/clinicadelvalle/agenda-api/pkg/metrics"
	"github.com/clinicadelvalle/agenda-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting agenda-api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	availCache, err := cache.New(cfg.Redis, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if availCache == nil {
		log.Info("availability cache disabled; serving from database only")
	}

	m := metrics.NewCollector("agenda")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	apptRepo := repository.NewAppointmentRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	reportRepo := repository.NewReportRepo(db)

	auditSvc := service.NewAuditService(auditRepo, m, log)
	authSvc := service.NewAuthService(userRepo, patientRepo, jwtManager, auditSvc, log)
	apptSvc := service.NewAppointmentService(apptRepo, recordRepo, patientRepo, doctorRepo, availCache, auditSvc, m, log)
	doctorSvc := service.NewDoctorService(doctorRepo, userRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, log)
	reportSvc := service.NewReportService(reportRepo)

	router := v1.NewRouter(v1.RouterDeps{
		Config:         cfg,
		Logger:         log,
		Metrics:        m,
		JWT:            jwtManager,
		AuthSvc:        authSvc,
		AppointmentSvc: apptSvc,
		DoctorSvc:      doctorSvc,
		PatientSvc:     patientSvc,
		ReportSvc:      reportSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received, draining")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	auditSvc.Shutdown()

	if err := availCache.Close(); err != nil {
		log.Warn("closing redis connection failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("closing database connection failed", zap.Error(err))
		}
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	log.Info("shutdown complete")
}
