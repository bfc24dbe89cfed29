package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/internal/cache"
	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/pkg/metrics"
)

type AppointmentService struct {
	repo        appointment.Repository
	recordRepo  clinicalrecord.Repository
	patientRepo patient.Repository
	doctorRepo  doctor.Repository
	availCache  *cache.AvailabilityCache
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	recordRepo clinicalrecord.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	availCache *cache.AvailabilityCache,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:        repo,
		recordRepo:  recordRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		availCache:  availCache,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
	}
}

// Availability returns the free slots for a doctor on a date. A zero doctor
// id or empty date yields the full grid: with nothing booked there is nothing
// occupied. Unknown doctors likewise come back fully free rather than erroring.
func (s *AppointmentService) Availability(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	if doctorID == uuid.Nil || date == "" {
		return appointment.DailySlots(), nil
	}

	norm, err := appointment.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	if appointment.IsSunday(norm) {
		return []string{}, nil
	}

	if slots, ok := s.availCache.Get(ctx, doctorID, norm); ok {
		s.metrics.AvailabilityCacheHits.Inc()
		return slots, nil
	}
	s.metrics.AvailabilityCacheMisses.Inc()

	occupied, err := s.repo.OccupiedTimes(ctx, doctorID, norm)
	if err != nil {
		return nil, fmt.Errorf("loading occupied slots: %w", err)
	}

	free := appointment.FreeSlots(occupied)
	s.availCache.Set(ctx, doctorID, norm, free)
	return free, nil
}

// Book creates a scheduled appointment for a free slot. The slot-uniqueness
// constraint in the store decides races: of two concurrent bookings for the
// same (doctor, date, time), exactly one succeeds and the other gets
// ErrSlotTaken.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.BookCommand, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != cmd.PatientID {
			return nil, ErrForbidden
		}
	}

	date, err := appointment.NormalizeDate(cmd.Date)
	if err != nil {
		return nil, err
	}
	slot, err := appointment.NormalizeTime(cmd.Time)
	if err != nil {
		return nil, err
	}
	if !appointment.IsBookableSlot(slot) {
		return nil, appointment.ErrInvalidSlot
	}
	if appointment.IsSunday(date) {
		return nil, appointment.ErrSundayNotBookable
	}
	if strings.TrimSpace(cmd.Specialty) == "" {
		return nil, appointment.ErrSpecialtyRequired
	}

	p, err := s.patientRepo.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if !p.IsActive() {
		return nil, fmt.Errorf("patient is not active")
	}
	if _, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID); err != nil {
		return nil, fmt.Errorf("verifying doctor: %w", err)
	}

	// Friendly pre-check; the unique index is the actual arbiter.
	occupied, err := s.repo.OccupiedTimes(ctx, cmd.DoctorID, date)
	if err != nil {
		return nil, fmt.Errorf("checking availability: %w", err)
	}
	for _, t := range occupied {
		if norm, err := appointment.NormalizeTime(t); err == nil && norm == slot {
			s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, appointment.ErrSlotTaken
		}
	}

	a := &appointment.Appointment{
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Date:      date,
		Time:      slot,
		Specialty: strings.TrimSpace(cmd.Specialty),
		Notes:     cmd.Notes,
		Status:    appointment.StatusScheduled,
		CreatedBy: cmd.CreatedBy,
	}

	if err := s.repo.CreateScheduled(ctx, a); err != nil {
		if err == appointment.ErrSlotTaken {
			s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.availCache.Invalidate(ctx, cmd.DoctorID, date)
	s.metrics.BookingsTotal.WithLabelValues("scheduled").Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canSee(caller, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Attend transitions a scheduled appointment to attended and persists the
// clinical record in its own table. Re-attending is rejected: the record is
// write-once.
func (s *AppointmentService) Attend(ctx context.Context, id uuid.UUID, cmd *clinicalrecord.CreateRecordCommand, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	if caller.Role != domain.RoleDoctor && caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(cmd.Diagnosis) == "" {
		return nil, clinicalrecord.ErrDiagnosisRequired
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Doctors may only attend their own schedule.
	if caller.Role == domain.RoleDoctor {
		if caller.DoctorID == nil || *caller.DoctorID != a.DoctorID {
			return nil, ErrForbidden
		}
	}

	if err := a.MarkAttended(); err != nil {
		return nil, err
	}

	rec := &clinicalrecord.ClinicalRecord{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Diagnosis:     strings.TrimSpace(cmd.Diagnosis),
		Medications:   cmd.Medications,
		Observations:  cmd.Observations,
		Procedures:    cmd.Procedures,
		Leave:         cmd.Leave,
		Notes:         cmd.Notes,
		CreatedBy:     caller.UserID,
	}
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		s.log.Error("failed to persist clinical record", zap.Error(err))
		return nil, fmt.Errorf("creating clinical record: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.availCache.Invalidate(ctx, a.DoctorID, a.Date)
	s.metrics.AttendancesTotal.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
		Changes:      `{"status":"attended"}`,
	})

	return a, nil
}

// Cancel hard-deletes the appointment. Patients may only cancel their own
// scheduled appointments; removing an attended appointment is an admin-only
// correction path.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return ErrForbidden
		}
	}
	if a.Status == appointment.StatusAttended && caller.Role != domain.RoleAdmin {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.availCache.Invalidate(ctx, a.DoctorID, a.Date)
	s.metrics.CancellationsTotal.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListQuery, caller *domain.Claims) (*appointment.PagedAppointments, error) {
	// Patients can only see their own appointments.
	if caller.Role == domain.RolePatient {
		q.PatientID = caller.PatientID
		if q.PatientID == nil {
			return nil, ErrForbidden
		}
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

// GetRecord fetches the clinical record of an attended appointment.
func (s *AppointmentService) GetRecord(ctx context.Context, appointmentID uuid.UUID, caller *domain.Claims) (*clinicalrecord.ClinicalRecord, error) {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.canSee(caller, a); err != nil {
		return nil, err
	}
	return s.recordRepo.GetByAppointmentID(ctx, appointmentID)
}

// PatientHistory returns the patient's clinical records, newest first.
func (s *AppointmentService) PatientHistory(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) ([]*clinicalrecord.ClinicalRecord, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.recordRepo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) canSee(caller *domain.Claims, a *appointment.Appointment) error {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return ErrForbidden
		}
	}
	return nil
}
