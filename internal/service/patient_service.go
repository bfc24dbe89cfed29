package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, log: log}
}

// CreatePatient registers a patient without login credentials; used by the
// admin desk for walk-ins. Self-service registration goes through AuthService.
func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand, caller *domain.Claims, ip string) (*patient.Patient, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := validatePatientCommand(cmd); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		DocumentType:   cmd.DocumentType,
		DocumentNumber: strings.TrimSpace(cmd.DocumentNumber),
		DateOfBirth:    cmd.DateOfBirth,
		Phone:          strings.TrimSpace(cmd.Phone),
		Email:          strings.ToLower(strings.TrimSpace(cmd.Email)),
		Address:        cmd.Address,
		City:           cmd.City,
		EPS:            cmd.EPS,
		Notes:          cmd.Notes,
		Status:         patient.StatusActive,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*patient.Patient, error) {
	// Patients can only read their own record.
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != id {
			return nil, ErrForbidden
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand, caller *domain.Claims, ip string) (*patient.Patient, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != id {
			return nil, ErrForbidden
		}
	}

	p, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return p, nil
}

// DeletePatient soft-deletes the record; appointments and clinical history
// are retained for the legal record.
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if caller.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}

func (s *PatientService) ListPatients(ctx context.Context, caller *domain.Claims) ([]*patient.Patient, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

func validatePatientCommand(cmd *patient.CreatePatientCommand) error {
	var fields []string
	if strings.TrimSpace(cmd.FirstName) == "" {
		fields = append(fields, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		fields = append(fields, "last_name is required")
	}
	if strings.TrimSpace(cmd.DocumentNumber) == "" {
		fields = append(fields, "document_number is required")
	}
	if !cmd.DocumentType.IsValid() {
		fields = append(fields, "document_type must be one of CC, TI, CE, PA")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
