package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
)

type DoctorService struct {
	repo     doctor.Repository
	users    UserRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, users UserRepository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, users: users, auditSvc: auditSvc, log: log}
}

// CreateDoctor registers a doctor and their login credentials. Admin only.
func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, caller *domain.Claims, ip string) (*doctor.Doctor, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	var fields []string
	if strings.TrimSpace(cmd.DocumentNumber) == "" {
		fields = append(fields, "document_number is required")
	}
	if strings.TrimSpace(cmd.FirstName) == "" {
		fields = append(fields, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		fields = append(fields, "last_name is required")
	}
	if strings.TrimSpace(cmd.Specialty) == "" {
		fields = append(fields, "specialty is required")
	}
	if len(cmd.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	d := &doctor.Doctor{
		DocumentNumber: strings.TrimSpace(cmd.DocumentNumber),
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		Specialty:      strings.TrimSpace(cmd.Specialty),
		Email:          strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:          strings.TrimSpace(cmd.Phone),
		LicenseNumber:  cmd.LicenseNumber,
		Sede:           cmd.Sede,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, err
	}

	u := &domain.User{
		DocumentNumber: d.DocumentNumber,
		Email:          d.Email,
		PasswordHash:   string(hash),
		Role:           domain.RoleDoctor,
		DoctorID:       &d.ID,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.log.Error("failed to create credentials for doctor",
			zap.String("doctor_id", d.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("creating credentials: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID.String(),
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "doctor",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDoctors is public directory data; sede and specialty filter the result.
func (s *DoctorService) ListDoctors(ctx context.Context, q *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx, q)
}
