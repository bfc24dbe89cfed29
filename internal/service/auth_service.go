package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/pkg/auth"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.User, error)
	UpdateLoginState(ctx context.Context, u *domain.User) error
}

type AuthService struct {
	users       UserRepository
	patientRepo patient.Repository
	jwt         *auth.JWTManager
	auditSvc    *AuditService
	log         *zap.Logger
}

func NewAuthService(users UserRepository, patientRepo patient.Repository, jwt *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, patientRepo: patientRepo, jwt: jwt, auditSvc: auditSvc, log: log}
}

type RegisterPatientCommand struct {
	FirstName      string
	LastName       string
	DocumentType   patient.DocumentType
	DocumentNumber string
	Email          string
	Phone          string
	Password       string
	EPS            string
	City           string
}

// RegisterPatient creates the patient record and its login credentials in one
// flow. Self-service registration always yields the patient role.
func (s *AuthService) RegisterPatient(ctx context.Context, cmd *RegisterPatientCommand, ip string) (*patient.Patient, error) {
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

	p := &patient.Patient{
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		DocumentType:   cmd.DocumentType,
		DocumentNumber: strings.TrimSpace(cmd.DocumentNumber),
		Email:          strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:          strings.TrimSpace(cmd.Phone),
		EPS:            cmd.EPS,
		City:           cmd.City,
		Status:         patient.StatusActive,
	}
	if err := s.patientRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	u := &domain.User{
		DocumentNumber: p.DocumentNumber,
		Email:          p.Email,
		PasswordHash:   string(hash),
		Role:           domain.RolePatient,
		PatientID:      &p.ID,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.log.Error("failed to create credentials for patient",
			zap.String("patient_id", p.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("creating credentials: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID.String(),
		UserRole:     string(domain.RolePatient),
		Action:       "create",
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})

	return p, nil
}

// Login authenticates by document number and password, for any role.
// Accounts lock for a period after repeated failures.
func (s *AuthService) Login(ctx context.Context, documentNumber, password, ip string) (*domain.TokenPair, *domain.Claims, error) {
	u, err := s.users.GetByDocumentNumber(ctx, strings.TrimSpace(documentNumber))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !u.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if u.IsLocked() {
		return nil, nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.FailedLoginCount++
		if u.FailedLoginCount >= maxFailedLogins {
			until := time.Now().Add(lockoutDuration)
			u.LockedUntil = &until
			u.FailedLoginCount = 0
		}
		if uerr := s.users.UpdateLoginState(ctx, u); uerr != nil {
			s.log.Error("failed to record failed login", zap.Error(uerr))
		}
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	u.FailedLoginCount = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	if err := s.users.UpdateLoginState(ctx, u); err != nil {
		s.log.Error("failed to record login", zap.Error(err))
	}

	claims := &domain.Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		DoctorID:  u.DoctorID,
		PatientID: u.PatientID,
	}
	pair, err := s.jwt.GenerateTokenPair(claims)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID.String(),
		UserRole:     string(u.Role),
		Action:       "login",
		ResourceType: "user",
		ResourceID:   u.ID.String(),
		IPAddress:    ip,
	})

	return pair, claims, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-read the user so revoked or locked accounts cannot refresh.
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive || u.IsLocked() {
		return nil, ErrInvalidCredentials
	}

	return s.jwt.GenerateTokenPair(&domain.Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		DoctorID:  u.DoctorID,
		PatientID: u.PatientID,
	})
}
