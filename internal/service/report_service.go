package service

import (
	"context"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/report"
)

// ReportService exposes the aggregate statistics behind the admin dashboard.
type ReportService struct {
	repo report.Repository
}

func NewReportService(repo report.Repository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Summary(ctx context.Context, caller *domain.Claims) (*report.Summary, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.Summary(ctx)
}

type AppointmentReport struct {
	BySpecialty []report.SpecialtyCount `json:"by_specialty"`
	ByDoctor    []report.DoctorCount    `json:"by_doctor"`
	ByMonth     []report.MonthCount     `json:"by_month"`
}

func (s *ReportService) Appointments(ctx context.Context, caller *domain.Claims) (*AppointmentReport, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	bySpecialty, err := s.repo.AppointmentsBySpecialty(ctx)
	if err != nil {
		return nil, err
	}
	byDoctor, err := s.repo.AppointmentsByDoctor(ctx)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.repo.AppointmentsByMonth(ctx)
	if err != nil {
		return nil, err
	}

	return &AppointmentReport{
		BySpecialty: bySpecialty,
		ByDoctor:    byDoctor,
		ByMonth:     byMonth,
	}, nil
}
