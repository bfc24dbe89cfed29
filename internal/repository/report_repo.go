package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain/report"
)

// ReportRepo runs the read-only aggregate queries behind the admin reports.
type ReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Summary(ctx context.Context) (*report.Summary, error) {
	var s report.Summary

	row := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM clinical.patients WHERE deleted_at IS NULL)  AS total_patients,
			(SELECT COUNT(*) FROM clinical.doctors  WHERE deleted_at IS NULL)  AS total_doctors,
			(SELECT COUNT(*) FROM clinical.appointments)                       AS total_appointments,
			(SELECT COUNT(*) FROM clinical.appointments WHERE status = 'scheduled') AS scheduled,
			(SELECT COUNT(*) FROM clinical.appointments WHERE status = 'attended')  AS attended
	`).Row()
	if err := row.Scan(&s.TotalPatients, &s.TotalDoctors, &s.TotalAppointments, &s.Scheduled, &s.Attended); err != nil {
		return nil, wrapStoreErr(err)
	}

	if s.TotalAppointments > 0 {
		s.AttendanceRate = float64(s.Attended) / float64(s.TotalAppointments)
	}
	return &s, nil
}

func (r *ReportRepo) AppointmentsBySpecialty(ctx context.Context) ([]report.SpecialtyCount, error) {
	var out []report.SpecialtyCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT specialty, COUNT(*) AS count
		FROM clinical.appointments
		GROUP BY specialty
		ORDER BY count DESC
	`).Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

func (r *ReportRepo) AppointmentsByDoctor(ctx context.Context) ([]report.DoctorCount, error) {
	var out []report.DoctorCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.doctor_id::text AS doctor_id,
		       d.first_name || ' ' || d.last_name AS doctor_name,
		       COUNT(*) AS count
		FROM clinical.appointments a
		JOIN clinical.doctors d ON d.id = a.doctor_id
		GROUP BY a.doctor_id, d.first_name, d.last_name
		ORDER BY count DESC
	`).Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

func (r *ReportRepo) AppointmentsByMonth(ctx context.Context) ([]report.MonthCount, error) {
	var out []report.MonthCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT substring(date from 1 for 7) AS month, COUNT(*) AS count
		FROM clinical.appointments
		GROUP BY month
		ORDER BY month
	`).Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}
