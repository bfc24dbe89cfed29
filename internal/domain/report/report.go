package report

import "context"

// Summary is the admin dashboard headline view.
type Summary struct {
	TotalPatients     int64   `json:"total_patients"`
	TotalDoctors      int64   `json:"total_doctors"`
	TotalAppointments int64   `json:"total_appointments"`
	Scheduled         int64   `json:"scheduled"`
	Attended          int64   `json:"attended"`
	AttendanceRate    float64 `json:"attendance_rate"`
}

type SpecialtyCount struct {
	Specialty string `json:"specialty"`
	Count     int64  `json:"count"`
}

type DoctorCount struct {
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Count      int64  `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
	AppointmentsBySpecialty(ctx context.Context) ([]SpecialtyCount, error)
	AppointmentsByDoctor(ctx context.Context) ([]DoctorCount, error)
	AppointmentsByMonth(ctx context.Context) ([]MonthCount, error)
}
