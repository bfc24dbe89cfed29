package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/pkg/metrics"
)

// One collector per test binary; promauto registers globally.
var testMetrics = metrics.NewCollector("agenda_test")

type fakeAppointmentRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[uuid.UUID]appointment.Appointment)}
}

func (r *fakeAppointmentRepo) CreateScheduled(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.DoctorID == a.DoctorID && existing.Date == a.Date &&
			existing.Time == a.Time && existing.Status != appointment.StatusCancelled {
			return appointment.ErrSlotTaken
		}
	}
	a.ID = uuid.New()
	r.byID[a.ID] = *a
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	out := a
	return &out, nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.byID {
		if q.PatientID != nil && a.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		copied := a
		out = append(out, &copied)
	}
	return &appointment.PagedAppointments{
		Appointments: out,
		TotalCount:   int64(len(out)),
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

func (r *fakeAppointmentRepo) OccupiedTimes(_ context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var times []string
	for _, a := range r.byID {
		if a.DoctorID == doctorID && a.Date == date && a.Status != appointment.StatusCancelled {
			times = append(times, a.Time)
		}
	}
	return times, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[a.ID]
	if !ok {
		return appointment.ErrNotFound
	}
	stored.Status = a.Status
	stored.AttendedAt = a.AttendedAt
	r.byID[a.ID] = stored
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return appointment.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeRecordRepo struct {
	mu            sync.Mutex
	byAppointment map[uuid.UUID]clinicalrecord.ClinicalRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{byAppointment: make(map[uuid.UUID]clinicalrecord.ClinicalRecord)}
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *clinicalrecord.ClinicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.New()
	r.byAppointment[rec.AppointmentID] = *rec
	return nil
}

func (r *fakeRecordRepo) GetByAppointmentID(_ context.Context, appointmentID uuid.UUID) (*clinicalrecord.ClinicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byAppointment[appointmentID]
	if !ok {
		return nil, clinicalrecord.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *fakeRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*clinicalrecord.ClinicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*clinicalrecord.ClinicalRecord
	for _, rec := range r.byAppointment {
		if rec.PatientID == patientID {
			copied := rec
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePatientRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byID: make(map[uuid.UUID]patient.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	r.byID[p.ID] = *p
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *fakePatientRepo) GetByDocumentNumber(_ context.Context, documentNumber string) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.DocumentNumber == documentNumber {
			out := p
			return &out, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (r *fakePatientRepo) Update(_ context.Context, id uuid.UUID, _ *patient.UpdatePatientCommand) (*patient.Patient, error) {
	return r.GetByID(context.Background(), id)
}

func (r *fakePatientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return patient.ErrNotFound
	}
	p.Status = patient.StatusInactive
	r.byID[id] = p
	return nil
}

func (r *fakePatientRepo) List(_ context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*patient.Patient
	for _, p := range r.byID {
		copied := p
		out = append(out, &copied)
	}
	return out, nil
}

type fakeDoctorRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]doctor.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{byID: make(map[uuid.UUID]doctor.Doctor)}
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.New()
	r.byID[d.ID] = *d
	return nil
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	out := d
	return &out, nil
}

func (r *fakeDoctorRepo) GetByDocumentNumber(_ context.Context, documentNumber string) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.DocumentNumber == documentNumber {
			out := d
			return &out, nil
		}
	}
	return nil, doctor.ErrNotFound
}

func (r *fakeDoctorRepo) List(_ context.Context, _ *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*doctor.Doctor
	for _, d := range r.byID {
		copied := d
		out = append(out, &copied)
	}
	return out, nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(_ context.Context, _ *domain.AuditLog) error { return nil }

type testEnv struct {
	svc       *AppointmentService
	apptRepo  *fakeAppointmentRepo
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	patientRepo := newFakePatientRepo()
	doctorRepo := newFakeDoctorRepo()
	apptRepo := newFakeAppointmentRepo()
	recordRepo := newFakeRecordRepo()

	p := &patient.Patient{
		FirstName:      "Ana",
		LastName:       "Gomez",
		DocumentType:   patient.DocumentCC,
		DocumentNumber: "1001001001",
		Status:         patient.StatusActive,
	}
	if err := patientRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("seeding patient: %v", err)
	}

	d := &doctor.Doctor{
		DocumentNumber: "2002002002",
		FirstName:      "Luis",
		LastName:       "Rojas",
		Specialty:      "medicina general",
		IsActive:       true,
	}
	if err := doctorRepo.Create(context.Background(), d); err != nil {
		t.Fatalf("seeding doctor: %v", err)
	}

	log := zap.NewNop()
	auditSvc := NewAuditService(fakeAuditRepo{}, testMetrics, log)
	t.Cleanup(auditSvc.Shutdown)

	svc := NewAppointmentService(apptRepo, recordRepo, patientRepo, doctorRepo, nil, auditSvc, testMetrics, log)

	return &testEnv{
		svc:       svc,
		apptRepo:  apptRepo,
		patientID: p.ID,
		doctorID:  d.ID,
	}
}

func adminClaims() *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}
}

func doctorClaims(doctorID uuid.UUID) *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Role: domain.RoleDoctor, DoctorID: &doctorID}
}

func patientClaims(patientID uuid.UUID) *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Role: domain.RolePatient, PatientID: &patientID}
}

func bookCmd(env *testEnv, date, slot string) *appointment.BookCommand {
	return &appointment.BookCommand{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      date,
		Time:      slot,
		Specialty: "medicina general",
		CreatedBy: uuid.New(),
	}
}

func TestAvailabilityEmptySchedule(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.svc.Availability(context.Background(), env.doctorID, "2025-03-10")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(slots) != 12 {
		t.Fatalf("expected the full 12-slot grid, got %d: %v", len(slots), slots)
	}
}

func TestAvailabilitySundayIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.svc.Availability(context.Background(), env.doctorID, "2025-03-09")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on Sunday, got %v", slots)
	}
}

func TestBookExcludesSlotFromAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), patientClaims(env.patientID), "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	slots, err := env.svc.Availability(ctx, env.doctorID, "2025-03-10")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for _, s := range slots {
		if s == "09:00" {
			t.Fatal("booked slot 09:00 still listed as available")
		}
	}
	if len(slots) != 11 {
		t.Fatalf("expected 11 free slots, got %d", len(slots))
	}
}

func TestBookNormalizesSecondsAndTimestamps(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.svc.Book(context.Background(),
		bookCmd(env, "2025-03-10T00:00:00Z", "09:00:00"),
		patientClaims(env.patientID), "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.Date != "2025-03-10" {
		t.Errorf("date = %q, want 2025-03-10", a.Date)
	}
	if a.Time != "09:00" {
		t.Errorf("time = %q, want 09:00", a.Time)
	}
	if a.Status != appointment.StatusScheduled {
		t.Errorf("status = %q, want scheduled", a.Status)
	}
}

func TestBookValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		date    string
		slot    string
		mutate  func(*appointment.BookCommand)
		wantErr error
	}{
		{"sunday", "2025-03-09", "09:00", nil, appointment.ErrSundayNotBookable},
		{"off-grid slot", "2025-03-10", "12:00", nil, appointment.ErrInvalidSlot},
		{"unparseable slot", "2025-03-10", "morning", nil, appointment.ErrInvalidSlot},
		{"bad date", "10/03/2025", "09:00", nil, appointment.ErrInvalidDate},
		{
			"missing specialty", "2025-03-10", "09:00",
			func(cmd *appointment.BookCommand) { cmd.Specialty = "  " },
			appointment.ErrSpecialtyRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := bookCmd(env, tt.date, tt.slot)
			if tt.mutate != nil {
				tt.mutate(cmd)
			}
			_, err := env.svc.Book(context.Background(), cmd, patientClaims(env.patientID), "127.0.0.1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Book() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookForAnotherPatientForbidden(t *testing.T) {
	env := newTestEnv(t)

	otherPatient := uuid.New()
	_, err := env.svc.Book(context.Background(),
		bookCmd(env, "2025-03-10", "09:00"),
		patientClaims(otherPatient), "127.0.0.1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Book() error = %v, want ErrForbidden", err)
	}
}

func TestBookConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := patientClaims(env.patientID)

	if _, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), caller, "127.0.0.1"); err != nil {
		t.Fatalf("first Book: %v", err)
	}

	_, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), caller, "127.0.0.1")
	if !errors.Is(err, appointment.ErrSlotTaken) {
		t.Fatalf("second Book error = %v, want ErrSlotTaken", err)
	}

	// Same grid slot written with seconds must also conflict.
	_, err = env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00:00"), caller, "127.0.0.1")
	if !errors.Is(err, appointment.ErrSlotTaken) {
		t.Fatalf("seconds-form Book error = %v, want ErrSlotTaken", err)
	}

	// A different slot on the same day still books fine.
	if _, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:30"), caller, "127.0.0.1"); err != nil {
		t.Fatalf("adjacent slot Book: %v", err)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	caller := patientClaims(env.patientID)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Book(context.Background(),
				bookCmd(env, "2025-03-10", "10:00"), caller, "127.0.0.1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, appointment.ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (conflicts %d)", wins, conflicts)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestAttendFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), patientClaims(env.patientID), "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	caller := doctorClaims(env.doctorID)
	attended, err := env.svc.Attend(ctx, a.ID, &clinicalrecord.CreateRecordCommand{
		Diagnosis: "hipertension arterial controlada",
		Medications: []clinicalrecord.Medication{
			{Name: "losartan", Dose: "50mg", Frequency: "cada 12 horas", Duration: "30 dias"},
		},
	}, caller, "127.0.0.1")
	if err != nil {
		t.Fatalf("Attend: %v", err)
	}
	if attended.Status != appointment.StatusAttended {
		t.Errorf("status = %q, want attended", attended.Status)
	}
	if attended.AttendedAt == nil {
		t.Error("attended_at not set")
	}

	// The slot stays occupied after attendance.
	slots, err := env.svc.Availability(ctx, env.doctorID, "2025-03-10")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for _, s := range slots {
		if s == "09:00" {
			t.Fatal("attended appointment released its slot")
		}
	}

	rec, err := env.svc.GetRecord(ctx, a.ID, caller)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Diagnosis != "hipertension arterial controlada" {
		t.Errorf("diagnosis = %q", rec.Diagnosis)
	}
	if len(rec.Medications) != 1 || rec.Medications[0].Name != "losartan" {
		t.Errorf("medications = %+v", rec.Medications)
	}

	// Write-once: a second attendance must be rejected.
	_, err = env.svc.Attend(ctx, a.ID, &clinicalrecord.CreateRecordCommand{Diagnosis: "otra"}, caller, "127.0.0.1")
	if !errors.Is(err, appointment.ErrAlreadyAttended) {
		t.Fatalf("re-Attend error = %v, want ErrAlreadyAttended", err)
	}
}

func TestAttendAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), patientClaims(env.patientID), "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	cmd := &clinicalrecord.CreateRecordCommand{Diagnosis: "gripe comun"}

	if _, err := env.svc.Attend(ctx, a.ID, cmd, patientClaims(env.patientID), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient Attend error = %v, want ErrForbidden", err)
	}

	otherDoctor := uuid.New()
	if _, err := env.svc.Attend(ctx, a.ID, cmd, doctorClaims(otherDoctor), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other doctor Attend error = %v, want ErrForbidden", err)
	}

	empty := &clinicalrecord.CreateRecordCommand{Diagnosis: "   "}
	if _, err := env.svc.Attend(ctx, a.ID, empty, doctorClaims(env.doctorID), "127.0.0.1"); !errors.Is(err, clinicalrecord.ErrDiagnosisRequired) {
		t.Errorf("empty diagnosis error = %v, want ErrDiagnosisRequired", err)
	}

	// Admins may attend on a doctor's behalf.
	if _, err := env.svc.Attend(ctx, a.ID, cmd, adminClaims(), "127.0.0.1"); err != nil {
		t.Errorf("admin Attend: %v", err)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := patientClaims(env.patientID)

	a, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), caller, "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if err := env.svc.Cancel(ctx, a.ID, caller, "127.0.0.1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := env.svc.Get(ctx, a.ID, caller); !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("Get after cancel error = %v, want ErrNotFound", err)
	}

	// The freed slot is bookable again.
	if _, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), caller, "127.0.0.1"); err != nil {
		t.Fatalf("rebooking freed slot: %v", err)
	}
}

func TestCancelAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), patientClaims(env.patientID), "127.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if err := env.svc.Cancel(ctx, a.ID, patientClaims(uuid.New()), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other patient Cancel error = %v, want ErrForbidden", err)
	}

	// Attended appointments are an admin-only correction path.
	if _, err := env.svc.Attend(ctx, a.ID, &clinicalrecord.CreateRecordCommand{Diagnosis: "control"}, doctorClaims(env.doctorID), "127.0.0.1"); err != nil {
		t.Fatalf("Attend: %v", err)
	}
	if err := env.svc.Cancel(ctx, a.ID, patientClaims(env.patientID), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient Cancel of attended error = %v, want ErrForbidden", err)
	}
	if err := env.svc.Cancel(ctx, a.ID, doctorClaims(env.doctorID), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor Cancel of attended error = %v, want ErrForbidden", err)
	}
	if err := env.svc.Cancel(ctx, a.ID, adminClaims(), "127.0.0.1"); err != nil {
		t.Errorf("admin Cancel of attended: %v", err)
	}
}

func TestListClampsPatientsToOwnAppointments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Book(ctx, bookCmd(env, "2025-03-10", "09:00"), patientClaims(env.patientID), "127.0.0.1"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	other := uuid.New()
	q := &appointment.ListQuery{PatientID: &other}
	page, err := env.svc.List(ctx, q, patientClaims(env.patientID))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// The filter is overridden with the caller's own patient id.
	if page.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", page.TotalCount)
	}
	if got := page.Appointments[0].PatientID; got != env.patientID {
		t.Errorf("listed appointment belongs to %s, want %s", got, env.patientID)
	}
}
