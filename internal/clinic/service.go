package clinic

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hackgods/clinic-management/internal/db"
	"github.com/hackgods/clinic-management/internal/metrics"
	redisclient "github.com/hackgods/clinic-management/internal/redis"
)

// ErrSlotBusy means another writer holds the lock for the same doctor, date
// and time.
var ErrSlotBusy = errors.New("slot is currently being booked, please retry")

type Repositories struct {
	Patients     PatientRepository
	Doctors      DoctorRepository
	Appointments AppointmentRepository
}

// NewPgRepositories builds the Postgres repositories on one Source.
func NewPgRepositories(src db.Source) Repositories {
	return Repositories{
		Patients:     NewPgPatientRepository(src),
		Doctors:      NewPgDoctorRepository(src),
		Appointments: NewPgAppointmentRepository(src),
	}
}

// Service is the operation surface consumed by the presentation layer. It
// validates records, serializes writes per appointment slot and counts every
// repository outcome.
type Service struct {
	patients     PatientRepository
	doctors      DoctorRepository
	appointments AppointmentRepository
	locker       redisclient.Locker
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(repos Repositories, locker redisclient.Locker, m *metrics.Metrics) *Service {
	if locker == nil {
		locker = redisclient.NoopLocker{}
	}
	return &Service{
		patients:     repos.Patients,
		doctors:      repos.Doctors,
		appointments: repos.Appointments,
		locker:       locker,
		metrics:      m,
		now:          time.Now,
	}
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint"
	case errors.Is(err, ErrSlotBusy):
		return "busy"
	case db.IsConnectionError(err):
		return "connection"
	default:
		return "error"
	}
}

func (s *Service) observe(entity, op string, err error) {
	outcome := Outcome(err)
	s.metrics.ObserveOp(entity, op, outcome)

	switch outcome {
	case "ok", "not_found", "validation":
	default:
		log.Printf("%s %s failed outcome=%s: %v", op, entity, outcome, err)
	}
}

// Patients

func (s *Service) CreatePatient(ctx context.Context, p *Patient) (err error) {
	defer func() { s.observe("patient", "insert", err) }()

	if err := normalizePatient(p); err != nil {
		return err
	}
	return s.patients.Insert(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context) (ps []Patient, err error) {
	defer func() { s.observe("patient", "list", err) }()
	return s.patients.List(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (p *Patient, err error) {
	defer func() { s.observe("patient", "get", err) }()
	return s.patients.GetByID(ctx, id)
}

func (s *Service) FindPatientByDNI(ctx context.Context, dni string) (p *Patient, err error) {
	defer func() { s.observe("patient", "get_by_dni", err) }()
	return s.patients.GetByDNI(ctx, dni)
}

// SearchPatients falls back to the full list for blank text.
func (s *Service) SearchPatients(ctx context.Context, text string) (ps []Patient, err error) {
	defer func() { s.observe("patient", "search", err) }()
	if strings.TrimSpace(text) == "" {
		return s.patients.List(ctx)
	}
	return s.patients.SearchByName(ctx, text)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) (err error) {
	defer func() { s.observe("patient", "update", err) }()

	if err := normalizePatient(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) (err error) {
	defer func() { s.observe("patient", "delete", err) }()
	return s.patients.Delete(ctx, id)
}

// Doctors

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) (err error) {
	defer func() { s.observe("doctor", "insert", err) }()

	if err := normalizeDoctor(d); err != nil {
		return err
	}
	return s.doctors.Insert(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context) (ds []Doctor, err error) {
	defer func() { s.observe("doctor", "list", err) }()
	return s.doctors.List(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (d *Doctor, err error) {
	defer func() { s.observe("doctor", "get", err) }()
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) SearchDoctors(ctx context.Context, text string) (ds []Doctor, err error) {
	defer func() { s.observe("doctor", "search", err) }()
	if strings.TrimSpace(text) == "" {
		return s.doctors.List(ctx)
	}
	return s.doctors.SearchByName(ctx, text)
}

func (s *Service) DoctorsBySpecialty(ctx context.Context, specialty string) (ds []Doctor, err error) {
	defer func() { s.observe("doctor", "search_specialty", err) }()
	if strings.TrimSpace(specialty) == "" {
		return s.doctors.List(ctx)
	}
	return s.doctors.SearchBySpecialty(ctx, specialty)
}

func (s *Service) Specialties(ctx context.Context) (sp []string, err error) {
	defer func() { s.observe("doctor", "specialties", err) }()
	return s.doctors.Specialties(ctx)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) (err error) {
	defer func() { s.observe("doctor", "update", err) }()

	if err := normalizeDoctor(d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) (err error) {
	defer func() { s.observe("doctor", "delete", err) }()
	return s.doctors.Delete(ctx, id)
}

// Appointments

// BookAppointment inserts a under the slot lock. The unique constraint on
// doctor, date and time remains the final word.
func (s *Service) BookAppointment(ctx context.Context, a *Appointment) (err error) {
	defer func() { s.observe("appointment", "insert", err) }()

	if err := normalizeAppointment(a); err != nil {
		return err
	}
	return s.withSlot(ctx, a, func(ctx context.Context) error {
		return s.appointments.Insert(ctx, a)
	})
}

func (s *Service) ListAppointments(ctx context.Context) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list", err) }()
	return s.appointments.List(ctx)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (a *Appointment, err error) {
	defer func() { s.observe("appointment", "get", err) }()
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) AppointmentsForPatient(ctx context.Context, patientID int64) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list_by_patient", err) }()
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *Service) AppointmentsForDoctor(ctx context.Context, doctorID int64) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list_by_doctor", err) }()
	return s.appointments.ListByDoctor(ctx, doctorID)
}

func (s *Service) AppointmentsOn(ctx context.Context, date time.Time) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list_by_date", err) }()
	return s.appointments.ListByDate(ctx, CivilDate(date))
}

func (s *Service) AppointmentsToday(ctx context.Context) ([]Appointment, error) {
	return s.AppointmentsOn(ctx, s.today())
}

// UpcomingAppointments lists appointments dated today or later.
func (s *Service) UpcomingAppointments(ctx context.Context) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list_upcoming", err) }()
	return s.appointments.ListUpcoming(ctx, s.today())
}

func (s *Service) AppointmentsByStatus(ctx context.Context, status AppointmentStatus) (as []Appointment, err error) {
	defer func() { s.observe("appointment", "list_by_status", err) }()
	st, err := strictStatus(status)
	if err != nil {
		return nil, err
	}
	return s.appointments.ListByStatus(ctx, st)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) (err error) {
	defer func() { s.observe("appointment", "update", err) }()

	if err := normalizeAppointment(a); err != nil {
		return err
	}
	return s.withSlot(ctx, a, func(ctx context.Context) error {
		return s.appointments.Update(ctx, a)
	})
}

// SetAppointmentStatus moves an appointment to status, e.g. to cancel it.
func (s *Service) SetAppointmentStatus(ctx context.Context, id int64, status AppointmentStatus) (a *Appointment, err error) {
	defer func() { s.observe("appointment", "update_status", err) }()
	st, err := strictStatus(status)
	if err != nil {
		return nil, err
	}
	return s.appointments.UpdateStatus(ctx, id, st)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) (err error) {
	defer func() { s.observe("appointment", "delete", err) }()
	return s.appointments.Delete(ctx, id)
}

// Stats gathers the dashboard counters.
func (s *Service) Stats(ctx context.Context) (st Stats, err error) {
	defer func() { s.observe("dashboard", "stats", err) }()

	if st.Patients, err = s.patients.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Doctors, err = s.doctors.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Appointments, err = s.appointments.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.AppointmentsToday, err = s.appointments.CountByDate(ctx, s.today()); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// strictStatus is used where an unknown status must be rejected rather than
// read as scheduled.
func strictStatus(status AppointmentStatus) (AppointmentStatus, error) {
	st, ok := LookupStatus(string(status))
	if !ok {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	return st, nil
}

func (s *Service) today() time.Time {
	return CivilDate(s.now())
}

// withSlot runs fn holding the Redis lock for a's slot. When Redis itself is
// unreachable fn still runs and the database constraint decides.
func (s *Service) withSlot(ctx context.Context, a *Appointment, fn func(ctx context.Context) error) error {
	err := s.locker.WithSlotLock(ctx, SlotKey(a.DoctorID, a.Date, a.Time), fn)
	switch {
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return ErrSlotBusy
	case errors.Is(err, redisclient.ErrLockBackend):
		log.Printf("slot lock unavailable, writing without it: %v", err)
		return fn(ctx)
	default:
		return err
	}
}

// SlotKey identifies one doctor's date and time of day.
func SlotKey(doctorID int64, date time.Time, clock string) string {
	return fmt.Sprintf("%d:%s:%s", doctorID, date.Format("2006-01-02"), clock)
}
