package clinic

import (
	"context"
	"time"
)

// Credentials checks a username and password. PgUserRepository and
// auth.Authenticator both satisfy it.
type Credentials interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
}

// Desk exposes the Service with the legacy surface: writes report a bool,
// reads return an empty list or false on any failure. Failures are already
// logged and counted by the Service. It is a library entry point for
// embedding callers; the HTTP API uses the Service directly.
type Desk struct {
	svc   *Service
	creds Credentials
}

func NewDesk(svc *Service, creds Credentials) *Desk {
	return &Desk{svc: svc, creds: creds}
}

// Authenticate returns the matching active user, or false.
func (d *Desk) Authenticate(ctx context.Context, username, password string) (*User, bool) {
	if d.creds == nil {
		return nil, false
	}
	u, err := d.creds.Authenticate(ctx, username, password)
	return u, err == nil
}

func (d *Desk) AddPatient(ctx context.Context, p *Patient) bool {
	return d.svc.CreatePatient(ctx, p) == nil
}

func (d *Desk) Patients(ctx context.Context) []Patient {
	return orEmpty(d.svc.ListPatients(ctx))
}

func (d *Desk) Patient(ctx context.Context, id int64) (*Patient, bool) {
	p, err := d.svc.GetPatient(ctx, id)
	return p, err == nil
}

func (d *Desk) PatientByDNI(ctx context.Context, dni string) (*Patient, bool) {
	p, err := d.svc.FindPatientByDNI(ctx, dni)
	return p, err == nil
}

func (d *Desk) SearchPatients(ctx context.Context, text string) []Patient {
	return orEmpty(d.svc.SearchPatients(ctx, text))
}

func (d *Desk) SavePatient(ctx context.Context, p *Patient) bool {
	return d.svc.UpdatePatient(ctx, p) == nil
}

func (d *Desk) RemovePatient(ctx context.Context, id int64) bool {
	return d.svc.DeletePatient(ctx, id) == nil
}

func (d *Desk) AddDoctor(ctx context.Context, doc *Doctor) bool {
	return d.svc.CreateDoctor(ctx, doc) == nil
}

func (d *Desk) Doctors(ctx context.Context) []Doctor {
	return orEmpty(d.svc.ListDoctors(ctx))
}

func (d *Desk) Doctor(ctx context.Context, id int64) (*Doctor, bool) {
	doc, err := d.svc.GetDoctor(ctx, id)
	return doc, err == nil
}

func (d *Desk) SearchDoctors(ctx context.Context, text string) []Doctor {
	return orEmpty(d.svc.SearchDoctors(ctx, text))
}

func (d *Desk) DoctorsBySpecialty(ctx context.Context, specialty string) []Doctor {
	return orEmpty(d.svc.DoctorsBySpecialty(ctx, specialty))
}

func (d *Desk) Specialties(ctx context.Context) []string {
	return orEmpty(d.svc.Specialties(ctx))
}

func (d *Desk) SaveDoctor(ctx context.Context, doc *Doctor) bool {
	return d.svc.UpdateDoctor(ctx, doc) == nil
}

func (d *Desk) RemoveDoctor(ctx context.Context, id int64) bool {
	return d.svc.DeleteDoctor(ctx, id) == nil
}

func (d *Desk) Book(ctx context.Context, a *Appointment) bool {
	return d.svc.BookAppointment(ctx, a) == nil
}

func (d *Desk) Appointments(ctx context.Context) []Appointment {
	return orEmpty(d.svc.ListAppointments(ctx))
}

func (d *Desk) Appointment(ctx context.Context, id int64) (*Appointment, bool) {
	a, err := d.svc.GetAppointment(ctx, id)
	return a, err == nil
}

func (d *Desk) AppointmentsOn(ctx context.Context, date time.Time) []Appointment {
	return orEmpty(d.svc.AppointmentsOn(ctx, date))
}

func (d *Desk) AppointmentsToday(ctx context.Context) []Appointment {
	return orEmpty(d.svc.AppointmentsToday(ctx))
}

func (d *Desk) PatientAppointments(ctx context.Context, patientID int64) []Appointment {
	return orEmpty(d.svc.AppointmentsForPatient(ctx, patientID))
}

func (d *Desk) DoctorAppointments(ctx context.Context, doctorID int64) []Appointment {
	return orEmpty(d.svc.AppointmentsForDoctor(ctx, doctorID))
}

func (d *Desk) AppointmentsByStatus(ctx context.Context, status AppointmentStatus) []Appointment {
	return orEmpty(d.svc.AppointmentsByStatus(ctx, status))
}

func (d *Desk) UpcomingAppointments(ctx context.Context) []Appointment {
	return orEmpty(d.svc.UpcomingAppointments(ctx))
}

func (d *Desk) SaveAppointment(ctx context.Context, a *Appointment) bool {
	return d.svc.UpdateAppointment(ctx, a) == nil
}

func (d *Desk) SetStatus(ctx context.Context, id int64, status AppointmentStatus) bool {
	_, err := d.svc.SetAppointmentStatus(ctx, id, status)
	return err == nil
}

func (d *Desk) RemoveAppointment(ctx context.Context, id int64) bool {
	return d.svc.DeleteAppointment(ctx, id) == nil
}

// Stats reports zero counters and false when any count fails.
func (d *Desk) Stats(ctx context.Context) (Stats, bool) {
	st, err := d.svc.Stats(ctx)
	return st, err == nil
}

func orEmpty[T any](items []T, err error) []T {
	if err != nil || items == nil {
		return []T{}
	}
	return items
}
