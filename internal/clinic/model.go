package clinic

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Values stored in citas.estado.
var statusColumn = map[AppointmentStatus]string{
	StatusScheduled: "programada",
	StatusConfirmed: "confirmada",
	StatusCompleted: "completada",
	StatusCancelled: "cancelada",
}

// LookupStatus accepts the English names and the stored Spanish values in any
// case and reports whether s named a known status.
func LookupStatus(s string) (AppointmentStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for st, col := range statusColumn {
		if s == string(st) || s == col {
			return st, true
		}
	}
	return "", false
}

// ParseStatus is LookupStatus with anything unknown, including the empty
// string, read as StatusScheduled.
func ParseStatus(s string) AppointmentStatus {
	if st, ok := LookupStatus(s); ok {
		return st
	}
	return StatusScheduled
}

func (s AppointmentStatus) column() string {
	if col, ok := statusColumn[s]; ok {
		return col
	}
	return statusColumn[StatusScheduled]
}

type Patient struct {
	ID        int64      `json:"id"`
	DNI       string     `json:"dni" validate:"required,max=20"`
	Name      string     `json:"name" validate:"required,max=100"`
	Surname   string     `json:"surname" validate:"required,max=150"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Phone     string     `json:"phone" validate:"max=20"`
	Email     string     `json:"email" validate:"omitempty,email,max=100"`
	Address   string     `json:"address" validate:"max=255"`
}

func (p Patient) FullName() string { return joinName(p.Name, p.Surname) }

type Doctor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required,max=100"`
	Surname   string `json:"surname" validate:"required,max=150"`
	Specialty string `json:"specialty" validate:"required,max=100"`
}

func (d Doctor) FullName() string { return joinName(d.Name, d.Surname) }

type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patient_id" validate:"required,gt=0"`
	DoctorID  int64             `json:"doctor_id" validate:"required,gt=0"`
	Date      time.Time         `json:"date" validate:"required"`
	Time      string            `json:"time" validate:"required,datetime=15:04"`
	Reason    string            `json:"reason" validate:"max=500"`
	Status    AppointmentStatus `json:"status"`

	// Filled by joined reads only, never written.
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username" validate:"required,max=50"`
	Password  string    `json:"-" validate:"required"`
	FullName  string    `json:"full_name" validate:"required,max=150"`
	Role      string    `json:"role" validate:"required,max=30"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats backs the dashboard counters.
type Stats struct {
	Patients          int `json:"patients"`
	Doctors           int `json:"doctors"`
	Appointments      int `json:"appointments"`
	AppointmentsToday int `json:"appointments_today"`
}

// CivilDate truncates t to its calendar date at UTC midnight, the form DATE
// columns scan into.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func joinName(name, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}
