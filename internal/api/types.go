package api

import (
	"time"

	"github.com/hackgods/clinic-management/internal/auth"
	"github.com/hackgods/clinic-management/internal/clinic"
)

const dateLayout = "2006-01-02"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      clinic.User `json:"user"`
}

type SessionResponse struct {
	User      clinic.User `json:"user"`
	StartedAt time.Time   `json:"started_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type PatientRequest struct {
	DNI       string `json:"dni"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

type PatientResponse struct {
	ID        int64  `json:"id"`
	DNI       string `json:"dni"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

type DoctorRequest struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Specialty string `json:"specialty"`
}

type AppointmentRequest struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	Reason    string `json:"reason"`
	Status    string `json:"status,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID          int64  `json:"id"`
	PatientID   int64  `json:"patient_id"`
	DoctorID    int64  `json:"doctor_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func newSessionResponse(s *auth.Session) SessionResponse {
	return SessionResponse{User: s.User, StartedAt: s.StartedAt, ExpiresAt: s.ExpiresAt}
}

func (req PatientRequest) toPatient(id int64) (*clinic.Patient, error) {
	p := &clinic.Patient{
		ID:      id,
		DNI:     req.DNI,
		Name:    req.Name,
		Surname: req.Surname,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if req.BirthDate != "" {
		d, err := parseDate("birth_date", req.BirthDate)
		if err != nil {
			return nil, err
		}
		p.BirthDate = &d
	}
	return p, nil
}

func newPatientResponse(p *clinic.Patient) PatientResponse {
	resp := PatientResponse{
		ID:       p.ID,
		DNI:      p.DNI,
		Name:     p.Name,
		Surname:  p.Surname,
		FullName: p.FullName(),
		Phone:    p.Phone,
		Email:    p.Email,
		Address:  p.Address,
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format(dateLayout)
	}
	return resp
}

func (req DoctorRequest) toDoctor(id int64) *clinic.Doctor {
	return &clinic.Doctor{ID: id, Name: req.Name, Surname: req.Surname, Specialty: req.Specialty}
}

func (req AppointmentRequest) toAppointment(id int64) (*clinic.Appointment, error) {
	if req.Date == "" {
		return nil, &clinic.ValidationError{Field: "date", Reason: "is required"}
	}
	d, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	return &clinic.Appointment{
		ID:        id,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      d,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    clinic.AppointmentStatus(req.Status),
	}, nil
}

func newAppointmentResponse(a *clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		Date:        a.Date.Format(dateLayout),
		Time:        a.Time,
		Reason:      a.Reason,
		Status:      string(a.Status),
		PatientName: a.PatientName,
		DoctorName:  a.DoctorName,
	}
}

func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &clinic.ValidationError{Field: field, Reason: "must be a date formatted YYYY-MM-DD"}
	}
	return d, nil
}

func mapSlice[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
