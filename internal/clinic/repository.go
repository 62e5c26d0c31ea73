package clinic

import (
	"context"
	"time"
)

type PatientRepository interface {
	Insert(ctx context.Context, p *Patient) error
	List(ctx context.Context) ([]Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByDNI(ctx context.Context, dni string) (*Patient, error)
	SearchByName(ctx context.Context, text string) ([]Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type DoctorRepository interface {
	Insert(ctx context.Context, d *Doctor) error
	List(ctx context.Context) ([]Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	SearchByName(ctx context.Context, text string) ([]Doctor, error)
	SearchBySpecialty(ctx context.Context, specialty string) ([]Doctor, error)
	Specialties(ctx context.Context) ([]string, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// AppointmentRepository reads always join pacientes and medicos so the
// display names are filled.
type AppointmentRepository interface {
	Insert(ctx context.Context, a *Appointment) error
	List(ctx context.Context) ([]Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]Appointment, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]Appointment, error)
	ListByStatus(ctx context.Context, status AppointmentStatus) ([]Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id int64, status AppointmentStatus) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

type UserRepository interface {
	// Authenticate matches username, stored password and the active flag.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetActiveByUsername(ctx context.Context, username string) (*User, error)
	Insert(ctx context.Context, u *User) error
}
