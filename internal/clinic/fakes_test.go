package clinic

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory stand-in for the three entity tables. err, when
// set, is returned by every call.
type memStore struct {
	mu           sync.Mutex
	err          error
	nextID       int64
	patients     map[int64]Patient
	doctors      map[int64]Doctor
	appointments map[int64]Appointment
}

func newMemStore() *memStore {
	return &memStore{
		patients:     map[int64]Patient{},
		doctors:      map[int64]Doctor{},
		appointments: map[int64]Appointment{},
	}
}

func (s *memStore) repos() Repositories {
	return Repositories{
		Patients:     memPatients{s},
		Doctors:      memDoctors{s},
		Appointments: memAppointments{s},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memPatients struct{ s *memStore }

func (m memPatients) Insert(_ context.Context, p *Patient) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return m.s.err
	}
	p.ID = m.s.id()
	m.s.patients[p.ID] = *p
	return nil
}

func (m memPatients) List(context.Context) ([]Patient, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}
	out := make([]Patient, 0, len(m.s.patients))
	for _, p := range m.s.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Surname < out[j].Surname })
	return out, nil
}

func (m memPatients) GetByID(_ context.Context, id int64) (*Patient, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}
	p, ok := m.s.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m memPatients) GetByDNI(_ context.Context, dni string) (*Patient, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.patients {
		if p.DNI == dni {
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (m memPatients) SearchByName(ctx context.Context, _ string) ([]Patient, error) {
	return []Patient{}, m.s.err
}

func (m memPatients) Update(_ context.Context, p *Patient) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	m.s.patients[p.ID] = *p
	return nil
}

func (m memPatients) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.patients[id]; !ok {
		return ErrPatientNotFound
	}
	for _, a := range m.s.appointments {
		if a.PatientID == id {
			return &ConstraintError{Constraint: "citas_id_paciente_fkey", Code: "23503"}
		}
	}
	delete(m.s.patients, id)
	return nil
}

func (m memPatients) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.patients), m.s.err
}

type memDoctors struct{ s *memStore }

func (m memDoctors) Insert(_ context.Context, d *Doctor) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return m.s.err
	}
	d.ID = m.s.id()
	m.s.doctors[d.ID] = *d
	return nil
}

func (m memDoctors) List(context.Context) ([]Doctor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}
	out := make([]Doctor, 0, len(m.s.doctors))
	for _, d := range m.s.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (m memDoctors) GetByID(_ context.Context, id int64) (*Doctor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m memDoctors) SearchByName(context.Context, string) ([]Doctor, error) {
	return []Doctor{}, m.s.err
}

func (m memDoctors) SearchBySpecialty(_ context.Context, specialty string) ([]Doctor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []Doctor{}
	for _, d := range m.s.doctors {
		if d.Specialty == specialty {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m memDoctors) Specialties(context.Context) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, d := range m.s.doctors {
		if !seen[d.Specialty] {
			seen[d.Specialty] = true
			out = append(out, d.Specialty)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m memDoctors) Update(_ context.Context, d *Doctor) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	m.s.doctors[d.ID] = *d
	return nil
}

func (m memDoctors) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(m.s.doctors, id)
	return nil
}

func (m memDoctors) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.doctors), m.s.err
}

type memAppointments struct{ s *memStore }

func (m memAppointments) slotTaken(a *Appointment) bool {
	for _, other := range m.s.appointments {
		if other.ID != a.ID && other.DoctorID == a.DoctorID && other.Date.Equal(a.Date) && other.Time == a.Time {
			return true
		}
	}
	return false
}

func (m memAppointments) joined(a Appointment) Appointment {
	if p, ok := m.s.patients[a.PatientID]; ok {
		a.PatientName = p.FullName()
	}
	if d, ok := m.s.doctors[a.DoctorID]; ok {
		a.DoctorName = d.FullName()
	}
	return a
}

func (m memAppointments) Insert(_ context.Context, a *Appointment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return m.s.err
	}
	if m.slotTaken(a) {
		return &ConstraintError{Constraint: SlotConstraint, Code: "23505"}
	}
	a.ID = m.s.id()
	m.s.appointments[a.ID] = *a
	return nil
}

func (m memAppointments) filter(keep func(Appointment) bool) ([]Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}
	out := []Appointment{}
	for _, a := range m.s.appointments {
		if keep(a) {
			out = append(out, m.joined(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memAppointments) List(context.Context) ([]Appointment, error) {
	return m.filter(func(Appointment) bool { return true })
}

func (m memAppointments) GetByID(_ context.Context, id int64) (*Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a = m.joined(a)
	return &a, nil
}

func (m memAppointments) ListByPatient(_ context.Context, id int64) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool { return a.PatientID == id })
}

func (m memAppointments) ListByDoctor(_ context.Context, id int64) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool { return a.DoctorID == id })
}

func (m memAppointments) ListByDate(_ context.Context, date time.Time) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool { return a.Date.Equal(date) })
}

func (m memAppointments) ListUpcoming(_ context.Context, from time.Time) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool { return !a.Date.Before(from) })
}

func (m memAppointments) ListByStatus(_ context.Context, st AppointmentStatus) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool { return a.Status == st })
}

func (m memAppointments) Update(_ context.Context, a *Appointment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	if m.slotTaken(a) {
		return &ConstraintError{Constraint: SlotConstraint, Code: "23505"}
	}
	m.s.appointments[a.ID] = *a
	return nil
}

func (m memAppointments) UpdateStatus(_ context.Context, id int64, st AppointmentStatus) (*Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = st
	m.s.appointments[id] = a
	return &a, nil
}

func (m memAppointments) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.s.appointments, id)
	return nil
}

func (m memAppointments) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.appointments), m.s.err
}

func (m memAppointments) CountByDate(_ context.Context, date time.Time) (int, error) {
	as, err := m.filter(func(a Appointment) bool { return a.Date.Equal(date) })
	return len(as), err
}

// fakeLocker returns err without running fn when set, and records slots.
type fakeLocker struct {
	err   error
	slots []string
}

func (l *fakeLocker) WithSlotLock(ctx context.Context, slot string, fn func(ctx context.Context) error) error {
	l.slots = append(l.slots, slot)
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

// memCredentials accepts one active user.
type memCredentials struct {
	user     User
	password string
}

func (c memCredentials) Authenticate(_ context.Context, username, password string) (*User, error) {
	if !c.user.Active || username != c.user.Username || password != c.password {
		return nil, ErrUserNotFound
	}
	u := c.user
	return &u, nil
}
