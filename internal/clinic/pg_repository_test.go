package clinic

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/hackgods/clinic-management/internal/db"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, db.Source) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock, db.Fixed{Q: mock}
}

func re(s string) string { return regexp.QuoteMeta(s) }

var patientCols = []string{"id_paciente", "dni", "nombre", "apellidos", "fecha_nacimiento", "telefono", "email", "direccion"}

var appointmentCols = []string{"id_cita", "id_paciente", "id_medico", "fecha_cita", "hora_cita", "motivo", "estado", "paciente", "medico"}

type downSource struct{}

func (downSource) Acquire(context.Context) (db.Querier, error) {
	return nil, &db.ConnectionError{Err: errors.New("dial tcp 127.0.0.1:5432: connection refused")}
}

func TestPatientRepository_InsertThenGet(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)
	ctx := context.Background()

	birth := time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC)
	p := &Patient{DNI: "12345678A", Name: "Ana", Surname: "García", BirthDate: &birth, Phone: "600111222", Email: "ana@example.com", Address: "Calle Mayor 1"}

	mock.ExpectQuery(re("INSERT INTO pacientes")).
		WithArgs(p.DNI, p.Name, p.Surname, p.BirthDate, p.Phone, p.Email, p.Address).
		WillReturnRows(mock.NewRows([]string{"id_paciente"}).AddRow(int64(7)))

	if err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("ID = %d, want 7", p.ID)
	}

	mock.ExpectQuery(re("WHERE id_paciente = $1")).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows(patientCols).
			AddRow(int64(7), p.DNI, p.Name, p.Surname, &birth, p.Phone, p.Email, p.Address))

	got, err := repo.GetByID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != p.ID || got.DNI != p.DNI || got.Email != p.Email || got.Address != p.Address {
		t.Errorf("GetByID = %+v, want %+v", got, p)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(birth) {
		t.Errorf("BirthDate = %v, want %v", got.BirthDate, birth)
	}
}

func TestPatientRepository_NullBirthDate(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	mock.ExpectQuery(re("WHERE dni = $1")).
		WithArgs("X1").
		WillReturnRows(mock.NewRows(patientCols).
			AddRow(int64(1), "X1", "Luis", "Pérez", (*time.Time)(nil), "", "", ""))

	got, err := repo.GetByDNI(context.Background(), "X1")
	if err != nil {
		t.Fatalf("GetByDNI: %v", err)
	}
	if got.BirthDate != nil {
		t.Errorf("BirthDate = %v, want nil", got.BirthDate)
	}
}

func TestPatientRepository_ListOrderedBySurname(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	mock.ExpectQuery(re("ORDER BY apellidos, nombre, id_paciente")).
		WillReturnRows(mock.NewRows(patientCols).
			AddRow(int64(2), "B", "Ana", "Alonso", (*time.Time)(nil), "", "", "").
			AddRow(int64(1), "A", "Luis", "Zapata", (*time.Time)(nil), "", "", ""))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Surname != "Alonso" || got[1].Surname != "Zapata" {
		t.Errorf("List = %+v", got)
	}
}

func TestPatientRepository_ListEmptyIsNotNil(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	mock.ExpectQuery(re("FROM pacientes")).WillReturnRows(mock.NewRows(patientCols))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List = %#v, want empty non-nil slice", got)
	}
}

func TestPatientRepository_SearchEscapesPattern(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	mock.ExpectQuery(re("nombre ILIKE $1 OR apellidos ILIKE $1")).
		WithArgs(`%50\%%`).
		WillReturnRows(mock.NewRows(patientCols))

	if _, err := repo.SearchByName(context.Background(), " 50% "); err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
}

func TestPatientRepository_DeleteThenGetNotFound(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)
	ctx := context.Background()

	mock.ExpectExec(re("DELETE FROM pacientes WHERE id_paciente = $1")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(re("WHERE id_paciente = $1")).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows(patientCols))

	if err := repo.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := repo.GetByID(ctx, 3)
	if !errors.Is(err, ErrPatientNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID after delete = %v, want ErrPatientNotFound", err)
	}
}

func TestPatientRepository_DeleteReferenced(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	mock.ExpectExec(re("DELETE FROM pacientes")).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "citas_id_paciente_fkey", Message: "update or delete violates foreign key"})

	err := repo.Delete(context.Background(), 1)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("Delete = %v, want ErrConstraintViolation", err)
	}
	var ce *ConstraintError
	if !errors.As(err, &ce) || ce.Constraint != "citas_id_paciente_fkey" || ce.Code != "23503" {
		t.Errorf("ConstraintError = %+v", ce)
	}
}

func TestPatientRepository_UpdateMissing(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgPatientRepository(src)

	p := &Patient{ID: 99, DNI: "1", Name: "a", Surname: "b"}
	mock.ExpectExec(re("UPDATE pacientes")).
		WithArgs(p.ID, p.DNI, p.Name, p.Surname, pgxmock.AnyArg(), "", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), p); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("Update = %v, want ErrPatientNotFound", err)
	}
}

func TestRepositories_ConnectionFailure(t *testing.T) {
	ctx := context.Background()
	repos := NewPgRepositories(downSource{})

	checks := map[string]error{}
	_, checks["patients"] = repos.Patients.List(ctx)
	_, checks["doctors"] = repos.Doctors.GetByID(ctx, 1)
	checks["appointments"] = repos.Appointments.Insert(ctx, &Appointment{})
	_, checks["users"] = NewPgUserRepository(downSource{}).Authenticate(ctx, "admin", "admin123")

	for name, err := range checks {
		if !db.IsConnectionError(err) {
			t.Errorf("%s: err = %v, want connection error", name, err)
		}
	}
}

func TestTranslate_DriverConnectionLoss(t *testing.T) {
	err := translate("list patients", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}, nil)
	var connErr *db.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("translate = %T %v, want *db.ConnectionError", err, err)
	}
}

func TestDoctorRepository_Specialties(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgDoctorRepository(src)

	mock.ExpectQuery(re("SELECT DISTINCT especialidad FROM medicos ORDER BY especialidad")).
		WillReturnRows(mock.NewRows([]string{"especialidad"}).AddRow("Cardiología").AddRow("Pediatría"))

	got, err := repo.Specialties(context.Background())
	if err != nil {
		t.Fatalf("Specialties: %v", err)
	}
	if len(got) != 2 || got[0] != "Cardiología" || got[1] != "Pediatría" {
		t.Errorf("Specialties = %v", got)
	}
}

func TestDoctorRepository_SearchBySpecialty(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgDoctorRepository(src)

	mock.ExpectQuery(re("WHERE especialidad ILIKE $1")).
		WithArgs("%cardio%").
		WillReturnRows(mock.NewRows([]string{"id_medico", "nombre", "apellidos", "especialidad"}).
			AddRow(int64(4), "Carlos", "Ruiz", "Cardiología"))

	got, err := repo.SearchBySpecialty(context.Background(), "cardio")
	if err != nil {
		t.Fatalf("SearchBySpecialty: %v", err)
	}
	if len(got) != 1 || got[0].FullName() != "Carlos Ruiz" {
		t.Errorf("SearchBySpecialty = %+v", got)
	}
}

func TestAppointmentRepository_SecondBookingForSlotFails(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgAppointmentRepository(src)
	ctx := context.Background()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	first := &Appointment{PatientID: 1, DoctorID: 1, Date: date, Time: "10:30", Reason: "Checkup", Status: StatusScheduled}
	second := &Appointment{PatientID: 2, DoctorID: 1, Date: date, Time: "10:30", Status: StatusScheduled}

	mock.ExpectQuery(re("INSERT INTO citas")).
		WithArgs(int64(1), int64(1), date, "10:30", "Checkup", "programada").
		WillReturnRows(mock.NewRows([]string{"id_cita"}).AddRow(int64(1)))
	mock.ExpectQuery(re("INSERT INTO citas")).
		WithArgs(int64(2), int64(1), date, "10:30", "", "programada").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: SlotConstraint, Message: "duplicate key value"})

	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("first.ID = %d, want 1", first.ID)
	}

	err := repo.Insert(ctx, second)
	if !errors.Is(err, ErrConstraintViolation) || !IsSlotTaken(err) {
		t.Fatalf("second Insert = %v, want slot constraint violation", err)
	}
	if second.ID != 0 {
		t.Errorf("second.ID = %d, want 0", second.ID)
	}
}

func TestAppointmentRepository_GetJoined(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgAppointmentRepository(src)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(re("INNER JOIN medicos m")).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(appointmentCols).
			AddRow(int64(1), int64(1), int64(1), date, "10:30", "Checkup", "programada", "Juan Pérez", "María López"))

	got, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("Status = %q, want scheduled", got.Status)
	}
	if got.PatientName != "Juan Pérez" || got.DoctorName != "María López" {
		t.Errorf("names = %q / %q", got.PatientName, got.DoctorName)
	}
	if got.Time != "10:30" || !got.Date.Equal(date) {
		t.Errorf("slot = %s %s", got.Date, got.Time)
	}
}

func TestAppointmentRepository_Orderings(t *testing.T) {
	day := time.Date(2024, 1, 15, 9, 45, 0, 0, time.UTC)
	civil := CivilDate(day)

	tests := []struct {
		name  string
		where string
		order string
		args  []any
		call  func(r *PgAppointmentRepository) ([]Appointment, error)
	}{
		{
			name:  "list",
			where: "INNER JOIN medicos m ON m.id_medico = c.id_medico",
			order: "ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC",
			call:  func(r *PgAppointmentRepository) ([]Appointment, error) { return r.List(context.Background()) },
		},
		{
			name:  "by_patient",
			where: "WHERE c.id_paciente = $1",
			order: "ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC",
			args:  []any{int64(1)},
			call: func(r *PgAppointmentRepository) ([]Appointment, error) {
				return r.ListByPatient(context.Background(), 1)
			},
		},
		{
			name:  "by_doctor",
			where: "WHERE c.id_medico = $1",
			order: "ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC",
			args:  []any{int64(2)},
			call: func(r *PgAppointmentRepository) ([]Appointment, error) {
				return r.ListByDoctor(context.Background(), 2)
			},
		},
		{
			name:  "by_date",
			where: "WHERE c.fecha_cita = $1",
			order: "ORDER BY c.hora_cita, c.id_cita",
			args:  []any{civil},
			call: func(r *PgAppointmentRepository) ([]Appointment, error) {
				return r.ListByDate(context.Background(), day)
			},
		},
		{
			name:  "upcoming",
			where: "WHERE c.fecha_cita >= $1",
			order: "ORDER BY c.fecha_cita, c.hora_cita, c.id_cita",
			args:  []any{civil},
			call: func(r *PgAppointmentRepository) ([]Appointment, error) {
				return r.ListUpcoming(context.Background(), day)
			},
		},
		{
			name:  "by_status",
			where: "WHERE c.estado = $1",
			order: "ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC",
			args:  []any{"cancelada"},
			call: func(r *PgAppointmentRepository) ([]Appointment, error) {
				return r.ListByStatus(context.Background(), StatusCancelled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, src := newMock(t)
			exp := mock.ExpectQuery(re(tt.where) + `\s+` + re(tt.order) + `\s*$`)
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnRows(mock.NewRows(appointmentCols))

			got, err := tt.call(NewPgAppointmentRepository(src))
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if got == nil {
				t.Error("got nil slice, want empty")
			}
		})
	}
}

func TestAppointmentRepository_UpdateStatus(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgAppointmentRepository(src)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(re("SET estado = $2")).
		WithArgs(int64(5), "cancelada").
		WillReturnRows(mock.NewRows(appointmentCols[:7]).
			AddRow(int64(5), int64(1), int64(1), date, "10:30", "", "cancelada"))

	got, err := repo.UpdateStatus(context.Background(), 5, StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("Status = %q", got.Status)
	}

	mock.ExpectQuery(re("SET estado = $2")).
		WithArgs(int64(6), "confirmada").
		WillReturnRows(mock.NewRows(appointmentCols[:7]))

	if _, err := repo.UpdateStatus(context.Background(), 6, StatusConfirmed); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("UpdateStatus missing = %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppointmentRepository_CountByDate(t *testing.T) {
	mock, src := newMock(t)
	repo := NewPgAppointmentRepository(src)

	day := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(re("SELECT COUNT(*) FROM citas WHERE fecha_cita = $1")).
		WithArgs(CivilDate(day)).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("CountByDate: %v", err)
	}
	if n != 3 {
		t.Errorf("CountByDate = %d, want 3", n)
	}
}

func TestUserRepository_Authenticate(t *testing.T) {
	cols := []string{"id_usuario", "username", "password", "nombre_completo", "rol", "activo", "fecha_creacion"}
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		password string
		rows     func(m pgxmock.PgxPoolIface) *pgxmock.Rows
		wantErr  error
	}{
		{
			name:     "valid",
			password: "admin123",
			rows: func(m pgxmock.PgxPoolIface) *pgxmock.Rows {
				return m.NewRows(cols).AddRow(int64(1), "admin", "admin123", "Administrador", "admin", true, created)
			},
		},
		{
			name:     "wrong_password",
			password: "nope",
			rows:     func(m pgxmock.PgxPoolIface) *pgxmock.Rows { return m.NewRows(cols) },
			wantErr:  ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, src := newMock(t)
			mock.ExpectQuery(re("WHERE username = $1 AND password = $2 AND activo = TRUE")).
				WithArgs("admin", tt.password).
				WillReturnRows(tt.rows(mock))

			u, err := NewPgUserRepository(src).Authenticate(context.Background(), "admin", tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if u.Username != "admin" || u.FullName != "Administrador" || !u.Active {
				t.Errorf("user = %+v", u)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"ana":   "%ana%",
		" 50% ": `%50\%%`,
		"a_b":   `%a\_b%`,
		`c:\x`:  `%c:\\x%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
