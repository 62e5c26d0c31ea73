package clinic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-management/internal/db"
)

// Column order shared by scanAppointment; the joined select appends the two
// display names.
const appointmentColumns = `c.id_cita, c.id_paciente, c.id_medico, c.fecha_cita,
	to_char(c.hora_cita, 'HH24:MI'), COALESCE(c.motivo, ''), c.estado`

const appointmentSelect = `
	SELECT ` + appointmentColumns + `,
	       p.nombre || ' ' || p.apellidos,
	       m.nombre || ' ' || m.apellidos
	FROM citas c
	INNER JOIN pacientes p ON p.id_paciente = c.id_paciente
	INNER JOIN medicos m ON m.id_medico = c.id_medico`

type PgAppointmentRepository struct {
	src db.Source
}

var _ AppointmentRepository = (*PgAppointmentRepository)(nil)

func NewPgAppointmentRepository(src db.Source) *PgAppointmentRepository {
	return &PgAppointmentRepository{src: src}
}

// scanAppointment maps the plain citas columns; display names stay empty.
func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Reason,
		&status,
	)
	if err != nil {
		return nil, err
	}

	a.Status = ParseStatus(status)
	return &a, nil
}

func scanAppointmentJoined(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Reason,
		&status,
		&a.PatientName,
		&a.DoctorName,
	)
	if err != nil {
		return nil, err
	}

	a.Status = ParseStatus(status)
	return &a, nil
}

// Insert stores a and writes the generated identifier back. A second booking
// for the same doctor, date and time fails on uq_medico_fecha_hora.
func (r *PgAppointmentRepository) Insert(ctx context.Context, a *Appointment) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO citas (id_paciente, id_medico, fecha_cita, hora_cita, motivo, estado)
		VALUES ($1, $2, $3, $4::time, $5, $6)
		RETURNING id_cita
	`, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status.column()).Scan(&a.ID)
	return translate("insert appointment", err, nil)
}

func (r *PgAppointmentRepository) List(ctx context.Context) ([]Appointment, error) {
	return r.list(ctx, "list appointments", appointmentSelect+`
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC
	`)
}

func (r *PgAppointmentRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	a, err := scanAppointmentJoined(q.QueryRow(ctx, appointmentSelect+`
		WHERE c.id_cita = $1
	`, id))
	if err != nil {
		return nil, translate("get appointment", err, ErrAppointmentNotFound)
	}
	return a, nil
}

func (r *PgAppointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return r.list(ctx, "list appointments by patient", appointmentSelect+`
		WHERE c.id_paciente = $1
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC
	`, patientID)
}

func (r *PgAppointmentRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return r.list(ctx, "list appointments by doctor", appointmentSelect+`
		WHERE c.id_medico = $1
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC
	`, doctorID)
}

// ListByDate returns the agenda of one day in time order.
func (r *PgAppointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]Appointment, error) {
	return r.list(ctx, "list appointments by date", appointmentSelect+`
		WHERE c.fecha_cita = $1
		ORDER BY c.hora_cita, c.id_cita
	`, CivilDate(date))
}

// ListUpcoming returns appointments on or after from, soonest first.
func (r *PgAppointmentRepository) ListUpcoming(ctx context.Context, from time.Time) ([]Appointment, error) {
	return r.list(ctx, "list upcoming appointments", appointmentSelect+`
		WHERE c.fecha_cita >= $1
		ORDER BY c.fecha_cita, c.hora_cita, c.id_cita
	`, CivilDate(from))
}

func (r *PgAppointmentRepository) ListByStatus(ctx context.Context, status AppointmentStatus) ([]Appointment, error) {
	return r.list(ctx, "list appointments by status", appointmentSelect+`
		WHERE c.estado = $1
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC, c.id_cita DESC
	`, status.column())
}

func (r *PgAppointmentRepository) Update(ctx context.Context, a *Appointment) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE citas
		SET id_paciente = $2,
		    id_medico = $3,
		    fecha_cita = $4,
		    hora_cita = $5::time,
		    motivo = $6,
		    estado = $7
		WHERE id_cita = $1
	`, a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status.column())
	if err != nil {
		return translate("update appointment", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// UpdateStatus changes only estado and returns the stored row without the
// display names.
func (r *PgAppointmentRepository) UpdateStatus(ctx context.Context, id int64, status AppointmentStatus) (*Appointment, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	a, err := scanAppointment(q.QueryRow(ctx, `
		UPDATE citas c
		SET estado = $2
		WHERE c.id_cita = $1
		RETURNING `+appointmentColumns, id, status.column()))
	if err != nil {
		return nil, translate("update appointment status", err, ErrAppointmentNotFound)
	}
	return a, nil
}

func (r *PgAppointmentRepository) Delete(ctx context.Context, id int64) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM citas WHERE id_cita = $1`, id)
	if err != nil {
		return translate("delete appointment", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgAppointmentRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.src, "count appointments", `SELECT COUNT(*) FROM citas`)
}

func (r *PgAppointmentRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	return count(ctx, r.src, "count appointments by date", `SELECT COUNT(*) FROM citas WHERE fecha_cita = $1`, CivilDate(date))
}

func (r *PgAppointmentRepository) list(ctx context.Context, op, sql string, args ...any) ([]Appointment, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(op, err, nil)
	}
	defer rows.Close()

	result := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointmentJoined(rows)
		if err != nil {
			return nil, translate(op, err, nil)
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(op, err, nil)
	}

	return result, nil
}
