package clinic

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-management/internal/db"
)

const patientColumns = `id_paciente, dni, nombre, apellidos, fecha_nacimiento,
	COALESCE(telefono, ''), COALESCE(email, ''), COALESCE(direccion, '')`

type PgPatientRepository struct {
	src db.Source
}

var _ PatientRepository = (*PgPatientRepository)(nil)

func NewPgPatientRepository(src db.Source) *PgPatientRepository {
	return &PgPatientRepository{src: src}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.DNI,
		&p.Name,
		&p.Surname,
		&p.BirthDate,
		&p.Phone,
		&p.Email,
		&p.Address,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert stores p and writes the generated identifier back into it.
func (r *PgPatientRepository) Insert(ctx context.Context, p *Patient) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO pacientes (dni, nombre, apellidos, fecha_nacimiento, telefono, email, direccion)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_paciente
	`, p.DNI, p.Name, p.Surname, p.BirthDate, p.Phone, p.Email, p.Address).Scan(&p.ID)
	return translate("insert patient", err, nil)
}

func (r *PgPatientRepository) List(ctx context.Context) ([]Patient, error) {
	return r.list(ctx, "list patients", `
		SELECT `+patientColumns+`
		FROM pacientes
		ORDER BY apellidos, nombre, id_paciente
	`)
}

func (r *PgPatientRepository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.get(ctx, "get patient", `
		SELECT `+patientColumns+`
		FROM pacientes
		WHERE id_paciente = $1
	`, id)
}

func (r *PgPatientRepository) GetByDNI(ctx context.Context, dni string) (*Patient, error) {
	return r.get(ctx, "get patient by dni", `
		SELECT `+patientColumns+`
		FROM pacientes
		WHERE dni = $1
	`, dni)
}

// SearchByName matches text anywhere in name or surname, ignoring case.
func (r *PgPatientRepository) SearchByName(ctx context.Context, text string) ([]Patient, error) {
	return r.list(ctx, "search patients", `
		SELECT `+patientColumns+`
		FROM pacientes
		WHERE nombre ILIKE $1 OR apellidos ILIKE $1
		ORDER BY apellidos, nombre, id_paciente
	`, likePattern(text))
}

func (r *PgPatientRepository) Update(ctx context.Context, p *Patient) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE pacientes
		SET dni = $2,
		    nombre = $3,
		    apellidos = $4,
		    fecha_nacimiento = $5,
		    telefono = $6,
		    email = $7,
		    direccion = $8
		WHERE id_paciente = $1
	`, p.ID, p.DNI, p.Name, p.Surname, p.BirthDate, p.Phone, p.Email, p.Address)
	if err != nil {
		return translate("update patient", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// Delete fails with a ConstraintError while appointments reference the patient.
func (r *PgPatientRepository) Delete(ctx context.Context, id int64) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM pacientes WHERE id_paciente = $1`, id)
	if err != nil {
		return translate("delete patient", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *PgPatientRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.src, "count patients", `SELECT COUNT(*) FROM pacientes`)
}

func (r *PgPatientRepository) get(ctx context.Context, op, sql string, args ...any) (*Patient, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanPatient(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(op, err, ErrPatientNotFound)
	}
	return p, nil
}

func (r *PgPatientRepository) list(ctx context.Context, op, sql string, args ...any) ([]Patient, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(op, err, nil)
	}
	defer rows.Close()

	result := make([]Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, translate(op, err, nil)
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(op, err, nil)
	}

	return result, nil
}

func count(ctx context.Context, src db.Source, op, sql string, args ...any) (int, error) {
	q, err := src.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, translate(op, err, nil)
	}
	return int(n), nil
}
