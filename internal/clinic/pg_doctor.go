package clinic

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-management/internal/db"
)

const doctorColumns = `id_medico, nombre, apellidos, especialidad`

type PgDoctorRepository struct {
	src db.Source
}

var _ DoctorRepository = (*PgDoctorRepository)(nil)

func NewPgDoctorRepository(src db.Source) *PgDoctorRepository {
	return &PgDoctorRepository{src: src}
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Surname,
		&d.Specialty,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgDoctorRepository) Insert(ctx context.Context, d *Doctor) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO medicos (nombre, apellidos, especialidad)
		VALUES ($1, $2, $3)
		RETURNING id_medico
	`, d.Name, d.Surname, d.Specialty).Scan(&d.ID)
	return translate("insert doctor", err, nil)
}

func (r *PgDoctorRepository) List(ctx context.Context) ([]Doctor, error) {
	return r.list(ctx, "list doctors", `
		SELECT `+doctorColumns+`
		FROM medicos
		ORDER BY apellidos, nombre, id_medico
	`)
}

func (r *PgDoctorRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	d, err := scanDoctor(q.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM medicos
		WHERE id_medico = $1
	`, id))
	if err != nil {
		return nil, translate("get doctor", err, ErrDoctorNotFound)
	}
	return d, nil
}

func (r *PgDoctorRepository) SearchByName(ctx context.Context, text string) ([]Doctor, error) {
	return r.list(ctx, "search doctors", `
		SELECT `+doctorColumns+`
		FROM medicos
		WHERE nombre ILIKE $1 OR apellidos ILIKE $1
		ORDER BY apellidos, nombre, id_medico
	`, likePattern(text))
}

func (r *PgDoctorRepository) SearchBySpecialty(ctx context.Context, specialty string) ([]Doctor, error) {
	return r.list(ctx, "search doctors by specialty", `
		SELECT `+doctorColumns+`
		FROM medicos
		WHERE especialidad ILIKE $1
		ORDER BY apellidos, nombre, id_medico
	`, likePattern(specialty))
}

// Specialties lists the distinct specialties in alphabetical order.
func (r *PgDoctorRepository) Specialties(ctx context.Context) ([]string, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT DISTINCT especialidad FROM medicos ORDER BY especialidad`)
	if err != nil {
		return nil, translate("list specialties", err, nil)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, translate("list specialties", err, nil)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list specialties", err, nil)
	}
	return result, nil
}

func (r *PgDoctorRepository) Update(ctx context.Context, d *Doctor) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE medicos
		SET nombre = $2,
		    apellidos = $3,
		    especialidad = $4
		WHERE id_medico = $1
	`, d.ID, d.Name, d.Surname, d.Specialty)
	if err != nil {
		return translate("update doctor", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgDoctorRepository) Delete(ctx context.Context, id int64) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM medicos WHERE id_medico = $1`, id)
	if err != nil {
		return translate("delete doctor", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgDoctorRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.src, "count doctors", `SELECT COUNT(*) FROM medicos`)
}

func (r *PgDoctorRepository) list(ctx context.Context, op, sql string, args ...any) ([]Doctor, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(op, err, nil)
	}
	defer rows.Close()

	result := make([]Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, translate(op, err, nil)
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(op, err, nil)
	}

	return result, nil
}
