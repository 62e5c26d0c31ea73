package clinic

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-management/internal/db"
)

const userColumns = `id_usuario, username, password, nombre_completo, rol, activo, fecha_creacion`

type PgUserRepository struct {
	src db.Source
}

var (
	_ UserRepository = (*PgUserRepository)(nil)
	_ Credentials    = (*PgUserRepository)(nil)
)

func NewPgUserRepository(src db.Source) *PgUserRepository {
	return &PgUserRepository{src: src}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.FullName,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate compares the stored password column verbatim. Callers that
// keep hashes use GetActiveByUsername and compare themselves.
func (r *PgUserRepository) Authenticate(ctx context.Context, username, password string) (*User, error) {
	return r.get(ctx, "authenticate user", `
		SELECT `+userColumns+`
		FROM usuarios
		WHERE username = $1 AND password = $2 AND activo = TRUE
	`, username, password)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.get(ctx, "get user", `
		SELECT `+userColumns+`
		FROM usuarios
		WHERE username = $1
	`, username)
}

func (r *PgUserRepository) GetActiveByUsername(ctx context.Context, username string) (*User, error) {
	return r.get(ctx, "get active user", `
		SELECT `+userColumns+`
		FROM usuarios
		WHERE username = $1 AND activo = TRUE
	`, username)
}

func (r *PgUserRepository) Insert(ctx context.Context, u *User) error {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO usuarios (username, password, nombre_completo, rol, activo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_usuario, fecha_creacion
	`, u.Username, u.Password, u.FullName, u.Role, u.Active).Scan(&u.ID, &u.CreatedAt)
	return translate("insert user", err, nil)
}

func (r *PgUserRepository) get(ctx context.Context, op, sql string, args ...any) (*User, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(op, err, ErrUserNotFound)
	}
	return u, nil
}
