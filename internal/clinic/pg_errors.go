package clinic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackgods/clinic-management/internal/db"
)

// translate maps driver errors onto the package taxonomy. notFound is
// returned for pgx.ErrNoRows when non-nil.
func translate(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return &ConstraintError{Constraint: pgErr.ConstraintName, Code: pgErr.Code, Err: pgErr}
	}

	if db.IsConnectionError(err) {
		var connErr *db.ConnectionError
		if errors.As(err, &connErr) {
			return err
		}
		return &db.ConnectionError{Err: fmt.Errorf("%s: %w", op, err)}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// likePattern builds a contains pattern with LIKE metacharacters escaped.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(text)) + "%"
}
