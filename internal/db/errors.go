package db

import (
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectionError reports that the database could not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "database connection: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err means the database is unreachable,
// either because the provider could not connect or because the driver lost
// the connection mid-statement.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	var pgConnErr *pgconn.ConnectError
	if errors.As(err, &pgConnErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.Timeout(err)
}
