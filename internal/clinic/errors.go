package clinic

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrValidation          = errors.New("validation failed")

	ErrPatientNotFound     = fmt.Errorf("patient: %w", ErrNotFound)
	ErrDoctorNotFound      = fmt.Errorf("doctor: %w", ErrNotFound)
	ErrAppointmentNotFound = fmt.Errorf("appointment: %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user: %w", ErrNotFound)
)

// Name of the unique (doctor, date, time) constraint on citas.
const SlotConstraint = "uq_medico_fecha_hora"

// ConstraintError is a database integrity violation: duplicate key, unknown
// foreign key or a delete blocked by a referencing row.
type ConstraintError struct {
	Constraint string
	Code       string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("constraint violated: %v", e.Err)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsSlotTaken reports whether err is the doctor double-booking violation.
func IsSlotTaken(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Constraint == SlotConstraint
}

// ValidationError rejects a record before it reaches the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
