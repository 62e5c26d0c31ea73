package clinic

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// validateRecord runs the struct tags and reports the first failing field.
func validateRecord(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Reason: describe(fe)}
	}
	return &ValidationError{Field: "record", Reason: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a time formatted HH:MM"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}

func normalizePatient(p *Patient) error {
	p.DNI = strings.TrimSpace(p.DNI)
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Email = strings.TrimSpace(p.Email)
	if p.BirthDate != nil {
		d := CivilDate(*p.BirthDate)
		p.BirthDate = &d
	}
	return validateRecord(p)
}

func normalizeDoctor(d *Doctor) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Surname = strings.TrimSpace(d.Surname)
	d.Specialty = strings.TrimSpace(d.Specialty)
	return validateRecord(d)
}

func normalizeAppointment(a *Appointment) error {
	if a.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	a.Date = CivilDate(a.Date)
	a.Time = strings.TrimSpace(a.Time)
	a.Status = ParseStatus(string(a.Status))

	if err := validateRecord(a); err != nil {
		return err
	}

	clock, err := ParseClock(a.Time)
	if err != nil {
		return err
	}
	a.Time = clock
	return nil
}

// ParseClock normalizes a time of day to zero-padded HH:MM.
func ParseClock(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", &ValidationError{Field: "time", Reason: "must be a time formatted HH:MM"}
	}
	return t.Format("15:04"), nil
}
