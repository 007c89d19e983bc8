package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput matches every validation failure returned by the services.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError is returned when a request fails validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidInput, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Fields lists the failing fields with the rule each one broke.
func (e *ValidationError) Fields() map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return fields
}

func invalid(err error) error {
	return &ValidationError{Err: err}
}

func invalidID(id int64) error {
	return invalid(fmt.Errorf("id must be positive, got %d", id))
}
