package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and converts failures into a
// validation DomainError naming each failing field and rule.
func validateStruct(domain, op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return shared.WrapError(domain, op, shared.ErrValidation, "invalid input", err)
	}

	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}

	kind := shared.ErrValidation
	if ve[0].Tag() == "required" {
		kind = shared.ErrEmptyValue
	}
	return shared.Validation(domain, op, kind, strings.Join(parts, "; "))
}
