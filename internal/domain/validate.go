package domain

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the `validate` struct tags of v.
func Validate(v any) error {
	return validate.Struct(v)
}
