package models

import (
	"github.com/go-playground/validator/v10"
)

// MaxFieldBytes bounds any single text field accepted from callers.
const MaxFieldBytes = 32 * 1024

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxFieldBytes
}

// Validate checks the struct tags of a request type.
func Validate(v any) error {
	return validate.Struct(v)
}
