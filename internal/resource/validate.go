package resource

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

func validateStruct(v interface{}) error {
	return validate.Struct(v)
}
