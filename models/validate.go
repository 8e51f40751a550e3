package models

import "github.com/go-playground/validator/v10"

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
