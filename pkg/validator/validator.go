package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// shared instance for single-value checks; validator.Validate is safe for
// concurrent use
var defaultValidate = validator.New()

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{
		validator: validator.New(),
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return defaultValidate.Var(s, "required,email") == nil
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	messages := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				messages[field] = field + " is required"
			case "email":
				messages[field] = field + " must be a valid email address"
			case "min":
				messages[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				messages[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				messages[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				messages[field] = field + " must be less than or equal to " + e.Param()
			case "uuid":
				messages[field] = field + " must be a valid UUID"
			case "numeric":
				messages[field] = field + " must be a number"
			case "datetime":
				messages[field] = field + " must match the format " + e.Param()
			default:
				messages[field] = field + " is invalid"
			}
		}
	}

	return messages
}
