package http

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("isbn13", validateISBN13)
	validate.RegisterValidation("patron_id", validatePatronID)
}

// Catalog ISBNs are bare 13-digit strings, no separators.
func validateISBN13(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^\d{13}$`, fl.Field().String())
	return matched
}

func validatePatronID(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^\d{6}$`, fl.Field().String())
	return matched
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct checks request shapes before they reach the service. The
// patron_id and isbn13 messages mirror the service's own wording so the
// caller sees one phrasing regardless of which layer rejected the input.
func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "isbn13":
			message = "ISBN must be exactly 13 digits."
		case "patron_id":
			message = "Invalid patron ID. Must be exactly 6 digits."
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		errors = append(errors, ValidationError{
			Field:   fieldName,
			Message: message,
		})
	}

	return errors
}
