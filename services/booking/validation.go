package booking

import (
	"errors"
	"fmt"
	"strings"

	"petcare/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateIntent checks required fields and location prerequisites
// (home visits need an address, clinic visits need a clinic).
func validateIntent(intent models.BookingIntent) error {
	err := validate.Struct(intent)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationError("invalid booking intent", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeField(fe))
	}
	return validationError(strings.Join(problems, "; "), nil)
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required for this location type", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
