package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// Errors report field names from the `form` tag, matching what the
// templates call the inputs.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// FirstMessage returns a single human-readable message for the first failed
// rule, suitable for a flash. Handlers show one validation error at a time.
func FirstMessage(err error) string {
	msgs := Messages(err)
	if len(msgs) == 0 {
		return "invalid input"
	}
	return msgs[0]
}

// Messages converts binding errors into "field message" strings in
// declaration order.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid input"}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field()+" "+formatFieldError(fe))
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "min":
		if param != "" {
			return "must be at least " + param + " characters long"
		}
		return "is too short"
	case "max":
		if param != "" {
			return "must be at most " + param + " characters long"
		}
		return "is too long"
	default:
		if param != "" {
			return fmt.Sprintf("failed validation '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("failed validation '%s'", tag)
	}
}
