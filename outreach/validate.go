// ABOUTME: Input validation rules shared by the HTTP and MCP boundaries
// ABOUTME: Wraps validator/v10 and renders the first failure as a readable message
package outreach

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/outreach/importer"
)

var validate = newValidator()

// fieldMessages overrides the generic message for a field's custom rule.
var fieldMessages = map[string]string{
	"website":       "Invalid website URL",
	"careerPageUrl": "Invalid career page URL",
	"linkedinUrl":   "Invalid LinkedIn URL",
	"email":         "Invalid email format",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("looseurl", func(fl validator.FieldLevel) bool {
		return importer.IsValidURL(fl.Field().String())
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return importer.IsValidEmail(fl.Field().String())
	})
	return v
}

// validateStruct returns a BadRequest describing the first failed rule.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return BadRequest("%s", err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return BadRequest("%s is required", field)
	case "max":
		return BadRequest("%s exceeds maximum length of %s", field, fe.Param())
	case "min":
		return BadRequest("%s must be at least %s", field, fe.Param())
	case "oneof":
		return BadRequest("Invalid %s. Must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "looseurl", "looseemail":
		if msg, ok := fieldMessages[field]; ok {
			return BadRequest("%s", msg)
		}
	}
	return BadRequest("Invalid %s", field)
}
