package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			key := fieldPath(e)
			switch e.Tag() {
			case "required":
				errors[key] = field + " is required"
			case "email":
				errors[key] = field + " must be a valid email address"
			case "min":
				errors[key] = field + " must be at least " + e.Param()
			case "max":
				errors[key] = field + " must be at most " + e.Param()
			case "gte":
				errors[key] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[key] = field + " must be less than or equal to " + e.Param()
			case "gt":
				errors[key] = field + " must be greater than " + e.Param()
			case "oneof":
				errors[key] = field + " must be one of: " + e.Param()
			case "hhmm":
				errors[key] = field + " must be a time in HH:mm format"
			case "datetime":
				errors[key] = field + " must match the format " + e.Param()
			case "unique":
				errors[key] = field + " must not contain duplicates"
			default:
				errors[key] = field + " is invalid"
			}
		}
	}

	return errors
}

// fieldPath drops the top-level struct name from the namespace so nested
// errors read as "availability[2].start_time".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
