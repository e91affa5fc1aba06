package api

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// FieldError is one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// registerValidators adds the custom tags to gin's validator engine.
// Field names in errors follow the form tag so they match the query parameters.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		v.RegisterValidation("flightdate", func(fl validator.FieldLevel) bool {
			_, err := utils.ParseDateParam(fl.Field().String())
			return err == nil
		})
	})
}

// fieldErrors turns a binding or usecase validation failure into response items
func fieldErrors(err error) []FieldError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		out := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			out = append(out, FieldError{Field: fe.Field(), Message: tagMessage(fe)})
		}
		return out
	}

	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return []FieldError{{Field: ve.Field, Message: ve.Message}}
	}

	return []FieldError{{Message: err.Error()}}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "flightdate":
		return "invalid date, expected YYYY-MM-DD"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
