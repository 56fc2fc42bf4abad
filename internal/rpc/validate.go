package rpc

import (
	"reflect"
	"strings"

	"backend/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Same tag the DTOs already carry for gin binding
	v.SetTagName("binding")
	// Report field paths by json name so they match the wire payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateCommand checks a decoded command body against its binding tags and
// converts violations into field-path errors.
func ValidateCommand(cmd interface{}) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Validation(apperr.FieldError{Field: "body", Reason: err.Error()})
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:  fieldPath(fe.Namespace()),
			Reason: "failed on '" + fe.Tag() + "'",
		})
	}
	return apperr.Validation(fields...)
}

// fieldPath strips the root struct name from a validator namespace,
// e.g. "CreatePurchaseOrderDTO.items[0].quantity" -> "items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
