package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"retaguarda/internal/core/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validator returns the shared validator instance (also used by the HTTP binding layer).
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct runs the `validate` tags of s and records failures into fe.
// Field keys are json names prefixed with prefix (e.g. "endereco.cep").
func ValidateStruct(prefix string, s any, fe *apperror.FieldErrors) {
	err := validate.Struct(s)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add(prefix, err.Error())
		return
	}

	for _, fieldErr := range verrs {
		key := fieldErr.Field()
		if prefix != "" {
			key = prefix + "." + key
		}
		fe.Add(key, fieldMessage(fieldErr))
	}
}

// IsEmail reports whether s is a syntactically valid e-mail address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", name)
	case "len":
		return fmt.Sprintf("%s deve ter %s caracteres", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", name, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s deve conter apenas dígitos", name)
	case "alpha":
		return fmt.Sprintf("%s deve conter apenas letras", name)
	case "email":
		return fmt.Sprintf("%s inválido", name)
	}
	return fmt.Sprintf("%s inválido (%s)", name, fe.Tag())
}
