package billing

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal se valida como número (gt, gte, lte...)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// los mensajes usan el nombre JSON del campo
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validar comprueba la forma de un DTO y devuelve el primer fallo como ValidationError.
func validar(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		if fe.Param() != "" {
			return domain.Validation("campo %s: no cumple %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return domain.Validation("campo %s: no cumple %s", fe.Namespace(), fe.Tag())
	}
	return domain.Validation("datos inválidos: %v", err)
}

func validarID(id, campo string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Validation("%s %q no es un identificador válido", campo, id)
	}
	return nil
}

// parseFecha interpreta AAAA-MM-DD en la zona fiscal.
func parseFecha(s string, zona *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, zona)
	if err != nil {
		return nil, domain.Validation("fecha %q inválida, formato AAAA-MM-DD", s)
	}
	return &t, nil
}
