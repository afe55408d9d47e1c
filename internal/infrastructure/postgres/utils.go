package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// constraintName devuelve la constraint violada o "".
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// esDominio indica que el error ya pertenece a la taxonomía de dominio.
func esDominio(err error) bool {
	for _, s := range []error{
		domain.ErrValidation, domain.ErrNotFound, domain.ErrBusinessRule, domain.ErrConflict,
		domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrInternal,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// traducir convierte un error de pgx en un error de dominio. El error del driver no queda en la
// cadena: solo su texto, dentro de ErrInternal.
func traducir(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case esDominio(err):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return domain.NotFound("%s: no encontrado", op)
	case isUniqueViolation(err):
		switch constraintName(err) {
		case "facturas_taller_orden_uk":
			return domain.Conflict("la orden ya tiene una factura")
		case "facturas_taller_numero_uk":
			return domain.Conflict("número de factura duplicado")
		case "clientes_taller_nif_uk":
			return domain.Conflict("ya existe un cliente con ese NIF")
		case "series_facturacion_codigo_uk":
			return domain.Conflict("la serie ya existe en el taller")
		}
		return domain.Conflict("%s: registro duplicado", op)
	default:
		return domain.Internal(op, err)
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
