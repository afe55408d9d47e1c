package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

// Retencion es el porcentaje de retención (IRPF) que se descuenta del total de la factura.
type Retencion struct {
	porcentaje decimal.Decimal
}

// NewRetencion valida que el porcentaje esté en [0, 100].
func NewRetencion(porcentaje decimal.Decimal) (Retencion, error) {
	if porcentaje.IsNegative() || porcentaje.GreaterThan(cien) {
		return Retencion{}, domain.Validation("retención %s%% fuera de rango [0, 100]", porcentaje.String())
	}
	return Retencion{porcentaje: porcentaje.Round(2)}, nil
}

// RetencionNinguna: sin retención.
func RetencionNinguna() Retencion { return Retencion{porcentaje: decimal.Zero} }

// RetencionProfesional: tipo general de actividades profesionales (15%).
func RetencionProfesional() Retencion { return Retencion{porcentaje: decimal.NewFromInt(15)} }

// RetencionReducida: tipo reducido de inicio de actividad (7%).
func RetencionReducida() Retencion { return Retencion{porcentaje: decimal.NewFromInt(7)} }

// Porcentaje devuelve el porcentaje.
func (r Retencion) Porcentaje() decimal.Decimal { return r.porcentaje }

// Importe calcula la retención sobre la base imponible, redondeada a 2 decimales.
func (r Retencion) Importe(base decimal.Decimal) decimal.Decimal {
	return base.Mul(r.porcentaje).Div(cien).Round(2)
}

// IsZero indica que no se aplica retención.
func (r Retencion) IsZero() bool { return r.porcentaje.IsZero() }

// Equal compara porcentajes.
func (r Retencion) Equal(o Retencion) bool { return r.porcentaje.Equal(o.porcentaje) }
