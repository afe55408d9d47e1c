// Package valueobject contiene los objetos de valor del dominio de facturación:
// importes (Precio), identificadores fiscales (NIF), retenciones y numeración de facturas.
// Todos son inmutables y se validan al construirse.
package valueobject

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

// PrecioMaximo es el importe máximo admitido por un Precio.
var PrecioMaximo = decimal.NewFromInt(1_000_000)

var cien = decimal.NewFromInt(100)

// Precio es un importe monetario en euros, no negativo, con precisión de 2 decimales.
// Toda la aritmética vuelve a pasar por NewPrecio: ningún resultado sin validar sale del tipo.
type Precio struct {
	valor decimal.Decimal
}

// PrecioCero es el importe nulo.
var PrecioCero = Precio{valor: decimal.Zero}

// NewPrecio valida y redondea (a 2 decimales, mitad lejos de cero) el importe.
func NewPrecio(v decimal.Decimal) (Precio, error) {
	if v.IsNegative() {
		return Precio{}, domain.Validation("el precio no puede ser negativo (%s)", v.String())
	}
	r := v.Round(2)
	if r.GreaterThan(PrecioMaximo) {
		return Precio{}, domain.Validation("el precio %s supera el máximo permitido (%s)", r.StringFixed(2), PrecioMaximo.StringFixed(2))
	}
	return Precio{valor: r}, nil
}

// NewPrecioFromFloat construye un Precio desde float64 rechazando NaN e infinitos.
func NewPrecioFromFloat(f float64) (Precio, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Precio{}, domain.Validation("el precio debe ser un número finito")
	}
	return NewPrecio(decimal.NewFromFloat(f))
}

// NewPrecioFromString parsea un importe textual ("45.00").
func NewPrecioFromString(s string) (Precio, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Precio{}, domain.Validation("precio con formato inválido: %q", s)
	}
	return NewPrecio(d)
}

// Decimal devuelve el valor subyacente.
func (p Precio) Decimal() decimal.Decimal { return p.valor }

// String formatea con dos decimales fijos.
func (p Precio) String() string { return p.valor.StringFixed(2) }

// IsZero indica si el importe es cero.
func (p Precio) IsZero() bool { return p.valor.IsZero() }

// Equal compara importes.
func (p Precio) Equal(o Precio) bool { return p.valor.Equal(o.valor) }

// Sumar devuelve p + o.
func (p Precio) Sumar(o Precio) (Precio, error) {
	return NewPrecio(p.valor.Add(o.valor))
}

// Restar devuelve p - o; falla si el resultado es negativo.
func (p Precio) Restar(o Precio) (Precio, error) {
	return NewPrecio(p.valor.Sub(o.valor))
}

// Multiplicar devuelve p * factor (cantidad, coeficiente...).
func (p Precio) Multiplicar(factor decimal.Decimal) (Precio, error) {
	return NewPrecio(p.valor.Mul(factor))
}

// Impuesto devuelve el importe del porcentaje indicado sobre p (p * pct / 100).
func (p Precio) Impuesto(porcentaje decimal.Decimal) (Precio, error) {
	if porcentaje.IsNegative() {
		return Precio{}, domain.Validation("porcentaje negativo: %s", porcentaje.String())
	}
	return NewPrecio(p.valor.Mul(porcentaje).Div(cien))
}
