package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// TipoLinea clasifica el concepto facturado.
type TipoLinea string

const (
	LineaManoDeObra TipoLinea = "LABOR"
	LineaRecambio   TipoLinea = "PART"
	LineaSuplido    TipoLinea = "PASS_THROUGH" // gasto repercutido al cliente
	LineaDescuento  TipoLinea = "DISCOUNT"
	LineaOtro       TipoLinea = "OTHER"
)

// Valido indica si el tipo pertenece al catálogo.
func (t TipoLinea) Valido() bool {
	switch t {
	case LineaManoDeObra, LineaRecambio, LineaSuplido, LineaDescuento, LineaOtro:
		return true
	}
	return false
}

// tiposIVA admitidos en territorio común.
var tiposIVA = map[int]bool{0: true, 4: true, 10: true, 21: true}

// IVAValido indica si el porcentaje es uno de los tipos de IVA admitidos (0, 4, 10, 21).
func IVAValido(pct int) bool { return tiposIVA[pct] }

// NuevaLinea son los datos de entrada de una línea; el ID y el FacturaID los asigna la Factura.
type NuevaLinea struct {
	Tipo                TipoLinea
	Descripcion         string
	Referencia          string
	Cantidad            decimal.Decimal
	PrecioUnitario      valueobject.Precio
	DescuentoPorcentaje decimal.Decimal
	DescuentoImporte    valueobject.Precio
	IVAPorcentaje       int
}

// LineaFactura es un concepto facturable; calcula su propia contribución a los totales.
// Solo la Factura la crea: el FacturaID se fija en la construcción y no cambia.
type LineaFactura struct {
	id                  string
	facturaID           string
	posicion            int
	tipo                TipoLinea
	descripcion         string
	referencia          string
	cantidad            decimal.Decimal
	precioUnitario      valueobject.Precio
	descuentoPorcentaje decimal.Decimal
	descuentoImporte    valueobject.Precio
	ivaPorcentaje       int
	sellada             bool
}

func nuevaLineaFactura(id, facturaID string, posicion int, in NuevaLinea) (*LineaFactura, error) {
	l := &LineaFactura{id: id, facturaID: facturaID, posicion: posicion}
	if err := l.aplicar(in); err != nil {
		return nil, err
	}
	return l, nil
}

// aplicar valida los datos y, si son correctos, los copia sobre la línea.
func (l *LineaFactura) aplicar(in NuevaLinea) error {
	if !in.Tipo.Valido() {
		return domain.Validation("tipo de línea %q no reconocido", in.Tipo)
	}
	desc := strings.TrimSpace(in.Descripcion)
	if desc == "" {
		return domain.Validation("la descripción de la línea es obligatoria")
	}
	if !in.Cantidad.IsPositive() {
		return domain.Validation("la cantidad debe ser mayor que cero")
	}
	if in.DescuentoPorcentaje.IsNegative() || in.DescuentoPorcentaje.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Validation("descuento %s%% fuera de rango [0, 100]", in.DescuentoPorcentaje.String())
	}
	if !IVAValido(in.IVAPorcentaje) {
		return domain.Validation("IVA %d%% no admitido (0, 4, 10 o 21)", in.IVAPorcentaje)
	}
	candidata := *l
	candidata.tipo = in.Tipo
	candidata.descripcion = desc
	candidata.referencia = strings.TrimSpace(in.Referencia)
	candidata.cantidad = in.Cantidad
	candidata.precioUnitario = in.PrecioUnitario
	candidata.descuentoPorcentaje = in.DescuentoPorcentaje
	candidata.descuentoImporte = in.DescuentoImporte
	candidata.ivaPorcentaje = in.IVAPorcentaje
	if _, err := candidata.calcular(); err != nil {
		return err
	}
	*l = candidata
	return nil
}

// ImportesLinea son los importes derivados de una línea.
type ImportesLinea struct {
	Bruto     valueobject.Precio
	Descuento valueobject.Precio
	Neto      valueobject.Precio
	Impuesto  valueobject.Precio
	Total     valueobject.Precio
}

// calcular: neto = cantidad*precio − descuento (primero el porcentaje, después el importe fijo);
// impuesto = neto*IVA/100; total = neto + impuesto. Todo pasa por Precio.
func (l *LineaFactura) calcular() (ImportesLinea, error) {
	bruto, err := l.precioUnitario.Multiplicar(l.cantidad)
	if err != nil {
		return ImportesLinea{}, err
	}
	dtoPct, err := bruto.Impuesto(l.descuentoPorcentaje)
	if err != nil {
		return ImportesLinea{}, err
	}
	descuento, err := dtoPct.Sumar(l.descuentoImporte)
	if err != nil {
		return ImportesLinea{}, err
	}
	neto, err := bruto.Restar(descuento)
	if err != nil {
		return ImportesLinea{}, domain.Validation("el descuento (%s) supera el importe de la línea (%s)", descuento, bruto)
	}
	impuesto, err := neto.Impuesto(decimal.NewFromInt(int64(l.ivaPorcentaje)))
	if err != nil {
		return ImportesLinea{}, err
	}
	total, err := neto.Sumar(impuesto)
	if err != nil {
		return ImportesLinea{}, err
	}
	return ImportesLinea{Bruto: bruto, Descuento: descuento, Neto: neto, Impuesto: impuesto, Total: total}, nil
}

// Importes devuelve los importes derivados. Los datos se validaron al construir o modificar la línea.
func (l *LineaFactura) Importes() ImportesLinea {
	imp, _ := l.calcular()
	return imp
}

// Neto devuelve cantidad*precio − descuento.
func (l *LineaFactura) Neto() decimal.Decimal { return l.Importes().Neto.Decimal() }

// Impuesto devuelve el IVA de la línea.
func (l *LineaFactura) Impuesto() decimal.Decimal { return l.Importes().Impuesto.Decimal() }

// ImporteTotal devuelve neto + IVA.
func (l *LineaFactura) ImporteTotal() decimal.Decimal { return l.Importes().Total.Decimal() }

// Actualizar reemplaza los datos de la línea conservando ID, FacturaID y posición.
func (l *LineaFactura) Actualizar(in NuevaLinea) error {
	if l.sellada {
		return domain.BusinessRule("la línea %s pertenece a una factura emitida y es de solo lectura", l.id)
	}
	return l.aplicar(in)
}

func (l *LineaFactura) ID() string                           { return l.id }
func (l *LineaFactura) FacturaID() string                    { return l.facturaID }
func (l *LineaFactura) Posicion() int                        { return l.posicion }
func (l *LineaFactura) Tipo() TipoLinea                      { return l.tipo }
func (l *LineaFactura) Descripcion() string                  { return l.descripcion }
func (l *LineaFactura) Referencia() string                   { return l.referencia }
func (l *LineaFactura) Cantidad() decimal.Decimal            { return l.cantidad }
func (l *LineaFactura) PrecioUnitario() valueobject.Precio   { return l.precioUnitario }
func (l *LineaFactura) DescuentoPorcentaje() decimal.Decimal { return l.descuentoPorcentaje }
func (l *LineaFactura) DescuentoImporte() valueobject.Precio { return l.descuentoImporte }
func (l *LineaFactura) IVAPorcentaje() int                   { return l.ivaPorcentaje }
func (l *LineaFactura) SoloLectura() bool                    { return l.sellada }

// LineaDatos es la representación plana de una línea para persistencia y rehidratación.
type LineaDatos struct {
	ID                  string
	FacturaID           string
	Posicion            int
	Tipo                TipoLinea
	Descripcion         string
	Referencia          string
	Cantidad            decimal.Decimal
	PrecioUnitario      valueobject.Precio
	DescuentoPorcentaje decimal.Decimal
	DescuentoImporte    valueobject.Precio
	IVAPorcentaje       int
}

// Datos devuelve la copia plana de la línea.
func (l *LineaFactura) Datos() LineaDatos {
	return LineaDatos{
		ID:                  l.id,
		FacturaID:           l.facturaID,
		Posicion:            l.posicion,
		Tipo:                l.tipo,
		Descripcion:         l.descripcion,
		Referencia:          l.referencia,
		Cantidad:            l.cantidad,
		PrecioUnitario:      l.precioUnitario,
		DescuentoPorcentaje: l.descuentoPorcentaje,
		DescuentoImporte:    l.descuentoImporte,
		IVAPorcentaje:       l.ivaPorcentaje,
	}
}
