package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoOrden de una orden de reparación. La facturación solo necesita distinguir la finalizada.
const (
	OrdenAbierta    = "OPEN"
	OrdenEnCurso    = "IN_PROGRESS"
	OrdenFinalizada = "FINISHED"
	OrdenEntregada  = "DELIVERED"
	OrdenCancelada  = "CANCELLED"
)

// Clases de línea de una orden de reparación.
const (
	OrdenLineaManoDeObra = "labor"
	OrdenLineaRecambio   = "part"
	OrdenLineaSuplido    = "pass_through"
	OrdenLineaReembolso  = "reimbursement"
	OrdenLineaServicio   = "service"
)

// LineaOrden es una línea de trabajo o material registrada en la orden.
type LineaOrden struct {
	Clase          string
	Descripcion    string
	Referencia     string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	Descuento      decimal.Decimal // porcentaje
	IVAPorcentaje  *int            // nil = tipo por defecto
}

// OrdenReparacion es la vista mínima de la orden que necesita la facturación.
type OrdenReparacion struct {
	ID           string
	TallerID     string
	ClienteID    string
	Numero       string
	Estado       string
	Lineas       []LineaOrden
	FacturaID    string // vacío si no está facturada
	FinalizadaEn *time.Time
}

// PuedeFacturarse: finalizada (o entregada) y con al menos una línea.
func (o *OrdenReparacion) PuedeFacturarse() bool {
	return (o.Estado == OrdenFinalizada || o.Estado == OrdenEntregada) && len(o.Lineas) > 0
}

// EstaFacturada indica si la orden ya tiene factura asociada.
func (o *OrdenReparacion) EstaFacturada() bool { return o.FacturaID != "" }
