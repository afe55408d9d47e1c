package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineaFacturaRequest línea de factura en altas y modificaciones.
type LineaFacturaRequest struct {
	Tipo                string          `json:"tipo" validate:"required,oneof=LABOR PART PASS_THROUGH DISCOUNT OTHER"`
	Descripcion         string          `json:"descripcion" validate:"required,max=500"`
	Referencia          string          `json:"referencia,omitempty" validate:"max=100"`
	Cantidad            decimal.Decimal `json:"cantidad" validate:"gt=0"`
	PrecioUnitario      decimal.Decimal `json:"precio_unitario" validate:"gte=0"`
	DescuentoPorcentaje decimal.Decimal `json:"descuento_porcentaje" validate:"gte=0,lte=100"`
	DescuentoImporte    decimal.Decimal `json:"descuento_importe" validate:"gte=0"`
	IVAPorcentaje       int             `json:"iva_porcentaje" validate:"oneof=0 4 10 21"`
}

// CrearFacturaRequest body para POST /api/facturas.
// Serie vacía = serie por defecto del taller.
type CrearFacturaRequest struct {
	ClienteID           string                `json:"cliente_id" validate:"required,uuid"`
	Serie               string                `json:"serie,omitempty" validate:"omitempty,max=10,alphanum"`
	Tipo                string                `json:"tipo,omitempty" validate:"omitempty,oneof=NORMAL RECTIFICATIVA SIMPLIFICADA PROFORMA"`
	RetencionPorcentaje decimal.Decimal       `json:"retencion_porcentaje" validate:"gte=0,lte=100"`
	FechaVencimiento    string                `json:"fecha_vencimiento,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Observaciones       string                `json:"observaciones,omitempty" validate:"max=2000"`
	Lineas              []LineaFacturaRequest `json:"lineas" validate:"dive"`
}

// CrearDesdeOrdenRequest body para POST /api/facturas/desde-orden.
type CrearDesdeOrdenRequest struct {
	OrdenID             string          `json:"orden_id" validate:"required,uuid"`
	Serie               string          `json:"serie,omitempty" validate:"omitempty,max=10,alphanum"`
	RetencionPorcentaje decimal.Decimal `json:"retencion_porcentaje" validate:"gte=0,lte=100"`
	DiasVencimiento     *int            `json:"dias_vencimiento,omitempty" validate:"omitempty,min=0,max=365"`
}

// ActualizarFacturaRequest body para PUT /api/facturas/:id. Los campos nulos no se modifican;
// Lineas, si viene, sustituye todas las líneas del borrador.
type ActualizarFacturaRequest struct {
	ClienteID           *string               `json:"cliente_id,omitempty" validate:"omitempty,uuid"`
	RetencionPorcentaje *decimal.Decimal      `json:"retencion_porcentaje,omitempty"`
	FechaVencimiento    *string               `json:"fecha_vencimiento,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Observaciones       *string               `json:"observaciones,omitempty" validate:"omitempty,max=2000"`
	Lineas              []LineaFacturaRequest `json:"lineas,omitempty" validate:"omitempty,dive"`
}

// AnularFacturaRequest body para POST /api/facturas/:id/anular.
type AnularFacturaRequest struct {
	Motivo string `json:"motivo" validate:"max=500"`
}

// InformeExternoRequest body para PUT /api/facturas/:id/informe (colaborador de cumplimiento).
type InformeExternoRequest struct {
	ID     string `json:"id" validate:"max=100"`
	URL    string `json:"url,omitempty" validate:"omitempty,url"`
	Estado string `json:"estado" validate:"required,oneof=PENDING PROCESSING SIGNED ERROR"`
}

// FiltroFacturasRequest parámetros de GET /api/facturas.
type FiltroFacturasRequest struct {
	Estado    string `query:"estado" validate:"omitempty,oneof=DRAFT ISSUED PAID VOIDED OVERDUE"`
	ClienteID string `query:"cliente_id" validate:"omitempty,uuid"`
	Serie     string `query:"serie" validate:"omitempty,max=10,alphanum"`
	Desde     string `query:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta     string `query:"hasta" validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `query:"limit" validate:"min=0,max=100"`
	Offset    int    `query:"offset" validate:"min=0"`
}

// LineaFacturaResponse línea en respuestas. Los importes van con 2 decimales fijos.
type LineaFacturaResponse struct {
	ID                  string `json:"id"`
	Posicion            int    `json:"posicion"`
	Tipo                string `json:"tipo"`
	Descripcion         string `json:"descripcion"`
	Referencia          string `json:"referencia,omitempty"`
	Cantidad            string `json:"cantidad"`
	PrecioUnitario      string `json:"precio_unitario"`
	DescuentoPorcentaje string `json:"descuento_porcentaje"`
	DescuentoImporte    string `json:"descuento_importe"`
	IVAPorcentaje       int    `json:"iva_porcentaje"`
	Neto                string `json:"neto"`
	Impuesto            string `json:"impuesto"`
	ImporteTotal        string `json:"importe_total"`
}

// TramoIVAResponse base y cuota de un tipo de IVA.
type TramoIVAResponse struct {
	Porcentaje int    `json:"porcentaje"`
	Base       string `json:"base"`
	Cuota      string `json:"cuota"`
}

// TotalesResponse importes derivados de la factura.
type TotalesResponse struct {
	BaseImponible       string             `json:"base_imponible"`
	IVA                 string             `json:"iva"`
	RetencionPorcentaje string             `json:"retencion_porcentaje"`
	RetencionImporte    string             `json:"retencion_importe"`
	Total               string             `json:"total"`
	TotalFormateado     string             `json:"total_formateado"` // es-ES, ej: "1.234,50 €"
	Desglose            []TramoIVAResponse `json:"desglose_iva"`
}

// InformeExternoResponse estado del envío al sistema de cumplimiento.
type InformeExternoResponse struct {
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
	Estado string `json:"estado,omitempty"`
}

// FacturaResponse factura con líneas y totales para GET /api/facturas/:id.
type FacturaResponse struct {
	ID               string                 `json:"id"`
	TallerID         string                 `json:"taller_id"`
	Numero           string                 `json:"numero,omitempty"`
	Serie            string                 `json:"serie"`
	Tipo             string                 `json:"tipo"`
	Estado           string                 `json:"estado"`
	Vencida          bool                   `json:"vencida"`
	OrdenID          string                 `json:"orden_id,omitempty"`
	ClienteID        string                 `json:"cliente_id"`
	NIFCliente       string                 `json:"nif_cliente,omitempty"`
	FechaEmision     string                 `json:"fecha_emision,omitempty"`
	FechaVencimiento string                 `json:"fecha_vencimiento,omitempty"`
	Observaciones    string                 `json:"observaciones,omitempty"`
	MotivoAnulacion  string                 `json:"motivo_anulacion,omitempty"`
	Informe          InformeExternoResponse `json:"informe_externo"`
	Lineas           []LineaFacturaResponse `json:"lineas"`
	Totales          TotalesResponse        `json:"totales"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// FacturaListResponse página de facturas.
type FacturaListResponse struct {
	Items []FacturaResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ResumenFacturasResponse número de facturas por estado (GET /api/facturas/resumen).
type ResumenFacturasResponse struct {
	PorEstado map[string]int `json:"por_estado"`
}
