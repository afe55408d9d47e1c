package billing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

const formatoFecha = "2006-01-02"

var impresoraES = message.NewPrinter(language.Spanish)

// FormatearImporte devuelve el importe con separadores es-ES y símbolo de euro.
func FormatearImporte(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return impresoraES.Sprintf("%.2f €", f)
}

// lineasDesdeDTO convierte las líneas de la petición; los errores indican la posición (1-based).
func lineasDesdeDTO(in []dto.LineaFacturaRequest) ([]entity.NuevaLinea, error) {
	out := make([]entity.NuevaLinea, 0, len(in))
	for i, l := range in {
		precio, err := valueobject.NewPrecio(l.PrecioUnitario)
		if err != nil {
			return nil, domain.Validation("línea %d: %s", i+1, domain.Message(err))
		}
		dtoImporte, err := valueobject.NewPrecio(l.DescuentoImporte)
		if err != nil {
			return nil, domain.Validation("línea %d: descuento: %s", i+1, domain.Message(err))
		}
		out = append(out, entity.NuevaLinea{
			Tipo:                entity.TipoLinea(l.Tipo),
			Descripcion:         l.Descripcion,
			Referencia:          l.Referencia,
			Cantidad:            l.Cantidad,
			PrecioUnitario:      precio,
			DescuentoPorcentaje: l.DescuentoPorcentaje,
			DescuentoImporte:    dtoImporte,
			IVAPorcentaje:       l.IVAPorcentaje,
		})
	}
	return out, nil
}

func toLineaResponse(l *entity.LineaFactura) dto.LineaFacturaResponse {
	imp := l.Importes()
	return dto.LineaFacturaResponse{
		ID:                  l.ID(),
		Posicion:            l.Posicion(),
		Tipo:                string(l.Tipo()),
		Descripcion:         l.Descripcion(),
		Referencia:          l.Referencia(),
		Cantidad:            l.Cantidad().String(),
		PrecioUnitario:      l.PrecioUnitario().String(),
		DescuentoPorcentaje: l.DescuentoPorcentaje().StringFixed(2),
		DescuentoImporte:    l.DescuentoImporte().String(),
		IVAPorcentaje:       l.IVAPorcentaje(),
		Neto:                imp.Neto.String(),
		Impuesto:            imp.Impuesto.String(),
		ImporteTotal:        imp.Total.String(),
	}
}

func toTotalesResponse(f *entity.Factura) dto.TotalesResponse {
	t := f.Totales()
	desglose := make([]dto.TramoIVAResponse, 0, len(t.Desglose))
	for _, tr := range t.Desglose {
		desglose = append(desglose, dto.TramoIVAResponse{
			Porcentaje: tr.Porcentaje,
			Base:       tr.Base.StringFixed(2),
			Cuota:      tr.Cuota.StringFixed(2),
		})
	}
	return dto.TotalesResponse{
		BaseImponible:       t.BaseImponible.StringFixed(2),
		IVA:                 t.IVA.StringFixed(2),
		RetencionPorcentaje: f.Retencion().Porcentaje().StringFixed(2),
		RetencionImporte:    t.RetencionImporte.StringFixed(2),
		Total:               t.Total.StringFixed(2),
		TotalFormateado:     FormatearImporte(t.Total),
		Desglose:            desglose,
	}
}

func (uc *FacturaUseCase) toResponse(f *entity.Factura) *dto.FacturaResponse {
	inf := f.Informe()
	resp := &dto.FacturaResponse{
		ID:              f.ID(),
		TallerID:        f.TallerID(),
		Numero:          f.Numero().String(),
		Serie:           f.Serie().String(),
		Tipo:            string(f.Tipo()),
		Estado:          string(f.Estado()),
		Vencida:         f.EstaVencida(uc.ahora()),
		OrdenID:         f.OrdenID(),
		ClienteID:       f.ClienteID(),
		NIFCliente:      f.NIFCliente().String(),
		Observaciones:   f.Observaciones(),
		MotivoAnulacion: f.MotivoAnulacion(),
		Informe:         dto.InformeExternoResponse{ID: inf.ID, URL: inf.URL, Estado: string(inf.Estado)},
		Lineas:          make([]dto.LineaFacturaResponse, 0, len(f.Lineas())),
		Totales:         toTotalesResponse(f),
		CreatedAt:       f.CreatedAt(),
		UpdatedAt:       f.UpdatedAt(),
	}
	if fe := f.FechaEmision(); fe != nil {
		resp.FechaEmision = fe.In(uc.cfg.Zona).Format(formatoFecha)
	}
	if fv := f.FechaVencimiento(); fv != nil {
		resp.FechaVencimiento = fv.In(uc.cfg.Zona).Format(formatoFecha)
	}
	for _, l := range f.Lineas() {
		resp.Lineas = append(resp.Lineas, toLineaResponse(l))
	}
	return resp
}

func toClienteResponse(c *entity.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID,
		TallerID:  c.TallerID,
		Nombre:    c.Nombre,
		NIF:       c.NIF,
		Email:     c.Email,
		Telefono:  c.Telefono,
		Direccion: c.Direccion,
	}
}

func toSerieResponse(s *entity.SerieFacturacion) *dto.SerieResponse {
	return &dto.SerieResponse{
		ID:             s.ID,
		Codigo:         s.Codigo,
		Descripcion:    s.Descripcion,
		Tipo:           string(s.Tipo),
		Predeterminada: s.Predetermina,
		Activa:         s.Activa,
	}
}
