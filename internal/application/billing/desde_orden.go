package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// clasesOrden traduce la clase de línea de una orden al tipo de línea de factura.
var clasesOrden = map[string]entity.TipoLinea{
	entity.OrdenLineaManoDeObra: entity.LineaManoDeObra,
	entity.OrdenLineaRecambio:   entity.LineaRecambio,
	entity.OrdenLineaSuplido:    entity.LineaSuplido,
	entity.OrdenLineaReembolso:  entity.LineaSuplido,
	entity.OrdenLineaServicio:   entity.LineaOtro,
}

// CrearDesdeOrden genera un borrador a partir de una orden de reparación finalizada.
// La orden queda enlazada a la factura; si ese enlace falla la factura se conserva y se registra el error.
func (uc *FacturaUseCase) CrearDesdeOrden(ctx context.Context, tallerID, actor string, in dto.CrearDesdeOrdenRequest) (*dto.FacturaResponse, error) {
	if err := validar(in); err != nil {
		return nil, err
	}
	if uc.ordenes == nil {
		return nil, domain.BusinessRule("la facturación de órdenes no está disponible")
	}
	orden, err := uc.ordenes.GetByID(ctx, in.OrdenID, tallerID)
	if err != nil {
		return nil, err
	}
	if orden.EstaFacturada() {
		return nil, domain.Conflict("la orden %s ya está facturada", orden.Numero)
	}
	if !orden.PuedeFacturarse() {
		return nil, domain.BusinessRule("la orden %s no puede facturarse: debe estar finalizada y tener líneas", orden.Numero)
	}

	cliente, err := uc.clientes.GetByID(ctx, tallerID, orden.ClienteID)
	if err != nil {
		return nil, err
	}
	serie, tipo, err := uc.resolverSerie(ctx, tallerID, in.Serie, "")
	if err != nil {
		return nil, err
	}
	ret, err := valueobject.NewRetencion(in.RetencionPorcentaje)
	if err != nil {
		return nil, err
	}
	lineas, err := uc.lineasDesdeOrden(orden.Lineas)
	if err != nil {
		return nil, err
	}

	ahora := uc.ahora()
	// sin días explícitos el vencimiento se fija al emitir
	var vence *time.Time
	if in.DiasVencimiento != nil {
		v := ahora.AddDate(0, 0, *in.DiasVencimiento)
		vence = &v
	}
	obs := "Orden de reparación " + orden.Numero
	if strings.TrimSpace(orden.Numero) == "" {
		obs = ""
	}
	f, err := entity.NuevaFactura(entity.ParamsFactura{
		TallerID:         tallerID,
		ClienteID:        cliente.ID,
		OrdenID:          orden.ID,
		Serie:            serie,
		Tipo:             tipo,
		NIFCliente:       uc.nifBorrador(cliente),
		Retencion:        ret,
		FechaVencimiento: vence,
		Observaciones:    obs,
		Lineas:           lineas,
		Actor:            actor,
		Ahora:            ahora,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.facturas.Create(ctx, f); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("la orden %s ya tiene factura", orden.Numero)
		}
		return nil, err
	}
	uc.invalidarResumen(ctx, tallerID)

	if err := uc.ordenes.MarcarFacturada(ctx, orden.ID, tallerID, f.ID()); err != nil {
		uc.log.Error().Err(err).
			Str("taller_id", tallerID).
			Str("orden_id", orden.ID).
			Str("factura_id", f.ID()).
			Msg("no se pudo marcar la orden como facturada")
	}
	uc.log.Info().Str("taller_id", tallerID).Str("orden_id", orden.ID).Str("factura_id", f.ID()).Msg("borrador creado desde orden")
	return uc.toResponse(f), nil
}

func (uc *FacturaUseCase) lineasDesdeOrden(in []entity.LineaOrden) ([]entity.NuevaLinea, error) {
	out := make([]entity.NuevaLinea, 0, len(in))
	for i, lo := range in {
		tipo, ok := clasesOrden[strings.ToLower(strings.TrimSpace(lo.Clase))]
		if !ok {
			return nil, domain.Validation("línea %d de la orden: clase %q no facturable", i+1, lo.Clase)
		}
		precio, err := valueobject.NewPrecio(lo.PrecioUnitario)
		if err != nil {
			return nil, domain.Validation("línea %d de la orden: %s", i+1, domain.Message(err))
		}
		iva := uc.cfg.IVADefecto
		if lo.IVAPorcentaje != nil {
			iva = *lo.IVAPorcentaje
		}
		out = append(out, entity.NuevaLinea{
			Tipo:                tipo,
			Descripcion:         lo.Descripcion,
			Referencia:          lo.Referencia,
			Cantidad:            lo.Cantidad,
			PrecioUnitario:      precio,
			DescuentoPorcentaje: lo.Descuento,
			IVAPorcentaje:       iva,
		})
	}
	return out, nil
}
