// Package numeracion implementa la emisión con reserva de número, común a todos los adaptadores
// de FacturaRepository. El llamador aporta un SecuenciaAllocator ligado a su transacción.
package numeracion

import (
	"context"
	"fmt"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// EmitirConNumeracion emite la factura en memoria. Si no tiene número reserva el siguiente de
// (taller, serie, año de emisión). Las precondiciones se comprueban antes de reservar para no
// consumir números en emisiones que van a fallar.
func EmitirConNumeracion(ctx context.Context, f *entity.Factura, alloc repository.SecuenciaAllocator, op repository.OpcionesEmision) error {
	if f.Estado() != entity.EstadoBorrador {
		return domain.BusinessRule("la factura ya está en estado %s", f.Estado())
	}
	if f.Eliminada() {
		return domain.BusinessRule("la factura %s está eliminada", f.ID())
	}
	if len(f.Lineas()) == 0 {
		return domain.BusinessRule("no se puede emitir una factura sin líneas")
	}
	if !op.NIFCliente.IsZero() {
		if err := f.CongelarNIF(op.NIFCliente); err != nil {
			return err
		}
	}

	if f.FechaVencimiento() == nil && op.DiasVencimiento > 0 {
		vence := op.Ahora.AddDate(0, 0, op.DiasVencimiento)
		if err := f.CambiarFechaVencimiento(&vence); err != nil {
			return err
		}
	}

	if f.Numero().IsZero() {
		numero, err := Reservar(ctx, alloc, f.TallerID(), f.Serie(), op.Ahora.Year())
		if err != nil {
			return err
		}
		if err := f.AsignarNumero(numero); err != nil {
			return err
		}
	}
	return f.Emitir(op.Actor, op.Ahora)
}

// Reservar obtiene el siguiente número de la secuencia y lo formatea.
func Reservar(ctx context.Context, alloc repository.SecuenciaAllocator, tallerID string, serie valueobject.Serie, anio int) (valueobject.NumeroFactura, error) {
	seq, err := alloc.Siguiente(ctx, repository.ClaveSecuencia{TallerID: tallerID, Serie: serie.String(), Anio: anio})
	if err != nil {
		return valueobject.NumeroFactura{}, fmt.Errorf("reservar número %s/%d: %w", serie, anio, err)
	}
	if seq > valueobject.SecuenciaMaxima {
		return valueobject.NumeroFactura{}, domain.BusinessRule("secuencia %s-%d agotada", serie, anio)
	}
	return valueobject.NewNumeroFactura(serie, anio, seq)
}
