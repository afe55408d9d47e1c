package repository

import (
	"context"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// FiltroFacturas acota un listado. Los campos vacíos no filtran.
// Estado admite además entity.EstadoVencida (emitidas con vencimiento anterior a Ahora).
type FiltroFacturas struct {
	Estado    entity.EstadoFactura
	ClienteID string
	Serie     string
	Desde     *time.Time // fecha de emisión, inclusive
	Hasta     *time.Time // fecha de emisión, exclusive
	Ahora     time.Time
	Limit     int
	Offset    int
}

// OpcionesEmision parametriza la transición a emitida.
type OpcionesEmision struct {
	Actor string
	Ahora time.Time
	// NIFCliente, si no es cero, se vuelve a congelar sobre la factura antes de emitir.
	NIFCliente valueobject.NIF
	// DiasVencimiento fija el vencimiento (emisión + días) si la factura no lo tiene. 0 = sin vencimiento.
	DiasVencimiento int
}

// FacturaRepository define el puerto de persistencia del agregado Factura.
// Toda lectura y escritura va acotada al taller y excluye las facturas eliminadas.
// Los errores devueltos pertenecen a la taxonomía de internal/domain.
type FacturaRepository interface {
	// Create persiste cabecera y líneas de forma atómica.
	Create(ctx context.Context, f *entity.Factura) error
	GetByID(ctx context.Context, tallerID, id string) (*entity.Factura, error)
	GetByNumero(ctx context.Context, tallerID string, numero valueobject.NumeroFactura) (*entity.Factura, error)

	// Update guarda un borrador (cabecera y líneas). Falla con BusinessRule si ya no es borrador.
	Update(ctx context.Context, f *entity.Factura) error

	// Emitir asigna número (si no lo tiene) y emite la factura en una única transacción.
	// Es el único camino que reserva números de la secuencia.
	Emitir(ctx context.Context, tallerID, id string, op OpcionesEmision) (*entity.Factura, error)

	Anular(ctx context.Context, tallerID, id, motivo, actor string, ahora time.Time) (*entity.Factura, error)
	MarcarPagada(ctx context.Context, tallerID, id, actor string, ahora time.Time) (*entity.Factura, error)
	ActualizarInforme(ctx context.Context, tallerID, id string, inf entity.InformeExterno, ahora time.Time) (*entity.Factura, error)

	// Delete elimina lógicamente un borrador sin número.
	Delete(ctx context.Context, tallerID, id, actor string, ahora time.Time) error

	// List devuelve la página pedida y el total de facturas que cumplen el filtro.
	List(ctx context.Context, tallerID string, filtro FiltroFacturas) ([]*entity.Factura, int, error)

	// CountByEstado cuenta las facturas del taller por estado persistido más OVERDUE.
	CountByEstado(ctx context.Context, tallerID string, ahora time.Time) (map[entity.EstadoFactura]int, error)
}
