package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
)

var _ repository.OrdenRepository = (*OrdenRepo)(nil)

// OrdenRepo lee las órdenes de reparación que gestiona el módulo de taller.
type OrdenRepo struct {
	q Querier
}

// NewOrdenRepository construye el adaptador.
func NewOrdenRepository(q Querier) *OrdenRepo {
	return &OrdenRepo{q: q}
}

// GetByID devuelve la orden con sus líneas en orden de posición.
func (r *OrdenRepo) GetByID(ctx context.Context, ordenID, tallerID string) (*entity.OrdenReparacion, error) {
	var o entity.OrdenReparacion
	err := r.q.QueryRow(ctx, `
		SELECT id, taller_id, cliente_id, numero, estado, COALESCE(factura_id::text, ''), finalizada_en
		FROM ordenes_reparacion
		WHERE id = $1 AND taller_id = $2`, ordenID, tallerID).Scan(
		&o.ID, &o.TallerID, &o.ClienteID, &o.Numero, &o.Estado, &o.FacturaID, &o.FinalizadaEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("orden %s no encontrada", ordenID)
		}
		return nil, traducir("obtener orden", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT clase, descripcion, referencia, cantidad, precio_unitario, descuento, iva_porcentaje
		FROM lineas_orden WHERE orden_id = $1 ORDER BY posicion`, ordenID)
	if err != nil {
		return nil, traducir("obtener líneas de orden", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.LineaOrden
		if err := rows.Scan(&l.Clase, &l.Descripcion, &l.Referencia, &l.Cantidad, &l.PrecioUnitario, &l.Descuento, &l.IVAPorcentaje); err != nil {
			return nil, traducir("leer línea de orden", err)
		}
		o.Lineas = append(o.Lineas, l)
	}
	if err := rows.Err(); err != nil {
		return nil, traducir("obtener líneas de orden", err)
	}
	return &o, nil
}

// MarcarFacturada enlaza la orden con su factura.
func (r *OrdenRepo) MarcarFacturada(ctx context.Context, ordenID, tallerID, facturaID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE ordenes_reparacion SET factura_id = $3
		WHERE id = $1 AND taller_id = $2`, ordenID, tallerID, facturaID)
	if err != nil {
		return traducir("marcar orden facturada", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("orden %s no encontrada", ordenID)
	}
	return nil
}

// DesmarcarFacturada libera la orden cuando se descarta el borrador enlazado. Si la orden ya
// apunta a otra factura no cambia nada.
func (r *OrdenRepo) DesmarcarFacturada(ctx context.Context, ordenID, tallerID, facturaID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE ordenes_reparacion SET factura_id = NULL
		WHERE id = $1 AND taller_id = $2 AND factura_id = $3`, ordenID, tallerID, facturaID)
	if err != nil {
		return traducir("desmarcar orden facturada", err)
	}
	return nil
}
