package postgres

import (
	"context"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
)

var _ repository.SecuenciaAllocator = (*SecuenciaRepo)(nil)

// SecuenciaRepo reserva números con siguiente_numero_factura. Debe recibir la tx de la emisión:
// el bloqueo de la fila dura hasta su commit o rollback.
type SecuenciaRepo struct {
	q Querier
}

// NewSecuenciaRepository construye el allocator sobre la transacción en curso.
func NewSecuenciaRepository(q Querier) *SecuenciaRepo {
	return &SecuenciaRepo{q: q}
}

// Siguiente incrementa y devuelve el contador de (taller, serie, año).
func (r *SecuenciaRepo) Siguiente(ctx context.Context, c repository.ClaveSecuencia) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT siguiente_numero_factura($1, $2, $3)`, c.TallerID, c.Serie, c.Anio).Scan(&n)
	if err != nil {
		return 0, traducir("reservar número de factura", err)
	}
	return n, nil
}
