package repository

import (
	"context"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
)

// OrdenRepository es el contrato mínimo con el módulo de órdenes de reparación.
type OrdenRepository interface {
	GetByID(ctx context.Context, ordenID, tallerID string) (*entity.OrdenReparacion, error)
	// MarcarFacturada enlaza la orden con su factura.
	MarcarFacturada(ctx context.Context, ordenID, tallerID, facturaID string) error
	// DesmarcarFacturada suelta el enlace solo si sigue apuntando a facturaID.
	DesmarcarFacturada(ctx context.Context, ordenID, tallerID, facturaID string) error
}
