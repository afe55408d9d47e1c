package repository

import (
	"context"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
)

// SerieRepository define el puerto de persistencia para las series de facturación.
type SerieRepository interface {
	Create(ctx context.Context, s *entity.SerieFacturacion) error

	// GetByCodigo devuelve la serie activa con ese código o nil, nil si no existe.
	// Emitir con una serie no configurada no está permitido.
	GetByCodigo(ctx context.Context, tallerID, codigo string) (*entity.SerieFacturacion, error)

	// GetPredeterminada devuelve la serie por defecto del taller o nil, nil.
	GetPredeterminada(ctx context.Context, tallerID string) (*entity.SerieFacturacion, error)

	ListByTaller(ctx context.Context, tallerID string) ([]*entity.SerieFacturacion, error)
}
