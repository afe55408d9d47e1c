package repository

import (
	"context"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
)

// ClienteRepository define el puerto de persistencia para Cliente.
type ClienteRepository interface {
	Create(ctx context.Context, c *entity.Cliente) error
	// GetByID devuelve ErrNotFound si no existe o está eliminado.
	GetByID(ctx context.Context, tallerID, id string) (*entity.Cliente, error)
	// GetByNIF devuelve nil, nil si no hay cliente activo con ese NIF.
	GetByNIF(ctx context.Context, tallerID, nif string) (*entity.Cliente, error)
	List(ctx context.Context, tallerID string, limit, offset int) ([]*entity.Cliente, error)
	Update(ctx context.Context, c *entity.Cliente) error
	Delete(ctx context.Context, tallerID, id, actor string, ahora time.Time) error
}
