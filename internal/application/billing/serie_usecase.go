package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// SerieUseCase administra las series de numeración de cada taller.
type SerieUseCase struct {
	repo  repository.SerieRepository
	reloj func() time.Time
}

// NewSerieUseCase construye el caso de uso.
func NewSerieUseCase(repo repository.SerieRepository) *SerieUseCase {
	return &SerieUseCase{repo: repo, reloj: time.Now}
}

// Crear da de alta una serie activa. El código se normaliza a mayúsculas y no puede repetirse
// en el taller; solo una serie puede ser la predeterminada.
func (uc *SerieUseCase) Crear(ctx context.Context, tallerID string, in dto.CrearSerieRequest) (*dto.SerieResponse, error) {
	if err := validar(in); err != nil {
		return nil, err
	}
	serie, err := valueobject.NewSerie(in.Codigo)
	if err != nil {
		return nil, err
	}
	tipo := entity.TipoNormal
	if in.Tipo != "" {
		tipo = entity.TipoFactura(in.Tipo)
	}

	existente, err := uc.repo.GetByCodigo(ctx, tallerID, serie.String())
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, domain.Conflict("la serie %s ya existe", serie)
	}
	if in.Predeterminada {
		actual, err := uc.repo.GetPredeterminada(ctx, tallerID)
		if err != nil {
			return nil, err
		}
		if actual != nil {
			return nil, domain.Conflict("la serie %s ya es la predeterminada", actual.Codigo)
		}
	}

	now := uc.reloj()
	s := &entity.SerieFacturacion{
		ID:           uuid.New().String(),
		TallerID:     tallerID,
		Codigo:       serie.String(),
		Descripcion:  strings.TrimSpace(in.Descripcion),
		Tipo:         tipo,
		Predetermina: in.Predeterminada,
		Activa:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSerieResponse(s), nil
}

// Listar devuelve las series del taller ordenadas por código.
func (uc *SerieUseCase) Listar(ctx context.Context, tallerID string) ([]*dto.SerieResponse, error) {
	list, err := uc.repo.ListByTaller(ctx, tallerID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SerieResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSerieResponse(s))
	}
	return out, nil
}
