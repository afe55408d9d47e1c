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

// ClienteUseCase casos de uso para clientes (facturación).
type ClienteUseCase struct {
	repo  repository.ClienteRepository
	reloj func() time.Time
}

// NewClienteUseCase construye el caso de uso.
func NewClienteUseCase(repo repository.ClienteRepository) *ClienteUseCase {
	return &ClienteUseCase{repo: repo, reloj: time.Now}
}

// Create crea un nuevo cliente. El NIF se valida y se guarda normalizado; no puede repetirse en el taller.
func (uc *ClienteUseCase) Create(ctx context.Context, tallerID string, in dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	if err := validar(in); err != nil {
		return nil, err
	}
	nif, err := valueobject.NewNIF(in.NIF)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByNIF(ctx, tallerID, nif.String())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe un cliente con NIF %s", nif)
	}
	now := uc.reloj()
	cliente := &entity.Cliente{
		ID:        uuid.New().String(),
		TallerID:  tallerID,
		Nombre:    strings.TrimSpace(in.Nombre),
		NIF:       nif.String(),
		Email:     in.Email,
		Telefono:  in.Telefono,
		Direccion: in.Direccion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// List lista clientes activos del taller.
func (uc *ClienteUseCase) List(ctx context.Context, tallerID string, page dto.PageRequest) ([]*dto.ClienteResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, tallerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClienteResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClienteResponse(c))
	}
	return out, nil
}

// Update modifica los datos de un cliente activo. Un NIF nuevo se valida y no puede chocar con
// otro cliente del taller; las facturas ya creadas conservan su NIF congelado.
func (uc *ClienteUseCase) Update(ctx context.Context, tallerID, id string, in dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	if err := validarID(id, "cliente"); err != nil {
		return nil, err
	}
	if err := validar(in); err != nil {
		return nil, err
	}
	cliente, err := uc.repo.GetByID(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	if in.NIF != nil {
		nif, err := valueobject.NewNIF(*in.NIF)
		if err != nil {
			return nil, err
		}
		otro, err := uc.repo.GetByNIF(ctx, tallerID, nif.String())
		if err != nil {
			return nil, err
		}
		if otro != nil && otro.ID != cliente.ID {
			return nil, domain.Conflict("ya existe un cliente con NIF %s", nif)
		}
		cliente.NIF = nif.String()
	}
	if in.Nombre != nil {
		nombre := strings.TrimSpace(*in.Nombre)
		if nombre == "" {
			return nil, domain.Validation("el nombre del cliente es obligatorio")
		}
		cliente.Nombre = nombre
	}
	if in.Email != nil {
		cliente.Email = *in.Email
	}
	if in.Telefono != nil {
		cliente.Telefono = *in.Telefono
	}
	if in.Direccion != nil {
		cliente.Direccion = *in.Direccion
	}
	cliente.UpdatedAt = uc.reloj()
	if err := uc.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// Delete da de baja (borrado lógico) un cliente. Sus facturas conservan el NIF congelado.
func (uc *ClienteUseCase) Delete(ctx context.Context, tallerID, actor, id string) error {
	if err := validarID(id, "cliente"); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, tallerID, id, actor, uc.reloj())
}
