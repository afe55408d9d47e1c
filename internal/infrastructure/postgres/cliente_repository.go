package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
)

var _ repository.ClienteRepository = (*ClienteRepo)(nil)

// ClienteRepo implementación de ClienteRepository (usable con pool o tx).
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

const columnasCliente = `id, taller_id, nombre, nif, email, telefono, direccion, created_at, updated_at, deleted_at, COALESCE(deleted_by, '')`

// Create persiste un nuevo cliente.
func (r *ClienteRepo) Create(ctx context.Context, c *entity.Cliente) error {
	const query = `
		INSERT INTO clientes (id, taller_id, nombre, nif, email, telefono, direccion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.TallerID, c.Nombre, c.NIF, c.Email, c.Telefono, c.Direccion, c.CreatedAt, c.UpdatedAt,
	)
	return traducir("crear cliente", err)
}

// GetByID obtiene un cliente activo del taller.
func (r *ClienteRepo) GetByID(ctx context.Context, tallerID, id string) (*entity.Cliente, error) {
	query := `SELECT ` + columnasCliente + ` FROM clientes WHERE taller_id = $1 AND id = $2 AND deleted_at IS NULL`
	c, err := scanCliente(r.q.QueryRow(ctx, query, tallerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("cliente %s no encontrado", id)
		}
		return nil, traducir("obtener cliente", err)
	}
	return c, nil
}

// GetByNIF obtiene un cliente activo por NIF normalizado; nil, nil si no existe.
func (r *ClienteRepo) GetByNIF(ctx context.Context, tallerID, nif string) (*entity.Cliente, error) {
	query := `SELECT ` + columnasCliente + ` FROM clientes WHERE taller_id = $1 AND nif = $2 AND deleted_at IS NULL`
	c, err := scanCliente(r.q.QueryRow(ctx, query, tallerID, nif))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, traducir("obtener cliente por NIF", err)
	}
	return c, nil
}

// List lista clientes activos del taller por nombre.
func (r *ClienteRepo) List(ctx context.Context, tallerID string, limit, offset int) ([]*entity.Cliente, error) {
	query := `SELECT ` + columnasCliente + `
		FROM clientes WHERE taller_id = $1 AND deleted_at IS NULL
		ORDER BY nombre, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tallerID, limit, offset)
	if err != nil {
		return nil, traducir("listar clientes", err)
	}
	defer rows.Close()
	var list []*entity.Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, traducir("leer cliente", err)
		}
		list = append(list, c)
	}
	return list, traducir("listar clientes", rows.Err())
}

// Update actualiza los datos de un cliente activo.
func (r *ClienteRepo) Update(ctx context.Context, c *entity.Cliente) error {
	const query = `
		UPDATE clientes SET nombre = $3, nif = $4, email = $5, telefono = $6, direccion = $7, updated_at = $8
		WHERE taller_id = $1 AND id = $2 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query,
		c.TallerID, c.ID, c.Nombre, c.NIF, c.Email, c.Telefono, c.Direccion, c.UpdatedAt,
	)
	if err != nil {
		return traducir("actualizar cliente", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("cliente %s no encontrado", c.ID)
	}
	return nil
}

// Delete da de baja el cliente (borrado lógico). Sus facturas no se tocan.
func (r *ClienteRepo) Delete(ctx context.Context, tallerID, id, actor string, ahora time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clientes SET deleted_at = $3, deleted_by = $4, updated_at = $3
		WHERE taller_id = $1 AND id = $2 AND deleted_at IS NULL`, tallerID, id, ahora, nullIfEmpty(actor))
	if err != nil {
		return traducir("eliminar cliente", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("cliente %s no encontrado", id)
	}
	return nil
}

func scanCliente(row pgxScanner) (*entity.Cliente, error) {
	var c entity.Cliente
	err := row.Scan(&c.ID, &c.TallerID, &c.Nombre, &c.NIF, &c.Email, &c.Telefono, &c.Direccion,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
