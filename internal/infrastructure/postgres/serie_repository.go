package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
)

var _ repository.SerieRepository = (*SerieRepo)(nil)

// SerieRepo implementa SerieRepository sobre series_facturacion.
type SerieRepo struct {
	q Querier
}

// NewSerieRepository construye el repositorio.
func NewSerieRepository(q Querier) *SerieRepo {
	return &SerieRepo{q: q}
}

const columnasSerie = `id, taller_id, codigo, descripcion, tipo, predeterminada, activa, created_at, updated_at`

func (r *SerieRepo) Create(ctx context.Context, s *entity.SerieFacturacion) error {
	const q = `
		INSERT INTO series_facturacion (id, taller_id, codigo, descripcion, tipo, predeterminada, activa, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.q.Exec(ctx, q, s.ID, s.TallerID, s.Codigo, s.Descripcion, string(s.Tipo), s.Predetermina, s.Activa)
	return traducir("crear serie", err)
}

// GetByCodigo devuelve nil, nil si la serie no está configurada (activa o no).
func (r *SerieRepo) GetByCodigo(ctx context.Context, tallerID, codigo string) (*entity.SerieFacturacion, error) {
	q := `SELECT ` + columnasSerie + ` FROM series_facturacion WHERE taller_id = $1 AND codigo = $2`
	return r.una(ctx, "obtener serie", q, tallerID, codigo)
}

// GetPredeterminada devuelve la serie por defecto del taller o nil, nil.
func (r *SerieRepo) GetPredeterminada(ctx context.Context, tallerID string) (*entity.SerieFacturacion, error) {
	q := `SELECT ` + columnasSerie + ` FROM series_facturacion WHERE taller_id = $1 AND predeterminada`
	return r.una(ctx, "obtener serie predeterminada", q, tallerID)
}

func (r *SerieRepo) ListByTaller(ctx context.Context, tallerID string) ([]*entity.SerieFacturacion, error) {
	q := `SELECT ` + columnasSerie + ` FROM series_facturacion WHERE taller_id = $1 ORDER BY codigo`
	rows, err := r.q.Query(ctx, q, tallerID)
	if err != nil {
		return nil, traducir("listar series", err)
	}
	defer rows.Close()
	var list []*entity.SerieFacturacion
	for rows.Next() {
		s, err := scanSerie(rows)
		if err != nil {
			return nil, traducir("leer serie", err)
		}
		list = append(list, s)
	}
	return list, traducir("listar series", rows.Err())
}

func (r *SerieRepo) una(ctx context.Context, op, q string, args ...any) (*entity.SerieFacturacion, error) {
	s, err := scanSerie(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, traducir(op, err)
	}
	return s, nil
}

func scanSerie(row pgxScanner) (*entity.SerieFacturacion, error) {
	var s entity.SerieFacturacion
	var tipo string
	err := row.Scan(&s.ID, &s.TallerID, &s.Codigo, &s.Descripcion, &tipo, &s.Predetermina, &s.Activa, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Tipo = entity.TipoFactura(tipo)
	return &s, nil
}
