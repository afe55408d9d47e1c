package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/numeracion"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

var _ repository.FacturaRepository = (*FacturaRepo)(nil)

// FacturaRepo implementación de FacturaRepository: cabecera en facturas, líneas en lineas_factura.
// Las escrituras de varias sentencias van en transacción; una factura borrada lógicamente no existe
// para ninguna consulta.
type FacturaRepo struct {
	db DB
	tx *TxRunner
}

// NewFacturaRepository construye el adaptador. Pasar pool (o tx).
func NewFacturaRepository(db DB) *FacturaRepo {
	return &FacturaRepo{db: db, tx: NewTxRunner(db)}
}

const columnasFactura = `
	id, taller_id, serie, COALESCE(numero, ''), tipo, estado, COALESCE(orden_id::text, ''), cliente_id,
	nif_cliente, fecha_emision, fecha_vencimiento, retencion_porcentaje, observaciones,
	informe_id, informe_url, informe_estado, motivo_anulacion,
	COALESCE(creada_por, ''), COALESCE(emitida_por, ''), COALESCE(pagada_por, ''), COALESCE(anulada_por, ''),
	emitida_en, pagada_en, anulada_en, created_at, updated_at, deleted_at, COALESCE(deleted_by, '')`

const columnasLinea = `
	id, factura_id, posicion, tipo, descripcion, referencia, cantidad, precio_unitario,
	descuento_porcentaje, descuento_importe, iva_porcentaje`

// Create persiste cabecera y líneas. Si falla una línea no queda cabecera huérfana.
func (r *FacturaRepo) Create(ctx context.Context, f *entity.Factura) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		if err := insertarCabecera(ctx, tx, f.Datos()); err != nil {
			return err
		}
		return insertarLineas(ctx, tx, f.Lineas())
	})
	return traducir("crear factura", err)
}

// GetByID obtiene la factura con sus líneas.
func (r *FacturaRepo) GetByID(ctx context.Context, tallerID, id string) (*entity.Factura, error) {
	f, err := cargar(ctx, r.db, tallerID, id, false)
	return f, traducir("obtener factura", err)
}

// GetByNumero busca por número legal dentro del taller.
func (r *FacturaRepo) GetByNumero(ctx context.Context, tallerID string, numero valueobject.NumeroFactura) (*entity.Factura, error) {
	query := `SELECT ` + columnasFactura + `
		FROM facturas
		WHERE taller_id = $1 AND numero = $2 AND deleted_at IS NULL`
	d, err := scanFactura(r.db.QueryRow(ctx, query, tallerID, numero.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("factura %s no encontrada", numero)
		}
		return nil, traducir("obtener factura por número", err)
	}
	list, err := conLineas(ctx, r.db, []entity.FacturaDatos{d})
	if err != nil {
		return nil, traducir("obtener factura por número", err)
	}
	return list[0], nil
}

// Update guarda un borrador: cabecera y sustitución completa de líneas. Sin control de versión:
// gana la última escritura.
func (r *FacturaRepo) Update(ctx context.Context, f *entity.Factura) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		var estado string
		err := tx.QueryRow(ctx, `
			SELECT estado FROM facturas
			WHERE taller_id = $1 AND id = $2 AND deleted_at IS NULL
			FOR UPDATE`, f.TallerID(), f.ID()).Scan(&estado)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("factura %s no encontrada", f.ID())
			}
			return err
		}
		if entity.EstadoFactura(estado) != entity.EstadoBorrador {
			return domain.BusinessRule("la factura ya está en estado %s y no admite cambios", estado)
		}
		if err := guardarCabecera(ctx, tx, f.Datos()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM lineas_factura WHERE factura_id = $1`, f.ID()); err != nil {
			return err
		}
		return insertarLineas(ctx, tx, f.Lineas())
	})
	return traducir("actualizar factura", err)
}

// Emitir bloquea la factura, reserva el número en la misma transacción y persiste la emisión.
// Cualquier fallo revierte todo: la factura sigue en borrador y el número no se consume.
func (r *FacturaRepo) Emitir(ctx context.Context, tallerID, id string, op repository.OpcionesEmision) (*entity.Factura, error) {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		f, err := cargar(ctx, tx, tallerID, id, true)
		if err != nil {
			return err
		}
		if err := numeracion.EmitirConNumeracion(ctx, f, NewSecuenciaRepository(tx), op); err != nil {
			return err
		}
		return guardarCabecera(ctx, tx, f.Datos())
	})
	if err != nil {
		return nil, traducir("emitir factura", err)
	}
	// releer lo confirmado
	return r.GetByID(ctx, tallerID, id)
}

// Anular pasa a VOIDED una factura emitida o pagada.
func (r *FacturaRepo) Anular(ctx context.Context, tallerID, id, motivo, actor string, ahora time.Time) (*entity.Factura, error) {
	return r.mutar(ctx, "anular factura", tallerID, id, func(f *entity.Factura) error {
		return f.Anular(motivo, actor, ahora)
	})
}

// MarcarPagada registra el cobro.
func (r *FacturaRepo) MarcarPagada(ctx context.Context, tallerID, id, actor string, ahora time.Time) (*entity.Factura, error) {
	return r.mutar(ctx, "marcar factura pagada", tallerID, id, func(f *entity.Factura) error {
		return f.MarcarPagada(actor, ahora)
	})
}

// ActualizarInforme guarda el estado del envío al sistema de cumplimiento.
func (r *FacturaRepo) ActualizarInforme(ctx context.Context, tallerID, id string, inf entity.InformeExterno, ahora time.Time) (*entity.Factura, error) {
	return r.mutar(ctx, "actualizar informe externo", tallerID, id, func(f *entity.Factura) error {
		return f.RegistrarInformeExterno(inf, ahora)
	})
}

// Delete marca como eliminado un borrador sin número.
func (r *FacturaRepo) Delete(ctx context.Context, tallerID, id, actor string, ahora time.Time) error {
	_, err := r.mutar(ctx, "eliminar factura", tallerID, id, func(f *entity.Factura) error {
		return f.Eliminar(actor, ahora)
	})
	return err
}

// mutar aplica una transición sobre la factura bloqueada y guarda la cabecera.
func (r *FacturaRepo) mutar(ctx context.Context, op, tallerID, id string, fn func(*entity.Factura) error) (*entity.Factura, error) {
	var out *entity.Factura
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		f, err := cargar(ctx, tx, tallerID, id, true)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		out = f
		return guardarCabecera(ctx, tx, f.Datos())
	})
	if err != nil {
		return nil, traducir(op, err)
	}
	return out, nil
}

// List devuelve una página (más recientes primero) y el total filtrado.
func (r *FacturaRepo) List(ctx context.Context, tallerID string, fl repository.FiltroFacturas) ([]*entity.Factura, int, error) {
	where, args := filtroSQL(tallerID, fl)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM facturas WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, traducir("contar facturas", err)
	}
	if total == 0 || fl.Offset >= total {
		return nil, total, nil
	}

	args = append(args, fl.Limit, fl.Offset)
	query := fmt.Sprintf(`SELECT %s FROM facturas WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		columnasFactura, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, traducir("listar facturas", err)
	}
	defer rows.Close()
	var datos []entity.FacturaDatos
	for rows.Next() {
		d, err := scanFactura(rows)
		if err != nil {
			return nil, 0, traducir("leer factura", err)
		}
		datos = append(datos, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, traducir("listar facturas", err)
	}
	rows.Close()

	list, err := conLineas(ctx, r.db, datos)
	if err != nil {
		return nil, 0, traducir("listar facturas", err)
	}
	return list, total, nil
}

// CountByEstado cuenta por estado persistido; OVERDUE se calcula aparte sobre las emitidas.
func (r *FacturaRepo) CountByEstado(ctx context.Context, tallerID string, ahora time.Time) (map[entity.EstadoFactura]int, error) {
	const q = `
		SELECT estado, count(*),
		       count(*) FILTER (WHERE estado = 'ISSUED' AND fecha_vencimiento < $2::timestamptz)
		FROM facturas
		WHERE taller_id = $1 AND deleted_at IS NULL
		GROUP BY estado`
	rows, err := r.db.Query(ctx, q, tallerID, ahora)
	if err != nil {
		return nil, traducir("contar facturas por estado", err)
	}
	defer rows.Close()
	out := make(map[entity.EstadoFactura]int)
	for rows.Next() {
		var estado string
		var n, vencidas int
		if err := rows.Scan(&estado, &n, &vencidas); err != nil {
			return nil, traducir("contar facturas por estado", err)
		}
		out[entity.EstadoFactura(estado)] = n
		out[entity.EstadoVencida] += vencidas
	}
	return out, traducir("contar facturas por estado", rows.Err())
}

// ── helpers ───────────────────────────────────────────────────────────────────

func filtroSQL(tallerID string, fl repository.FiltroFacturas) (string, []any) {
	conds := []string{"taller_id = $1", "deleted_at IS NULL"}
	args := []any{tallerID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	switch fl.Estado {
	case "":
	case entity.EstadoVencida:
		conds = append(conds, "estado = 'ISSUED'")
		add("fecha_vencimiento < $%d::timestamptz", fl.Ahora)
	default:
		add("estado = $%d", string(fl.Estado))
	}
	if fl.ClienteID != "" {
		add("cliente_id = $%d", fl.ClienteID)
	}
	if fl.Serie != "" {
		add("serie = $%d", fl.Serie)
	}
	if fl.Desde != nil {
		add("fecha_emision >= $%d::timestamptz", *fl.Desde)
	}
	if fl.Hasta != nil {
		add("fecha_emision < $%d::timestamptz", *fl.Hasta)
	}
	return strings.Join(conds, " AND "), args
}

func cargar(ctx context.Context, q Querier, tallerID, id string, bloquear bool) (*entity.Factura, error) {
	query := `SELECT ` + columnasFactura + `
		FROM facturas
		WHERE taller_id = $1 AND id = $2 AND deleted_at IS NULL`
	if bloquear {
		query += ` FOR UPDATE`
	}
	d, err := scanFactura(q.QueryRow(ctx, query, tallerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("factura %s no encontrada", id)
		}
		return nil, err
	}
	list, err := conLineas(ctx, q, []entity.FacturaDatos{d})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// conLineas carga las líneas de todas las cabeceras en una consulta y rehidrata los agregados.
func conLineas(ctx context.Context, q Querier, datos []entity.FacturaDatos) ([]*entity.Factura, error) {
	ids := make([]string, len(datos))
	for i, d := range datos {
		ids[i] = d.ID
	}
	rows, err := q.Query(ctx, `SELECT `+columnasLinea+`
		FROM lineas_factura
		WHERE factura_id = ANY($1::uuid[])
		ORDER BY factura_id, posicion`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	porFactura := make(map[string][]entity.LineaDatos, len(datos))
	for rows.Next() {
		l, err := scanLinea(rows)
		if err != nil {
			return nil, err
		}
		porFactura[l.FacturaID] = append(porFactura[l.FacturaID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*entity.Factura, 0, len(datos))
	for _, d := range datos {
		f, err := entity.ReconstruirFactura(d, porFactura[d.ID])
		if err != nil {
			// dato persistido incoherente: no es un error del usuario
			return nil, fmt.Errorf("factura %s corrupta: %s", d.ID, domain.Message(err))
		}
		out = append(out, f)
	}
	return out, nil
}

func scanFactura(row pgxScanner) (entity.FacturaDatos, error) {
	var (
		d                                           entity.FacturaDatos
		serie, numero, tipo, estado, nif, infEstado string
		ret                                         decimal.Decimal
	)
	err := row.Scan(
		&d.ID, &d.TallerID, &serie, &numero, &tipo, &estado, &d.OrdenID, &d.ClienteID,
		&nif, &d.FechaEmision, &d.FechaVencimiento, &ret, &d.Observaciones,
		&d.Informe.ID, &d.Informe.URL, &infEstado, &d.MotivoAnulacion,
		&d.CreadaPor, &d.EmitidaPor, &d.PagadaPor, &d.AnuladaPor,
		&d.EmitidaEn, &d.PagadaEn, &d.AnuladaEn, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt, &d.DeletedBy,
	)
	if err != nil {
		return d, err
	}
	d.Tipo = entity.TipoFactura(tipo)
	d.Estado = entity.EstadoFactura(estado)
	d.Informe.Estado = entity.EstadoInforme(infEstado)
	if d.Serie, err = valueobject.NewSerie(serie); err != nil {
		return d, fmt.Errorf("factura %s: %s", d.ID, domain.Message(err))
	}
	if numero != "" {
		if d.Numero, err = valueobject.ParseNumeroFactura(numero); err != nil {
			return d, fmt.Errorf("factura %s: %s", d.ID, domain.Message(err))
		}
	}
	if d.Retencion, err = valueobject.NewRetencion(ret); err != nil {
		return d, fmt.Errorf("factura %s: %s", d.ID, domain.Message(err))
	}
	if nif != "" {
		n, err := valueobject.NewNIF(nif)
		if err != nil {
			log.Warn().Str("taller_id", d.TallerID).Str("factura_id", d.ID).Msg("factura con NIF persistido inválido: se lee sin NIF")
		} else {
			d.NIFCliente = n
		}
	}
	return d, nil
}

func scanLinea(row pgxScanner) (entity.LineaDatos, error) {
	var (
		l                  entity.LineaDatos
		tipo               string
		precio, dtoImporte decimal.Decimal
	)
	err := row.Scan(&l.ID, &l.FacturaID, &l.Posicion, &tipo, &l.Descripcion, &l.Referencia,
		&l.Cantidad, &precio, &l.DescuentoPorcentaje, &dtoImporte, &l.IVAPorcentaje)
	if err != nil {
		return l, err
	}
	l.Tipo = entity.TipoLinea(tipo)
	if l.PrecioUnitario, err = valueobject.NewPrecio(precio); err != nil {
		return l, fmt.Errorf("línea %s: %s", l.ID, domain.Message(err))
	}
	if l.DescuentoImporte, err = valueobject.NewPrecio(dtoImporte); err != nil {
		return l, fmt.Errorf("línea %s: %s", l.ID, domain.Message(err))
	}
	return l, nil
}

func insertarCabecera(ctx context.Context, q Querier, d entity.FacturaDatos) error {
	const query = `
		INSERT INTO facturas (
			id, taller_id, serie, numero, tipo, estado, orden_id, cliente_id, nif_cliente,
			fecha_emision, fecha_vencimiento, retencion_porcentaje, observaciones,
			informe_id, informe_url, informe_estado, motivo_anulacion,
			creada_por, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := q.Exec(ctx, query,
		d.ID, d.TallerID, d.Serie.String(), nullIfEmpty(d.Numero.String()), string(d.Tipo), string(d.Estado),
		nullIfEmpty(d.OrdenID), d.ClienteID, d.NIFCliente.String(),
		d.FechaEmision, d.FechaVencimiento, d.Retencion.Porcentaje(), d.Observaciones,
		d.Informe.ID, d.Informe.URL, string(d.Informe.Estado), d.MotivoAnulacion,
		nullIfEmpty(d.CreadaPor), d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// guardarCabecera reescribe los campos mutables. taller_id, orden_id y creación no cambian nunca.
func guardarCabecera(ctx context.Context, q Querier, d entity.FacturaDatos) error {
	const query = `
		UPDATE facturas
		SET serie                = $3,
		    numero               = $4,
		    tipo                 = $5,
		    estado               = $6,
		    cliente_id           = $7,
		    nif_cliente          = $8,
		    fecha_emision        = $9,
		    fecha_vencimiento    = $10,
		    retencion_porcentaje = $11,
		    observaciones        = $12,
		    informe_id           = $13,
		    informe_url          = $14,
		    informe_estado       = $15,
		    motivo_anulacion     = $16,
		    emitida_por          = $17,
		    pagada_por           = $18,
		    anulada_por          = $19,
		    emitida_en           = $20,
		    pagada_en            = $21,
		    anulada_en           = $22,
		    updated_at           = $23,
		    deleted_at           = $24,
		    deleted_by           = $25
		WHERE taller_id = $1 AND id = $2`
	tag, err := q.Exec(ctx, query,
		d.TallerID, d.ID,
		d.Serie.String(), nullIfEmpty(d.Numero.String()), string(d.Tipo), string(d.Estado),
		d.ClienteID, d.NIFCliente.String(), d.FechaEmision, d.FechaVencimiento,
		d.Retencion.Porcentaje(), d.Observaciones,
		d.Informe.ID, d.Informe.URL, string(d.Informe.Estado), d.MotivoAnulacion,
		nullIfEmpty(d.EmitidaPor), nullIfEmpty(d.PagadaPor), nullIfEmpty(d.AnuladaPor),
		d.EmitidaEn, d.PagadaEn, d.AnuladaEn, d.UpdatedAt,
		d.DeletedAt, nullIfEmpty(d.DeletedBy),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("factura %s no encontrada", d.ID)
	}
	return nil
}

func insertarLineas(ctx context.Context, q Querier, lineas []*entity.LineaFactura) error {
	if len(lineas) == 0 {
		return nil
	}
	const query = `
		INSERT INTO lineas_factura (` + columnasLinea + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	b := &pgx.Batch{}
	for _, l := range lineas {
		d := l.Datos()
		b.Queue(query,
			d.ID, d.FacturaID, d.Posicion, string(d.Tipo), d.Descripcion, d.Referencia,
			d.Cantidad, d.PrecioUnitario.Decimal(), d.DescuentoPorcentaje, d.DescuentoImporte.Decimal(), d.IVAPorcentaje,
		)
	}
	return q.SendBatch(ctx, b).Close()
}
