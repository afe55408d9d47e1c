package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
	"github.com/Dani0091/taller-saas-sub000/pkg/logger"
)

// FacturaUseCase orquesta el ciclo de vida de las facturas: valida la petición, carga o crea el
// agregado, delega la persistencia en el repositorio y devuelve DTOs.
type FacturaUseCase struct {
	facturas repository.FacturaRepository
	clientes repository.ClienteRepository
	ordenes  repository.OrdenRepository
	series   repository.SerieRepository
	cache    ResumenCache
	metricas Metricas
	cfg      Config
	log      *logger.Logger
	reloj    func() time.Time
}

// NewFacturaUseCase construye el caso de uso. series puede ser nil: entonces solo se admite la
// serie por defecto o la indicada en cada petición sin comprobar su configuración.
func NewFacturaUseCase(
	facturas repository.FacturaRepository,
	clientes repository.ClienteRepository,
	ordenes repository.OrdenRepository,
	series repository.SerieRepository,
	cfg Config,
	log *logger.Logger,
) *FacturaUseCase {
	return &FacturaUseCase{
		facturas: facturas,
		clientes: clientes,
		ordenes:  ordenes,
		series:   series,
		cache:    sinCache{},
		metricas: sinMetricas{},
		cfg:      cfg.conDefectos(),
		log:      log,
		reloj:    time.Now,
	}
}

// ConCache activa la caché del resumen por estado.
func (uc *FacturaUseCase) ConCache(c ResumenCache) *FacturaUseCase {
	if c != nil {
		uc.cache = c
	}
	return uc
}

// ConMetricas activa el registro de métricas.
func (uc *FacturaUseCase) ConMetricas(m Metricas) *FacturaUseCase {
	if m != nil {
		uc.metricas = m
	}
	return uc
}

// ConReloj sustituye el reloj (tests).
func (uc *FacturaUseCase) ConReloj(reloj func() time.Time) *FacturaUseCase {
	uc.reloj = reloj
	return uc
}

func (uc *FacturaUseCase) ahora() time.Time { return uc.reloj().In(uc.cfg.Zona) }

// ── Borradores ────────────────────────────────────────────────────────────────

// CrearBorrador crea una factura en borrador con las líneas indicadas (pueden ser cero).
func (uc *FacturaUseCase) CrearBorrador(ctx context.Context, tallerID, actor string, in dto.CrearFacturaRequest) (*dto.FacturaResponse, error) {
	if err := validar(in); err != nil {
		return nil, err
	}
	cliente, err := uc.clientes.GetByID(ctx, tallerID, in.ClienteID)
	if err != nil {
		return nil, err
	}
	serie, tipo, err := uc.resolverSerie(ctx, tallerID, in.Serie, entity.TipoFactura(in.Tipo))
	if err != nil {
		return nil, err
	}
	ret, err := valueobject.NewRetencion(in.RetencionPorcentaje)
	if err != nil {
		return nil, err
	}
	vence, err := parseFecha(in.FechaVencimiento, uc.cfg.Zona)
	if err != nil {
		return nil, err
	}
	lineas, err := lineasDesdeDTO(in.Lineas)
	if err != nil {
		return nil, err
	}

	f, err := entity.NuevaFactura(entity.ParamsFactura{
		TallerID:         tallerID,
		ClienteID:        cliente.ID,
		Serie:            serie,
		Tipo:             tipo,
		NIFCliente:       uc.nifBorrador(cliente),
		Retencion:        ret,
		FechaVencimiento: vence,
		Observaciones:    in.Observaciones,
		Lineas:           lineas,
		Actor:            actor,
		Ahora:            uc.ahora(),
	})
	if err != nil {
		return nil, err
	}
	if err := uc.facturas.Create(ctx, f); err != nil {
		return nil, err
	}
	uc.invalidarResumen(ctx, tallerID)
	uc.log.Info().Str("taller_id", tallerID).Str("factura_id", f.ID()).Int("lineas", len(lineas)).Msg("borrador de factura creado")
	return uc.toResponse(f), nil
}

// ActualizarBorrador modifica cabecera y/o líneas de un borrador (última escritura gana).
func (uc *FacturaUseCase) ActualizarBorrador(ctx context.Context, tallerID, actor, id string, in dto.ActualizarFacturaRequest) (*dto.FacturaResponse, error) {
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	if err := validar(in); err != nil {
		return nil, err
	}
	f, err := uc.facturas.GetByID(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	if in.ClienteID != nil && *in.ClienteID != f.ClienteID() {
		cliente, err := uc.clientes.GetByID(ctx, tallerID, *in.ClienteID)
		if err != nil {
			return nil, err
		}
		if err := f.CambiarCliente(cliente.ID, uc.nifBorrador(cliente)); err != nil {
			return nil, err
		}
	}
	if in.RetencionPorcentaje != nil {
		ret, err := valueobject.NewRetencion(*in.RetencionPorcentaje)
		if err != nil {
			return nil, err
		}
		if err := f.CambiarRetencion(ret); err != nil {
			return nil, err
		}
	}
	if in.FechaVencimiento != nil {
		vence, err := parseFecha(*in.FechaVencimiento, uc.cfg.Zona)
		if err != nil {
			return nil, err
		}
		if err := f.CambiarFechaVencimiento(vence); err != nil {
			return nil, err
		}
	}
	if in.Observaciones != nil {
		if err := f.CambiarObservaciones(*in.Observaciones); err != nil {
			return nil, err
		}
	}
	if in.Lineas != nil {
		lineas, err := lineasDesdeDTO(in.Lineas)
		if err != nil {
			return nil, err
		}
		if err := f.ReemplazarLineas(lineas); err != nil {
			return nil, err
		}
	}
	f.Tocar(uc.ahora())
	if err := uc.facturas.Update(ctx, f); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("taller_id", tallerID).Str("factura_id", id).Str("actor", actor).Msg("borrador actualizado")
	return uc.toResponse(f), nil
}

// EliminarBorrador descarta un borrador sin número.
func (uc *FacturaUseCase) EliminarBorrador(ctx context.Context, tallerID, actor, id string) error {
	if err := validarID(id, "factura"); err != nil {
		return err
	}
	f, err := uc.facturas.GetByID(ctx, tallerID, id)
	if err != nil {
		return err
	}
	if err := uc.facturas.Delete(ctx, tallerID, id, actor, uc.ahora()); err != nil {
		return err
	}
	uc.invalidarResumen(ctx, tallerID)

	// la orden vuelve a poder facturarse
	if f.OrdenID() != "" && uc.ordenes != nil {
		if err := uc.ordenes.DesmarcarFacturada(ctx, f.OrdenID(), tallerID, id); err != nil {
			uc.log.Error().Err(err).
				Str("taller_id", tallerID).
				Str("orden_id", f.OrdenID()).
				Str("factura_id", id).
				Msg("no se pudo liberar la orden del borrador eliminado")
		}
	}
	uc.log.Info().Str("taller_id", tallerID).Str("factura_id", id).Msg("borrador eliminado")
	return nil
}

// ── Transiciones ──────────────────────────────────────────────────────────────

// Emitir numera y emite el borrador. Vuelve a congelar el NIF vigente del cliente: un NIF
// persistido inválido impide la emisión.
func (uc *FacturaUseCase) Emitir(ctx context.Context, tallerID, actor, id string) (*dto.FacturaResponse, error) {
	inicio := time.Now()
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	f, err := uc.facturas.GetByID(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	if f.Estado() != entity.EstadoBorrador {
		uc.metricas.EmisionFallida("estado")
		return nil, domain.BusinessRule("la factura ya está en estado %s", f.Estado())
	}
	nif, err := uc.nifEmision(ctx, f)
	if err != nil {
		uc.metricas.EmisionFallida("nif")
		return nil, err
	}

	emitida, err := uc.facturas.Emitir(ctx, tallerID, id, repository.OpcionesEmision{
		Actor:           actor,
		Ahora:           uc.ahora(),
		NIFCliente:      nif,
		DiasVencimiento: uc.cfg.DiasVencimiento,
	})
	if err != nil {
		uc.metricas.EmisionFallida(motivoFallo(err))
		uc.log.Warn().Err(err).Str("taller_id", tallerID).Str("factura_id", id).Msg("emisión fallida")
		return nil, err
	}
	uc.metricas.EmisionCompletada(emitida.Serie().String(), time.Since(inicio))
	uc.metricas.Transicion(entity.EstadoEmitida)
	uc.invalidarResumen(ctx, tallerID)
	uc.log.Info().
		Str("taller_id", tallerID).
		Str("factura_id", id).
		Str("numero", emitida.Numero().String()).
		Str("actor", actor).
		Msg("factura emitida")
	return uc.toResponse(emitida), nil
}

// Anular anula una factura emitida o pagada. El número se conserva.
func (uc *FacturaUseCase) Anular(ctx context.Context, tallerID, actor, id string, in dto.AnularFacturaRequest) (*dto.FacturaResponse, error) {
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	if err := validar(in); err != nil {
		return nil, err
	}
	f, err := uc.facturas.Anular(ctx, tallerID, id, in.Motivo, actor, uc.ahora())
	if err != nil {
		return nil, err
	}
	uc.metricas.Transicion(entity.EstadoAnulada)
	uc.invalidarResumen(ctx, tallerID)
	uc.log.Info().
		Str("taller_id", tallerID).
		Str("factura_id", id).
		Str("numero", f.Numero().String()).
		Str("motivo", in.Motivo).
		Msg("factura anulada")
	return uc.toResponse(f), nil
}

// MarcarPagada registra el cobro de una factura emitida.
func (uc *FacturaUseCase) MarcarPagada(ctx context.Context, tallerID, actor, id string) (*dto.FacturaResponse, error) {
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	f, err := uc.facturas.MarcarPagada(ctx, tallerID, id, actor, uc.ahora())
	if err != nil {
		return nil, err
	}
	uc.metricas.Transicion(entity.EstadoPagada)
	uc.invalidarResumen(ctx, tallerID)
	uc.log.Info().Str("taller_id", tallerID).Str("factura_id", id).Str("numero", f.Numero().String()).Msg("factura pagada")
	return uc.toResponse(f), nil
}

// ActualizarInformeExterno guarda el estado que comunica el colaborador de cumplimiento.
func (uc *FacturaUseCase) ActualizarInformeExterno(ctx context.Context, tallerID, id string, in dto.InformeExternoRequest) (*dto.FacturaResponse, error) {
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	if err := validar(in); err != nil {
		return nil, err
	}
	f, err := uc.facturas.ActualizarInforme(ctx, tallerID, id, entity.InformeExterno{
		ID:     in.ID,
		URL:    in.URL,
		Estado: entity.EstadoInforme(in.Estado),
	}, uc.ahora())
	if err != nil {
		return nil, err
	}
	if f.Informe().Estado == entity.InformeError {
		uc.log.Warn().Str("taller_id", tallerID).Str("numero", f.Numero().String()).Str("informe_id", in.ID).Msg("informe externo con error")
	}
	return uc.toResponse(f), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// Obtener devuelve una factura del taller.
func (uc *FacturaUseCase) Obtener(ctx context.Context, tallerID, id string) (*dto.FacturaResponse, error) {
	if err := validarID(id, "factura"); err != nil {
		return nil, err
	}
	f, err := uc.facturas.GetByID(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(f), nil
}

// ObtenerPorNumero busca por número legal (SERIE-AAAA-NNNNNN).
func (uc *FacturaUseCase) ObtenerPorNumero(ctx context.Context, tallerID, numero string) (*dto.FacturaResponse, error) {
	n, err := valueobject.ParseNumeroFactura(numero)
	if err != nil {
		return nil, err
	}
	f, err := uc.facturas.GetByNumero(ctx, tallerID, n)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(f), nil
}

// Listar devuelve una página de facturas filtrada.
func (uc *FacturaUseCase) Listar(ctx context.Context, tallerID string, in dto.FiltroFacturasRequest) (*dto.FacturaListResponse, error) {
	if err := validar(in); err != nil {
		return nil, err
	}
	limit, offset := dto.NormalizarPagina(in.Limit, in.Offset)
	filtro := repository.FiltroFacturas{
		Estado:    entity.EstadoFactura(in.Estado),
		ClienteID: in.ClienteID,
		Serie:     strings.ToUpper(in.Serie),
		Ahora:     uc.ahora(),
		Limit:     limit,
		Offset:    offset,
	}
	desde, err := parseFecha(in.Desde, uc.cfg.Zona)
	if err != nil {
		return nil, err
	}
	filtro.Desde = desde
	hasta, err := parseFecha(in.Hasta, uc.cfg.Zona)
	if err != nil {
		return nil, err
	}
	if hasta != nil {
		// "hasta" es inclusivo para el usuario
		fin := hasta.AddDate(0, 0, 1)
		filtro.Hasta = &fin
	}
	if filtro.Desde != nil && filtro.Hasta != nil && !filtro.Desde.Before(*filtro.Hasta) {
		return nil, domain.Validation("el rango de fechas está invertido")
	}

	list, total, err := uc.facturas.List(ctx, tallerID, filtro)
	if err != nil {
		return nil, err
	}
	out := &dto.FacturaListResponse{
		Items: make([]dto.FacturaResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, f := range list {
		out.Items = append(out.Items, *uc.toResponse(f))
	}
	return out, nil
}

// ContarPorEstado devuelve el resumen por estado (incluye OVERDUE). Se sirve desde caché si existe.
func (uc *FacturaUseCase) ContarPorEstado(ctx context.Context, tallerID string) (*dto.ResumenFacturasResponse, error) {
	conteo, gen, ok, err := uc.cache.Obtener(ctx, tallerID)
	if err != nil {
		uc.log.Warn().Err(err).Str("taller_id", tallerID).Msg("caché de resumen no disponible")
	}
	if !ok {
		conteo, err = uc.facturas.CountByEstado(ctx, tallerID, uc.ahora())
		if err != nil {
			return nil, err
		}
		if err := uc.cache.Guardar(ctx, tallerID, gen, conteo); err != nil {
			uc.log.Warn().Err(err).Str("taller_id", tallerID).Msg("no se pudo guardar el resumen en caché")
		}
	}
	resp := &dto.ResumenFacturasResponse{PorEstado: make(map[string]int, 5)}
	for _, e := range []entity.EstadoFactura{entity.EstadoBorrador, entity.EstadoEmitida, entity.EstadoPagada, entity.EstadoAnulada, entity.EstadoVencida} {
		resp.PorEstado[string(e)] = conteo[e]
	}
	return resp, nil
}

// ── Auxiliares ────────────────────────────────────────────────────────────────

// resolverSerie elige la serie: la pedida, la predeterminada del taller o la de configuración.
// Una serie distinta de la de configuración debe existir y estar activa en el taller.
func (uc *FacturaUseCase) resolverSerie(ctx context.Context, tallerID, raw string, tipo entity.TipoFactura) (valueobject.Serie, entity.TipoFactura, error) {
	codigo := strings.ToUpper(strings.TrimSpace(raw))
	var conf *entity.SerieFacturacion
	if uc.series != nil {
		var err error
		if codigo == "" {
			conf, err = uc.series.GetPredeterminada(ctx, tallerID)
		} else {
			conf, err = uc.series.GetByCodigo(ctx, tallerID, codigo)
		}
		if err != nil {
			return valueobject.Serie{}, "", err
		}
		if conf != nil && !conf.Activa {
			return valueobject.Serie{}, "", domain.BusinessRule("la serie %s está desactivada", conf.Codigo)
		}
		if conf == nil && codigo != "" && codigo != uc.cfg.SerieDefecto {
			return valueobject.Serie{}, "", domain.Validation("la serie %s no está configurada en el taller", codigo)
		}
	}
	switch {
	case conf != nil:
		codigo = conf.Codigo
		if tipo == "" {
			tipo = conf.Tipo
		}
	case codigo == "":
		codigo = uc.cfg.SerieDefecto
	}
	serie, err := valueobject.NewSerie(codigo)
	if err != nil {
		return valueobject.Serie{}, "", err
	}
	return serie, tipo, nil
}

// nifBorrador congela el NIF del cliente si es válido. En borrador se tolera un NIF antiguo
// inválido (se registra el aviso); la emisión lo volverá a exigir.
func (uc *FacturaUseCase) nifBorrador(c *entity.Cliente) valueobject.NIF {
	if strings.TrimSpace(c.NIF) == "" {
		return valueobject.NIF{}
	}
	nif, err := c.NIFValido()
	if err != nil {
		uc.log.Warn().Str("taller_id", c.TallerID).Str("cliente_id", c.ID).Msg("cliente con NIF inválido: el borrador queda sin NIF")
		return valueobject.NIF{}
	}
	return nif
}

// nifEmision obtiene el NIF vigente del cliente. Las facturas simplificadas admiten cliente sin NIF.
func (uc *FacturaUseCase) nifEmision(ctx context.Context, f *entity.Factura) (valueobject.NIF, error) {
	cliente, err := uc.clientes.GetByID(ctx, f.TallerID(), f.ClienteID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return valueobject.NIF{}, domain.BusinessRule("el cliente %s de la factura ya no existe", f.ClienteID())
		}
		return valueobject.NIF{}, err
	}
	if strings.TrimSpace(cliente.NIF) == "" && f.Tipo() == entity.TipoSimplificada {
		return valueobject.NIF{}, nil
	}
	nif, err := cliente.NIFValido()
	if err != nil {
		uc.log.Warn().Str("taller_id", f.TallerID()).Str("cliente_id", cliente.ID).Msg("emisión bloqueada por NIF inválido")
		return valueobject.NIF{}, domain.Validation("el cliente %s tiene un NIF inválido: %s", cliente.Nombre, domain.Message(err))
	}
	return nif, nil
}

func (uc *FacturaUseCase) invalidarResumen(ctx context.Context, tallerID string) {
	if err := uc.cache.Invalidar(ctx, tallerID); err != nil {
		uc.log.Warn().Err(err).Str("taller_id", tallerID).Msg("no se pudo invalidar el resumen en caché")
	}
}

func motivoFallo(err error) string {
	switch {
	case errors.Is(err, domain.ErrBusinessRule):
		return "regla"
	case errors.Is(err, domain.ErrNotFound):
		return "no_encontrada"
	case errors.Is(err, domain.ErrConflict):
		return "conflicto"
	case errors.Is(err, domain.ErrValidation):
		return "validacion"
	default:
		return "interno"
	}
}
