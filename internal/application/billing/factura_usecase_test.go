package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dani0091/taller-saas-sub000/internal/application/billing"
	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/pkg/logger"
)

const (
	tallerID      = "00000000-0000-0000-0000-0000000000a1"
	otroTallerID  = "00000000-0000-0000-0000-0000000000a2"
	clienteID     = "00000000-0000-0000-0000-0000000000c1"
	clienteLegado = "00000000-0000-0000-0000-0000000000c2"
	clienteTicket = "00000000-0000-0000-0000-0000000000c3"
	ordenID       = "00000000-0000-0000-0000-0000000000d1"
	actor         = "00000000-0000-0000-0000-0000000000e1"
)

var ctx = context.Background()

type entorno struct {
	uc       *billing.FacturaUseCase
	facturas *memFacturas
	clientes *memClientes
	ordenes  *memOrdenes
	cache    *memCache
	metricas *memMetricas
	ahora    time.Time
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	e := &entorno{
		facturas: newMemFacturas(),
		clientes: newMemClientes(
			&entity.Cliente{ID: clienteID, TallerID: tallerID, Nombre: "Ana López", NIF: "12345678Z"},
			&entity.Cliente{ID: clienteLegado, TallerID: tallerID, Nombre: "Cliente antiguo", NIF: "00000000A"},
			&entity.Cliente{ID: clienteTicket, TallerID: tallerID, Nombre: "Mostrador"},
		),
		ordenes:  &memOrdenes{items: make(map[string]*entity.OrdenReparacion)},
		cache:    newMemCache(),
		metricas: newMemMetricas(),
		ahora:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	e.uc = billing.NewFacturaUseCase(e.facturas, e.clientes, e.ordenes, nil, billing.Config{
		SerieDefecto:    "FA",
		DiasVencimiento: 30,
		IVADefecto:      21,
	}, logger.Nop()).
		ConCache(e.cache).
		ConMetricas(e.metricas).
		ConReloj(func() time.Time { return e.ahora })
	return e
}

func lineasEscenarioA() []dto.LineaFacturaRequest {
	return []dto.LineaFacturaRequest{
		{Tipo: "LABOR", Descripcion: "Mano de obra", Cantidad: decimal.NewFromInt(1), PrecioUnitario: decimal.RequireFromString("45.00"), IVAPorcentaje: 21},
		{Tipo: "PART", Descripcion: "Filtro de aceite", Cantidad: decimal.NewFromInt(1), PrecioUnitario: decimal.RequireFromString("30.00"), IVAPorcentaje: 10},
	}
}

func (e *entorno) borrador(t *testing.T) *dto.FacturaResponse {
	t.Helper()
	f, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID, Lineas: lineasEscenarioA()})
	require.NoError(t, err)
	return f
}

func (e *entorno) emitida(t *testing.T) *dto.FacturaResponse {
	t.Helper()
	f, err := e.uc.Emitir(ctx, tallerID, actor, e.borrador(t).ID)
	require.NoError(t, err)
	return f
}

// ── Borradores ────────────────────────────────────────────────────────────────

func TestCrearBorrador_EscenarioA(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.borrador(t)

	assert.Equal(t, "DRAFT", f.Estado)
	assert.Empty(t, f.Numero)
	assert.Equal(t, "FA", f.Serie)
	assert.Equal(t, "NORMAL", f.Tipo)
	assert.Equal(t, "12345678Z", f.NIFCliente)
	require.Len(t, f.Lineas, 2)
	assert.Equal(t, "75.00", f.Totales.BaseImponible)
	assert.Equal(t, "12.45", f.Totales.IVA)
	assert.Equal(t, "87.45", f.Totales.Total)
	assert.Equal(t, "87,45 €", f.Totales.TotalFormateado)
	assert.Equal(t, "9.45", f.Lineas[0].Impuesto)
	assert.Equal(t, "3.00", f.Lineas[1].Impuesto)
}

func TestCrearBorrador_ValidacionDeEntrada(t *testing.T) {
	e := nuevoEntorno(t)
	casos := map[string]dto.CrearFacturaRequest{
		"cliente no uuid": {ClienteID: "abc"},
		"iva no admitido": {ClienteID: clienteID, Lineas: []dto.LineaFacturaRequest{{Tipo: "LABOR", Descripcion: "x", Cantidad: decimal.NewFromInt(1), IVAPorcentaje: 16}}},
		"cantidad cero":   {ClienteID: clienteID, Lineas: []dto.LineaFacturaRequest{{Tipo: "LABOR", Descripcion: "x", IVAPorcentaje: 21}}},
		"tipo de línea":   {ClienteID: clienteID, Lineas: []dto.LineaFacturaRequest{{Tipo: "GIFT", Descripcion: "x", Cantidad: decimal.NewFromInt(1), IVAPorcentaje: 21}}},
		"precio > máximo": {ClienteID: clienteID, Lineas: []dto.LineaFacturaRequest{{Tipo: "PART", Descripcion: "x", Cantidad: decimal.NewFromInt(1), PrecioUnitario: decimal.NewFromInt(2_000_000), IVAPorcentaje: 21}}},
		"retención > 100": {ClienteID: clienteID, RetencionPorcentaje: decimal.NewFromInt(150)},
		"fecha inválida":  {ClienteID: clienteID, FechaVencimiento: "15/03/2024"},
		"serie inválida":  {ClienteID: clienteID, Serie: "F-A"},
	}
	for nombre, in := range casos {
		t.Run(nombre, func(t *testing.T) {
			_, err := e.uc.CrearBorrador(ctx, tallerID, actor, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, e.facturas.facturas, "nada se persiste si la entrada es inválida")
}

func TestCrearBorrador_ClienteDeOtroTaller(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.uc.CrearBorrador(ctx, otroTallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCrearBorrador_ClienteConNIFLegadoSeTolera(t *testing.T) {
	e := nuevoEntorno(t)
	f, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteLegado, Lineas: lineasEscenarioA()})
	require.NoError(t, err)
	assert.Empty(t, f.NIFCliente)
}

func TestActualizarBorrador_ReemplazaLineasYRetencion(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.borrador(t)
	ret := decimal.NewFromInt(15)
	obs := "Revisión 30.000 km"

	upd, err := e.uc.ActualizarBorrador(ctx, tallerID, actor, f.ID, dto.ActualizarFacturaRequest{
		RetencionPorcentaje: &ret,
		Observaciones:       &obs,
		Lineas:              lineasEscenarioA()[:1],
	})
	require.NoError(t, err)
	assert.Len(t, upd.Lineas, 1)
	assert.Equal(t, "45.00", upd.Totales.BaseImponible)
	assert.Equal(t, "6.75", upd.Totales.RetencionImporte)
	assert.Equal(t, "47.70", upd.Totales.Total)

	leida, err := e.uc.Obtener(ctx, tallerID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, obs, leida.Observaciones)
	assert.Equal(t, "47.70", leida.Totales.Total)
}

func TestEliminarBorrador(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.borrador(t)
	require.NoError(t, e.uc.EliminarBorrador(ctx, tallerID, actor, f.ID))

	_, err := e.uc.Obtener(ctx, tallerID, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el borrado lógico oculta la factura")

	em := e.emitida(t)
	assert.ErrorIs(t, e.uc.EliminarBorrador(ctx, tallerID, actor, em.ID), domain.ErrBusinessRule)
}

// ── Emisión ───────────────────────────────────────────────────────────────────

func TestEmitir_EscenarioB(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.emitida(t)

	assert.Equal(t, "FA-2024-000001", f.Numero)
	assert.Equal(t, "ISSUED", f.Estado)
	assert.Equal(t, "2024-03-15", f.FechaEmision)
	assert.Equal(t, "2024-04-14", f.FechaVencimiento, "vencimiento por defecto: emisión + 30 días")
	assert.Equal(t, "PENDING", f.Informe.Estado)
	assert.Equal(t, "87.45", f.Totales.Total)
	assert.Equal(t, 1, e.metricas.emitidas["FA"])
	assert.Equal(t, 1, e.metricas.transiciones[entity.EstadoEmitida])
}

func TestEmitida_NoAdmiteCambios_EscenarioC(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.emitida(t)

	_, err := e.uc.ActualizarBorrador(ctx, tallerID, actor, f.ID, dto.ActualizarFacturaRequest{Lineas: lineasEscenarioA()})
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	_, err = e.uc.Emitir(ctx, tallerID, actor, f.ID)
	assert.ErrorIs(t, err, domain.ErrBusinessRule, "no se reemite")

	leida, err := e.uc.Obtener(ctx, tallerID, f.ID)
	require.NoError(t, err)
	assert.Len(t, leida.Lineas, 2)
	assert.Equal(t, "FA-2024-000001", leida.Numero)
}

func TestAnular_EscenarioD(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.emitida(t)

	_, err := e.uc.Anular(ctx, tallerID, actor, f.ID, dto.AnularFacturaRequest{Motivo: ""})
	assert.ErrorIs(t, err, domain.ErrBusinessRule, "anular sin motivo")

	anulada, err := e.uc.Anular(ctx, tallerID, actor, f.ID, dto.AnularFacturaRequest{Motivo: "Amount error"})
	require.NoError(t, err)
	assert.Equal(t, "VOIDED", anulada.Estado)
	assert.Equal(t, "Amount error", anulada.MotivoAnulacion)
	assert.Equal(t, "FA-2024-000001", anulada.Numero)

	// el número anulado no se reutiliza
	siguiente := e.emitida(t)
	assert.Equal(t, "FA-2024-000002", siguiente.Numero)
}

func TestEmitir_ConcurrenteNumerosConsecutivos_EscenarioE(t *testing.T) {
	e := nuevoEntorno(t)
	e.emitida(t) // FA-2024-000001

	a, b := e.borrador(t), e.borrador(t)
	var wg sync.WaitGroup
	numeros := make([]string, 2)
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			f, err := e.uc.Emitir(ctx, tallerID, actor, id)
			errs[i] = err
			if err == nil {
				numeros[i] = f.Numero
			}
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	sort.Strings(numeros)
	assert.Equal(t, []string{"FA-2024-000002", "FA-2024-000003"}, numeros)
}

func TestEmitir_ConcurrenteSinHuecosNiDuplicados(t *testing.T) {
	e := nuevoEntorno(t)
	const n = 25
	ids := make([]string, n)
	for i := range ids {
		ids[i] = e.borrador(t).ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	vistos := make(map[string]bool)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			f, err := e.uc.Emitir(ctx, tallerID, actor, id)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			vistos[f.Numero] = true
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	require.Len(t, vistos, n, "sin duplicados")
	for i := 1; i <= n; i++ {
		assert.True(t, vistos[fmt.Sprintf("FA-2024-%06d", i)], "secuencia contigua: falta %d", i)
	}
}

func TestEmitir_FalloDelAllocatorDejaBorradorSinNumero(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.borrador(t)
	e.facturas.fallarSec = domain.Internal("siguiente número", errors.New("timeout"))

	_, err := e.uc.Emitir(ctx, tallerID, actor, f.ID)
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, 1, e.metricas.fallidas["interno"])

	leida, err := e.uc.Obtener(ctx, tallerID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", leida.Estado)
	assert.Empty(t, leida.Numero)

	// reintento: no quedó hueco en la secuencia
	e.facturas.fallarSec = nil
	ok, err := e.uc.Emitir(ctx, tallerID, actor, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "FA-2024-000001", ok.Numero)
}

func TestEmitir_NIFInvalidoFallaSinConsumirNumero(t *testing.T) {
	e := nuevoEntorno(t)
	f, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteLegado, Lineas: lineasEscenarioA()})
	require.NoError(t, err)

	_, err = e.uc.Emitir(ctx, tallerID, actor, f.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, e.facturas.reservas)
	assert.Equal(t, 1, e.metricas.fallidas["nif"])
}

func TestEmitir_SimplificadaSinNIF(t *testing.T) {
	e := nuevoEntorno(t)
	f, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{
		ClienteID: clienteTicket, Tipo: "SIMPLIFICADA", Lineas: lineasEscenarioA(),
	})
	require.NoError(t, err)

	em, err := e.uc.Emitir(ctx, tallerID, actor, f.ID)
	require.NoError(t, err)
	assert.Empty(t, em.NIFCliente)

	normal, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteTicket, Lineas: lineasEscenarioA()})
	require.NoError(t, err)
	_, err = e.uc.Emitir(ctx, tallerID, actor, normal.ID)
	assert.ErrorIs(t, err, domain.ErrValidation, "una factura completa exige NIF")
}

func TestEmitir_SinLineasNoConsumeNumero(t *testing.T) {
	e := nuevoEntorno(t)
	f, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID})
	require.NoError(t, err)

	_, err = e.uc.Emitir(ctx, tallerID, actor, f.ID)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.Zero(t, e.facturas.reservas)
}

func TestEmitir_AisladoPorTaller(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.borrador(t)

	_, err := e.uc.Emitir(ctx, otroTallerID, actor, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.uc.Obtener(ctx, otroTallerID, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmitir_SecuenciaPorSerieYAnio(t *testing.T) {
	e := nuevoEntorno(t)
	assert.Equal(t, "FA-2024-000001", e.emitida(t).Numero)

	r, err := e.uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID, Serie: "r", Tipo: "RECTIFICATIVA", Lineas: lineasEscenarioA()})
	require.NoError(t, err)
	em, err := e.uc.Emitir(ctx, tallerID, actor, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "R-2024-000001", em.Numero)

	e.ahora = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "FA-2025-000001", e.emitida(t).Numero, "cada año reinicia la secuencia")
}

func TestEmitir_IDMalFormado(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.uc.Emitir(ctx, tallerID, actor, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── Cobro e informe externo ──────────────────────────────────────────────────

func TestMarcarPagada(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.uc.MarcarPagada(ctx, tallerID, actor, e.borrador(t).ID)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	f := e.emitida(t)
	p, err := e.uc.MarcarPagada(ctx, tallerID, actor, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", p.Estado)
}

func TestActualizarInformeExterno(t *testing.T) {
	e := nuevoEntorno(t)
	in := dto.InformeExternoRequest{ID: "VF-1", URL: "https://example.org/VF-1", Estado: "SIGNED"}

	_, err := e.uc.ActualizarInformeExterno(ctx, tallerID, e.borrador(t).ID, in)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	f := e.emitida(t)
	upd, err := e.uc.ActualizarInformeExterno(ctx, tallerID, f.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "SIGNED", upd.Informe.Estado)
	assert.Equal(t, "VF-1", upd.Informe.ID)

	_, err = e.uc.ActualizarInformeExterno(ctx, tallerID, f.ID, dto.InformeExternoRequest{Estado: "DONE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestObtenerPorNumero(t *testing.T) {
	e := nuevoEntorno(t)
	f := e.emitida(t)

	leida, err := e.uc.ObtenerPorNumero(ctx, tallerID, "fa-2024-000001")
	require.NoError(t, err)
	assert.Equal(t, f.ID, leida.ID)

	_, err = e.uc.ObtenerPorNumero(ctx, tallerID, "FA-2024-1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.uc.ObtenerPorNumero(ctx, tallerID, "FA-2024-000002")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.uc.ObtenerPorNumero(ctx, otroTallerID, "FA-2024-000001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListar_FiltrosYPaginacion(t *testing.T) {
	e := nuevoEntorno(t)
	e.borrador(t)
	e.emitida(t)
	e.emitida(t)

	todas, err := e.uc.Listar(ctx, tallerID, dto.FiltroFacturasRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, todas.Page.Total)
	assert.Equal(t, dto.LimitePorDefecto, todas.Page.Limit)

	emitidas, err := e.uc.Listar(ctx, tallerID, dto.FiltroFacturasRequest{Estado: "ISSUED", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, emitidas.Page.Total)
	assert.Len(t, emitidas.Items, 1)

	e.ahora = e.ahora.AddDate(0, 2, 0)
	vencidas, err := e.uc.Listar(ctx, tallerID, dto.FiltroFacturasRequest{Estado: "OVERDUE"})
	require.NoError(t, err)
	assert.Equal(t, 2, vencidas.Page.Total)
	for _, f := range vencidas.Items {
		assert.True(t, f.Vencida)
		assert.Equal(t, "ISSUED", f.Estado, "vencida es un estado calculado")
	}

	_, err = e.uc.Listar(ctx, tallerID, dto.FiltroFacturasRequest{Estado: "LATE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.uc.Listar(ctx, tallerID, dto.FiltroFacturasRequest{Desde: "2024-05-01", Hasta: "2024-04-01"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestContarPorEstado_UsaCacheEInvalida(t *testing.T) {
	e := nuevoEntorno(t)
	e.borrador(t)
	f := e.emitida(t)

	r, err := e.uc.ContarPorEstado(ctx, tallerID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.PorEstado["DRAFT"])
	assert.Equal(t, 1, r.PorEstado["ISSUED"])
	assert.Equal(t, 0, r.PorEstado["OVERDUE"])
	_, _, cacheado, _ := e.cache.Obtener(ctx, tallerID)
	assert.True(t, cacheado)

	_, err = e.uc.MarcarPagada(ctx, tallerID, actor, f.ID)
	require.NoError(t, err)
	_, _, cacheado, _ = e.cache.Obtener(ctx, tallerID)
	assert.False(t, cacheado, "cada transición invalida el resumen")

	r, err = e.uc.ContarPorEstado(ctx, tallerID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.PorEstado["ISSUED"])
	assert.Equal(t, 1, r.PorEstado["PAID"])
}

func TestContarPorEstado_EscrituraConcurrenteNoDejaResumenViejo(t *testing.T) {
	e := nuevoEntorno(t)
	e.borrador(t)
	uc := billing.NewFacturaUseCase(escrituraDuranteConteo{memFacturas: e.facturas, cache: e.cache}, e.clientes, e.ordenes, nil,
		billing.Config{SerieDefecto: "FA"}, logger.Nop()).ConCache(e.cache)

	r, err := uc.ContarPorEstado(ctx, tallerID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.PorEstado["DRAFT"])

	_, _, cacheado, _ := e.cache.Obtener(ctx, tallerID)
	assert.False(t, cacheado, "el conteo leído antes de la invalidación no se sirve desde caché")
}

// ── Series ────────────────────────────────────────────────────────────────────

func TestSeries_ConfiguradasPorTaller(t *testing.T) {
	e := nuevoEntorno(t)
	series := &memSeries{items: []*entity.SerieFacturacion{
		{TallerID: tallerID, Codigo: "T", Tipo: entity.TipoSimplificada, Predetermina: true, Activa: true},
		{TallerID: tallerID, Codigo: "OLD", Activa: false},
	}}
	uc := billing.NewFacturaUseCase(e.facturas, e.clientes, e.ordenes, series, billing.Config{}, logger.Nop()).
		ConReloj(func() time.Time { return e.ahora })

	f, err := uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID})
	require.NoError(t, err)
	assert.Equal(t, "T", f.Serie, "serie predeterminada del taller")
	assert.Equal(t, "SIMPLIFICADA", f.Tipo, "tipo heredado de la serie")

	_, err = uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID, Serie: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation, "serie no configurada")

	_, err = uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID, Serie: "OLD"})
	assert.ErrorIs(t, err, domain.ErrBusinessRule, "serie desactivada")

	fa, err := uc.CrearBorrador(ctx, tallerID, actor, dto.CrearFacturaRequest{ClienteID: clienteID, Serie: "FA"})
	require.NoError(t, err, "la serie de configuración siempre está disponible")
	assert.Equal(t, "FA", fa.Serie)
}
