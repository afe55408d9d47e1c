package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/numeracion"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/repository"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// ── Facturas en memoria ───────────────────────────────────────────────────────

type registro struct {
	datos  entity.FacturaDatos
	lineas []entity.LineaDatos
}

// memFacturas simula el repositorio: guarda instantáneas y emite bajo un único mutex, que hace el
// papel del bloqueo de fila de la secuencia. El contador solo avanza si la emisión termina bien.
type memFacturas struct {
	mu         sync.Mutex
	facturas   map[string]registro
	secuencias map[repository.ClaveSecuencia]int64
	fallarSec  error // si no es nil, el allocator falla
	reservas   int   // llamadas al allocator
}

func newMemFacturas() *memFacturas {
	return &memFacturas{
		facturas:   make(map[string]registro),
		secuencias: make(map[repository.ClaveSecuencia]int64),
	}
}

func instantanea(f *entity.Factura) registro {
	r := registro{datos: f.Datos()}
	for _, l := range f.Lineas() {
		r.lineas = append(r.lineas, l.Datos())
	}
	return r
}

func (m *memFacturas) cargar(tallerID, id string) (*entity.Factura, error) {
	r, ok := m.facturas[id]
	if !ok || r.datos.TallerID != tallerID || r.datos.DeletedAt != nil {
		return nil, domain.NotFound("factura %s no encontrada", id)
	}
	return entity.ReconstruirFactura(r.datos, r.lineas)
}

func (m *memFacturas) Create(_ context.Context, f *entity.Factura) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.OrdenID() != "" {
		for _, r := range m.facturas {
			if r.datos.TallerID == f.TallerID() && r.datos.OrdenID == f.OrdenID() && r.datos.DeletedAt == nil {
				return domain.Conflict("la orden ya tiene factura")
			}
		}
	}
	m.facturas[f.ID()] = instantanea(f)
	return nil
}

func (m *memFacturas) GetByID(_ context.Context, tallerID, id string) (*entity.Factura, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cargar(tallerID, id)
}

func (m *memFacturas) GetByNumero(_ context.Context, tallerID string, n valueobject.NumeroFactura) (*entity.Factura, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.facturas {
		if r.datos.TallerID == tallerID && r.datos.Numero.Equal(n) && r.datos.DeletedAt == nil {
			return m.cargar(tallerID, id)
		}
	}
	return nil, domain.NotFound("factura %s no encontrada", n)
}

func (m *memFacturas) Update(_ context.Context, f *entity.Factura) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	actual, err := m.cargar(f.TallerID(), f.ID())
	if err != nil {
		return err
	}
	if actual.Estado() != entity.EstadoBorrador {
		return domain.BusinessRule("solo se modifican borradores")
	}
	m.facturas[f.ID()] = instantanea(f)
	return nil
}

// allocTx reserva sobre una copia pendiente que solo se confirma al final.
type allocTx struct {
	m         *memFacturas
	pendiente map[repository.ClaveSecuencia]int64
}

func (a *allocTx) Siguiente(_ context.Context, c repository.ClaveSecuencia) (int64, error) {
	a.m.reservas++
	if a.m.fallarSec != nil {
		return 0, a.m.fallarSec
	}
	n := a.m.secuencias[c] + 1
	a.pendiente[c] = n
	return n, nil
}

func (m *memFacturas) Emitir(ctx context.Context, tallerID, id string, op repository.OpcionesEmision) (*entity.Factura, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.cargar(tallerID, id)
	if err != nil {
		return nil, err
	}
	tx := &allocTx{m: m, pendiente: make(map[repository.ClaveSecuencia]int64)}
	if err := numeracion.EmitirConNumeracion(ctx, f, tx, op); err != nil {
		return nil, err // "rollback": ni factura ni contador cambian
	}
	for c, n := range tx.pendiente {
		m.secuencias[c] = n
	}
	m.facturas[id] = instantanea(f)
	return m.cargar(tallerID, id)
}

func (m *memFacturas) mutar(tallerID, id string, fn func(*entity.Factura) error) (*entity.Factura, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.cargar(tallerID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(f); err != nil {
		return nil, err
	}
	m.facturas[id] = instantanea(f)
	return f, nil
}

func (m *memFacturas) Anular(_ context.Context, tallerID, id, motivo, actor string, ahora time.Time) (*entity.Factura, error) {
	return m.mutar(tallerID, id, func(f *entity.Factura) error { return f.Anular(motivo, actor, ahora) })
}

func (m *memFacturas) MarcarPagada(_ context.Context, tallerID, id, actor string, ahora time.Time) (*entity.Factura, error) {
	return m.mutar(tallerID, id, func(f *entity.Factura) error { return f.MarcarPagada(actor, ahora) })
}

func (m *memFacturas) ActualizarInforme(_ context.Context, tallerID, id string, inf entity.InformeExterno, ahora time.Time) (*entity.Factura, error) {
	return m.mutar(tallerID, id, func(f *entity.Factura) error { return f.RegistrarInformeExterno(inf, ahora) })
}

func (m *memFacturas) Delete(_ context.Context, tallerID, id, actor string, ahora time.Time) error {
	_, err := m.mutar(tallerID, id, func(f *entity.Factura) error { return f.Eliminar(actor, ahora) })
	return err
}

func (m *memFacturas) List(_ context.Context, tallerID string, fl repository.FiltroFacturas) ([]*entity.Factura, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var todas []*entity.Factura
	for id := range m.facturas {
		f, err := m.cargar(tallerID, id)
		if err != nil {
			continue
		}
		switch {
		case fl.Estado == entity.EstadoVencida && !f.EstaVencida(fl.Ahora):
			continue
		case fl.Estado != "" && fl.Estado != entity.EstadoVencida && f.Estado() != fl.Estado:
			continue
		case fl.ClienteID != "" && f.ClienteID() != fl.ClienteID:
			continue
		case fl.Serie != "" && f.Serie().String() != fl.Serie:
			continue
		}
		todas = append(todas, f)
	}
	sort.Slice(todas, func(i, j int) bool { return todas[i].CreatedAt().After(todas[j].CreatedAt()) })
	total := len(todas)
	if fl.Offset >= total {
		return nil, total, nil
	}
	fin := fl.Offset + fl.Limit
	if fin > total {
		fin = total
	}
	return todas[fl.Offset:fin], total, nil
}

func (m *memFacturas) CountByEstado(_ context.Context, tallerID string, ahora time.Time) (map[entity.EstadoFactura]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[entity.EstadoFactura]int)
	for id := range m.facturas {
		f, err := m.cargar(tallerID, id)
		if err != nil {
			continue
		}
		out[f.Estado()]++
		if f.EstaVencida(ahora) {
			out[entity.EstadoVencida]++
		}
	}
	return out, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type memClientes struct {
	mu    sync.Mutex
	items map[string]*entity.Cliente
}

func newMemClientes(cs ...*entity.Cliente) *memClientes {
	m := &memClientes{items: make(map[string]*entity.Cliente)}
	for _, c := range cs {
		m.items[c.ID] = c
	}
	return m
}

func (m *memClientes) Create(_ context.Context, c *entity.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c
	return nil
}

func (m *memClientes) GetByID(_ context.Context, tallerID, id string) (*entity.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.TallerID != tallerID || c.Eliminado() {
		return nil, domain.NotFound("cliente %s no encontrado", id)
	}
	cp := *c
	return &cp, nil
}

func (m *memClientes) GetByNIF(_ context.Context, tallerID, nif string) (*entity.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.TallerID == tallerID && c.NIF == nif && !c.Eliminado() {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memClientes) List(_ context.Context, tallerID string, limit, offset int) ([]*entity.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Cliente
	for _, c := range m.items {
		if c.TallerID == tallerID && !c.Eliminado() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	if offset >= len(out) {
		return nil, nil
	}
	if offset+limit < len(out) {
		out = out[:offset+limit]
	}
	return out[offset:], nil
}

func (m *memClientes) Update(_ context.Context, c *entity.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c
	return nil
}

func (m *memClientes) Delete(_ context.Context, tallerID, id, actor string, ahora time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.TallerID != tallerID || c.Eliminado() {
		return domain.NotFound("cliente %s no encontrado", id)
	}
	c.DeletedAt = &ahora
	c.DeletedBy = actor
	return nil
}

// ── Órdenes ───────────────────────────────────────────────────────────────────

type memOrdenes struct {
	mu           sync.Mutex
	items        map[string]*entity.OrdenReparacion
	fallarMarcar bool
}

func (m *memOrdenes) GetByID(_ context.Context, ordenID, tallerID string) (*entity.OrdenReparacion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[ordenID]
	if !ok || o.TallerID != tallerID {
		return nil, domain.NotFound("orden %s no encontrada", ordenID)
	}
	cp := *o
	return &cp, nil
}

func (m *memOrdenes) MarcarFacturada(_ context.Context, ordenID, tallerID, facturaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallarMarcar {
		return errors.New("servicio de órdenes caído")
	}
	o, ok := m.items[ordenID]
	if !ok || o.TallerID != tallerID {
		return domain.NotFound("orden %s no encontrada", ordenID)
	}
	o.FacturaID = facturaID
	return nil
}

func (m *memOrdenes) DesmarcarFacturada(_ context.Context, ordenID, tallerID, facturaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.items[ordenID]; ok && o.TallerID == tallerID && o.FacturaID == facturaID {
		o.FacturaID = ""
	}
	return nil
}

// ── Series ────────────────────────────────────────────────────────────────────

type memSeries struct {
	items []*entity.SerieFacturacion
}

func (m *memSeries) Create(_ context.Context, s *entity.SerieFacturacion) error {
	m.items = append(m.items, s)
	return nil
}

func (m *memSeries) GetByCodigo(_ context.Context, tallerID, codigo string) (*entity.SerieFacturacion, error) {
	for _, s := range m.items {
		if s.TallerID == tallerID && s.Codigo == codigo {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSeries) GetPredeterminada(_ context.Context, tallerID string) (*entity.SerieFacturacion, error) {
	for _, s := range m.items {
		if s.TallerID == tallerID && s.Predetermina {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSeries) ListByTaller(_ context.Context, tallerID string) ([]*entity.SerieFacturacion, error) {
	var out []*entity.SerieFacturacion
	for _, s := range m.items {
		if s.TallerID == tallerID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ── Caché y métricas ──────────────────────────────────────────────────────────

type memCache struct {
	mu          sync.Mutex
	datos       map[string]map[entity.EstadoFactura]int
	generacion  map[string]int64
	invalidadas int
}

func newMemCache() *memCache {
	return &memCache{datos: make(map[string]map[entity.EstadoFactura]int), generacion: make(map[string]int64)}
}

func claveMem(tallerID string, gen int64) string { return fmt.Sprintf("%s:%d", tallerID, gen) }

func (c *memCache) Obtener(_ context.Context, tallerID string) (map[entity.EstadoFactura]int, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generacion[tallerID]
	v, ok := c.datos[claveMem(tallerID, gen)]
	return v, gen, ok, nil
}

func (c *memCache) Guardar(_ context.Context, tallerID string, gen int64, conteo map[entity.EstadoFactura]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datos[claveMem(tallerID, gen)] = conteo
	return nil
}

func (c *memCache) Invalidar(_ context.Context, tallerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generacion[tallerID]++
	c.invalidadas++
	return nil
}

// escrituraDuranteConteo simula otra petición que modifica facturas justo después de que
// el resumen se haya leído de la base de datos y antes de guardarlo en caché.
type escrituraDuranteConteo struct {
	*memFacturas
	cache *memCache
}

func (e escrituraDuranteConteo) CountByEstado(ctx context.Context, tallerID string, ahora time.Time) (map[entity.EstadoFactura]int, error) {
	conteo, err := e.memFacturas.CountByEstado(ctx, tallerID, ahora)
	if err != nil {
		return nil, err
	}
	return conteo, e.cache.Invalidar(ctx, tallerID)
}

type memMetricas struct {
	mu           sync.Mutex
	emitidas     map[string]int
	fallidas     map[string]int
	transiciones map[entity.EstadoFactura]int
}

func newMemMetricas() *memMetricas {
	return &memMetricas{
		emitidas:     make(map[string]int),
		fallidas:     make(map[string]int),
		transiciones: make(map[entity.EstadoFactura]int),
	}
}

func (m *memMetricas) EmisionCompletada(serie string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitidas[serie]++
}

func (m *memMetricas) EmisionFallida(motivo string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallidas[motivo]++
}

func (m *memMetricas) Transicion(e entity.EstadoFactura) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transiciones[e]++
}
