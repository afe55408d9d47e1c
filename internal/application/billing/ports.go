package billing

import (
	"context"
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
)

// ResumenCache guarda el recuento de facturas por estado de cada taller.
// Cualquier mutación de facturas del taller debe invalidarlo. Obtener devuelve la generación
// vigente y Guardar solo es visible si nadie invalidó desde entonces.
type ResumenCache interface {
	Obtener(ctx context.Context, tallerID string) (map[entity.EstadoFactura]int, int64, bool, error)
	Guardar(ctx context.Context, tallerID string, generacion int64, conteo map[entity.EstadoFactura]int) error
	Invalidar(ctx context.Context, tallerID string) error
}

// Metricas registra la actividad de facturación.
type Metricas interface {
	EmisionCompletada(serie string, duracion time.Duration)
	EmisionFallida(motivo string)
	Transicion(estado entity.EstadoFactura)
}

// Config parámetros de facturación del taller.
type Config struct {
	SerieDefecto    string         // serie cuando ni la petición ni el taller indican otra (FA)
	DiasVencimiento int            // vencimiento por defecto desde la emisión
	IVADefecto      int            // IVA de las líneas de orden sin tipo explícito
	Zona            *time.Location // zona horaria fiscal (año de numeración y fechas)
}

func (c Config) conDefectos() Config {
	if c.SerieDefecto == "" {
		c.SerieDefecto = "FA"
	}
	if c.DiasVencimiento <= 0 {
		c.DiasVencimiento = 30
	}
	if !entity.IVAValido(c.IVADefecto) || c.IVADefecto == 0 {
		c.IVADefecto = 21
	}
	if c.Zona == nil {
		c.Zona = time.UTC
	}
	return c
}

// sinCache y sinMetricas permiten construir el caso de uso sin dependencias opcionales.
type sinCache struct{}

func (sinCache) Obtener(context.Context, string) (map[entity.EstadoFactura]int, int64, bool, error) {
	return nil, 0, false, nil
}
func (sinCache) Guardar(context.Context, string, int64, map[entity.EstadoFactura]int) error {
	return nil
}
func (sinCache) Invalidar(context.Context, string) error { return nil }

type sinMetricas struct{}

func (sinMetricas) EmisionCompletada(string, time.Duration) {}
func (sinMetricas) EmisionFallida(string)                   {}
func (sinMetricas) Transicion(entity.EstadoFactura)         {}
