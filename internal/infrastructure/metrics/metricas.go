package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
)

// Metricas colectores Prometheus de la facturación.
type Metricas struct {
	emitidas     *prometheus.CounterVec
	fallidas     *prometheus.CounterVec
	duracion     *prometheus.HistogramVec
	transiciones *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultMetricas *Metricas
)

// NewMetricas registra los colectores en registerer. Con nil usa el registro por defecto.
func NewMetricas(registerer prometheus.Registerer) *Metricas {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetricas = buildMetricas(prometheus.DefaultRegisterer)
		})
		return defaultMetricas
	}
	return buildMetricas(registerer)
}

func buildMetricas(registerer prometheus.Registerer) *Metricas {
	emitidas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_facturas_emitidas_total",
		Help: "Facturas emitidas por serie.",
	}, []string{"serie"})
	fallidas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_facturas_emision_fallida_total",
		Help: "Emisiones rechazadas o fallidas por motivo.",
	}, []string{"motivo"})
	duracion := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taller_factura_emision_duracion_seconds",
		Help:    "Duración de la emisión, incluida la reserva del número.",
		Buckets: prometheus.DefBuckets,
	}, []string{"serie"})
	transiciones := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_facturas_transiciones_total",
		Help: "Cambios de estado de facturas por estado destino.",
	}, []string{"estado"})
	registerer.MustRegister(emitidas, fallidas, duracion, transiciones)
	return &Metricas{emitidas: emitidas, fallidas: fallidas, duracion: duracion, transiciones: transiciones}
}

// EmisionCompletada cuenta una emisión y observa su duración.
func (m *Metricas) EmisionCompletada(serie string, duracion time.Duration) {
	if m == nil {
		return
	}
	m.emitidas.WithLabelValues(serie).Inc()
	m.duracion.WithLabelValues(serie).Observe(duracion.Seconds())
}

func (m *Metricas) EmisionFallida(motivo string) {
	if m == nil {
		return
	}
	m.fallidas.WithLabelValues(motivo).Inc()
}

func (m *Metricas) Transicion(estado entity.EstadoFactura) {
	if m == nil {
		return
	}
	m.transiciones.WithLabelValues(string(estado)).Inc()
}
