// Package metrics expone las métricas del motor de movimientos en formato Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const namespace = "stock_ledger"

var _ inventory.Metrics = (*Recorder)(nil)

// Recorder implementa inventory.Metrics sobre un registro propio (no el global),
// así cada instancia de la app y cada test arranca de cero.
type Recorder struct {
	registry *prometheus.Registry
	recorded *prometheus.CounterVec
	units    *prometheus.CounterVec
	rejected *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewRecorder registra los colectores del ledger y los del runtime de Go.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_recorded_total",
			Help:      "Movimientos aceptados y agregados al ledger.",
		}, []string{"type"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movement_units_total",
			Help:      "Unidades movidas por movimientos aceptados.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_rejected_total",
			Help:      "Movimientos rechazados por motivo.",
		}, []string{"reason"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_movement_duration_seconds",
			Help:      "Duración de RecordMovement, incluida la espera por el bloqueo del producto.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	r.registry.MustRegister(
		r.recorded, r.units, r.rejected, r.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// MovementRecorded cuenta un movimiento aceptado.
func (r *Recorder) MovementRecorded(t entity.MovementType, quantity int) {
	r.recorded.WithLabelValues(string(t)).Inc()
	r.units.WithLabelValues(string(t)).Add(float64(quantity))
}

// MovementRejected cuenta un rechazo.
func (r *Recorder) MovementRejected(reason string) {
	r.rejected.WithLabelValues(reason).Inc()
}

// ObserveLatency registra la duración de un intento.
func (r *Recorder) ObserveLatency(d time.Duration) {
	r.latency.Observe(d.Seconds())
}

// Registry registro subyacente, para añadir colectores propios.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler sirve /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
