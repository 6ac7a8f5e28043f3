// Package metrics expone contadores Prometheus del libro de movimientos y de la API HTTP.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

const namespace = "ledger"

var _ ledger.Metrics = (*Registry)(nil)

// Registry agrupa los colectores en un registro propio, de modo que los tests pueden
// crear uno por caso sin chocar con el registro global.
type Registry struct {
	reg *prometheus.Registry

	movementsRecorded   *prometheus.CounterVec
	movementDuration    *prometheus.HistogramVec
	movementsFailed     *prometheus.CounterVec
	idempotentReplays   prometheus.Counter
	integrityViolations prometheus.Counter

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registra todos los colectores. withRuntime añade los de proceso y runtime de Go.
func New(withRuntime bool) (*Registry, error) {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		movementsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_recorded_total",
			Help:      "Movimientos registrados, por tipo.",
		}, []string{"type"}),
		movementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "movement_duration_seconds",
			Help:      "Duración de la transacción de registro de un movimiento.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"type"}),
		movementsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_failed_total",
			Help:      "Intentos de registro rechazados, por categoría de error.",
		}, []string{"kind"}),
		idempotentReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Peticiones respondidas con un movimiento ya registrado para la misma clave.",
		}),
		integrityViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_violations_total",
			Help:      "Recursos cuyo saldo actual no coincide con la reconstrucción de su historial.",
		}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP procesadas, por código, método y ruta.",
		}, []string{"code", "method", "route"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP en segundos.",
		}, []string{"code", "method", "route"}),
	}

	cs := []prometheus.Collector{
		r.movementsRecorded,
		r.movementDuration,
		r.movementsFailed,
		r.idempotentReplays,
		r.integrityViolations,
		r.requestCount,
		r.requestDuration,
	}
	if withRuntime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("registrar colector: %w", err)
		}
	}
	return r, nil
}

func (r *Registry) MovementRecorded(t entity.MovementType, elapsed time.Duration) {
	r.movementsRecorded.WithLabelValues(string(t)).Inc()
	r.movementDuration.WithLabelValues(string(t)).Observe(elapsed.Seconds())
}

func (r *Registry) MovementFailed(kind string) {
	r.movementsFailed.WithLabelValues(kind).Inc()
}

func (r *Registry) IdempotentReplay() { r.idempotentReplays.Inc() }

func (r *Registry) IntegrityViolation() { r.integrityViolations.Inc() }

// Handler sirve el formato de exposición de Prometheus.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer permite inspeccionar el registro en tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Middleware cuenta peticiones y mide latencias. La etiqueta de ruta usa el patrón
// registrado (/api/resources/:id) y no la URL concreta, para acotar la cardinalidad.
func (r *Registry) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		route := c.Route().Path
		code := strconv.Itoa(status)
		r.requestDuration.WithLabelValues(code, c.Method(), route).Observe(time.Since(start).Seconds())
		r.requestCount.WithLabelValues(code, c.Method(), route).Inc()
		return err
	}
}
