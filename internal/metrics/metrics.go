package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dealfuze"

// Metricas del motor de matching.
var (
	MatchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_runs_total",
			Help:      "Total de corridas de matching",
		},
		[]string{"opposite_kind", "status"},
	)

	MatchRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_run_duration_seconds",
			Help:      "Duracion de una corrida de matching",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"opposite_kind"},
	)

	// MatchCandidatesTotal cuenta candidatos por etapa: pool, shortlist,
	// eligible (pasan el filtro duro) y scored.
	MatchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_candidates_total",
			Help:      "Candidatos procesados por etapa",
		},
		[]string{"stage"},
	)

	PersonalityProfileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "personality_profile_total",
			Help:      "Pares con y sin perfiles de personalidad",
		},
		[]string{"result"}, // "present" / "missing"
	)

	CriteriaValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "criteria_validations_total",
			Help:      "Validaciones de criterios por resultado",
		},
		[]string{"result"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duracion de requests HTTP",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de requests HTTP",
		},
		[]string{"method", "path", "status"},
	)
)

var registerOnce sync.Once

// Register registra las metricas en el registry por defecto. Se puede llamar
// mas de una vez.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MatchRunsTotal,
			MatchRunDuration,
			MatchCandidatesTotal,
			PersonalityProfileTotal,
			CriteriaValidationsTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}

// GinMiddleware registra duracion y cantidad de requests por ruta.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}
