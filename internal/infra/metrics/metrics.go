package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	AggregationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aggregation_seconds",
		Help:    "Время расчёта представления",
		Buckets: prometheus.DefBuckets,
	}, []string{"component"})

	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_errors_total",
		Help: "Ошибки загрузки исходных записей",
	}, []string{"source"})

	StaleResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_stale_results_total",
		Help: "Результаты, отброшенные из-за более нового запроса",
	}, []string{"view"})

	ExportReports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_reports_total",
		Help: "Выгрузки отчётов аналитики",
	}, []string{"backend", "status"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		AggregationSeconds,
		FetchErrors,
		StaleResults,
		ExportReports,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveAggregation записывает время расчёта представления.
func ObserveAggregation(component string, start time.Time) {
	AggregationSeconds.WithLabelValues(component).Observe(time.Since(start).Seconds())
}

// IncFetchError увеличивает счётчик ошибок загрузки.
func IncFetchError(source string) {
	FetchErrors.WithLabelValues(source).Inc()
}

// IncStale увеличивает счётчик отброшенных результатов.
func IncStale(view string) {
	StaleResults.WithLabelValues(view).Inc()
}

// IncExport увеличивает счётчик выгрузок.
func IncExport(backend string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExportReports.WithLabelValues(backend, status).Inc()
}
