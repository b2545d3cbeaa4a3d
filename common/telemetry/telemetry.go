package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/promptmyrep/civic/common/logger"
)

// Outcome labels for directory lookups
const (
	OutcomeFound    = "found"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

// Telemetry holds observability components
type Telemetry struct {
	log         *logger.Logger
	registry    *prometheus.Registry
	pprofAddr   string
	metricsAddr string
	servers     []*http.Server

	lookupOutcomes   *prometheus.CounterVec
	adapterEnabled   *prometheus.GaugeVec
	generations      *prometheus.CounterVec
	operationSeconds *prometheus.HistogramVec
	runtimeInfo      *prometheus.GaugeVec
}

// New creates telemetry components with a private registry
func New(pprofPort, metricsPort int, log *logger.Logger) *Telemetry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	t := &Telemetry{
		log:         log,
		registry:    reg,
		pprofAddr:   fmt.Sprintf("localhost:%d", pprofPort),
		metricsAddr: fmt.Sprintf(":%d", metricsPort),
		lookupOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_office_lookup_total",
			Help: "Office lookups by office type and outcome.",
		}, []string{"office", "outcome"}),
		adapterEnabled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "civic_directory_adapter_enabled",
			Help: "1 when the directory adapter has credentials, 0 when disabled.",
		}, []string{"adapter"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_generation_total",
			Help: "Text generation attempts by model and outcome.",
		}, []string{"model", "outcome"}),
		operationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_operation_duration_seconds",
			Help:    "Duration of named operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		runtimeInfo: prometheus.NewGaugeVec(runtimeInfoOpts, []string{"service", "go_version", "os", "arch", "container"}),
	}

	reg.MustRegister(t.lookupOutcomes, t.adapterEnabled, t.generations, t.operationSeconds, t.runtimeInfo)
	return t
}

// Start starts the metrics endpoint and, when enabled, pprof
func (t *Telemetry) Start(ctx context.Context, enablePprof, enableMetrics bool) error {
	if enableMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
		t.serve("metrics", t.metricsAddr, mux)
	}

	if enablePprof {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		t.serve("pprof", t.pprofAddr, mux)
	}

	return nil
}

func (t *Telemetry) serve(name, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	t.servers = append(t.servers, srv)

	go func() {
		t.log.Info(name+" server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error(name+" server error", "error", err)
		}
	}()
}

// Close stops the telemetry servers
func (t *Telemetry) Close(ctx context.Context) error {
	var errs []error
	for _, srv := range t.servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Registry exposes the registry for tests and extra collectors
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// RecordLookup counts one office lookup outcome
func (t *Telemetry) RecordLookup(office, outcome string) {
	if t == nil {
		return
	}
	t.lookupOutcomes.WithLabelValues(office, outcome).Inc()
}

// SetAdapterEnabled records whether a directory adapter is usable
func (t *Telemetry) SetAdapterEnabled(adapter string, enabled bool) {
	if t == nil {
		return
	}
	v := 0.0
	if enabled {
		v = 1
	}
	t.adapterEnabled.WithLabelValues(adapter).Set(v)
}

// RecordGeneration counts one generation attempt
func (t *Telemetry) RecordGeneration(model, outcome string) {
	if t == nil {
		return
	}
	t.generations.WithLabelValues(model, outcome).Inc()
}

// RecordDuration records operation duration
func (t *Telemetry) RecordDuration(operation string, start time.Time) {
	if t == nil {
		return
	}
	duration := time.Since(start)
	t.operationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
	t.log.Debug("operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
}
