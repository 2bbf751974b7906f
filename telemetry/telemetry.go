package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	prometheusMetrics "github.com/armon/go-metrics/prometheus"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

const serviceName = "nft_bridge"

type TelemetryConfig struct {
	PrometheusAddr string `json:"prometheusAddr"` // empty means disabled otherwise something like 0.0.0.0:5001
	DataDogAddr    string `json:"dataDogAddr"`    // empty means disabled otherwise something like localhost:8126
	// in-memory aggregation interval in seconds
	PullTime uint `json:"pullTime" default:"10"`
}

func (c TelemetryConfig) IsEnabled() bool {
	return c.DataDogAddr != "" || c.PrometheusAddr != ""
}

type Telemetry struct {
	prometheusServer *http.Server
	config           TelemetryConfig
	logger           hclog.Logger
}

func NewTelemetry(config TelemetryConfig, logger hclog.Logger) *Telemetry {
	return &Telemetry{
		config: config,
		logger: logger,
	}
}

func (t *Telemetry) Start() error {
	if !t.config.IsEnabled() {
		return nil
	}

	if err := setupMetrics(t.config.PullTime); err != nil {
		return fmt.Errorf("could not setup metrics sink: %w", err)
	}

	if t.config.DataDogAddr != "" {
		if err := t.startDataDog(); err != nil {
			return err
		}
	}

	if t.config.PrometheusAddr != "" {
		t.prometheusServer = newPrometheusServer(t.config.PrometheusAddr)

		go t.startPrometheus()
	}

	return nil
}

func (t *Telemetry) Close(ctx context.Context) error {
	if t.prometheusServer != nil {
		t.logger.Info("Prometheus server stopping", "addr", t.prometheusServer.Addr)

		if err := t.prometheusServer.Shutdown(ctx); err != nil {
			return err
		}
	}

	if t.config.DataDogAddr != "" {
		profiler.Stop()
		tracer.Stop()
	}

	return nil
}

func (t *Telemetry) IsEnabled() bool {
	return t.config.IsEnabled()
}

func (t *Telemetry) startPrometheus() {
	t.logger.Info("Prometheus server started", "addr", t.config.PrometheusAddr)

	if err := t.prometheusServer.ListenAndServe(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("Prometheus server ListenAndServe error", "err", err)
		}
	}
}

func (t *Telemetry) startDataDog() error {
	err := profiler.Start(
		profiler.WithService(serviceName),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			profiler.GoroutineProfile,
		),
		profiler.WithAgentAddr(t.config.DataDogAddr),
	)
	if err != nil {
		return fmt.Errorf("could not start datadog profiler: %w", err)
	}

	tracer.Start(tracer.WithService(serviceName), tracer.WithAgentAddr(t.config.DataDogAddr))

	t.logger.Info("DataDog profiler started", "addr", t.config.DataDogAddr)

	return nil
}

// StartSpan opens a DataDog span. It is a no-op span when the tracer is not started.
func StartSpan(ctx context.Context, operation string, tags map[string]string) (tracer.Span, context.Context) {
	opts := make([]tracer.StartSpanOption, 0, len(tags))
	for k, v := range tags {
		opts = append(opts, tracer.Tag(k, v))
	}

	return tracer.StartSpanFromContext(ctx, operation, opts...)
}

func setupMetrics(pullTime uint) error {
	if pullTime == 0 {
		pullTime = 10
	}

	inm := metrics.NewInmemSink(time.Duration(pullTime)*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	promSink, err := prometheusMetrics.NewPrometheusSinkFrom(prometheusMetrics.PrometheusOpts{
		Name:       serviceName + "_prometheus_sink",
		Expiration: 0,
	})
	if err != nil {
		return err
	}

	metricsConf := metrics.DefaultConfig(serviceName)
	metricsConf.EnableHostname = false

	_, err = metrics.NewGlobal(metricsConf, metrics.FanoutSink{
		inm, promSink,
	})

	return err
}

func newPrometheusServer(prometheusAddr string) *http.Server {
	return &http.Server{
		Addr: prometheusAddr,
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{},
			),
		),
		ReadHeaderTimeout: 60 * time.Second,
	}
}
