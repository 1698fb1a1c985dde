// Package metrics exposes Prometheus collectors for upload runs.
// Collectors live on a private registry so tests and embedders never clash
// with the global one.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/feedupload/internal/logging"
	"github.com/dmitrijs2005/feedupload/internal/pipeline"
)

const namespace = "feedupload"

// Metrics holds every collector of the tool.
type Metrics struct {
	reg *prometheus.Registry

	filesTotal   *prometheus.CounterVec
	bytesTotal   prometheus.Counter
	retriesTotal prometheus.Counter
	callsTotal   *prometheus.CounterVec
	fileDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	m := &Metrics{
		reg: reg,
		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Processed files by outcome.",
		}, []string{"outcome"}),
		bytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_uploaded_total",
			Help:      "Bytes accepted by object storage.",
		}),
		retriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_retries_total",
			Help:      "Transfer attempts repeated after a transient failure.",
		}),
		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Feed service calls by operation and result.",
		}, []string{"op", "result"}),
		fileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Wall time spent on one file, from size check to relocation.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
		}),
	}

	for _, o := range pipeline.Outcomes() {
		m.filesTotal.WithLabelValues(o.String())
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveCall counts one feed service call. It matches feed.Observer.
func (m *Metrics) ObserveCall(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.callsTotal.WithLabelValues(op, result).Inc()
}

// ObserveRetry counts one repeated transfer attempt. It matches
// transfer.RetryFunc.
func (m *Metrics) ObserveRetry(int, time.Duration) {
	m.retriesTotal.Inc()
}

// Record implements pipeline.Recorder.
func (m *Metrics) Record(_ context.Context, r pipeline.Result) {
	m.filesTotal.WithLabelValues(r.Outcome.String()).Inc()
	if r.Uploaded > 0 {
		m.bytesTotal.Add(float64(r.Uploaded))
	}
	if d := r.Duration(); d > 0 {
		m.fileDuration.Observe(d.Seconds())
	}
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
