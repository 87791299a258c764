// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package collapsemetrics is an optional Prometheus exporter for the
// parallel collapse path (SPEC_FULL.md §2): distinct stacks per chunk,
// chunks completed, chunk duration, and worker count, purely for observing
// a long-running collapse of a multi-GB trace. It is grounded in the
// teacher's cmd/metrics/metrics_server.go, which serves a client_golang
// registry over HTTP alongside the primary collection loop; this package
// is the same pattern scoped down to four collectors instead of a full
// metric catalog.
package collapsemetrics

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter serves the parallel collapse path's gauges on an HTTP
// listener, mirroring metrics_server.go's ListenAndServe/Shutdown
// lifecycle.
type Exporter struct {
	registry *prometheus.Registry
	srv      *http.Server

	RecordsProcessed prometheus.Counter
	ChunksCompleted  prometheus.Counter
	ChunkDuration    prometheus.Histogram
	WorkerCount      prometheus.Gauge
}

// New builds an Exporter with a fresh registry; it does not start
// listening until Serve is called.
func New() *Exporter {
	reg := prometheus.NewRegistry()
	e := &Exporter{
		registry: reg,
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flamefold_collapse_records_processed_total",
			Help: "Distinct stacks per parsed chunk, summed over all chunks.",
		}),
		ChunksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flamefold_collapse_chunks_completed_total",
			Help: "Input chunks parsed to completion by collapse workers.",
		}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flamefold_collapse_chunk_duration_seconds",
			Help:    "Wall time a worker spends parsing one chunk.",
			Buckets: prometheus.DefBuckets,
		}),
		WorkerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flamefold_collapse_workers",
			Help: "Number of worker goroutines in the current parallel collapse.",
		}),
	}
	reg.MustRegister(e.RecordsProcessed, e.ChunksCompleted, e.ChunkDuration, e.WorkerCount)
	return e
}

// Serve starts serving /metrics on addr in the background, logging and
// returning once the listener is bound (or failing to bind).
func (e *Exporter) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	e.srv = &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		slog.Info("collapsemetrics: serving", "addr", addr)
		if err := e.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("collapsemetrics: server exited", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the exporter's listener, if one was started.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.srv == nil {
		return nil
	}
	return e.srv.Shutdown(ctx)
}

// Workers implements collapse.Observer.
func (e *Exporter) Workers(n int) {
	e.WorkerCount.Set(float64(n))
}

// ChunkDone implements collapse.Observer: one call per parsed chunk,
// from whichever worker finished it.
func (e *Exporter) ChunkDone(stacks int, elapsed time.Duration) {
	e.RecordsProcessed.Add(float64(stacks))
	e.ChunkDuration.Observe(elapsed.Seconds())
	e.ChunksCompleted.Inc()
}
