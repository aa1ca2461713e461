package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

// Metrics contains all Prometheus metrics for the application
type Metrics struct {
	// Connection engine metrics
	CallsSent         *prometheus.CounterVec
	CallsFinished     *prometheus.CounterVec
	FramesBuffered    *prometheus.CounterVec
	FramesDiscarded   *prometheus.CounterVec
	PendingFrames     prometheus.Gauge
	ConnectionsClosed prometheus.Counter

	// Mempool metrics
	MempoolSnapshots     prometheus.Counter
	MempoolSnapshotSlot  prometheus.Gauge
	MempoolSnapshotSize  prometheus.Gauge
	MempoolTransactions  *prometheus.CounterVec
	MempoolRecordedTotal prometheus.Gauge
	MempoolErrors        *prometheus.CounterVec
}

var _ jsonrpc.Observer = (*Metrics)(nil)

// NewMetrics initializes and registers Prometheus metrics
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers Prometheus metrics with a custom registry
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		CallsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_calls_sent_total",
				Help: "The total number of requests written to the connection",
			},
			[]string{"method"},
		),
		CallsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_calls_finished_total",
				Help: "The total number of calls that left the outstanding set",
			},
			[]string{"method", "state"},
		),
		FramesBuffered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_frames_buffered_total",
				Help: "The total number of frames stored for a later awaiter",
			},
			[]string{"method", "unsolicited"},
		),
		FramesDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_frames_discarded_total",
				Help: "The total number of buffered frames dropped",
			},
			[]string{"method", "reason"},
		),
		PendingFrames: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ogmios_client_pending_frames",
			Help: "The current number of frames in the pending buffer",
		}),
		ConnectionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ogmios_client_connections_closed_total",
			Help: "The total number of connections that terminated",
		}),
		MempoolSnapshots: factory.NewCounter(prometheus.CounterOpts{
			Name: "ogmios_client_mempool_snapshots_total",
			Help: "The total number of mempool snapshots acquired",
		}),
		MempoolSnapshotSlot: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ogmios_client_mempool_snapshot_slot",
			Help: "The slot of the latest mempool snapshot",
		}),
		MempoolSnapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ogmios_client_mempool_snapshot_transactions",
			Help: "The number of transactions in the latest mempool snapshot",
		}),
		MempoolTransactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_mempool_transactions_total",
				Help: "The total number of mempool transactions observed",
			},
			[]string{"status"},
		),
		MempoolRecordedTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ogmios_client_mempool_recorded_transactions",
			Help: "The number of transactions held by the mempool recorder",
		}),
		MempoolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogmios_client_mempool_errors_total",
				Help: "The total number of failed mempool polls",
			},
			[]string{"reason"},
		),
	}
}

func (m *Metrics) CallSent(method string) {
	m.CallsSent.WithLabelValues(method).Inc()
}

func (m *Metrics) CallFinished(method string, state jsonrpc.CallState, _ error) {
	m.CallsFinished.WithLabelValues(method, state.String()).Inc()
}

func (m *Metrics) FrameBuffered(method string, unsolicited bool, depth int) {
	label := "false"
	if unsolicited {
		label = "true"
	}
	m.FramesBuffered.WithLabelValues(method, label).Inc()
	m.PendingFrames.Set(float64(depth))
}

func (m *Metrics) FrameDiscarded(method string, reason string, depth int) {
	m.FramesDiscarded.WithLabelValues(method, reason).Inc()
	m.PendingFrames.Set(float64(depth))
}

func (m *Metrics) ConnectionClosed(error) {
	m.ConnectionsClosed.Inc()
	m.PendingFrames.Set(0)
}

// RecordMetricsPeriodically refreshes the recorder gauges until ctx ends.
func (m *Metrics) RecordMetricsPeriodically(ctx context.Context, store *MempoolStore, interval time.Duration) {
	logger := log.FromContext(ctx).WithName("metrics")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.UpdateRecorderMetrics(ctx, store, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Metrics) UpdateRecorderMetrics(ctx context.Context, store *MempoolStore, logger log.Logger) {
	count, err := store.Count(ctx)
	if err != nil {
		logger.Warn("failed to count recorded transactions", "error", err)
		return
	}
	m.MempoolRecordedTotal.Set(float64(count))
}
