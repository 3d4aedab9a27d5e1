package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"payments_engine/internal/domain"
	"payments_engine/internal/ledger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry           *prometheus.Registry
	recordsRead        prometheus.Counter
	recordsRejected    *prometheus.CounterVec
	transactionsOK     *prometheus.CounterVec
	transactionsFailed *prometheus.CounterVec
	applyDuration      prometheus.Histogram
	accounts           prometheus.Gauge
	frozenAccounts     prometheus.Gauge
	logger             *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		recordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_records_read_total",
			Help: "Total number of input records read",
		}),
		recordsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_records_rejected_total",
			Help: "Input records rejected before reaching the ledger",
		}, []string{"reason"}),
		transactionsOK: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_applied_total",
			Help: "Transactions applied to an account",
		}, []string{"type"}),
		transactionsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_failed_total",
			Help: "Transactions refused by an account",
		}, []string{"type", "error"}),
		applyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_apply_duration_seconds",
			Help:    "Time taken to apply one transaction",
			Buckets: []float64{1e-7, 1e-6, 1e-5, 1e-4, 1e-3, 1e-2},
		}),
		accounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts",
			Help: "Accounts in the final snapshot",
		}),
		frozenAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_frozen_accounts",
			Help: "Frozen accounts in the final snapshot",
		}),
		logger: logger,
	}
}

func (m *MetricsCollector) RecordRead() {
	m.recordsRead.Inc()
}

func (m *MetricsCollector) RecordRejected(reason string) {
	m.recordsRejected.WithLabelValues(reason).Inc()
}

// RecordApplied counts the outcome of one transaction. err is nil on success.
func (m *MetricsCollector) RecordApplied(kind domain.TransactionKind, duration time.Duration, err error) {
	m.applyDuration.Observe(duration.Seconds())

	if err == nil {
		m.transactionsOK.WithLabelValues(string(kind)).Inc()
		return
	}
	m.transactionsFailed.WithLabelValues(string(kind), ErrorLabel(err)).Inc()
}

func (m *MetricsCollector) RecordSnapshot(snapshots []ledger.AccountSnapshot) {
	var frozen int
	for _, s := range snapshots {
		if s.Locked {
			frozen++
		}
	}
	m.accounts.Set(float64(len(snapshots)))
	m.frozenAccounts.Set(float64(frozen))
}

// ErrorLabel maps an account error to a bounded label value.
func ErrorLabel(err error) string {
	var txErr domain.TransactionError
	if !errors.As(err, &txErr) {
		return "other"
	}

	switch txErr {
	case domain.ErrAccountFrozen:
		return "account_frozen"
	case domain.ErrInsufficientFunds:
		return "insufficient_funds"
	case domain.ErrNonexistentTransaction:
		return "nonexistent_transaction"
	case domain.ErrNotSettled:
		return "not_settled"
	case domain.ErrNotDisputed:
		return "not_disputed"
	default:
		return "other"
	}
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context, server *http.Server) error {
	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	m.logger.Info("Metrics server shutdown complete")
	return nil
}
