package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"payments_engine/internal/csvio"
	"payments_engine/internal/ledger"
	"payments_engine/pkg/metrics"
	"payments_engine/pkg/validator"

	"github.com/google/uuid"
)

// Summary counts what happened to the records of one run.
type Summary struct {
	Read     int64
	Rejected int64
	Applied  int64
	Failed   int64
}

// TransactionProcessor feeds CSV records into a ledger. Bad records and
// refused transactions are logged and skipped; they never stop the run.
type TransactionProcessor struct {
	ledger    *ledger.Sharded
	validator *validator.RecordValidator
	metrics   *metrics.MetricsCollector
	logger    *slog.Logger
}

func NewTransactionProcessor(
	l *ledger.Sharded,
	metricsCollector *metrics.MetricsCollector,
	logger *slog.Logger,
) *TransactionProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NewMetricsCollector(logger)
	}

	return &TransactionProcessor{
		ledger:    l,
		validator: validator.NewRecordValidator(),
		metrics:   metricsCollector,
		logger:    logger,
	}
}

// ProcessCSV reads every record of r and applies it. It returns an error only
// when the input cannot be read at all.
func (p *TransactionProcessor) ProcessCSV(ctx context.Context, r io.Reader) (Summary, error) {
	logger := p.logger.With(slog.String("run_id", uuid.NewString()))
	startTime := time.Now()

	reader, err := csvio.NewReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open input: %w", err)
	}

	logger.InfoContext(ctx, "Processing started", slog.Int("shards", p.ledger.Shards()))

	var (
		summary         Summary
		applied, failed atomic.Int64
	)

	entries := make(chan ledger.Entry)
	done := make(chan error, 1)
	go func() {
		done <- p.ledger.Process(ctx, entries, func(entry ledger.Entry, err error, elapsed time.Duration) {
			p.metrics.RecordApplied(entry.Tx.Kind(), elapsed, err)
			if err != nil {
				failed.Add(1)
				logger.WarnContext(ctx, "Transaction refused",
					slog.Int("line", entry.Line),
					slog.Int("client", int(entry.AccountID)),
					slog.String("type", string(entry.Tx.Kind())),
					slog.String("error", err.Error()))
				return
			}
			applied.Add(1)
		})
	}()

	readErr := p.readEntries(ctx, reader, entries, &summary, logger)
	close(entries)
	processErr := <-done

	summary.Applied = applied.Load()
	summary.Failed = failed.Load()

	if readErr != nil {
		return summary, readErr
	}
	if processErr != nil {
		return summary, fmt.Errorf("processing interrupted: %w", processErr)
	}

	snapshot := p.ledger.Snapshot()
	p.metrics.RecordSnapshot(snapshot)

	logger.InfoContext(ctx, "Processing finished",
		slog.Int64("read", summary.Read),
		slog.Int64("rejected", summary.Rejected),
		slog.Int64("applied", summary.Applied),
		slog.Int64("failed", summary.Failed),
		slog.Int("accounts", len(snapshot)),
		slog.Duration("duration", time.Since(startTime)))

	return summary, nil
}

func (p *TransactionProcessor) readEntries(
	ctx context.Context,
	reader *csvio.Reader,
	entries chan<- ledger.Entry,
	summary *Summary,
	logger *slog.Logger,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		var parseErr *csvio.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return err
		}

		summary.Read++
		p.metrics.RecordRead()

		if parseErr != nil {
			summary.Rejected++
			p.metrics.RecordRejected("parse_error")
			logger.WarnContext(ctx, "Invalid line in input",
				slog.Int("line", parseErr.Line),
				slog.String("error", parseErr.Err.Error()))
			continue
		}

		client, tx, err := p.validator.ToTransaction(record)
		if err != nil {
			summary.Rejected++
			p.metrics.RecordRejected(rejectReason(err))
			logger.WarnContext(ctx, "Invalid record",
				slog.Int("line", record.Line),
				slog.Int("client", int(record.Client)),
				slog.Int64("tx", int64(record.Tx)),
				slog.String("error", err.Error()))
			continue
		}

		entry := ledger.Entry{Line: record.Line, AccountID: client, Tx: tx}
		select {
		case entries <- entry:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, validator.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, validator.ErrMissingAmount):
		return "missing_amount"
	case errors.Is(err, validator.ErrNegativeAmount):
		return "negative_amount"
	default:
		return "invalid_record"
	}
}
