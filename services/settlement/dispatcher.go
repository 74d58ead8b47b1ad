package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vusdpool/native/pool"
)

// ErrPermanent marks a backend rejection that retrying cannot fix.
var ErrPermanent = errors.New("settlement: permanent failure")

// Instruction is what a backend receives for one receipt.
type Instruction struct {
	ReceiptID    string
	Op           pool.Operation
	Actor        string
	Counterparty string
	Amount       string
	Bonus        string
	Digest       string
}

// Backend moves value outside the pool. Submit must be idempotent on
// Instruction.Digest.
type Backend interface {
	Submit(ctx context.Context, ins Instruction) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, ins Instruction) (string, error)

func (f BackendFunc) Submit(ctx context.Context, ins Instruction) (string, error) {
	return f(ctx, ins)
}

// Compensator reverts the ledger effect of a receipt.
type Compensator interface {
	Compensate(ctx context.Context, receipt pool.Receipt) error
}

// Metrics receives dispatcher outcomes.
type Metrics interface {
	RecordSettlement(op, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordSettlement(string, string) {}

const (
	defaultMaxAttempts = 5
	defaultBatchSize   = 50
	defaultInterval    = 2 * time.Second
)

// Dispatcher drains the outbox into a backend. Records that fail permanently,
// or exhaust their attempts, are compensated on the ledger.
type Dispatcher struct {
	outbox      *Outbox
	backend     Backend
	compensator Compensator
	metrics     Metrics
	logger      *slog.Logger
	maxAttempts int
	batchSize   int
	interval    time.Duration
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func WithInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

func WithMetrics(m Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher wires a dispatcher. The compensator is usually the pool
// controller.
func NewDispatcher(outbox *Outbox, backend Backend, comp Compensator, opts ...DispatcherOption) (*Dispatcher, error) {
	if outbox == nil {
		return nil, fmt.Errorf("settlement: outbox required")
	}
	if backend == nil {
		return nil, fmt.Errorf("settlement: backend required")
	}
	if comp == nil {
		return nil, fmt.Errorf("settlement: compensator required")
	}
	d := &Dispatcher{
		outbox:      outbox,
		backend:     backend,
		compensator: comp,
		metrics:     noopMetrics{},
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
		batchSize:   defaultBatchSize,
		interval:    defaultInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run drains the outbox every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "settlement dispatch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce processes a single batch and reports how many records left the
// staged state.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	recs, err := d.outbox.Pending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		finished, err := d.dispatch(ctx, rec)
		if err != nil {
			return done, err
		}
		if finished {
			done++
		}
	}
	return done, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, rec Record) (bool, error) {
	ref, err := d.backend.Submit(ctx, Instruction{
		ReceiptID:    rec.ID,
		Op:           pool.Operation(rec.Op),
		Actor:        rec.Actor,
		Counterparty: rec.Counterparty,
		Amount:       rec.Amount,
		Bonus:        rec.Bonus,
		Digest:       rec.Digest,
	})
	if err == nil {
		if err := d.outbox.markSettled(ctx, rec.ID, ref); err != nil {
			return false, err
		}
		d.metrics.RecordSettlement(rec.Op, "settled")
		d.logger.InfoContext(ctx, "settlement submitted", "receipt", rec.ID, "op", rec.Op, "ref", ref)
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if !errors.Is(err, ErrPermanent) && rec.Attempts+1 < d.maxAttempts {
		if mErr := d.outbox.markAttempt(ctx, rec.ID, err); mErr != nil {
			return false, mErr
		}
		d.metrics.RecordSettlement(rec.Op, "retry")
		d.logger.WarnContext(ctx, "settlement attempt failed", "receipt", rec.ID, "attempt", rec.Attempts+1, "error", err)
		return false, nil
	}
	return true, d.compensate(ctx, rec, err)
}

func (d *Dispatcher) compensate(ctx context.Context, rec Record, cause error) error {
	if err := d.outbox.markStatus(ctx, rec.ID, StatusFailed, cause); err != nil {
		return err
	}
	d.metrics.RecordSettlement(rec.Op, "failed")
	receipt, err := rec.toReceipt()
	if err != nil {
		return fmt.Errorf("settlement: rebuild %s: %w", rec.ID, err)
	}
	// A record whose compensation fails stays failed for an operator to
	// resolve; the rest of the batch still runs.
	if err := d.compensator.Compensate(ctx, receipt); err != nil {
		d.metrics.RecordSettlement(rec.Op, "compensation_failed")
		d.logger.ErrorContext(ctx, "settlement compensation failed", "receipt", rec.ID, "op", rec.Op, "cause", cause, "error", err)
		return nil
	}
	if err := d.outbox.markStatus(ctx, rec.ID, StatusCompensated, nil); err != nil {
		return err
	}
	d.metrics.RecordSettlement(rec.Op, "compensated")
	d.logger.WarnContext(ctx, "settlement compensated", "receipt", rec.ID, "op", rec.Op, "cause", cause)
	return nil
}

// LogBackend accepts every instruction and logs it. The returned reference is
// the digest.
type LogBackend struct {
	Logger *slog.Logger
}

func (b LogBackend) Submit(ctx context.Context, ins Instruction) (string, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "settlement instruction", "receipt", ins.ReceiptID, "op", string(ins.Op), "actor", ins.Actor, "counterparty", ins.Counterparty, "amount", ins.Amount, "bonus", ins.Bonus)
	return ins.Digest, nil
}
