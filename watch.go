package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

const rejectedRetryDelay = time.Second

type mempoolClient interface {
	AcquireMempool(ctx context.Context) (ogmios.AcquireMempoolResult, *jsonrpc.ErrorVariant, error)
	NextTransaction(ctx context.Context) (ogmios.NextTransactionResult, *jsonrpc.ErrorVariant, error)
}

// MempoolSnapshot is the content of one acquired mempool snapshot.
type MempoolSnapshot struct {
	Slot         uint64
	Transactions []ogmios.MempoolTransaction
	// New counts transactions the recorder had not seen before. It stays
	// zero without a recorder.
	New int
}

// WatchOptions tunes a MempoolWatcher.
type WatchOptions struct {
	// Interval is the pause between snapshots.
	Interval time.Duration
	// MaxAge prunes recorded transactions not seen for that long; zero keeps
	// them forever.
	MaxAge time.Duration
	// Out receives one line per transaction when set.
	Out io.Writer
}

// MempoolWatcher repeatedly acquires mempool snapshots and walks them.
type MempoolWatcher struct {
	client  mempoolClient
	store   *MempoolStore
	metrics *Metrics
	opts    WatchOptions
}

// NewMempoolWatcher creates a watcher. store and metrics may be nil.
func NewMempoolWatcher(client mempoolClient, store *MempoolStore, metrics *Metrics, opts WatchOptions) *MempoolWatcher {
	return &MempoolWatcher{
		client:  client,
		store:   store,
		metrics: metrics,
		opts:    opts,
	}
}

// WatchOnce acquires a snapshot and drains it.
func (w *MempoolWatcher) WatchOnce(ctx context.Context) (MempoolSnapshot, error) {
	logger := log.FromContext(ctx).WithName("mempool")

	acquired, variant, err := w.client.AcquireMempool(ctx)
	if err = resultErr(variant, err); err != nil {
		w.countError("acquire")
		return MempoolSnapshot{}, fmt.Errorf("failed to acquire mempool: %w", err)
	}
	logger.Debug("acquired mempool snapshot", "slot", acquired.Slot)

	snapshot := MempoolSnapshot{Slot: acquired.Slot}
	for {
		next, variant, err := w.client.NextTransaction(ctx)
		if err = resultErr(variant, err); err != nil {
			w.countError("next")
			return snapshot, fmt.Errorf("failed to read mempool snapshot at slot %d: %w", acquired.Slot, err)
		}
		if next.Transaction == nil {
			break
		}
		tx := *next.Transaction
		snapshot.Transactions = append(snapshot.Transactions, tx)

		isNew, err := w.record(ctx, tx, acquired.Slot)
		if err != nil {
			w.countError("record")
			return snapshot, err
		}
		if isNew {
			snapshot.New++
		}
		w.print(tx, isNew)
	}

	if w.metrics != nil {
		w.metrics.MempoolSnapshots.Inc()
		w.metrics.MempoolSnapshotSlot.Set(float64(snapshot.Slot))
		w.metrics.MempoolSnapshotSize.Set(float64(len(snapshot.Transactions)))
	}

	if w.store != nil && w.opts.MaxAge > 0 {
		pruned, err := w.store.Prune(ctx, w.opts.MaxAge)
		if err != nil {
			w.countError("prune")
			return snapshot, err
		}
		if pruned > 0 {
			logger.Debug("pruned recorded transactions", "count", pruned)
		}
	}

	logger.Info("walked mempool snapshot", "slot", snapshot.Slot, "transactions", len(snapshot.Transactions), "new", snapshot.New)
	return snapshot, nil
}

// Run watches until ctx ends. Error variants answered by the node and
// responses that cannot be decoded are logged and retried on the next round;
// transport failures end the watch.
func (w *MempoolWatcher) Run(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("mempool")
	for {
		_, err := w.WatchOnce(ctx)
		delay := w.opts.Interval
		var variant *jsonrpc.ErrorVariant
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.As(err, &variant):
			logger.Warn("mempool poll rejected", "error", err)
			delay = max(delay, rejectedRetryDelay)
		case errors.Is(err, jsonrpc.ErrDecode):
			logger.Warn("cannot decode mempool response", "error", err)
			delay = max(delay, rejectedRetryDelay)
		case err != nil:
			return err
		}

		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (w *MempoolWatcher) record(ctx context.Context, tx ogmios.MempoolTransaction, slot uint64) (bool, error) {
	if w.store == nil {
		w.countTx("seen")
		return false, nil
	}
	isNew, err := w.store.Record(ctx, tx, slot)
	if err != nil {
		return false, err
	}
	if isNew {
		w.countTx("new")
	} else {
		w.countTx("seen")
	}
	return isNew, nil
}

func (w *MempoolWatcher) print(tx ogmios.MempoolTransaction, isNew bool) {
	if w.opts.Out == nil {
		return
	}
	marker := " "
	if isNew {
		marker = "+"
	}
	if tx.Tx == nil {
		fmt.Fprintf(w.opts.Out, "%s %s\n", marker, tx.ID())
		return
	}
	fee := "-"
	if tx.Tx.Fee != nil {
		fee = tx.Tx.Fee.Ada().String()
	}
	fmt.Fprintf(w.opts.Out, "%s %s inputs=%d outputs=%d fee=%s\n", marker, tx.ID(), len(tx.Tx.Inputs), len(tx.Tx.Outputs), fee)
}

func (w *MempoolWatcher) countTx(status string) {
	if w.metrics != nil {
		w.metrics.MempoolTransactions.WithLabelValues(status).Inc()
	}
}

func (w *MempoolWatcher) countError(reason string) {
	if w.metrics != nil {
		w.metrics.MempoolErrors.WithLabelValues(reason).Inc()
	}
}

// resultErr folds an error variant into the error return.
func resultErr(variant *jsonrpc.ErrorVariant, err error) error {
	if err != nil {
		return err
	}
	if variant != nil {
		return variant
	}
	return nil
}
