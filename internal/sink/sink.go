// Package sink defines the batched write-side of the decode pipeline:
// a narrow Sink interface the core never imports, a BatchedSink
// adapter that owns the four (or five) in-memory batches and their
// flush discipline, and one backend per output format.
//
// Grounded on the internal/file package (parquet_writer.go,
// json_writer.go, split.go), which plays the same role for DBN
// records: format-specific writers behind small functions, driven by
// a visitor over a scanner. This package generalizes that into an
// explicit batching adapter.
package sink

import (
	"log/slog"

	"github.com/marketfeeds/itch-go"
)

// Sink receives already-batched records and persists them. A single
// flush call must persist its slice atomically from the caller's
// perspective (all-or-nothing) or return an error.
type Sink interface {
	FlushOrders(batch []itch.OrderRecord) error
	FlushSnapshots(batch []itch.SnapshotRecord) error
	FlushTrades(batch []itch.TradeRecord) error
	FlushNOII(batch []itch.NOIIRecord) error
}

// ReferenceSink is an optional extension a Sink may additionally
// implement to receive the supplemented reference-data kinds
// (StockDirectory, StockTradingAction, RegSHORestriction,
// MarketParticipantPosition). Sinks that don't care about reference
// data simply don't implement it; BatchedSink checks at construction
// time and no-ops the fifth batch when absent.
type ReferenceSink interface {
	FlushReference(batch []itch.Message) error
}

// BatchedSink owns four in-memory batches (orders, snapshots, trades,
// NOII) plus an optional fifth (reference data, only when the
// underlying Sink implements ReferenceSink), flushing each to the
// underlying Sink once it reaches capacity. Close flushes whatever
// remains; a flush error during Close is logged, never propagated,
// since teardown is non-throwing by contract.
type BatchedSink struct {
	sink     Sink
	refSink  ReferenceSink
	capacity int
	log      *slog.Logger

	orders    []itch.OrderRecord
	snapshots []itch.SnapshotRecord
	trades    []itch.TradeRecord
	noii      []itch.NOIIRecord
	reference []itch.Message
}

// NewBatchedSink wraps s with batching at the given per-kind capacity.
// A nil logger falls back to slog.Default().
func NewBatchedSink(s Sink, capacity int, log *slog.Logger) *BatchedSink {
	if log == nil {
		log = slog.Default()
	}
	b := &BatchedSink{sink: s, capacity: capacity, log: log}
	b.refSink, _ = s.(ReferenceSink)
	return b
}

func (b *BatchedSink) WriteOrder(r itch.OrderRecord) error {
	b.orders = append(b.orders, r)
	if len(b.orders) < b.capacity {
		return nil
	}
	return b.flushOrders()
}

func (b *BatchedSink) WriteSnapshot(r itch.SnapshotRecord) error {
	b.snapshots = append(b.snapshots, r)
	if len(b.snapshots) < b.capacity {
		return nil
	}
	return b.flushSnapshots()
}

func (b *BatchedSink) WriteTrade(r itch.TradeRecord) error {
	b.trades = append(b.trades, r)
	if len(b.trades) < b.capacity {
		return nil
	}
	return b.flushTrades()
}

func (b *BatchedSink) WriteNOII(r itch.NOIIRecord) error {
	b.noii = append(b.noii, r)
	if len(b.noii) < b.capacity {
		return nil
	}
	return b.flushNOII()
}

// WriteReference appends a supplemented reference-data message. It is
// a no-op if the underlying Sink does not implement ReferenceSink.
func (b *BatchedSink) WriteReference(m itch.Message) error {
	if b.refSink == nil {
		return nil
	}
	b.reference = append(b.reference, m)
	if len(b.reference) < b.capacity {
		return nil
	}
	return b.flushReference()
}

func (b *BatchedSink) flushOrders() error {
	if len(b.orders) == 0 {
		return nil
	}
	err := b.sink.FlushOrders(b.orders)
	b.orders = b.orders[:0]
	return err
}

func (b *BatchedSink) flushSnapshots() error {
	if len(b.snapshots) == 0 {
		return nil
	}
	err := b.sink.FlushSnapshots(b.snapshots)
	b.snapshots = b.snapshots[:0]
	return err
}

func (b *BatchedSink) flushTrades() error {
	if len(b.trades) == 0 {
		return nil
	}
	err := b.sink.FlushTrades(b.trades)
	b.trades = b.trades[:0]
	return err
}

func (b *BatchedSink) flushNOII() error {
	if len(b.noii) == 0 {
		return nil
	}
	err := b.sink.FlushNOII(b.noii)
	b.noii = b.noii[:0]
	return err
}

func (b *BatchedSink) flushReference() error {
	if b.refSink == nil || len(b.reference) == 0 {
		return nil
	}
	err := b.refSink.FlushReference(b.reference)
	b.reference = b.reference[:0]
	return err
}

// Close flushes every non-empty batch. Flush errors are logged, not
// returned: teardown must never throw.
func (b *BatchedSink) Close() {
	for name, flush := range map[string]func() error{
		"orders": b.flushOrders, "snapshots": b.flushSnapshots,
		"trades": b.flushTrades, "noii": b.flushNOII, "reference": b.flushReference,
	} {
		if err := flush(); err != nil {
			b.log.Error("sink flush failed during close", "batch", name, "error", err)
		}
	}
}
