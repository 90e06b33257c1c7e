package sink

import (
	"io"

	json "github.com/segmentio/encoding/json"

	"github.com/marketfeeds/itch-go"
)

// JSONLinesSink writes one JSON object per line per batch element,
// using segmentio/encoding/json in place of the standard library's
// encoding/json for its throughput advantage on the write-heavy batch
// path. json_writer.go marshals one DBN record per Visit call; this
// swaps in a faster encoder for the higher ITCH message rate.
type JSONLinesSink struct {
	orders    io.Writer
	snapshots io.Writer
	trades    io.Writer
	noii      io.Writer
}

// NewJSONLinesSink wraps four writers, one per record kind.
func NewJSONLinesSink(orders, snapshots, trades, noii io.Writer) *JSONLinesSink {
	return &JSONLinesSink{orders: orders, snapshots: snapshots, trades: trades, noii: noii}
}

func writeJSONLines[T any](w io.Writer, batch []T) error {
	for _, rec := range batch {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONLinesSink) FlushOrders(batch []itch.OrderRecord) error {
	return writeJSONLines(s.orders, batch)
}

func (s *JSONLinesSink) FlushSnapshots(batch []itch.SnapshotRecord) error {
	return writeJSONLines(s.snapshots, batch)
}

func (s *JSONLinesSink) FlushTrades(batch []itch.TradeRecord) error {
	return writeJSONLines(s.trades, batch)
}

func (s *JSONLinesSink) FlushNOII(batch []itch.NOIIRecord) error {
	return writeJSONLines(s.noii, batch)
}
