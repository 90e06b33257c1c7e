package sink

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/marketfeeds/itch-go"
)

// CSVSink writes each record kind to its own *csv.Writer, in the
// field order of the persisted record shapes. Prices are rendered via
// shopspring/decimal so a fixed-point u32 never rounds through a
// float on its way to text.
type CSVSink struct {
	orders    *csv.Writer
	snapshots *csv.Writer
	trades    *csv.Writer
	noii      *csv.Writer
}

// NewCSVSink wraps four already-open writers (typically one file per
// kind) and writes their header rows immediately.
func NewCSVSink(orders, snapshots, trades, noii io.Writer) (*CSVSink, error) {
	s := &CSVSink{
		orders:    csv.NewWriter(orders),
		snapshots: csv.NewWriter(snapshots),
		trades:    csv.NewWriter(trades),
		noii:      csv.NewWriter(noii),
	}
	headers := [][]string{
		{"date", "nanoseconds", "kind", "ticker", "side", "price", "shares", "refno", "from_replace", "mpid", "printable", "execution_price"},
		{"ticker", "timestamp", "data"},
		{"date", "nanoseconds", "kind", "refno", "side", "shares", "ticker", "price", "matchno", "cross_price", "cross_type"},
		{"date", "nanoseconds", "kind", "ticker", "paired_shares", "imbalance_shares", "imbalance_direction", "far_price", "near_price", "ref_price", "cross_type", "var_indicator"},
	}
	writers := []*csv.Writer{s.orders, s.snapshots, s.trades, s.noii}
	for i, w := range writers {
		if err := w.Write(headers[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func price(p uint32) string {
	return itch.PriceToDecimal(p).String()
}

func priceSigned(p int64) string {
	if p < 0 {
		return strconv.FormatInt(p, 10)
	}
	return decimal.New(p, -4).String()
}

func (s *CSVSink) FlushOrders(batch []itch.OrderRecord) error {
	for _, r := range batch {
		row := []string{
			r.Date, strconv.FormatUint(r.Nanos, 10), string(r.Kind), r.Ticker, r.Side.String(),
			price(r.Price), strconv.FormatUint(uint64(r.Shares), 10), strconv.FormatUint(r.Refno, 10),
			strconv.FormatBool(r.FromReplace), r.MPID, strconv.FormatBool(r.Printable), price(r.ExecutionPrice),
		}
		if err := s.orders.Write(row); err != nil {
			return err
		}
	}
	s.orders.Flush()
	return s.orders.Error()
}

func (s *CSVSink) FlushSnapshots(batch []itch.SnapshotRecord) error {
	for _, r := range batch {
		row := make([]string, 0, 2+len(r.Data))
		row = append(row, r.Ticker, strconv.FormatUint(r.Timestamp, 10))
		for i, v := range r.Data {
			if i%2 == 0 {
				row = append(row, priceSigned(v))
			} else {
				row = append(row, strconv.FormatInt(v, 10))
			}
		}
		if err := s.snapshots.Write(row); err != nil {
			return err
		}
	}
	s.snapshots.Flush()
	return s.snapshots.Error()
}

func (s *CSVSink) FlushTrades(batch []itch.TradeRecord) error {
	for _, r := range batch {
		row := []string{
			r.Date, strconv.FormatUint(r.Nanos, 10), string(r.Kind), strconv.FormatUint(r.Refno, 10),
			r.Side.String(), strconv.FormatUint(r.Shares, 10), r.Ticker, price(r.Price),
			strconv.FormatUint(r.Matchno, 10), price(r.CrossPrice), string(r.CrossType),
		}
		if err := s.trades.Write(row); err != nil {
			return err
		}
	}
	s.trades.Flush()
	return s.trades.Error()
}

func (s *CSVSink) FlushNOII(batch []itch.NOIIRecord) error {
	for _, r := range batch {
		row := []string{
			r.Date, strconv.FormatUint(r.Nanos, 10), string(r.Kind), r.Ticker,
			strconv.FormatUint(r.PairedShares, 10), strconv.FormatUint(r.ImbalanceShares, 10),
			string(r.ImbalanceDirection), price(r.FarPrice), price(r.NearPrice), price(r.RefPrice),
			string(r.CrossType), string(r.PriceVariationIndicator),
		}
		if err := s.noii.Write(row); err != nil {
			return err
		}
	}
	s.noii.Flush()
	return s.noii.Error()
}
