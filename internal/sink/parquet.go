package sink

import (
	"io"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/marketfeeds/itch-go"
)

// ParquetSink writes each record kind into its own Parquet file, one
// GroupNode schema per kind, the same way internal/file/parquet_writer.go
// builds a GroupNode per DBN schema and writes one buffered row group
// per scan.
type ParquetSink struct {
	orders    *pqfile.Writer
	snapshots *pqfile.Writer
	trades    *pqfile.Writer
	noii      *pqfile.Writer
}

func writerProps() *parquet.WriterProperties {
	return parquet.NewWriterProperties(parquet.WithVersion(parquet.V2_LATEST), parquet.WithCompression(compress.Codecs.Snappy))
}

// NewParquetSink opens one Parquet writer per record kind against the
// given destinations.
func NewParquetSink(orders, snapshots, trades, noii io.Writer, depth int) *ParquetSink {
	props := writerProps()
	return &ParquetSink{
		orders:    pqfile.NewParquetWriter(orders, orderGroupNode(), pqfile.WithWriterProps(props)),
		snapshots: pqfile.NewParquetWriter(snapshots, snapshotGroupNode(depth), pqfile.WithWriterProps(props)),
		trades:    pqfile.NewParquetWriter(trades, tradeGroupNode(), pqfile.WithWriterProps(props)),
		noii:      pqfile.NewParquetWriter(noii, noiiGroupNode(), pqfile.WithWriterProps(props)),
	}
}

// Close flushes footers for every open writer.
func (s *ParquetSink) Close() error {
	for _, w := range []*pqfile.Writer{s.orders, s.snapshots, s.trades, s.noii} {
		if err := w.FlushWithFooter(); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

func optionalUint(bits int) pqschema.LogicalType { return pqschema.NewIntLogicalType(bits, false) }

func utf8Node(name string) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted(name, parquet.Repetitions.Optional, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1))
}

func uintNode(name string, bits int, physical parquet.Type) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, optionalUint(bits), physical, 0, -1))
}

func boolNode(name string) *pqschema.PrimitiveNode {
	return pqschema.NewBooleanNode(name, parquet.Repetitions.Optional, -1)
}

// orderGroupNode matches OrderRecord's field order in records.go.
func orderGroupNode() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		utf8Node("date"),
		uintNode("nanoseconds", 64, parquet.Types.Int64),
		utf8Node("kind"),
		utf8Node("ticker"),
		utf8Node("side"),
		uintNode("price", 32, parquet.Types.Int32),
		uintNode("shares", 32, parquet.Types.Int32),
		uintNode("refno", 64, parquet.Types.Int64),
		boolNode("from_replace"),
		utf8Node("mpid"),
		boolNode("printable"),
		uintNode("execution_price", 32, parquet.Types.Int32),
	}, -1))
}

func tradeGroupNode() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		utf8Node("date"),
		uintNode("nanoseconds", 64, parquet.Types.Int64),
		utf8Node("kind"),
		uintNode("refno", 64, parquet.Types.Int64),
		utf8Node("side"),
		uintNode("shares", 64, parquet.Types.Int64),
		utf8Node("ticker"),
		uintNode("price", 32, parquet.Types.Int32),
		uintNode("matchno", 64, parquet.Types.Int64),
		uintNode("cross_price", 32, parquet.Types.Int32),
		utf8Node("cross_type"),
	}, -1))
}

func noiiGroupNode() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		utf8Node("date"),
		uintNode("nanoseconds", 64, parquet.Types.Int64),
		utf8Node("kind"),
		utf8Node("ticker"),
		uintNode("paired_shares", 64, parquet.Types.Int64),
		uintNode("imbalance_shares", 64, parquet.Types.Int64),
		utf8Node("imbalance_direction"),
		uintNode("far_price", 32, parquet.Types.Int32),
		uintNode("near_price", 32, parquet.Types.Int32),
		uintNode("ref_price", 32, parquet.Types.Int32),
		utf8Node("cross_type"),
		utf8Node("var_indicator"),
	}, -1))
}

// snapshotGroupNode widens to depth's flat layout: ticker, timestamp,
// then 4*depth signed price/shares columns carrying the -1 sentinel.
func snapshotGroupNode(depth int) *pqschema.GroupNode {
	fields := pqschema.FieldList{utf8Node("ticker"), uintNode("timestamp", 64, parquet.Types.Int64)}
	for i := 0; i < depth; i++ {
		fields = append(fields,
			pqschema.NewInt64Node("bid_price", parquet.Repetitions.Optional, -1),
			pqschema.NewInt64Node("bid_shares", parquet.Repetitions.Optional, -1))
	}
	for i := 0; i < depth; i++ {
		fields = append(fields,
			pqschema.NewInt64Node("ask_price", parquet.Repetitions.Optional, -1),
			pqschema.NewInt64Node("ask_shares", parquet.Repetitions.Optional, -1))
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1))
}

func col[T any](rgw pqfile.BufferedRowGroupWriter, i int) T {
	cw, _ := rgw.Column(i)
	return cw.(T)
}

func (s *ParquetSink) FlushOrders(batch []itch.OrderRecord) error {
	rgw := s.orders.AppendBufferedRowGroup()
	for _, r := range batch {
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 0).WriteBatch(ba(r.Date), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 1).WriteBatch([]int64{int64(r.Nanos)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 2).WriteBatch(ba(string(r.Kind)), []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 3).WriteBatch(ba(r.Ticker), []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 4).WriteBatch(ba(r.Side.String()), []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 5).WriteBatch([]int32{int32(r.Price)}, []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 6).WriteBatch([]int32{int32(r.Shares)}, []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 7).WriteBatch([]int64{int64(r.Refno)}, []int16{1}, nil)
		col[*pqfile.BooleanColumnChunkWriter](rgw, 8).WriteBatch([]bool{r.FromReplace}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 9).WriteBatch(ba(r.MPID), []int16{1}, nil)
		col[*pqfile.BooleanColumnChunkWriter](rgw, 10).WriteBatch([]bool{r.Printable}, []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 11).WriteBatch([]int32{int32(r.ExecutionPrice)}, []int16{1}, nil)
	}
	return rgw.Close()
}

func (s *ParquetSink) FlushTrades(batch []itch.TradeRecord) error {
	rgw := s.trades.AppendBufferedRowGroup()
	for _, r := range batch {
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 0).WriteBatch(ba(r.Date), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 1).WriteBatch([]int64{int64(r.Nanos)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 2).WriteBatch(ba(string(r.Kind)), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 3).WriteBatch([]int64{int64(r.Refno)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 4).WriteBatch(ba(r.Side.String()), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 5).WriteBatch([]int64{int64(r.Shares)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 6).WriteBatch(ba(r.Ticker), []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 7).WriteBatch([]int32{int32(r.Price)}, []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 8).WriteBatch([]int64{int64(r.Matchno)}, []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 9).WriteBatch([]int32{int32(r.CrossPrice)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 10).WriteBatch(ba(string(r.CrossType)), []int16{1}, nil)
	}
	return rgw.Close()
}

func (s *ParquetSink) FlushNOII(batch []itch.NOIIRecord) error {
	rgw := s.noii.AppendBufferedRowGroup()
	for _, r := range batch {
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 0).WriteBatch(ba(r.Date), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 1).WriteBatch([]int64{int64(r.Nanos)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 2).WriteBatch(ba(string(r.Kind)), []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 3).WriteBatch(ba(r.Ticker), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 4).WriteBatch([]int64{int64(r.PairedShares)}, []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 5).WriteBatch([]int64{int64(r.ImbalanceShares)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 6).WriteBatch(ba(string(r.ImbalanceDirection)), []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 7).WriteBatch([]int32{int32(r.FarPrice)}, []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 8).WriteBatch([]int32{int32(r.NearPrice)}, []int16{1}, nil)
		col[*pqfile.Int32ColumnChunkWriter](rgw, 9).WriteBatch([]int32{int32(r.RefPrice)}, []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 10).WriteBatch(ba(string(r.CrossType)), []int16{1}, nil)
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 11).WriteBatch(ba(string(r.PriceVariationIndicator)), []int16{1}, nil)
	}
	return rgw.Close()
}

func (s *ParquetSink) FlushSnapshots(batch []itch.SnapshotRecord) error {
	rgw := s.snapshots.AppendBufferedRowGroup()
	for _, r := range batch {
		col[*pqfile.ByteArrayColumnChunkWriter](rgw, 0).WriteBatch(ba(r.Ticker), []int16{1}, nil)
		col[*pqfile.Int64ColumnChunkWriter](rgw, 1).WriteBatch([]int64{int64(r.Timestamp)}, []int16{1}, nil)
		for i, v := range r.Data {
			col[*pqfile.Int64ColumnChunkWriter](rgw, 2+i).WriteBatch([]int64{v}, []int16{1}, nil)
		}
	}
	return rgw.Close()
}

func ba(s string) []parquet.ByteArray { return []parquet.ByteArray{parquet.ByteArray(s)} }
