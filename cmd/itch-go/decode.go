package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marketfeeds/itch-go"
	"github.com/marketfeeds/itch-go/internal/sink"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode file...",
		Short: "Decode ITCH feed files into batched order, trade and NOII records",
		Long: `decode drains one or more ITCH feed files through the parser,
maintains a resting order book per ticker, and routes every surfaced
record to the configured sink (csv, json, parquet or duckdb).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDecode,
	}
	registerPipelineFlags(cmd)
	return cmd
}

func registerPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("tickers", nil, "ticker universe to decode (default: every ticker)")
	cmd.Flags().Int("depth", 10, "order book snapshot depth")
	cmd.Flags().Int("capacity", 1000, "per-kind batch size before a sink flush")
	cmd.Flags().String("format", "csv", "sink backend: csv, json, parquet, duckdb")
	cmd.Flags().String("out", ".", "output root directory")
	cmd.Flags().String("date", "", "calendar date the input covers (YYYY-MM-DD)")
	cmd.Flags().String("version", "5.0", "protocol version: 4.1 or 5.0")
	cmd.Flags().Uint64("progress-every", 1_000_000, "print a progress line every N messages (0 disables)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	version, err := cfg.protocolVersion()
	if err != nil {
		return err
	}
	progressEvery, _ := cmd.Flags().GetUint64("progress-every")

	for _, file := range args {
		if err := decodeOneFile(cmd, file, cfg, version, progressEvery); err != nil {
			return fmt.Errorf("decoding %s: %w", file, err)
		}
	}
	return nil
}

func decodeOneFile(cmd *cobra.Command, file string, cfg *Config, version itch.Version, progressEvery uint64) error {
	src, closer, err := itch.OpenByteSource(file)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, closeSink, err := openSink(cfg.Format, cfg.OutDir, cfg.Date, cfg.Depth)
	if err != nil {
		return err
	}
	defer closeSink()

	batched := sink.NewBatchedSink(s, cfg.Capacity, slog.Default())
	defer batched.Close()

	prog := newProgress(cmd.ErrOrStderr(), progressEvery)
	pv := newPipelineVisitor(cfg.Date, cfg.Depth, batched, prog)

	parser := itch.NewParser(version, cfg.Tickers)
	if err := itch.Run(parser, src, pv); err != nil {
		return err
	}
	prog.done()
	return pv.flushFinalSnapshots()
}

// pipelineVisitor routes decoded messages into per-ticker order books
// and persisted records. It mirrors the parser's own live-order table
// independently (keyed the same way as itch.OrderState) because a
// CancelOrder or ExecuteOrder message does not itself carry the
// ticker/side/price needed to find the right book level: the parser's
// internal context has already applied the reduction by the time the
// message reaches a Visitor.
type pipelineVisitor struct {
	itch.NullVisitor

	date  string
	depth int
	sink  *sink.BatchedSink
	prog  *progress

	books map[string]*itch.OrderBook
	live  map[uint64]itch.OrderState
}

func newPipelineVisitor(date string, depth int, s *sink.BatchedSink, prog *progress) *pipelineVisitor {
	return &pipelineVisitor{
		date: date, depth: depth, sink: s, prog: prog,
		books: make(map[string]*itch.OrderBook),
		live:  make(map[uint64]itch.OrderState),
	}
}

func (v *pipelineVisitor) book(ticker string) *itch.OrderBook {
	b, ok := v.books[ticker]
	if !ok {
		b = itch.NewOrderBook(ticker)
		v.books[ticker] = b
	}
	return b
}

func (v *pipelineVisitor) OnAddOrder(m *itch.AddOrder) error {
	v.prog.tick()
	v.live[m.Refno] = itch.OrderState{Ticker: m.Ticker, Side: m.Side, Price: m.Price, Shares: m.Shares}
	b := v.book(m.Ticker)
	b.Add(m.Side, m.Price, m.Shares)
	b.LastNanos = m.Nanos_
	return v.sink.WriteOrder(itch.NewOrderRecord(v.date, m))
}

func (v *pipelineVisitor) OnExecuteOrder(m *itch.ExecuteOrder) error {
	v.prog.tick()
	if state, ok := v.live[m.Refno]; ok {
		b := v.book(state.Ticker)
		if err := b.Execute(state.Side, state.Price, m.Shares); err != nil {
			return fmt.Errorf("execute refno %d: %w", m.Refno, err)
		}
		b.LastNanos = m.Nanos_
		v.reduceLive(m.Refno, m.Shares)
	}
	return v.sink.WriteOrder(itch.NewOrderRecord(v.date, m))
}

func (v *pipelineVisitor) OnCancelOrder(m *itch.CancelOrder) error {
	v.prog.tick()
	if state, ok := v.live[m.Refno]; ok {
		b := v.book(state.Ticker)
		if err := b.Remove(state.Side, state.Price, m.Shares); err != nil {
			return fmt.Errorf("cancel refno %d: %w", m.Refno, err)
		}
		b.LastNanos = m.Nanos_
		v.reduceLive(m.Refno, m.Shares)
	}
	return v.sink.WriteOrder(itch.NewOrderRecord(v.date, m))
}

func (v *pipelineVisitor) OnDeleteOrder(m *itch.DeleteOrder) error {
	v.prog.tick()
	delete(v.live, m.Refno)
	if m.Shares > 0 {
		b := v.book(m.Ticker)
		if err := b.Remove(m.Side, m.Price, m.Shares); err != nil {
			return fmt.Errorf("delete refno %d: %w", m.Refno, err)
		}
		b.LastNanos = m.Nanos_
	}
	return v.sink.WriteOrder(itch.NewOrderRecord(v.date, m))
}

func (v *pipelineVisitor) reduceLive(refno uint64, shares uint32) {
	state := v.live[refno]
	if shares >= state.Shares {
		delete(v.live, refno)
		return
	}
	state.Shares -= shares
	v.live[refno] = state
}

func (v *pipelineVisitor) OnTrade(m *itch.Trade) error {
	v.prog.tick()
	return v.sink.WriteTrade(itch.NewTradeRecord(v.date, m))
}

func (v *pipelineVisitor) OnCrossTrade(m *itch.CrossTrade) error {
	v.prog.tick()
	return v.sink.WriteTrade(itch.NewTradeRecord(v.date, m))
}

func (v *pipelineVisitor) OnBrokenTrade(m *itch.BrokenTrade) error {
	v.prog.tick()
	return v.sink.WriteTrade(itch.NewTradeRecord(v.date, m))
}

func (v *pipelineVisitor) OnNOII(m *itch.NetOrderImbalanceIndicator) error {
	v.prog.tick()
	return v.sink.WriteNOII(itch.NewNOIIRecord(v.date, m))
}

func (v *pipelineVisitor) OnStockDirectory(m *itch.StockDirectory) error {
	v.prog.tick()
	return v.sink.WriteReference(m)
}

func (v *pipelineVisitor) OnStockTradingAction(m *itch.StockTradingAction) error {
	v.prog.tick()
	return v.sink.WriteReference(m)
}

func (v *pipelineVisitor) OnRegSHORestriction(m *itch.RegSHORestriction) error {
	v.prog.tick()
	return v.sink.WriteReference(m)
}

func (v *pipelineVisitor) OnMarketParticipantPosition(m *itch.MarketParticipantPosition) error {
	v.prog.tick()
	return v.sink.WriteReference(m)
}

// flushFinalSnapshots writes one snapshot record per ticker seen, at
// end of stream, so a decode run always leaves a final picture of every
// book it built. decode writes no periodic snapshots; this is its only
// snapshot output.
func (v *pipelineVisitor) flushFinalSnapshots() error {
	for _, b := range v.books {
		if err := v.sink.WriteSnapshot(itch.NewSnapshotRecord(b, v.depth)); err != nil {
			return err
		}
	}
	return nil
}
