package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marketfeeds/itch-go"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot file...",
		Short: "Print periodic top-of-book snapshots to stdout while decoding",
		Long: `snapshot drains an ITCH feed file exactly like decode but writes no
persisted records: every --every order-lifecycle messages it prints a
human-readable top-of-book table for each ticker touched so far.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSnapshot,
	}
	cmd.Flags().StringSlice("tickers", nil, "ticker universe to watch (default: every ticker)")
	cmd.Flags().Int("depth", 5, "book levels to print per side")
	cmd.Flags().String("version", "5.0", "protocol version: 4.1 or 5.0")
	cmd.Flags().Uint64("every", 10_000, "print a snapshot every N order-lifecycle messages")
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	tickers, _ := cmd.Flags().GetStringSlice("tickers")
	depth, _ := cmd.Flags().GetInt("depth")
	versionFlag, _ := cmd.Flags().GetString("version")
	every, _ := cmd.Flags().GetUint64("every")
	if len(tickers) == 0 {
		tickers = []string{itch.EveryTicker}
	}

	var version itch.Version
	switch versionFlag {
	case "4.1":
		version = itch.V41
	case "5.0":
		version = itch.V50
	default:
		return fmt.Errorf("unknown protocol version %q (want 4.1 or 5.0)", versionFlag)
	}

	for _, file := range args {
		if err := snapshotOneFile(cmd.OutOrStdout(), file, version, tickers, depth, every); err != nil {
			return fmt.Errorf("watching %s: %w", file, err)
		}
	}
	return nil
}

type snapshotVisitor struct {
	itch.NullVisitor

	out   io.Writer
	depth int
	every uint64
	count uint64
	books map[string]*itch.OrderBook
	live  map[uint64]itch.OrderState
}

func newSnapshotVisitor(out io.Writer, depth int, every uint64) *snapshotVisitor {
	return &snapshotVisitor{
		out: out, depth: depth, every: every,
		books: make(map[string]*itch.OrderBook),
		live:  make(map[uint64]itch.OrderState),
	}
}

func (v *snapshotVisitor) book(ticker string) *itch.OrderBook {
	b, ok := v.books[ticker]
	if !ok {
		b = itch.NewOrderBook(ticker)
		v.books[ticker] = b
	}
	return b
}

func (v *snapshotVisitor) touch() {
	v.count++
	if v.every != 0 && v.count%v.every == 0 {
		v.printAll()
	}
}

func (v *snapshotVisitor) OnAddOrder(m *itch.AddOrder) error {
	v.live[m.Refno] = itch.OrderState{Ticker: m.Ticker, Side: m.Side, Price: m.Price, Shares: m.Shares}
	b := v.book(m.Ticker)
	b.Add(m.Side, m.Price, m.Shares)
	b.LastNanos = m.Nanos_
	v.touch()
	return nil
}

func (v *snapshotVisitor) OnExecuteOrder(m *itch.ExecuteOrder) error {
	if state, ok := v.live[m.Refno]; ok {
		b := v.book(state.Ticker)
		if err := b.Execute(state.Side, state.Price, m.Shares); err != nil {
			return err
		}
		b.LastNanos = m.Nanos_
		v.reduceLive(m.Refno, m.Shares)
	}
	v.touch()
	return nil
}

func (v *snapshotVisitor) OnCancelOrder(m *itch.CancelOrder) error {
	if state, ok := v.live[m.Refno]; ok {
		b := v.book(state.Ticker)
		if err := b.Remove(state.Side, state.Price, m.Shares); err != nil {
			return err
		}
		b.LastNanos = m.Nanos_
		v.reduceLive(m.Refno, m.Shares)
	}
	v.touch()
	return nil
}

func (v *snapshotVisitor) OnDeleteOrder(m *itch.DeleteOrder) error {
	delete(v.live, m.Refno)
	if m.Shares > 0 {
		b := v.book(m.Ticker)
		if err := b.Remove(m.Side, m.Price, m.Shares); err != nil {
			return err
		}
		b.LastNanos = m.Nanos_
	}
	v.touch()
	return nil
}

func (v *snapshotVisitor) reduceLive(refno uint64, shares uint32) {
	state := v.live[refno]
	if shares >= state.Shares {
		delete(v.live, refno)
		return
	}
	state.Shares -= shares
	v.live[refno] = state
}

func (v *snapshotVisitor) printAll() {
	for ticker, b := range v.books {
		v.printOne(ticker, b)
	}
}

func (v *snapshotVisitor) printOne(ticker string, b *itch.OrderBook) {
	data := b.Snapshot(v.depth)
	fmt.Fprintf(v.out, "%s @ %s\n", ticker, humanize.Comma(int64(b.LastNanos)))
	for i := 0; i < v.depth; i++ {
		bidPrice, bidShares := data[4*i], data[4*i+1]
		askPrice, askShares := data[4*i+2], data[4*i+3]
		fmt.Fprintf(v.out, "  %2d  %10s x %-12s | %10s x %-12s\n", i,
			formatSignedPrice(bidPrice), signedShares(bidShares),
			formatSignedPrice(askPrice), signedShares(askShares))
	}
}

func signedShares(s int64) string {
	if s < 0 {
		return "-"
	}
	return humanize.Comma(s)
}

func snapshotOneFile(out io.Writer, file string, version itch.Version, tickers []string, depth int, every uint64) error {
	src, closer, err := itch.OpenByteSource(file)
	if err != nil {
		return err
	}
	defer closer.Close()

	parser := itch.NewParser(version, tickers)
	v := newSnapshotVisitor(out, depth, every)
	if err := itch.Run(parser, src, v); err != nil {
		return err
	}
	v.printAll()
	return nil
}
