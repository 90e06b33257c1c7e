package itch_test

import (
	"github.com/marketfeeds/itch-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewOrderRecord", func() {
	It("builds from an AddOrder", func() {
		m := &itch.AddOrder{Nanos_: 1, Refno: 5, Side: itch.Buy, Shares: 100, Ticker: "AAPL", Price: 1500000, MPID: "ABCD", Kind_: itch.KindAddOrderMPID}
		r := itch.NewOrderRecord("2026-08-01", m)
		Expect(r.Kind).To(Equal(itch.KindAddOrderMPID))
		Expect(r.Ticker).To(Equal("AAPL"))
		Expect(r.MPID).To(Equal("ABCD"))
		Expect(r.Refno).To(Equal(uint64(5)))
		Expect(r.Date).To(Equal("2026-08-01"))
	})

	It("builds from an ExecuteOrder, carrying no ticker/side/price", func() {
		m := &itch.ExecuteOrder{Nanos_: 1, Refno: 5, Shares: 40, Matchno: 999, Kind_: itch.KindExecuteOrderWithPrice, Printable: true, ExecutionPrice: 1500000}
		r := itch.NewOrderRecord("2026-08-01", m)
		Expect(r.Kind).To(Equal(itch.KindExecuteOrderWithPrice))
		Expect(r.Ticker).To(Equal(""))
		Expect(r.Printable).To(BeTrue())
		Expect(r.ExecutionPrice).To(Equal(uint32(1500000)))
	})

	It("builds from a CancelOrder", func() {
		m := &itch.CancelOrder{Nanos_: 1, Refno: 5, Shares: 10}
		r := itch.NewOrderRecord("2026-08-01", m)
		Expect(r.Kind).To(Equal(itch.KindCancelOrder))
		Expect(r.Shares).To(Equal(uint32(10)))
	})

	It("builds from a DeleteOrder, carrying the removed order's full state", func() {
		m := &itch.DeleteOrder{Nanos_: 1, Refno: 5, Ticker: "AAPL", Side: itch.Sell, Price: 1500000, Shares: 100, FromReplace: true}
		r := itch.NewOrderRecord("2026-08-01", m)
		Expect(r.Ticker).To(Equal("AAPL"))
		Expect(r.Side).To(Equal(itch.Sell))
		Expect(r.FromReplace).To(BeTrue())
	})

	It("panics on a message outside the order life cycle", func() {
		m := &itch.Trade{}
		Expect(func() { itch.NewOrderRecord("2026-08-01", m) }).To(Panic())
	})
})

var _ = Describe("NewTradeRecord", func() {
	It("builds from a Trade", func() {
		m := &itch.Trade{Nanos_: 1, Refno: 5, Side: itch.Sell, Shares: 50, Ticker: "AAPL", Price: 1500000, Matchno: 321}
		r := itch.NewTradeRecord("2026-08-01", m)
		Expect(r.Kind).To(Equal(itch.KindTrade))
		Expect(r.Shares).To(Equal(uint64(50)))
		Expect(r.Side).To(Equal(itch.Sell))
	})

	It("synthesizes refno 0 and Side Buy for a CrossTrade, reporting the cross price twice", func() {
		m := &itch.CrossTrade{Nanos_: 1, Shares: 1000, Ticker: "AAPL", CrossPrice: 1500000, Matchno: 321, CrossType: 'O'}
		r := itch.NewTradeRecord("2026-08-01", m)
		Expect(r.Refno).To(Equal(uint64(0)))
		Expect(r.Side).To(Equal(itch.Buy))
		Expect(r.Price).To(Equal(uint32(1500000)))
		Expect(r.CrossPrice).To(Equal(uint32(1500000)))
		Expect(r.CrossType).To(Equal(byte('O')))
	})

	It("synthesizes an empty ticker and Side Buy for a BrokenTrade", func() {
		m := &itch.BrokenTrade{Nanos_: 1, Matchno: 321}
		r := itch.NewTradeRecord("2026-08-01", m)
		Expect(r.Ticker).To(Equal(""))
		Expect(r.Side).To(Equal(itch.Buy))
		Expect(r.Refno).To(Equal(uint64(0)))
		Expect(r.Matchno).To(Equal(uint64(321)))
	})

	It("panics on a message that is not a trade variant", func() {
		m := &itch.AddOrder{}
		Expect(func() { itch.NewTradeRecord("2026-08-01", m) }).To(Panic())
	})
})

var _ = Describe("NewNOIIRecord", func() {
	It("copies every field from the decoded message", func() {
		m := &itch.NetOrderImbalanceIndicator{
			Nanos_: 1, PairedShares: 10000, ImbalanceShares: 500, ImbalanceDirection: 'B',
			Ticker: "AAPL", FarPrice: 1500000, NearPrice: 1510000, CurrentReferencePrice: 1505000,
			CrossType: 'O', PriceVariationIndicator: 'L',
		}
		r := itch.NewNOIIRecord("2026-08-01", m)
		Expect(r.Ticker).To(Equal("AAPL"))
		Expect(r.PairedShares).To(Equal(uint64(10000)))
		Expect(r.RefPrice).To(Equal(uint32(1505000)))
	})
})

var _ = Describe("NewSnapshotRecord", func() {
	It("captures the book's ticker, clock and flat snapshot data", func() {
		book := itch.NewOrderBook("AAPL")
		book.Add(itch.Buy, 1500000, 100)
		book.LastNanos = 42
		r := itch.NewSnapshotRecord(book, 1)
		Expect(r.Ticker).To(Equal("AAPL"))
		Expect(r.Timestamp).To(Equal(uint64(42)))
		Expect(r.Data).To(Equal([]int64{1500000, 100, -1, -1}))
	})
})
