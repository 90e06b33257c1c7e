package itch_test

import (
	fx "github.com/marketfeeds/itch-go/internal/fixtures"

	"github.com/marketfeeds/itch-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parser", func() {
	Describe("V50 decoding", func() {
		It("decodes an AddOrder and registers it in the context", func() {
			stream := fx.AddOrder(fx.V50, 34_200_000_000_000, 1, 'B', 100, "AAPL", 1500000)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			add, ok := msg.(*itch.AddOrder)
			Expect(ok).To(BeTrue())
			Expect(add.Refno).To(Equal(uint64(1)))
			Expect(add.Side).To(Equal(itch.Buy))
			Expect(add.Shares).To(Equal(uint32(100)))
			Expect(add.Ticker).To(Equal("AAPL"))
			Expect(add.Price).To(Equal(uint32(1500000)))
			Expect(add.Nanos()).To(Equal(uint64(34_200_000_000_000)))

			Expect(p.Context().HasOrder(1)).To(BeTrue())
			state, ok := p.Context().Order(1)
			Expect(ok).To(BeTrue())
			Expect(state).To(Equal(itch.OrderState{Ticker: "AAPL", Side: itch.Buy, Price: 1500000, Shares: 100}))
		})

		It("reaches ErrEndOfStream once every frame is consumed", func() {
			stream := fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(Succeed())
			_, err = p.Next(src)
			Expect(err).To(MatchError(itch.ErrEndOfStream))
		})

		It("rejects a message for an excluded ticker via the pre-filter peek, never mutating the context", func() {
			stream := fx.AddOrder(fx.V50, 1, 1, 'B', 100, "MSFT", 1500000)
			p := itch.NewParser(itch.V50, []string{"AAPL"})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(MatchError(itch.ErrEndOfStream))
			Expect(p.Context().HasOrder(1)).To(BeFalse())
		})

		It("accepts a message whose ticker is in an explicit allow-list", func() {
			stream := fx.Concat(
				fx.AddOrder(fx.V50, 1, 1, 'B', 100, "MSFT", 1500000),
				fx.AddOrder(fx.V50, 2, 2, 'B', 200, "AAPL", 2000000),
			)
			p := itch.NewParser(itch.V50, []string{"AAPL"})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			add := msg.(*itch.AddOrder)
			Expect(add.Ticker).To(Equal("AAPL"))
			Expect(add.Refno).To(Equal(uint64(2)))
		})

		It("rejects a non-UTF-8 ticker field with ErrInvalidData", func() {
			var raw [8]byte
			copy(raw[:], []byte{0xff, 0xfe, 'A', 'A', ' ', ' ', ' ', ' '})
			stream := fx.AddOrderRawTicker(fx.V50, 1, 1, 'B', 100, raw, 1500000)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(MatchError(itch.ErrInvalidData))
		})
	})

	Describe("order lifecycle", func() {
		It("reduces residual shares on a partial ExecuteOrder", func() {
			stream := fx.Concat(
				fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000),
				fx.ExecuteOrder(fx.V50, 2, 1, 40, 999),
			)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(Succeed())

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			exec := msg.(*itch.ExecuteOrder)
			Expect(exec.Shares).To(Equal(uint32(40)))
			Expect(exec.Matchno).To(Equal(uint64(999)))

			state, ok := p.Context().Order(1)
			Expect(ok).To(BeTrue())
			Expect(state.Shares).To(Equal(uint32(60)))
		})

		It("removes the context entry once ExecuteOrder exhausts the residual shares", func() {
			stream := fx.Concat(
				fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000),
				fx.ExecuteOrder(fx.V50, 2, 1, 100, 999),
			)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(Succeed())
			_, err = p.Next(src)
			Expect(err).To(Succeed())
			Expect(p.Context().HasOrder(1)).To(BeFalse())
		})

		It("skips a CancelOrder against a refno that was never added", func() {
			stream := fx.CancelOrder(fx.V50, 1, 77, 10)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(MatchError(itch.ErrEndOfStream))
		})

		It("carries the removed order's full state on DeleteOrder", func() {
			stream := fx.Concat(
				fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000),
				fx.DeleteOrder(fx.V50, 2, 1),
			)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(Succeed())

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			del := msg.(*itch.DeleteOrder)
			Expect(del.Ticker).To(Equal("AAPL"))
			Expect(del.Side).To(Equal(itch.Buy))
			Expect(del.Price).To(Equal(uint32(1500000)))
			Expect(del.Shares).To(Equal(uint32(100)))
			Expect(del.FromReplace).To(BeFalse())

			Expect(p.Context().HasOrder(1)).To(BeFalse())
		})

		It("splits a Replace into a DeleteOrder followed by a queued AddOrder", func() {
			stream := fx.Concat(
				fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000),
				fx.ReplaceOrder(fx.V50, 2, 1, 2, 150, 1600000),
			)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(Succeed())

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			del := msg.(*itch.DeleteOrder)
			Expect(del.Refno).To(Equal(uint64(1)))
			Expect(del.FromReplace).To(BeTrue())
			Expect(del.Ticker).To(Equal("AAPL"))
			Expect(del.Shares).To(Equal(uint32(100)))

			msg, err = p.Next(src)
			Expect(err).To(Succeed())
			add := msg.(*itch.AddOrder)
			Expect(add.Refno).To(Equal(uint64(2)))
			Expect(add.FromReplace).To(BeTrue())
			Expect(add.Ticker).To(Equal("AAPL"))
			Expect(add.Shares).To(Equal(uint32(150)))
			Expect(add.Price).To(Equal(uint32(1600000)))

			Expect(p.Context().HasOrder(1)).To(BeFalse())
			state, ok := p.Context().Order(2)
			Expect(ok).To(BeTrue())
			Expect(state.Shares).To(Equal(uint32(150)))

			_, err = p.Next(src)
			Expect(err).To(MatchError(itch.ErrEndOfStream))
		})
	})

	Describe("V41 out-of-band clock", func() {
		It("fails with ErrMissingClock before any Timestamp frame has been seen", func() {
			stream := fx.AddOrder(fx.V41, 500_000, 1, 'B', 100, "AAPL", 1500000)
			p := itch.NewParser(itch.V41, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			_, err := p.Next(src)
			Expect(err).To(MatchError(itch.ErrMissingClock))
		})

		It("combines a prior Timestamp frame with each message's own offset", func() {
			stream := fx.Concat(
				fx.Timestamp(34200),
				fx.AddOrder(fx.V41, 500_000, 1, 'B', 100, "AAPL", 1500000),
			)
			p := itch.NewParser(itch.V41, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			Expect(msg.Nanos()).To(Equal(uint64(34200)*1_000_000_000 + 500_000))
		})

		It("updates the clock again on a later Timestamp frame", func() {
			stream := fx.Concat(
				fx.Timestamp(34200),
				fx.AddOrder(fx.V41, 0, 1, 'B', 100, "AAPL", 1500000),
				fx.Timestamp(34260),
				fx.AddOrder(fx.V41, 0, 2, 'S', 100, "AAPL", 1500000),
			)
			p := itch.NewParser(itch.V41, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			first, err := p.Next(src)
			Expect(err).To(Succeed())
			Expect(first.Nanos()).To(Equal(uint64(34200) * 1_000_000_000))

			second, err := p.Next(src)
			Expect(err).To(Succeed())
			Expect(second.Nanos()).To(Equal(uint64(34260) * 1_000_000_000))
		})
	})

	Describe("trades and imbalance", func() {
		It("decodes a Trade without touching the context", func() {
			stream := fx.Trade(fx.V50, 1, 5, 'S', 50, "AAPL", 1500000, 321)
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			tr := msg.(*itch.Trade)
			Expect(tr.Ticker).To(Equal("AAPL"))
			Expect(tr.Matchno).To(Equal(uint64(321)))
			Expect(p.Context().HasOrder(5)).To(BeFalse())
		})

		It("decodes a CrossTrade", func() {
			stream := fx.CrossTrade(fx.V50, 1, 1000, "AAPL", 1500000, 321, 'O')
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			ct := msg.(*itch.CrossTrade)
			Expect(ct.Shares).To(Equal(uint64(1000)))
			Expect(ct.CrossType).To(Equal(byte('O')))
		})

		It("decodes a BrokenTrade unconditionally, with no ticker filter applicable", func() {
			stream := fx.BrokenTrade(fx.V50, 1, 321)
			p := itch.NewParser(itch.V50, []string{"AAPL"})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			bt := msg.(*itch.BrokenTrade)
			Expect(bt.Matchno).To(Equal(uint64(321)))
		})

		It("decodes a NetOrderImbalanceIndicator", func() {
			stream := fx.NOII(fx.V50, 1, 10000, 500, 'B', "AAPL", 1500000, 1510000, 1505000, 'O', 'L')
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			noii := msg.(*itch.NetOrderImbalanceIndicator)
			Expect(noii.PairedShares).To(Equal(uint64(10000)))
			Expect(noii.ImbalanceShares).To(Equal(uint64(500)))
			Expect(noii.Ticker).To(Equal("AAPL"))
		})
	})

	Describe("reference data", func() {
		It("decodes a StockDirectory", func() {
			stream := fx.StockDirectory(fx.V50, 1, "AAPL", 'Q', 'N', 100, 'Y')
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			sd := msg.(*itch.StockDirectory)
			Expect(sd.Ticker).To(Equal("AAPL"))
			Expect(sd.RoundLotSize).To(Equal(uint32(100)))
			Expect(sd.RoundLotsOnly).To(BeTrue())
		})

		It("decodes a StockTradingAction", func() {
			stream := fx.StockTradingAction(fx.V50, 1, "AAPL", 'H', "T1  ")
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			sta := msg.(*itch.StockTradingAction)
			Expect(sta.TradingState).To(Equal(byte('H')))
			Expect(sta.Reason).To(Equal("T1"))
		})

		It("decodes a RegSHORestriction", func() {
			stream := fx.RegSHO(fx.V50, 1, "AAPL", '1')
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			rr := msg.(*itch.RegSHORestriction)
			Expect(rr.Action).To(Equal(byte('1')))
		})

		It("decodes a MarketParticipantPosition", func() {
			stream := fx.MarketParticipant(fx.V50, 1, "ABCD", "AAPL", 'Y', 'N', 'A')
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			mp := msg.(*itch.MarketParticipantPosition)
			Expect(mp.MPID).To(Equal("ABCD"))
			Expect(mp.PrimaryMarketMaker).To(BeTrue())
		})
	})

	Describe("SystemEvent", func() {
		It("decodes a documented event code", func() {
			stream := fx.SystemEvent(fx.V50, 1, byte(itch.EventStartMarketHours))
			p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
			src := itch.NewMemoryByteSource(stream)

			msg, err := p.Next(src)
			Expect(err).To(Succeed())
			se := msg.(*itch.SystemEvent)
			Expect(se.EventCode).To(Equal(itch.EventStartMarketHours))
		})
	})
})
