package itch_test

import (
	"github.com/marketfeeds/itch-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OrderBook", func() {
	var book *itch.OrderBook

	BeforeEach(func() {
		book = itch.NewOrderBook("AAPL")
	})

	It("aggregates shares added at the same price level", func() {
		book.Add(itch.Buy, 1500000, 100)
		book.Add(itch.Buy, 1500000, 50)
		snap := book.Snapshot(1)
		Expect(snap[0]).To(Equal(int64(1500000)))
		Expect(snap[1]).To(Equal(int64(150)))
	})

	It("ignores a zero-share Add", func() {
		book.Add(itch.Buy, 1500000, 0)
		snap := book.Snapshot(1)
		Expect(snap[0]).To(Equal(int64(-1)))
		Expect(snap[1]).To(Equal(int64(-1)))
	})

	It("removes a level entirely once its shares are fully subtracted", func() {
		book.Add(itch.Sell, 1500000, 100)
		Expect(book.Remove(itch.Sell, 1500000, 100)).To(Succeed())
		snap := book.Snapshot(1)
		Expect(snap[2]).To(Equal(int64(-1)))
	})

	It("fails with ErrBookInconsistency removing more than resting shares, without mutating the book", func() {
		book.Add(itch.Sell, 1500000, 50)
		err := book.Remove(itch.Sell, 1500000, 100)
		Expect(err).To(MatchError(itch.ErrBookInconsistency))

		snap := book.Snapshot(1)
		Expect(snap[2]).To(Equal(int64(1500000)))
		Expect(snap[3]).To(Equal(int64(50)))
	})

	It("fails with ErrBookInconsistency against a level that does not exist", func() {
		err := book.Execute(itch.Buy, 1500000, 10)
		Expect(err).To(MatchError(itch.ErrBookInconsistency))
	})

	It("orders bids descending and asks ascending", func() {
		book.Add(itch.Buy, 1000000, 10)
		book.Add(itch.Buy, 1500000, 20)
		book.Add(itch.Buy, 1200000, 30)
		book.Add(itch.Sell, 1800000, 40)
		book.Add(itch.Sell, 1600000, 50)

		snap := book.Snapshot(3)
		// bids: 1500000, 1200000, 1000000
		Expect(snap[0]).To(Equal(int64(1500000)))
		Expect(snap[2]).To(Equal(int64(1200000)))
		Expect(snap[4]).To(Equal(int64(1000000)))
		// asks: 1600000, 1800000, then padding
		Expect(snap[6]).To(Equal(int64(1600000)))
		Expect(snap[8]).To(Equal(int64(1800000)))
		Expect(snap[10]).To(Equal(int64(-1)))
		Expect(snap[11]).To(Equal(int64(-1)))
	})

	It("pads missing levels with -1 sentinels on an otherwise empty book", func() {
		snap := book.Snapshot(2)
		Expect(snap).To(Equal([]int64{-1, -1, -1, -1, -1, -1, -1, -1}))
	})

	It("selects the correct top-N out of many levels at a narrow depth", func() {
		prices := []uint32{1000000, 2000000, 3000000, 4000000, 5000000, 6000000, 7000000}
		for _, p := range prices {
			book.Add(itch.Buy, p, 10)
		}
		snap := book.Snapshot(2)
		Expect(snap[0]).To(Equal(int64(7000000)))
		Expect(snap[2]).To(Equal(int64(6000000)))
	})
})
