package itch_test

import (
	"errors"

	fx "github.com/marketfeeds/itch-go/internal/fixtures"

	"github.com/marketfeeds/itch-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingVisitor embeds NullVisitor and records which On* method fired.
type recordingVisitor struct {
	itch.NullVisitor
	seen       []string
	streamDone bool
}

func (v *recordingVisitor) OnSystemEvent(*itch.SystemEvent) error {
	v.seen = append(v.seen, "SystemEvent")
	return nil
}
func (v *recordingVisitor) OnAddOrder(*itch.AddOrder) error {
	v.seen = append(v.seen, "AddOrder")
	return nil
}
func (v *recordingVisitor) OnExecuteOrder(*itch.ExecuteOrder) error {
	v.seen = append(v.seen, "ExecuteOrder")
	return nil
}
func (v *recordingVisitor) OnCancelOrder(*itch.CancelOrder) error {
	v.seen = append(v.seen, "CancelOrder")
	return nil
}
func (v *recordingVisitor) OnDeleteOrder(*itch.DeleteOrder) error {
	v.seen = append(v.seen, "DeleteOrder")
	return nil
}
func (v *recordingVisitor) OnTrade(*itch.Trade) error {
	v.seen = append(v.seen, "Trade")
	return nil
}
func (v *recordingVisitor) OnCrossTrade(*itch.CrossTrade) error {
	v.seen = append(v.seen, "CrossTrade")
	return nil
}
func (v *recordingVisitor) OnBrokenTrade(*itch.BrokenTrade) error {
	v.seen = append(v.seen, "BrokenTrade")
	return nil
}
func (v *recordingVisitor) OnNOII(*itch.NetOrderImbalanceIndicator) error {
	v.seen = append(v.seen, "NOII")
	return nil
}
func (v *recordingVisitor) OnStreamEnd() error {
	v.streamDone = true
	return nil
}

var _ = Describe("Dispatch", func() {
	It("routes each message kind to its matching Visitor method", func() {
		cases := []itch.Message{
			&itch.SystemEvent{},
			&itch.AddOrder{},
			&itch.ExecuteOrder{},
			&itch.CancelOrder{},
			&itch.DeleteOrder{},
			&itch.Trade{},
			&itch.CrossTrade{},
			&itch.BrokenTrade{},
			&itch.NetOrderImbalanceIndicator{},
		}
		want := []string{
			"SystemEvent", "AddOrder", "ExecuteOrder", "CancelOrder", "DeleteOrder",
			"Trade", "CrossTrade", "BrokenTrade", "NOII",
		}
		v := &recordingVisitor{}
		for _, m := range cases {
			Expect(itch.Dispatch(v, m)).To(Succeed())
		}
		Expect(v.seen).To(Equal(want))
	})

	It("routes reference-data kinds via the embedded no-op base", func() {
		v := &recordingVisitor{}
		Expect(itch.Dispatch(v, &itch.StockDirectory{})).To(Succeed())
		Expect(itch.Dispatch(v, &itch.StockTradingAction{})).To(Succeed())
		Expect(itch.Dispatch(v, &itch.RegSHORestriction{})).To(Succeed())
		Expect(itch.Dispatch(v, &itch.MarketParticipantPosition{})).To(Succeed())
	})
})

var _ = Describe("Run", func() {
	It("drives the parser to ErrEndOfStream, dispatching every message and finally OnStreamEnd", func() {
		stream := fx.Concat(
			fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000),
			fx.DeleteOrder(fx.V50, 2, 1),
		)
		p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
		src := itch.NewMemoryByteSource(stream)
		v := &recordingVisitor{}

		Expect(itch.Run(p, src, v)).To(Succeed())
		Expect(v.seen).To(Equal([]string{"AddOrder", "DeleteOrder"}))
		Expect(v.streamDone).To(BeTrue())
	})

	It("propagates a visitor error and stops the loop before OnStreamEnd", func() {
		boom := errors.New("boom")
		stream := fx.AddOrder(fx.V50, 1, 1, 'B', 100, "AAPL", 1500000)
		p := itch.NewParser(itch.V50, []string{itch.EveryTicker})
		src := itch.NewMemoryByteSource(stream)

		v := &failingVisitor{err: boom}
		err := itch.Run(p, src, v)
		Expect(err).To(MatchError(boom))
		Expect(v.streamEnded).To(BeFalse())
	})
})

type failingVisitor struct {
	itch.NullVisitor
	err         error
	streamEnded bool
}

func (v *failingVisitor) OnAddOrder(*itch.AddOrder) error { return v.err }
func (v *failingVisitor) OnStreamEnd() error {
	v.streamEnded = true
	return nil
}
