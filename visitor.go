package itch

// Visitor receives one callback per decoded message kind, letting a
// caller route messages to order-book updates and record construction
// without a type switch at every call site. Core message kinds and the
// supplemented reference-data kinds (StockDirectory, StockTradingAction,
// RegSHORestriction, MarketParticipantPosition) both get a method;
// OnStreamEnd fires once the pull loop reaches ErrEndOfStream.
//
// Dispatches one callback per message kind in a comparable pull loop
// to a DBN record visitor, generalized here to ITCH's message set.
type Visitor interface {
	OnSystemEvent(*SystemEvent) error
	OnAddOrder(*AddOrder) error
	OnExecuteOrder(*ExecuteOrder) error
	OnCancelOrder(*CancelOrder) error
	OnDeleteOrder(*DeleteOrder) error
	OnTrade(*Trade) error
	OnCrossTrade(*CrossTrade) error
	OnBrokenTrade(*BrokenTrade) error
	OnNOII(*NetOrderImbalanceIndicator) error

	OnStockDirectory(*StockDirectory) error
	OnStockTradingAction(*StockTradingAction) error
	OnRegSHORestriction(*RegSHORestriction) error
	OnMarketParticipantPosition(*MarketParticipantPosition) error

	OnStreamEnd() error
}

// Dispatch routes msg to the appropriate Visitor method. It panics on
// an unrecognized Message implementation, since Message is a closed
// set within this package.
func Dispatch(v Visitor, msg Message) error {
	switch m := msg.(type) {
	case *SystemEvent:
		return v.OnSystemEvent(m)
	case *AddOrder:
		return v.OnAddOrder(m)
	case *ExecuteOrder:
		return v.OnExecuteOrder(m)
	case *CancelOrder:
		return v.OnCancelOrder(m)
	case *DeleteOrder:
		return v.OnDeleteOrder(m)
	case *Trade:
		return v.OnTrade(m)
	case *CrossTrade:
		return v.OnCrossTrade(m)
	case *BrokenTrade:
		return v.OnBrokenTrade(m)
	case *NetOrderImbalanceIndicator:
		return v.OnNOII(m)
	case *StockDirectory:
		return v.OnStockDirectory(m)
	case *StockTradingAction:
		return v.OnStockTradingAction(m)
	case *RegSHORestriction:
		return v.OnRegSHORestriction(m)
	case *MarketParticipantPosition:
		return v.OnMarketParticipantPosition(m)
	default:
		panic("itch: Dispatch called with an unrecognized Message implementation")
	}
}

// Run drives src through p until ErrEndOfStream, calling Dispatch for
// every surfaced message and finally v.OnStreamEnd. Any other error
// from Next or from a visitor method stops the loop and is returned.
func Run(p *Parser, src ByteSource, v Visitor) error {
	for {
		msg, err := p.Next(src)
		if err == ErrEndOfStream {
			return v.OnStreamEnd()
		}
		if err != nil {
			return err
		}
		if err := Dispatch(v, msg); err != nil {
			return err
		}
	}
}
