package itch

// Message is implemented by every decoded ITCH message variant surfaced
// by Parser.Next. A Replace never implements Message: it is split into
// a DeleteOrder and an AddOrder before either reaches the caller.
type Message interface {
	// Kind returns the wire kind byte this message was decoded from.
	Kind() Kind
	// Nanos returns the message's timestamp in nanoseconds since
	// midnight, already combined with the parser context's clock for
	// V41 streams.
	Nanos() uint64
}

// SystemEvent reports a system-level event such as market open/close.
type SystemEvent struct {
	Nanos_    uint64
	EventCode EventCode
}

func (m *SystemEvent) Kind() Kind     { return KindSystemEvent }
func (m *SystemEvent) Nanos() uint64  { return m.Nanos_ }

// AddOrder creates a new resting order. FromReplace is set when this
// AddOrder was synthesized from the "add half" of a Replace message.
type AddOrder struct {
	Nanos_      uint64
	Refno       uint64
	Side        Side
	Shares      uint32
	Ticker      string
	Price       uint32
	MPID        string // empty unless Kind_ == KindAddOrderMPID
	Kind_       Kind
	FromReplace bool
}

func (m *AddOrder) Kind() Kind    { return m.Kind_ }
func (m *AddOrder) Nanos() uint64 { return m.Nanos_ }

// ExecuteOrder reports a full or partial fill against a resting order.
// Printable and ExecutionPrice are only meaningful when Kind_ ==
// KindExecuteOrderWithPrice.
type ExecuteOrder struct {
	Nanos_         uint64
	Refno          uint64
	Shares         uint32
	Matchno        uint64
	Kind_          Kind
	Printable      bool
	ExecutionPrice uint32
}

func (m *ExecuteOrder) Kind() Kind    { return m.Kind_ }
func (m *ExecuteOrder) Nanos() uint64 { return m.Nanos_ }

// CancelOrder reports a partial cancellation of a resting order.
type CancelOrder struct {
	Nanos_ uint64
	Refno  uint64
	Shares uint32
}

func (m *CancelOrder) Kind() Kind    { return KindCancelOrder }
func (m *CancelOrder) Nanos() uint64 { return m.Nanos_ }

// DeleteOrder removes a resting order in full. FromReplace is set when
// this DeleteOrder was synthesized from the "delete half" of a Replace
// message; in that case Ticker, Side, Price and Shares are the values
// the deleted order held immediately before the replace.
type DeleteOrder struct {
	Nanos_      uint64
	Refno       uint64
	Ticker      string
	Side        Side
	Price       uint32
	Shares      uint32
	FromReplace bool
}

func (m *DeleteOrder) Kind() Kind    { return KindDeleteOrder }
func (m *DeleteOrder) Nanos() uint64 { return m.Nanos_ }

// Trade reports a non-cross execution against the book, possibly for a
// non-displayed order that never appeared as an AddOrder.
type Trade struct {
	Nanos_  uint64
	Refno   uint64
	Side    Side
	Shares  uint32
	Ticker  string
	Price   uint32
	Matchno uint64
}

func (m *Trade) Kind() Kind    { return KindTrade }
func (m *Trade) Nanos() uint64 { return m.Nanos_ }

// CrossTrade reports an auction match (open, close, halt/IPO).
type CrossTrade struct {
	Nanos_     uint64
	Shares     uint64
	Ticker     string
	CrossPrice uint32
	Matchno    uint64
	CrossType  byte
}

func (m *CrossTrade) Kind() Kind    { return KindCrossTrade }
func (m *CrossTrade) Nanos() uint64 { return m.Nanos_ }

// BrokenTrade reports a previously reported trade being broken. The
// protocol carries no ticker, refno, side, shares or price for a broken
// trade; only the matched trade's match number survives.
type BrokenTrade struct {
	Nanos_  uint64
	Matchno uint64
}

func (m *BrokenTrade) Kind() Kind    { return KindBrokenTrade }
func (m *BrokenTrade) Nanos() uint64 { return m.Nanos_ }

// NetOrderImbalanceIndicator reports the imbalance ahead of a cross.
type NetOrderImbalanceIndicator struct {
	Nanos_                 uint64
	PairedShares           uint64
	ImbalanceShares        uint64
	ImbalanceDirection     byte
	Ticker                 string
	FarPrice               uint32
	NearPrice              uint32
	CurrentReferencePrice  uint32
	CrossType              byte
	PriceVariationIndicator byte
}

func (m *NetOrderImbalanceIndicator) Kind() Kind    { return KindNOII }
func (m *NetOrderImbalanceIndicator) Nanos() uint64 { return m.Nanos_ }

// --- Reference-data messages ---
//
// These never touch the parser context: they carry no order refno and
// do not participate in the order-life-cycle state machine. They are
// filtered by ticker exactly like AddOrder/Trade/NOII, at the offsets
// documented on peekTickerOffsetReferenceData (ticker immediately
// follows the nanoseconds field for StockDirectory, StockTradingAction
// and RegSHORestriction) and peekTickerOffsetMarketParticipant (a
// 4-byte MPID precedes the ticker in MarketParticipantPosition).

// StockDirectory describes a tradeable instrument's static attributes.
type StockDirectory struct {
	Nanos_              uint64
	Ticker              string
	MarketCategory      byte
	FinancialStatus     byte
	RoundLotSize        uint32
	RoundLotsOnly       bool
}

func (m *StockDirectory) Kind() Kind    { return KindStockDirectory }
func (m *StockDirectory) Nanos() uint64 { return m.Nanos_ }

// StockTradingAction reports a halt, quotation-only period, or resumption.
type StockTradingAction struct {
	Nanos_       uint64
	Ticker       string
	TradingState byte
	Reason       string // 4 ASCII chars, space-trimmed
}

func (m *StockTradingAction) Kind() Kind    { return KindStockTradingAction }
func (m *StockTradingAction) Nanos() uint64 { return m.Nanos_ }

// RegSHORestriction reports a change to a ticker's Reg SHO short-sale
// price-test restriction.
type RegSHORestriction struct {
	Nanos_  uint64
	Ticker  string
	Action  byte
}

func (m *RegSHORestriction) Kind() Kind    { return KindRegSHO }
func (m *RegSHORestriction) Nanos() uint64 { return m.Nanos_ }

// MarketParticipantPosition reports a market maker's registration state
// for a ticker.
type MarketParticipantPosition struct {
	Nanos_                 uint64
	MPID                   string
	Ticker                 string
	PrimaryMarketMaker     bool
	MarketMakerMode        byte
	MarketParticipantState byte
}

func (m *MarketParticipantPosition) Kind() Kind    { return KindMarketParticipant }
func (m *MarketParticipantPosition) Nanos() uint64 { return m.Nanos_ }
