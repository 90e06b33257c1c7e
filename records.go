package itch

// Persisted record shapes: field order here defines the output schema
// regardless of which sink backend eventually serializes it.
// date is a caller-supplied calendar date (the file being decoded
// names the trading day; the core never infers one), stamped onto
// every record as it is built.

// OrderRecord is the order-life-cycle record: one per AddOrder,
// ExecuteOrder, CancelOrder or DeleteOrder surfaced by the parser.
type OrderRecord struct {
	Date           string `json:"date"`
	Nanos          uint64 `json:"nanoseconds"`
	Kind           Kind   `json:"kind"`
	Ticker         string `json:"ticker"`
	Side           Side   `json:"side"`
	Price          uint32 `json:"price"`
	Shares         uint32 `json:"shares"`
	Refno          uint64 `json:"refno"`
	FromReplace    bool   `json:"from_replace"`
	MPID           string `json:"mpid,omitempty"`
	Printable      bool   `json:"printable,omitempty"`
	ExecutionPrice uint32 `json:"execution_price,omitempty"`
}

// TradeRecord is the execution record: one per Trade, CrossTrade or
// BrokenTrade.
type TradeRecord struct {
	Date       string `json:"date"`
	Nanos      uint64 `json:"nanoseconds"`
	Kind       Kind   `json:"kind"`
	Refno      uint64 `json:"refno"`
	Side       Side   `json:"side"`
	Shares     uint64 `json:"shares"`
	Ticker     string `json:"ticker"`
	Price      uint32 `json:"price"`
	Matchno    uint64 `json:"matchno"`
	CrossPrice uint32 `json:"cross_price,omitempty"`
	CrossType  byte   `json:"cross_type,omitempty"`
}

// NOIIRecord is the net-order-imbalance record.
type NOIIRecord struct {
	Date                    string `json:"date"`
	Nanos                   uint64 `json:"nanoseconds"`
	Kind                    Kind   `json:"kind"`
	Ticker                  string `json:"ticker"`
	PairedShares            uint64 `json:"paired_shares"`
	ImbalanceShares         uint64 `json:"imbalance_shares"`
	ImbalanceDirection      byte   `json:"imbalance_direction"`
	FarPrice                uint32 `json:"far_price"`
	NearPrice               uint32 `json:"near_price"`
	RefPrice                uint32 `json:"ref_price"`
	CrossType               byte   `json:"cross_type"`
	PriceVariationIndicator byte   `json:"var_indicator"`
}

// SnapshotRecord is one order book's top-of-book snapshot.
type SnapshotRecord struct {
	Ticker    string  `json:"ticker"`
	Timestamp uint64  `json:"timestamp"`
	Data      []int64 `json:"data"` // length 4*depth, per OrderBook.Snapshot
}

// NewOrderRecord builds an OrderRecord from any of the four
// order-life-cycle message variants. It panics on an unhandled type,
// since the set of order-life-cycle Message implementations is closed
// by this package.
func NewOrderRecord(date string, msg Message) OrderRecord {
	switch m := msg.(type) {
	case *AddOrder:
		return OrderRecord{
			Date: date, Nanos: m.Nanos_, Kind: m.Kind_, Ticker: m.Ticker, Side: m.Side,
			Price: m.Price, Shares: m.Shares, Refno: m.Refno, FromReplace: m.FromReplace, MPID: m.MPID,
		}
	case *ExecuteOrder:
		return OrderRecord{
			Date: date, Nanos: m.Nanos_, Kind: m.Kind_, Shares: m.Shares, Refno: m.Refno,
			Printable: m.Printable, ExecutionPrice: m.ExecutionPrice,
		}
	case *CancelOrder:
		return OrderRecord{Date: date, Nanos: m.Nanos_, Kind: KindCancelOrder, Shares: m.Shares, Refno: m.Refno}
	case *DeleteOrder:
		return OrderRecord{
			Date: date, Nanos: m.Nanos_, Kind: KindDeleteOrder, Ticker: m.Ticker, Side: m.Side,
			Price: m.Price, Shares: m.Shares, Refno: m.Refno, FromReplace: m.FromReplace,
		}
	default:
		panic("itch: NewOrderRecord called with a non-order-life-cycle message")
	}
}

// NewTradeRecord builds a TradeRecord from a Trade, CrossTrade or
// BrokenTrade. A BrokenTrade carries no ticker, refno, side, shares or
// price on the wire; it synthesizes an empty ticker and a neutral
// (Buy) side so downstream consumers that key on Side never see a
// zero value they didn't ask for. A CrossTrade
// likewise carries no refno; it synthesizes refno 0 and Side Buy, and
// reports its cross price as both Price and CrossPrice.
func NewTradeRecord(date string, msg Message) TradeRecord {
	switch m := msg.(type) {
	case *Trade:
		return TradeRecord{
			Date: date, Nanos: m.Nanos_, Kind: KindTrade, Refno: m.Refno, Side: m.Side,
			Shares: uint64(m.Shares), Ticker: m.Ticker, Price: m.Price, Matchno: m.Matchno,
		}
	case *CrossTrade:
		return TradeRecord{
			Date: date, Nanos: m.Nanos_, Kind: KindCrossTrade, Refno: 0, Side: Buy,
			Shares: m.Shares, Ticker: m.Ticker, Price: m.CrossPrice, Matchno: m.Matchno,
			CrossPrice: m.CrossPrice, CrossType: m.CrossType,
		}
	case *BrokenTrade:
		return TradeRecord{
			Date: date, Nanos: m.Nanos_, Kind: KindBrokenTrade, Refno: 0, Side: Buy,
			Ticker: "", Matchno: m.Matchno,
		}
	default:
		panic("itch: NewTradeRecord called with a non-trade message")
	}
}

// NewNOIIRecord builds a NOIIRecord from a decoded NOII message.
func NewNOIIRecord(date string, m *NetOrderImbalanceIndicator) NOIIRecord {
	return NOIIRecord{
		Date: date, Nanos: m.Nanos_, Kind: KindNOII, Ticker: m.Ticker,
		PairedShares: m.PairedShares, ImbalanceShares: m.ImbalanceShares,
		ImbalanceDirection: m.ImbalanceDirection, FarPrice: m.FarPrice, NearPrice: m.NearPrice,
		RefPrice: m.CurrentReferencePrice, CrossType: m.CrossType,
		PriceVariationIndicator: m.PriceVariationIndicator,
	}
}

// NewSnapshotRecord builds a SnapshotRecord from an order book at the
// given depth.
func NewSnapshotRecord(book *OrderBook, depth int) SnapshotRecord {
	return SnapshotRecord{Ticker: book.Ticker, Timestamp: book.LastNanos, Data: book.Snapshot(depth)}
}
