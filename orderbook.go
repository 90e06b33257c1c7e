package itch

import "sort"

// priceLevel is one resting price level: price in fixed-point units and
// its total resting shares.
type priceLevel struct {
	price  uint32
	shares uint32
}

// OrderBook is a single ticker's two-sided resting-order aggregate,
// keyed by price rather than by individual order, since a snapshot
// consumer only ever needs the book's shape at a depth, never
// per-order identity.
//
// Grounded on original_source/src/orderbook.rs's OrderBook (BTreeMap
// per side, keyed by price); the Go port trades the original's
// always-sorted BTreeMap for plain maps plus an on-demand sort at
// Snapshot time, since every mutation (Add/Remove/Execute) is far more
// frequent than a snapshot.
type OrderBook struct {
	Ticker    string
	LastNanos uint64

	bids map[uint32]uint32
	asks map[uint32]uint32
}

// NewOrderBook returns an empty book for ticker.
func NewOrderBook(ticker string) *OrderBook {
	return &OrderBook{Ticker: ticker, bids: make(map[uint32]uint32), asks: make(map[uint32]uint32)}
}

func (b *OrderBook) side(s Side) map[uint32]uint32 {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Add increases price's resting shares on side by shares, creating the
// level if it does not yet exist.
func (b *OrderBook) Add(side Side, price uint32, shares uint32) {
	if shares == 0 {
		return
	}
	m := b.side(side)
	m[price] += shares
}

// Remove decreases price's resting shares on side by shares (a Cancel
// or a Delete's full residual). It fails with ErrBookInconsistency,
// leaving the book unmutated, if the level does not exist or holds
// fewer than shares.
func (b *OrderBook) Remove(side Side, price uint32, shares uint32) error {
	return b.subtract(side, price, shares)
}

// Execute decreases price's resting shares on side by shares, for a
// trade executed against a resting order. Arithmetically identical to
// Remove; kept as a distinct method so callers' intent and any future
// divergence (e.g. trade-specific bookkeeping) stay separated.
func (b *OrderBook) Execute(side Side, price uint32, shares uint32) error {
	return b.subtract(side, price, shares)
}

func (b *OrderBook) subtract(side Side, price uint32, shares uint32) error {
	m := b.side(side)
	resting, ok := m[price]
	if !ok || resting < shares {
		return ErrBookInconsistency
	}
	if resting == shares {
		delete(m, price)
		return nil
	}
	m[price] = resting - shares
	return nil
}

// Snapshot returns a flat []int64 of length 4*depth: depth (price,
// shares) pairs for bids (highest price first) followed by depth
// (price, shares) pairs for asks (lowest price first). Levels beyond
// what a side actually holds are padded with the sentinel -1.
//
// Flat-array layout, used so a sink can write a fixed-width row
// without a variable-length schema.
func (b *OrderBook) Snapshot(depth int) []int64 {
	out := make([]int64, 4*depth)
	for i := range out {
		out[i] = -1
	}
	writeSide := func(levels []priceLevel, base int) {
		for i := 0; i < depth && i < len(levels); i++ {
			out[base+2*i] = int64(levels[i].price)
			out[base+2*i+1] = int64(levels[i].shares)
		}
	}
	writeSide(topLevels(b.bids, depth, true), 0)
	writeSide(topLevels(b.asks, depth, false), 2*depth)
	return out
}

// topLevels selects the top `depth` levels from m in price order
// (descending for bids, ascending for asks). For typical depths (5-20)
// against book sizes in the thousands, a partial selection followed by
// a short sort of just the selected slice beats sorting the whole
// book.
func topLevels(m map[uint32]uint32, depth int, descending bool) []priceLevel {
	if len(m) == 0 || depth <= 0 {
		return nil
	}
	levels := make([]priceLevel, 0, len(m))
	for price, shares := range m {
		levels = append(levels, priceLevel{price: price, shares: shares})
	}
	less := func(a, b priceLevel) bool { return a.price < b.price }
	if descending {
		less = func(a, b priceLevel) bool { return a.price > b.price }
	}
	if depth < len(levels) {
		nthElementPartition(levels, depth, less)
		levels = levels[:depth]
	}
	sort.Slice(levels, func(i, j int) bool { return less(levels[i], levels[j]) })
	return levels
}

// nthElementPartition reorders levels in place so that the first n
// elements (by less) are the n smallest, unordered among themselves —
// a quickselect partition, cheaper than a full sort when n is much
// smaller than len(levels).
func nthElementPartition(levels []priceLevel, n int, less func(a, b priceLevel) bool) {
	lo, hi := 0, len(levels)-1
	for lo < hi {
		p := partition(levels, lo, hi, less)
		switch {
		case p == n:
			return
		case p < n:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(levels []priceLevel, lo, hi int, less func(a, b priceLevel) bool) int {
	pivot := levels[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if less(levels[j], pivot) {
			levels[i], levels[j] = levels[j], levels[i]
			i++
		}
	}
	levels[i], levels[hi] = levels[hi], levels[i]
	return i
}
