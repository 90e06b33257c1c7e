package itch

// OrderState is the context's entry for a live order: enough to
// reconstruct a Delete or the "delete half" of a Replace without
// re-reading the original Add.
type OrderState struct {
	Ticker string
	Side   Side
	Price  uint32
	Shares uint32
}

// Context is the parser's authoritative map of live order reference
// numbers to their originating order, plus the V41 wall clock. Every
// non-add order-life-cycle message is resolved against ActiveOrders;
// the add/delete/replace operations define its lifecycle.
//
// Grounded on original_source/src/reader.rs's Context usage
// (has_order, update_clock, active_orders).
type Context struct {
	clockSeconds uint32
	clockSet     bool

	ActiveOrders map[uint64]OrderState
}

// NewContext returns an empty context with no clock set.
func NewContext() *Context {
	return &Context{ActiveOrders: make(map[uint64]OrderState)}
}

// UpdateClock sets the context's wall clock to seconds-since-midnight,
// as carried by a V41 'T' timestamp frame.
func (c *Context) UpdateClock(seconds uint32) {
	c.clockSeconds = seconds
	c.clockSet = true
}

// Nanos combines the context clock with a V41 message's 4-byte
// nanosecond offset. It fails with ErrMissingClock if no 'T'
// frame has been seen yet.
func (c *Context) Nanos(offsetNanos uint32) (uint64, error) {
	if !c.clockSet {
		return 0, ErrMissingClock
	}
	return combineNanos(c.clockSeconds, offsetNanos), nil
}

// HasOrder reports whether refno is currently live.
func (c *Context) HasOrder(refno uint64) bool {
	_, ok := c.ActiveOrders[refno]
	return ok
}

// Order returns the live order state for refno, if any.
func (c *Context) Order(refno uint64) (OrderState, bool) {
	s, ok := c.ActiveOrders[refno]
	return s, ok
}

// AddOrder inserts a new live order. Called only after every field of
// the originating Add/Replace-add has been fully decoded, so a partial
// frame never leaves the context inconsistent.
func (c *Context) AddOrder(refno uint64, state OrderState) {
	c.ActiveOrders[refno] = state
}

// RemoveOrder removes refno unconditionally (Delete, or the delete half
// of a Replace). Returns the removed state so the caller can populate a
// DeleteOrder's ticker/side/price/shares fields.
func (c *Context) RemoveOrder(refno uint64) (OrderState, bool) {
	s, ok := c.ActiveOrders[refno]
	if ok {
		delete(c.ActiveOrders, refno)
	}
	return s, ok
}

// ReduceOrder decreases refno's residual shares by n, removing the
// entry entirely once it reaches zero, per the OrderState invariant
// that residual_shares > 0. It saturates at zero rather than
// underflowing if n exceeds the residual: an over-large reduction also
// removes the entry. The context does not re-validate against the book.
func (c *Context) ReduceOrder(refno uint64, n uint32) {
	s, ok := c.ActiveOrders[refno]
	if !ok {
		return
	}
	if n >= s.Shares {
		delete(c.ActiveOrders, refno)
		return
	}
	s.Shares -= n
	c.ActiveOrders[refno] = s
}
