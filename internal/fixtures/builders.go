// Package fixtures synthesizes ITCH wire bytes for tests: one builder
// function per message kind, parameterized by protocol version, so a
// test can construct an exact byte-level frame without hand-counting
// offsets.
//
// Grounded on other_examples' Go-native ITCH 5.0 binary encoder
// (EncodeBinary/encodeAddOrder et al: 2-byte length prefix + big-endian
// fixed-width fields) and original_source/src/message's per-kind
// builder-function shape (one function per kind taking its logical
// fields and returning wire bytes), generalized here to cover both V41
// (4-byte nanosecond offset, no stock-locate prefix) and V50 (4-byte
// stock-locate+tracking prefix, 6-byte absolute nanoseconds).
package fixtures

import "encoding/binary"

// Version mirrors itch.Version without importing the core package, so
// fixtures stays usable from itch's own _test.go files without an
// import cycle.
type Version uint8

const (
	V41 Version = iota
	V50
)

// frame wraps body in the u16-size ∥ body wire envelope.
func frame(body []byte) []byte {
	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(body)))
	copy(out[2:], body)
	return out
}

// builder accumulates a message body: kind byte, optional V50 prefix,
// nanoseconds, then kind-specific fields.
type builder struct {
	buf []byte
	v   Version
}

func newBuilder(v Version, kind byte) *builder {
	b := &builder{v: v}
	b.byte(kind)
	if v == V50 {
		b.u16(0).u16(0) // stock locate, tracking number: value is irrelevant, always discarded
	}
	return b
}

func (b *builder) byte(v byte) *builder { b.buf = append(b.buf, v); return b }

func (b *builder) u16(v uint16) *builder {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *builder) u32(v uint32) *builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *builder) u64(v uint64) *builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// nanos writes the version-dependent nanoseconds field: a 4-byte
// offset for V41 (combined with an out-of-band clock at decode time),
// or an absolute 6-byte value for V50.
func (b *builder) nanos(n uint64) *builder {
	if b.v == V41 {
		return b.u32(uint32(n))
	}
	var tmp [6]byte
	tmp[0] = byte(n >> 40)
	tmp[1] = byte(n >> 32)
	tmp[2] = byte(n >> 24)
	tmp[3] = byte(n >> 16)
	tmp[4] = byte(n >> 8)
	tmp[5] = byte(n)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *builder) ticker(s string) *builder { return b.fixed(s, 8) }
func (b *builder) mpid(s string) *builder   { return b.fixed(s, 4) }

func (b *builder) fixed(s string, width int) *builder {
	field := make([]byte, width)
	copy(field, s)
	for i := len(s); i < width; i++ {
		field[i] = ' '
	}
	b.buf = append(b.buf, field...)
	return b
}

func (b *builder) frame() []byte { return frame(b.buf) }

// Timestamp builds a V41 'T' out-of-band clock frame.
func Timestamp(seconds uint32) []byte {
	return frame([]byte{'T',
		byte(seconds >> 24), byte(seconds >> 16), byte(seconds >> 8), byte(seconds)})
}

// SystemEvent builds an 'S' frame.
func SystemEvent(v Version, nanos uint64, eventCode byte) []byte {
	return newBuilder(v, 'S').nanos(nanos).byte(eventCode).frame()
}

// StockDirectory builds an 'R' frame.
func StockDirectory(v Version, nanos uint64, ticker string, marketCategory, financialStatus byte, roundLotSize uint32, roundLotsOnly byte) []byte {
	return newBuilder(v, 'R').nanos(nanos).ticker(ticker).
		byte(marketCategory).byte(financialStatus).u32(roundLotSize).byte(roundLotsOnly).frame()
}

// StockTradingAction builds an 'H' frame.
func StockTradingAction(v Version, nanos uint64, ticker string, tradingState byte, reason string) []byte {
	return newBuilder(v, 'H').nanos(nanos).ticker(ticker).
		byte(tradingState).byte(' ').fixed(reason, 4).frame()
}

// RegSHO builds a 'Y' frame.
func RegSHO(v Version, nanos uint64, ticker string, action byte) []byte {
	return newBuilder(v, 'Y').nanos(nanos).ticker(ticker).byte(action).frame()
}

// MarketParticipant builds an 'L' frame.
func MarketParticipant(v Version, nanos uint64, mpid, ticker string, primary byte, mode, state byte) []byte {
	return newBuilder(v, 'L').nanos(nanos).mpid(mpid).ticker(ticker).
		byte(primary).byte(mode).byte(state).frame()
}

// AddOrder builds an 'A' frame.
func AddOrder(v Version, nanos uint64, refno uint64, side byte, shares uint32, ticker string, price uint32) []byte {
	return newBuilder(v, 'A').nanos(nanos).u64(refno).byte(side).u32(shares).ticker(ticker).u32(price).frame()
}

// AddOrderRawTicker builds an 'A' frame with the raw 8 bytes given used
// verbatim for the ticker field (no padding or trimming is applied),
// bypassing the string-based ticker() helper so a test can inject
// invalid-UTF-8 bytes.
func AddOrderRawTicker(v Version, nanos uint64, refno uint64, side byte, shares uint32, ticker [8]byte, price uint32) []byte {
	b := newBuilder(v, 'A').nanos(nanos).u64(refno).byte(side).u32(shares)
	b.buf = append(b.buf, ticker[:]...)
	return b.u32(price).frame()
}

// AddOrderMPID builds an 'F' frame.
func AddOrderMPID(v Version, nanos uint64, refno uint64, side byte, shares uint32, ticker string, price uint32, mpid string) []byte {
	return newBuilder(v, 'F').nanos(nanos).u64(refno).byte(side).u32(shares).ticker(ticker).u32(price).mpid(mpid).frame()
}

// ExecuteOrder builds an 'E' frame.
func ExecuteOrder(v Version, nanos uint64, refno uint64, shares uint32, matchno uint64) []byte {
	return newBuilder(v, 'E').nanos(nanos).u64(refno).u32(shares).u64(matchno).frame()
}

// ExecuteOrderWithPrice builds a 'C' frame.
func ExecuteOrderWithPrice(v Version, nanos uint64, refno uint64, shares uint32, matchno uint64, printable byte, price uint32) []byte {
	return newBuilder(v, 'C').nanos(nanos).u64(refno).u32(shares).u64(matchno).byte(printable).u32(price).frame()
}

// CancelOrder builds an 'X' frame.
func CancelOrder(v Version, nanos uint64, refno uint64, shares uint32) []byte {
	return newBuilder(v, 'X').nanos(nanos).u64(refno).u32(shares).frame()
}

// DeleteOrder builds a 'D' frame.
func DeleteOrder(v Version, nanos uint64, refno uint64) []byte {
	return newBuilder(v, 'D').nanos(nanos).u64(refno).frame()
}

// ReplaceOrder builds a 'U' frame.
func ReplaceOrder(v Version, nanos uint64, oldRefno, newRefno uint64, newShares, newPrice uint32) []byte {
	return newBuilder(v, 'U').nanos(nanos).u64(oldRefno).u64(newRefno).u32(newShares).u32(newPrice).frame()
}

// Trade builds a 'P' frame.
func Trade(v Version, nanos uint64, refno uint64, side byte, shares uint32, ticker string, price uint32, matchno uint64) []byte {
	return newBuilder(v, 'P').nanos(nanos).u64(refno).byte(side).u32(shares).ticker(ticker).u32(price).u64(matchno).frame()
}

// CrossTrade builds a 'Q' frame.
func CrossTrade(v Version, nanos uint64, shares uint64, ticker string, crossPrice uint32, matchno uint64, crossType byte) []byte {
	return newBuilder(v, 'Q').nanos(nanos).u64(shares).ticker(ticker).u32(crossPrice).u64(matchno).byte(crossType).frame()
}

// BrokenTrade builds a 'B' frame.
func BrokenTrade(v Version, nanos uint64, matchno uint64) []byte {
	return newBuilder(v, 'B').nanos(nanos).u64(matchno).frame()
}

// NOII builds an 'I' frame.
func NOII(v Version, nanos uint64, pairedShares, imbalanceShares uint64, imbalanceDirection byte, ticker string, farPrice, nearPrice, refPrice uint32, crossType, varIndicator byte) []byte {
	return newBuilder(v, 'I').nanos(nanos).u64(pairedShares).u64(imbalanceShares).byte(imbalanceDirection).
		ticker(ticker).u32(farPrice).u32(nearPrice).u32(refPrice).byte(crossType).byte(varIndicator).frame()
}

// Concat joins multiple frames into one contiguous byte stream.
func Concat(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
