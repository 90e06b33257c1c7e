package itch

import (
	"bytes"
	"encoding/binary"
)

// Encode serializes m back into the wire frame Parser.Next would need
// to decode it for the given version: a u16 size prefix followed by
// the kind byte, the V50 stock-locate+tracking prefix when v == V50,
// and the kind's fields in the same order decodeXxx reads them.
//
// For V41, the nanoseconds field is written as the 4-byte offset
// m.Nanos() % 1e9; the caller supplies the matching whole-second clock
// value separately (e.g. via a Timestamp frame decoded first), the
// same split a live V41 feed uses between its 'T' frames and each
// message's own offset.
//
// Encode has no pre-filter peek fields to reconstruct: a round trip
// through a Parser configured with EveryTicker decodes every field
// Encode wrote.
func Encode(m Message, v Version) []byte {
	var body bytes.Buffer
	body.WriteByte(byte(m.Kind()))
	if v == V50 {
		body.Write([]byte{0, 0, 0, 0}) // stock locate + tracking number: not reconstructible, always discarded on decode
	}
	writeNanos(&body, v, m.Nanos())

	switch msg := m.(type) {
	case *SystemEvent:
		body.WriteByte(byte(msg.EventCode))

	case *StockDirectory:
		writeTicker(&body, msg.Ticker)
		body.WriteByte(msg.MarketCategory)
		body.WriteByte(msg.FinancialStatus)
		writeU32(&body, msg.RoundLotSize)
		body.WriteByte(boolToYN(msg.RoundLotsOnly))

	case *StockTradingAction:
		writeTicker(&body, msg.Ticker)
		body.WriteByte(msg.TradingState)
		body.WriteByte(' ') // reserved
		writeFixed(&body, msg.Reason, 4)

	case *RegSHORestriction:
		writeTicker(&body, msg.Ticker)
		body.WriteByte(msg.Action)

	case *MarketParticipantPosition:
		writeFixed(&body, msg.MPID, 4)
		writeTicker(&body, msg.Ticker)
		body.WriteByte(boolToYN(msg.PrimaryMarketMaker))
		body.WriteByte(msg.MarketMakerMode)
		body.WriteByte(msg.MarketParticipantState)

	case *AddOrder:
		writeU64(&body, msg.Refno)
		body.WriteByte(byte(msg.Side))
		writeU32(&body, msg.Shares)
		writeTicker(&body, msg.Ticker)
		writeU32(&body, msg.Price)
		if msg.Kind_ == KindAddOrderMPID {
			writeFixed(&body, msg.MPID, 4)
		}

	case *ExecuteOrder:
		writeU64(&body, msg.Refno)
		writeU32(&body, msg.Shares)
		writeU64(&body, msg.Matchno)
		if msg.Kind_ == KindExecuteOrderWithPrice {
			body.WriteByte(boolToYN(msg.Printable))
			writeU32(&body, msg.ExecutionPrice)
		}

	case *CancelOrder:
		writeU64(&body, msg.Refno)
		writeU32(&body, msg.Shares)

	case *DeleteOrder:
		writeU64(&body, msg.Refno)

	case *Trade:
		writeU64(&body, msg.Refno)
		body.WriteByte(byte(msg.Side))
		writeU32(&body, msg.Shares)
		writeTicker(&body, msg.Ticker)
		writeU32(&body, msg.Price)
		writeU64(&body, msg.Matchno)

	case *CrossTrade:
		writeU64(&body, msg.Shares)
		writeTicker(&body, msg.Ticker)
		writeU32(&body, msg.CrossPrice)
		writeU64(&body, msg.Matchno)
		body.WriteByte(msg.CrossType)

	case *BrokenTrade:
		writeU64(&body, msg.Matchno)

	case *NetOrderImbalanceIndicator:
		writeU64(&body, msg.PairedShares)
		writeU64(&body, msg.ImbalanceShares)
		body.WriteByte(msg.ImbalanceDirection)
		writeTicker(&body, msg.Ticker)
		writeU32(&body, msg.FarPrice)
		writeU32(&body, msg.NearPrice)
		writeU32(&body, msg.CurrentReferencePrice)
		body.WriteByte(msg.CrossType)
		body.WriteByte(msg.PriceVariationIndicator)
	}

	return frame(body.Bytes())
}

// frame wraps body in the u16-size ∥ body wire envelope Parser.readSize
// expects.
func frame(body []byte) []byte {
	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(body)))
	copy(out[2:], body)
	return out
}

func writeNanos(buf *bytes.Buffer, v Version, nanos uint64) {
	if v == V50 {
		var tmp [6]byte
		tmp[0] = byte(nanos >> 40)
		tmp[1] = byte(nanos >> 32)
		tmp[2] = byte(nanos >> 24)
		tmp[3] = byte(nanos >> 16)
		tmp[4] = byte(nanos >> 8)
		tmp[5] = byte(nanos)
		buf.Write(tmp[:])
		return
	}
	writeU32(buf, uint32(nanos%1_000_000_000))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

// writeTicker space-pads s to the protocol's fixed 8-byte ticker width.
func writeTicker(buf *bytes.Buffer, s string) { writeFixed(buf, s, 8) }

// writeFixed space-pads (or truncates) s to width bytes.
func writeFixed(buf *bytes.Buffer, s string, width int) {
	field := make([]byte, width)
	copy(field, s)
	for i := len(s); i < width; i++ {
		field[i] = ' '
	}
	buf.Write(field)
}
