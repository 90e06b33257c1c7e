package itch

import (
	"encoding/binary"
	"errors"
	"io"
)

// Parser is the pull-based ITCH decoder: each call to Next reads
// exactly one logical message matching the configured ticker filter,
// advancing the byte source past it (and past anything skipped along
// the way).
//
// Grounded almost line-for-line on original_source/src/reader.rs's
// Reader::extract_message and its per-kind parse_* helpers, adapted to
// Go's pull Next() (Message, error) style, the same shape
// dbn_scanner.go uses to pull one record per Next() call.
type Parser struct {
	version  Version
	tickers  map[string]struct{}
	wildcard bool
	ctx      *Context

	// queued holds the AddOrder half of a just-split Replace, returned
	// on the following Next call. A one-slot overflow queue suffices
	// since a Replace can only ever produce one pending message.
	queued Message

	scratch [24]byte // reused for fixed-width field reads
}

// NewParser returns a Parser for the given protocol version and ticker
// universe. Pass []string{EveryTicker} to accept every ticker without
// a membership peek.
func NewParser(version Version, tickers []string) *Parser {
	p := &Parser{version: version, tickers: make(map[string]struct{}, len(tickers)), ctx: NewContext()}
	for _, t := range tickers {
		if t == EveryTicker {
			p.wildcard = true
		}
		p.tickers[t] = struct{}{}
	}
	return p
}

// Context returns the parser's live order-reference table, primarily
// for tests that want to seed or inspect it directly.
func (p *Parser) Context() *Context { return p.ctx }

func (p *Parser) acceptsTicker(ticker string) bool {
	if p.wildcard {
		return true
	}
	_, ok := p.tickers[ticker]
	return ok
}

// Next returns the next message matching the filter policy, or
// ErrEndOfStream once the source is exhausted.
func (p *Parser) Next(src ByteSource) (Message, error) {
	if p.queued != nil {
		m := p.queued
		p.queued = nil
		return m, nil
	}

	for {
		// No byte left at a frame boundary is the clean end of input.
		if _, err := src.Peek(0, 1); err != nil {
			if errors.Is(err, ErrShortPeek) {
				return nil, ErrEndOfStream
			}
			return nil, err
		}
		size, err := p.readSize(src)
		if err != nil {
			return nil, err
		}
		kindBytes, err := src.Peek(0, 1)
		if err != nil {
			return nil, err
		}
		kind := Kind(kindBytes[0])

		if kind == KindTimestamp {
			if err := p.consumeTimestamp(src); err != nil {
				return nil, err
			}
			continue
		}

		msg, err := p.dispatch(src, kind)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}

		// Rejected by the pre-filter, or an unhandled kind: skip the
		// remaining frame bytes and probe one byte ahead to detect
		// end-of-stream before looping again.
		if _, err := src.Seek(int64(size), io.SeekCurrent); err != nil {
			return nil, err
		}
		if _, err := src.Peek(0, 1); err != nil {
			return nil, ErrEndOfStream
		}
	}
}

func (p *Parser) readSize(src ByteSource) (uint16, error) {
	buf := p.scratch[:2]
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (p *Parser) consumeTimestamp(src ByteSource) error {
	buf := p.scratch[:5]
	if err := src.ReadExact(buf); err != nil {
		return err
	}
	seconds := binary.BigEndian.Uint32(buf[1:5])
	p.ctx.UpdateClock(seconds)
	return nil
}

// dispatch peeks the pre-filter field for kind (if any), and on
// acceptance fully decodes the payload. A nil, nil return means the
// message was rejected by the filter and the caller should skip it.
func (p *Parser) dispatch(src ByteSource, kind Kind) (Message, error) {
	switch kind {
	case KindSystemEvent:
		return p.decodeSystemEvent(src)
	case KindStockDirectory:
		return p.decodeStockDirectory(src)
	case KindStockTradingAction:
		return p.decodeStockTradingAction(src)
	case KindRegSHO:
		return p.decodeRegSHO(src)
	case KindMarketParticipant:
		return p.decodeMarketParticipant(src)
	case KindAddOrder, KindAddOrderMPID:
		return p.decodeAddOrder(src, kind)
	case KindExecuteOrder, KindExecuteOrderWithPrice:
		return p.decodeExecuteOrder(src, kind)
	case KindCancelOrder:
		return p.decodeCancelOrder(src)
	case KindDeleteOrder:
		return p.decodeDeleteOrder(src)
	case KindReplaceOrder:
		return p.decodeReplaceOrder(src)
	case KindTrade:
		return p.decodeTrade(src)
	case KindCrossTrade:
		return p.decodeCrossTrade(src)
	case KindBrokenTrade:
		return p.decodeBrokenTrade(src)
	case KindNOII:
		return p.decodeNOII(src)
	default:
		return nil, nil // unhandled kind (e.g. MWCB/IPO): skip
	}
}

// --- shared field readers --------------------------------------------------

// consumeKindAndPrefix consumes the kind byte (already known from the
// peek) and, for V50, the 4-byte stock-locate + tracking-number prefix.
func (p *Parser) consumeKindAndPrefix(src ByteSource) error {
	width := 1
	if p.version == V50 {
		width += 4
	}
	buf := p.scratch[:width]
	return src.ReadExact(buf)
}

// nanos reads the nanoseconds field: 4 bytes combined with the context
// clock for V41, or an absolute 6-byte value for V50.
func (p *Parser) nanos(src ByteSource) (uint64, error) {
	if p.version == V50 {
		buf := p.scratch[:6]
		if err := src.ReadExact(buf); err != nil {
			return 0, err
		}
		return read48BE(buf), nil
	}
	buf := p.scratch[:4]
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return p.ctx.Nanos(binary.BigEndian.Uint32(buf))
}

func read48BE(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func (p *Parser) readU32(src ByteSource) (uint32, error) {
	buf := p.scratch[:4]
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (p *Parser) readU64(src ByteSource) (uint64, error) {
	buf := p.scratch[:8]
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

func (p *Parser) readByte(src ByteSource) (byte, error) {
	buf := p.scratch[:1]
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *Parser) readTicker(src ByteSource) (string, error) {
	buf := p.scratch[:8]
	if err := src.ReadExact(buf); err != nil {
		return "", err
	}
	return trimField(buf)
}

func (p *Parser) readMPID(src ByteSource) (string, error) {
	buf := p.scratch[:4]
	if err := src.ReadExact(buf); err != nil {
		return "", err
	}
	return trimField(buf)
}

func (p *Parser) readSide(src ByteSource) (Side, error) {
	b, err := p.readByte(src)
	if err != nil {
		return 0, err
	}
	switch Side(b) {
	case Buy, Sell:
		return Side(b), nil
	default:
		return 0, invalidDataErrorf("invalid side byte %q", b)
	}
}

func (p *Parser) readEventCode(src ByteSource) (EventCode, error) {
	b, err := p.readByte(src)
	if err != nil {
		return 0, err
	}
	switch EventCode(b) {
	case EventStartMessages, EventStartSystem, EventStartMarketHours, EventEndMarketHours,
		EventEndSystem, EventEndMessages, EventEmergencyMarketHalt, EventEmergencyMarketQuoteOnly,
		EventEmergencyMarketResumption:
		return EventCode(b), nil
	default:
		return 0, invalidDataErrorf("invalid event code %q", b)
	}
}

// --- per-kind decoders -------------------------------------------------

func (p *Parser) decodeSystemEvent(src ByteSource) (Message, error) {
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	code, err := p.readEventCode(src)
	if err != nil {
		return nil, err
	}
	return &SystemEvent{Nanos_: nanos, EventCode: code}, nil
}

func (p *Parser) peekReferenceTicker(src ByteSource, base int) (string, bool, error) {
	b, err := src.Peek(tickerPeekOffset(base, p.version), 8)
	if err != nil {
		return "", false, err
	}
	ticker, err := trimField(b)
	if err != nil {
		return "", false, err
	}
	return ticker, p.acceptsTicker(ticker), nil
}

func (p *Parser) decodeStockDirectory(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetReferenceData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	marketCategory, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	financialStatus, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	roundLotSize, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	roundLotsOnlyByte, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	roundLotsOnly, err := boolFromYN(roundLotsOnlyByte)
	if err != nil {
		return nil, err
	}
	return &StockDirectory{
		Nanos_:          nanos,
		Ticker:          gotTicker,
		MarketCategory:  marketCategory,
		FinancialStatus: financialStatus,
		RoundLotSize:    roundLotSize,
		RoundLotsOnly:   roundLotsOnly,
	}, nil
}

func (p *Parser) decodeStockTradingAction(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetReferenceData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	tradingState, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	if _, err := p.readByte(src); err != nil { // reserved
		return nil, err
	}
	reasonBuf := make([]byte, 4)
	if err := src.ReadExact(reasonBuf); err != nil {
		return nil, err
	}
	reason, err := trimField(reasonBuf)
	if err != nil {
		return nil, err
	}
	return &StockTradingAction{
		Nanos_:       nanos,
		Ticker:       gotTicker,
		TradingState: tradingState,
		Reason:       reason,
	}, nil
}

func (p *Parser) decodeRegSHO(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetReferenceData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	action, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	return &RegSHORestriction{Nanos_: nanos, Ticker: gotTicker, Action: action}, nil
}

func (p *Parser) decodeMarketParticipant(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetMarketParticipant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	mpid, err := p.readMPID(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	primaryByte, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	primary, err := boolFromYN(primaryByte)
	if err != nil {
		return nil, err
	}
	mode, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	state, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	return &MarketParticipantPosition{
		Nanos_:                 nanos,
		MPID:                   mpid,
		Ticker:                 gotTicker,
		PrimaryMarketMaker:     primary,
		MarketMakerMode:        mode,
		MarketParticipantState: state,
	}, nil
}

func (p *Parser) decodeAddOrder(src ByteSource, kind Kind) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetAddOrTrade)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	refno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	side, err := p.readSide(src)
	if err != nil {
		return nil, err
	}
	shares, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	price, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	var mpid string
	if kind == KindAddOrderMPID {
		mpid, err = p.readMPID(src)
		if err != nil {
			return nil, err
		}
	}
	p.ctx.AddOrder(refno, OrderState{Ticker: gotTicker, Side: side, Price: price, Shares: shares})
	return &AddOrder{
		Nanos_: nanos, Refno: refno, Side: side, Shares: shares,
		Ticker: gotTicker, Price: price, MPID: mpid, Kind_: kind,
	}, nil
}

// peekRefnoAccepted peeks the 8-byte refno field and reports whether it is
// currently live in the context. Execute/Cancel/Delete/Replace all
// share this pre-filter.
func (p *Parser) peekRefnoAccepted(src ByteSource) (uint64, bool, error) {
	b, err := src.Peek(refnoPeekOffset(p.version), 8)
	if err != nil {
		return 0, false, err
	}
	refno := binary.BigEndian.Uint64(b)
	return refno, p.ctx.HasOrder(refno), nil
}

func (p *Parser) decodeExecuteOrder(src ByteSource, kind Kind) (Message, error) {
	_, ok, err := p.peekRefnoAccepted(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	refno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	shares, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	matchno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	var printable bool
	var execPrice uint32
	if kind == KindExecuteOrderWithPrice {
		pb, err := p.readByte(src)
		if err != nil {
			return nil, err
		}
		printable, err = boolFromYN(pb)
		if err != nil {
			return nil, err
		}
		execPrice, err = p.readU32(src)
		if err != nil {
			return nil, err
		}
	}
	p.ctx.ReduceOrder(refno, shares)
	return &ExecuteOrder{
		Nanos_: nanos, Refno: refno, Shares: shares, Matchno: matchno,
		Kind_: kind, Printable: printable, ExecutionPrice: execPrice,
	}, nil
}

func (p *Parser) decodeCancelOrder(src ByteSource) (Message, error) {
	_, ok, err := p.peekRefnoAccepted(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	refno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	shares, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	p.ctx.ReduceOrder(refno, shares)
	return &CancelOrder{Nanos_: nanos, Refno: refno, Shares: shares}, nil
}

func (p *Parser) decodeDeleteOrder(src ByteSource) (Message, error) {
	refno, ok, err := p.peekRefnoAccepted(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	wireRefno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	state, _ := p.ctx.RemoveOrder(wireRefno)
	_ = refno // the peeked refno and the decoded refno are identical by construction
	return &DeleteOrder{
		Nanos_: nanos, Refno: wireRefno, Ticker: state.Ticker, Side: state.Side,
		Price: state.Price, Shares: state.Shares,
	}, nil
}

// decodeReplaceOrder implements the Replace split: it reads
// old_refno, new_refno, new_shares, new_price, removes old_refno from
// the context (capturing its ticker/side/price/shares), inserts
// new_refno with the new price/shares, and returns the DeleteOrder half
// immediately while queuing the AddOrder half for the following Next
// call. Both halves share the same nanosecond timestamp and are flagged
// FromReplace.
func (p *Parser) decodeReplaceOrder(src ByteSource) (Message, error) {
	_, ok, err := p.peekRefnoAccepted(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	oldRefno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	newRefno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	newShares, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	newPrice, err := p.readU32(src)
	if err != nil {
		return nil, err
	}

	old, _ := p.ctx.RemoveOrder(oldRefno)
	p.ctx.AddOrder(newRefno, OrderState{Ticker: old.Ticker, Side: old.Side, Price: newPrice, Shares: newShares})

	del := &DeleteOrder{
		Nanos_: nanos, Refno: oldRefno, Ticker: old.Ticker, Side: old.Side,
		Price: old.Price, Shares: old.Shares, FromReplace: true,
	}
	add := &AddOrder{
		Nanos_: nanos, Refno: newRefno, Side: old.Side, Shares: newShares,
		Ticker: old.Ticker, Price: newPrice, Kind_: KindAddOrder, FromReplace: true,
	}
	p.queued = add
	return del, nil
}

func (p *Parser) decodeTrade(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetAddOrTrade)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	refno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	side, err := p.readSide(src)
	if err != nil {
		return nil, err
	}
	shares, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	price, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	matchno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	return &Trade{
		Nanos_: nanos, Refno: refno, Side: side, Shares: shares,
		Ticker: gotTicker, Price: price, Matchno: matchno,
	}, nil
}

func (p *Parser) decodeCrossTrade(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetCrossTrade)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	shares, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	crossPrice, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	matchno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	crossType, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	return &CrossTrade{
		Nanos_: nanos, Shares: shares, Ticker: gotTicker,
		CrossPrice: crossPrice, Matchno: matchno, CrossType: crossType,
	}, nil
}

// decodeBrokenTrade always decodes: a broken trade carries no ticker,
// so no pre-filter is possible and every broken trade is surfaced.
func (p *Parser) decodeBrokenTrade(src ByteSource) (Message, error) {
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	matchno, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	return &BrokenTrade{Nanos_: nanos, Matchno: matchno}, nil
}

func (p *Parser) decodeNOII(src ByteSource) (Message, error) {
	ticker, ok, err := p.peekReferenceTicker(src, peekTickerOffsetNOII)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := p.consumeKindAndPrefix(src); err != nil {
		return nil, err
	}
	nanos, err := p.nanos(src)
	if err != nil {
		return nil, err
	}
	pairedShares, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	imbalanceShares, err := p.readU64(src)
	if err != nil {
		return nil, err
	}
	imbalanceDirection, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	gotTicker, err := p.readTicker(src)
	if err != nil {
		return nil, err
	}
	farPrice, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	nearPrice, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	refPrice, err := p.readU32(src)
	if err != nil {
		return nil, err
	}
	crossType, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	varIndicator, err := p.readByte(src)
	if err != nil {
		return nil, err
	}
	return &NetOrderImbalanceIndicator{
		Nanos_: nanos, PairedShares: pairedShares, ImbalanceShares: imbalanceShares,
		ImbalanceDirection: imbalanceDirection, Ticker: gotTicker, FarPrice: farPrice,
		NearPrice: nearPrice, CurrentReferencePrice: refPrice, CrossType: crossType,
		PriceVariationIndicator: varIndicator,
	}, nil
}
