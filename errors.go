package itch

import "fmt"

// Sentinel errors, one per failure category. Wrap with fmt.Errorf's
// %w verb when adding context so callers can still match with errors.Is.
var (
	// ErrEndOfStream is the pull loop's normal terminal condition: no
	// further frame exists after the current position.
	ErrEndOfStream = fmt.Errorf("itch: end of stream")

	// ErrInvalidData covers unknown event/side codes and non-UTF-8
	// ticker/MPID fields: a message that is structurally decodable but
	// carries a value outside what the protocol defines.
	ErrInvalidData = fmt.Errorf("itch: invalid data")

	// ErrMissingClock is raised when a V41 message is decoded before
	// any 'T' timestamp frame has set the context clock.
	ErrMissingClock = fmt.Errorf("itch: nanoseconds requested before clock was set")

	// ErrBookInconsistency is raised by OrderBook.Remove/Execute when
	// the requested shares exceed the level's resting shares, or the
	// level does not exist. The book is not mutated when this is
	// returned.
	ErrBookInconsistency = fmt.Errorf("itch: order book inconsistency")

	// ErrShortPeek is raised by a ByteSource.Peek implementation when
	// fewer than the requested bytes remain in the stream.
	ErrShortPeek = fmt.Errorf("itch: short peek")
)

func invalidDataErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidData}, args...)...)
}

func shortPeekErrorf(ahead, size, got int) error {
	return fmt.Errorf("%w: wanted %d bytes at +%d, got %d", ErrShortPeek, size, ahead, got)
}
