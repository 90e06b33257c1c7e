package itch

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ByteSource is the parser's only external collaborator for input. It is
// intentionally narrow: read exactly N bytes, reposition, report the
// current absolute offset, and peek ahead without disturbing that
// offset. Any backing store — an in-memory buffer, a plain file, a
// memory-mapped file — can satisfy it.
//
// Grounded on original_source/src/buffer.rs's Peek trait: Peek saves the
// current position, seeks forward by ahead, reads size bytes, then
// restores the original position unconditionally, even if the read
// failed.
type ByteSource interface {
	// ReadExact fills dest completely or returns an error; a short read
	// is always an error, never a partial fill.
	ReadExact(dest []byte) error
	// Seek repositions using the same whence values as io.Seeker
	// (io.SeekStart, io.SeekCurrent, io.SeekEnd).
	Seek(offset int64, whence int) (int64, error)
	// Position reports the current absolute byte offset.
	Position() (int64, error)
	// Peek returns size bytes starting at the current position plus
	// ahead, without changing the current position. A short peek (not
	// enough bytes remain) fails with ErrShortPeek and leaves the
	// position untouched.
	Peek(ahead, size int) ([]byte, error)
}

// peekViaSeek implements ByteSource.Peek in terms of ReadExact+Seek+
// Position, for any source whose Seek is cheap and exact. Both of this
// package's ByteSource implementations use it.
func peekViaSeek(src ByteSource, ahead, size int) ([]byte, error) {
	original, err := src.Position()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	restore := func() error {
		_, serr := src.Seek(original, io.SeekStart)
		return serr
	}
	if _, err := src.Seek(int64(ahead), io.SeekCurrent); err != nil {
		_ = restore()
		return nil, err
	}
	n, rerr := readFull(src, buf)
	if rerr != nil {
		_ = restore()
		if rerr == io.ErrUnexpectedEOF || rerr == io.EOF {
			return nil, shortPeekErrorf(ahead, size, n)
		}
		return nil, rerr
	}
	if err := restore(); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFull reads len(buf) bytes via src.ReadExact, tolerating sources
// whose ReadExact already treats a short read as io.ErrUnexpectedEOF.
func readFull(src ByteSource, buf []byte) (int, error) {
	if err := src.ReadExact(buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// MemoryByteSource is a ByteSource over an in-memory byte slice — the
// whole-file-in-memory strategy original_source/src/buffer.rs calls
// Buffer (a Cursor<Vec<u8>>). Used directly for zstd-compressed input,
// since a zstd stream cannot be seeked, and for test fixtures.
type MemoryByteSource struct {
	data []byte
	pos  int64
}

// NewMemoryByteSource wraps data for sequential decode with peek support.
func NewMemoryByteSource(data []byte) *MemoryByteSource {
	return &MemoryByteSource{data: data}
}

func (m *MemoryByteSource) ReadExact(dest []byte) error {
	if m.pos < 0 || m.pos > int64(len(m.data)) {
		return io.EOF
	}
	avail := int64(len(m.data)) - m.pos
	if avail < int64(len(dest)) {
		return io.ErrUnexpectedEOF
	}
	copy(dest, m.data[m.pos:m.pos+int64(len(dest))])
	m.pos += int64(len(dest))
	return nil
}

func (m *MemoryByteSource) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if next < 0 {
		return 0, os.ErrInvalid
	}
	m.pos = next
	return m.pos, nil
}

func (m *MemoryByteSource) Position() (int64, error) { return m.pos, nil }

func (m *MemoryByteSource) Peek(ahead, size int) ([]byte, error) {
	return peekViaSeek(m, ahead, size)
}

// FileByteSource is a ByteSource over a plain (uncompressed) file on
// disk. It reads via ReadAt against an explicitly tracked logical
// position rather than the file's own offset, so repositioning for a
// peek never desynchronizes with a buffered reader the way wrapping
// *os.File in a bufio.Reader would.
type FileByteSource struct {
	f   *os.File
	pos int64
	end int64
}

// NewFileByteSource wraps an already-opened file.
func NewFileByteSource(f *os.File) (*FileByteSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileByteSource{f: f, end: info.Size()}, nil
}

func (s *FileByteSource) ReadExact(dest []byte) error {
	if len(dest) == 0 {
		return nil
	}
	n, err := s.f.ReadAt(dest, s.pos)
	s.pos += int64(n)
	if err != nil {
		if err == io.EOF && n == len(dest) {
			return nil
		}
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (s *FileByteSource) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.pos + offset
	case io.SeekEnd:
		next = s.end + offset
	default:
		return 0, os.ErrInvalid
	}
	if next < 0 {
		return 0, os.ErrInvalid
	}
	s.pos = next
	return s.pos, nil
}

func (s *FileByteSource) Position() (int64, error) { return s.pos, nil }

func (s *FileByteSource) Peek(ahead, size int) ([]byte, error) {
	return peekViaSeek(s, ahead, size)
}

// OpenByteSource opens filename as a ByteSource, transparently
// zstd-decompressing it into memory when the name ends in ".zst" or
// ".zstd" — the same filename-suffix convention compressed_io.go uses,
// but returning a seekable ByteSource rather than a plain io.Reader,
// since zstd's own stream does not support seeking and the parser's
// peek contract requires it.
func OpenByteSource(filename string) (ByteSource, io.Closer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(filename, ".zst") && !strings.HasSuffix(filename, ".zstd") {
		src, err := NewFileByteSource(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return src, f, nil
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	f.Close()
	if err != nil {
		return nil, nil, err
	}
	return NewMemoryByteSource(data), io.NopCloser(nil), nil
}
