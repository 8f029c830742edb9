package store

import (
	"encoding/binary"
	"fmt"
)

// cursor is a small forward-only byte reader shared by every decoder in the
// codec layer. It never copies: readExact returns a sub-slice of the
// original buffer, which is safe because decoders only run against either
// an owned copy (simple family) or a borrowed slice the caller has promised
// not to retain past the callback that produced it (structured family).
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("store: truncated record")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU32LE() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readHash() (h [32]byte, err error) {
	b, err := c.readExact(32)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (c *cursor) atEnd() bool {
	return c.pos == len(c.b)
}
