package store

import "encoding/binary"

// compactSize is a Bitcoin/CKB-style variable-width length prefix: values
// below 0xfd encode as a single byte, larger values spill into a tag byte
// plus a fixed-width little-endian integer. No codec in this package calls
// these helpers; script args and the other lists carry fixed 4-byte
// prefixes.
type compactSize uint64

func appendCompactSize(buf []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xfd)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(n))
		return append(buf, tmp[:]...)
	case n <= 0xffff_ffff:
		buf = append(buf, 0xfe)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(n))
		return append(buf, tmp[:]...)
	default:
		buf = append(buf, 0xff)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], n)
		return append(buf, tmp[:]...)
	}
}

func (c *cursor) readCompactSize() (uint64, error) {
	tag, err := c.readU8()
	if err != nil {
		return 0, err
	}
	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		b, err := c.readExact(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case tag == 0xfe:
		b, err := c.readExact(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		b, err := c.readExact(8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	}
}
