// Package bin is a small declarative binary-schema engine.
//
// A layout is described once as a tree of Codec values (primitives combined
// with Struct, Array and Enum) and then read from any number of buffers.
// Every codec has a fixed length known at construction time, and reading is a
// pure function of (buffer, offset): nothing is cached and no reference to
// the buffer survives a Read.
package bin

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a read would go past either end of the buffer.
var ErrOutOfRange = errors.New("read out of range")

// Codec reads one fixed-length value at an absolute offset.
type Codec interface {
	Read(buf []byte, off int) (any, error)
	Len() int
}

func checkRange(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(buf) || len(buf)-off < n {
		return fmt.Errorf("%w: %d bytes at 0x%X, buffer holds 0x%X", ErrOutOfRange, n, off, len(buf))
	}
	return nil
}

type uintCodec struct {
	size  int
	order binary.ByteOrder
}

func (c uintCodec) Len() int { return c.size }

func (c uintCodec) Read(buf []byte, off int) (any, error) {
	if err := checkRange(buf, off, c.size); err != nil {
		return nil, err
	}
	switch c.size {
	case 1:
		return buf[off], nil
	case 2:
		return c.order.Uint16(buf[off:]), nil
	default:
		return c.order.Uint32(buf[off:]), nil
	}
}

// Unsigned integer primitives. U8 yields uint8, the 16-bit forms uint16 and
// the 32-bit forms uint32.
var (
	U8    Codec = uintCodec{1, binary.LittleEndian}
	U16LE Codec = uintCodec{2, binary.LittleEndian}
	U16BE Codec = uintCodec{2, binary.BigEndian}
	U32LE Codec = uintCodec{4, binary.LittleEndian}
	U32BE Codec = uintCodec{4, binary.BigEndian}
)

type bytesCodec int

// Bytes copies exactly n bytes into a new slice.
func Bytes(n int) Codec {
	if n < 0 {
		panic(fmt.Sprintf("bin: negative byte length %d", n))
	}
	return bytesCodec(n)
}

func (c bytesCodec) Len() int { return int(c) }

func (c bytesCodec) Read(buf []byte, off int) (any, error) {
	n := int(c)
	if err := checkRange(buf, off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[off:off+n])
	return out, nil
}

// AsUint widens any integer value produced by the primitives to uint32.
func AsUint(v any) (uint32, bool) {
	switch x := v.(type) {
	case uint8:
		return uint32(x), true
	case uint16:
		return uint32(x), true
	case uint32:
		return x, true
	default:
		return 0, false
	}
}
