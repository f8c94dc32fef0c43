package bin

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the label used for fixed-length names when nothing else
// is configured. Under WHATWG rules "ascii" resolves to windows-1252.
const DefaultEncoding = "ascii"

// Encoding looks up a text encoding by its WHATWG label ("ascii", "utf-8",
// "shift_jis", "utf-16le", ...). An empty name selects DefaultEncoding.
func Encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}

type stringCodec struct {
	n   int
	enc encoding.Encoding
}

// String decodes exactly n bytes through enc. Every byte position takes part
// in the decode, so padding and NUL terminators stay in the result.
func String(n int, enc encoding.Encoding) Codec {
	if n < 0 {
		panic(fmt.Sprintf("bin: negative string length %d", n))
	}
	if enc == nil {
		panic("bin: String needs a text encoding")
	}
	return stringCodec{n: n, enc: enc}
}

func (c stringCodec) Len() int { return c.n }

func (c stringCodec) Read(buf []byte, off int) (any, error) {
	if err := checkRange(buf, off, c.n); err != nil {
		return nil, err
	}
	// a fresh decoder per read keeps the codec safe for concurrent use
	out, err := c.enc.NewDecoder().Bytes(buf[off : off+c.n])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %d-byte string at 0x%X: %w", c.n, off, err)
	}
	return string(out), nil
}
