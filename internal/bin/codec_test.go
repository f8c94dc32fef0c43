package bin_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ossyrian/nitroparse/internal/bin"
)

func TestPrimitives(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0x78, 0x9A}

	tests := []struct {
		name  string
		codec bin.Codec
		off   int
		want  any
		len   int
	}{
		{name: "U8", codec: bin.U8, off: 4, want: uint8(0x9A), len: 1},
		{name: "U16LE", codec: bin.U16LE, off: 0, want: uint16(0x3412), len: 2},
		{name: "U16BE", codec: bin.U16BE, off: 0, want: uint16(0x1234), len: 2},
		{name: "U32LE", codec: bin.U32LE, off: 1, want: uint32(0x9A785634), len: 4},
		{name: "U32BE", codec: bin.U32BE, off: 1, want: uint32(0x3456789A), len: 4},
		{name: "Bytes", codec: bin.Bytes(3), off: 2, want: []byte{0x56, 0x78, 0x9A}, len: 3},
		{name: "empty Bytes at end", codec: bin.Bytes(0), off: 5, want: []byte{}, len: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.codec.Len(); got != tt.len {
				t.Errorf("Len() = %d, want %d", got, tt.len)
			}
			got, err := tt.codec.Read(buf, tt.off)
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPrimitives_OutOfRange(t *testing.T) {
	buf := []byte{1, 2, 3}

	tests := []struct {
		name  string
		codec bin.Codec
		off   int
	}{
		{name: "U8 past end", codec: bin.U8, off: 3},
		{name: "U16 straddling end", codec: bin.U16LE, off: 2},
		{name: "U32 too long", codec: bin.U32BE, off: 0},
		{name: "negative offset", codec: bin.U8, off: -1},
		{name: "Bytes too long", codec: bin.Bytes(4), off: 0},
		{name: "offset beyond buffer", codec: bin.Bytes(0), off: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Read(buf, tt.off)
			if !errors.Is(err, bin.ErrOutOfRange) {
				t.Errorf("Read() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestBytes_CopiesSource(t *testing.T) {
	buf := []byte{1, 2, 3, 4}

	v, err := bin.Bytes(4).Read(buf, 0)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	buf[0] = 0xFF

	if got := v.([]byte); got[0] != 1 {
		t.Errorf("decoded bytes changed with the source buffer: %x", got)
	}
}

func TestString_KeepsPadding(t *testing.T) {
	enc, err := bin.Encoding("")
	if err != nil {
		t.Fatalf("Encoding() failed: %v", err)
	}

	buf := []byte("POKEMON SS\x00\x00IPGE")
	v, err := bin.String(12, enc).Read(buf, 0)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	got := v.(string)
	if got != "POKEMON SS\x00\x00" {
		t.Errorf("Read() = %q, want padding kept", got)
	}
	if len(got) != 12 {
		t.Errorf("decoded %d bytes, want 12", len(got))
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		input   []byte
		want    string
		wantErr bool
	}{
		{name: "default", label: "", input: []byte("ABC"), want: "ABC"},
		{name: "ascii label", label: "ascii", input: []byte{0x41, 0xE9}, want: "Aé"},
		{name: "shift_jis", label: "shift_jis", input: []byte{0x82, 0xA0}, want: "あ"},
		{name: "utf-16le", label: "utf-16le", input: []byte{0x41, 0x00}, want: "A"},
		{name: "unknown", label: "not-an-encoding", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := bin.Encoding(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Encoding() succeeded unexpectedly")
				}
				if !strings.Contains(err.Error(), "unknown text encoding") {
					t.Errorf("Encoding() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encoding() failed: %v", err)
			}

			v, err := bin.String(len(tt.input), enc).Read(tt.input, 0)
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if v.(string) != tt.want {
				t.Errorf("Read() = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestAsUint(t *testing.T) {
	for _, v := range []any{uint8(7), uint16(7), uint32(7)} {
		if got, ok := bin.AsUint(v); !ok || got != 7 {
			t.Errorf("AsUint(%T) = %d, %v", v, got, ok)
		}
	}
	if _, ok := bin.AsUint("7"); ok {
		t.Error("AsUint(string) reported ok")
	}
	if _, ok := bin.AsUint(int(7)); ok {
		t.Error("AsUint(int) reported ok")
	}
}
