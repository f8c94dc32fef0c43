package nds_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/ossyrian/nitroparse/internal/bin"
	"github.com/ossyrian/nitroparse/internal/nds"
)

// newDecoder builds a decoder with the default encoding and a no-op logger
func newDecoder(t *testing.T, strict bool) *nds.Decoder {
	t.Helper()

	enc, err := bin.Encoding("")
	if err != nil {
		t.Fatalf("Encoding() failed: %v", err)
	}
	d, err := nds.NewDecoder(nds.Options{
		Encoding:   enc,
		StrictTags: strict,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewDecoder() failed: %v", err)
	}
	return d
}

type testEntry struct {
	name   string
	subdir int // -1 for files
	rawID  uint16
}

func file(name string) testEntry { return testEntry{name: name, subdir: -1} }

func subdir(name string, id int) testEntry {
	return testEntry{name: name, subdir: id, rawID: 0xF000 | uint16(id)}
}

type testDir struct {
	firstFileID uint16
	parent      uint16
	entries     []testEntry
}

// buildFNT lays out directory descriptors followed by their subtables.
// Subtable offsets are relative to the start of the returned table.
func buildFNT(dirs []testDir) []byte {
	tables := make([][]byte, len(dirs))
	for i, d := range dirs {
		var b bytes.Buffer
		for _, e := range d.entries {
			if e.subdir < 0 {
				b.WriteByte(byte(len(e.name)))
				b.WriteString(e.name)
				continue
			}
			b.WriteByte(0x80 | byte(len(e.name)))
			b.WriteString(e.name)
			binary.Write(&b, binary.LittleEndian, e.rawID)
		}
		b.WriteByte(0)
		tables[i] = b.Bytes()
	}

	var out bytes.Buffer
	off := uint32(8 * len(dirs))
	for i, d := range dirs {
		shared := d.parent
		if i == 0 {
			shared = uint16(len(dirs))
		}
		binary.Write(&out, binary.LittleEndian, off)
		binary.Write(&out, binary.LittleEndian, d.firstFileID)
		binary.Write(&out, binary.LittleEndian, shared)
		off += uint32(len(tables[i]))
	}
	for _, tbl := range tables {
		out.Write(tbl)
	}
	return out.Bytes()
}

// buildNARC packs files into a NARC archive. With gmif false the file data
// follows the name chunk directly.
func buildNARC(files [][]byte, fnt []byte, gmif bool) []byte {
	var data bytes.Buffer
	ranges := make([]uint32, 0, 2*len(files))
	for _, f := range files {
		start := uint32(data.Len())
		data.Write(f)
		ranges = append(ranges, start, uint32(data.Len()))
	}

	var b bytes.Buffer
	b.WriteString(nds.TagNARC)
	binary.Write(&b, binary.LittleEndian, uint16(0xFFFE))
	binary.Write(&b, binary.LittleEndian, uint16(0x0100))
	binary.Write(&b, binary.LittleEndian, uint32(0)) // patched below
	binary.Write(&b, binary.LittleEndian, uint16(16))
	binary.Write(&b, binary.LittleEndian, uint16(3))

	b.WriteString(nds.TagBTAF)
	binary.Write(&b, binary.LittleEndian, uint32(12+8*len(files)))
	binary.Write(&b, binary.LittleEndian, uint16(len(files)))
	binary.Write(&b, binary.LittleEndian, uint16(0))
	binary.Write(&b, binary.LittleEndian, ranges)

	b.WriteString(nds.TagBTNF)
	binary.Write(&b, binary.LittleEndian, uint32(8+len(fnt)))
	b.Write(fnt)

	if gmif {
		b.WriteString(nds.TagGMIF)
		binary.Write(&b, binary.LittleEndian, uint32(8+data.Len()))
	}
	b.Write(data.Bytes())

	out := b.Bytes()
	binary.LittleEndian.PutUint32(out[8:], uint32(len(out)))
	return out
}

// buildROM assembles a minimal image: header, FNT, FAT, ARM9 overlay table
// and then file contents in id order.
func buildROM(fnt []byte, files [][]byte, arm9 []nds.Overlay) []byte {
	img := make([]byte, nds.HeaderSize)
	copy(img, "TEST TITLE\x00\x00ABCD01")
	img[0x12] = 2 // NDS+DSi

	// ARM9 process load descriptor
	binary.LittleEndian.PutUint32(img[0x20:], 0x4000)
	binary.LittleEndian.PutUint32(img[0x24:], 0x2000800)
	binary.LittleEndian.PutUint32(img[0x28:], 0x2000000)
	binary.LittleEndian.PutUint32(img[0x2C:], 0x1000)

	fntOff := len(img)
	img = append(img, fnt...)

	fatOff := len(img)
	img = append(img, make([]byte, nds.FATEntrySize*len(files))...)

	ovlOff := len(img)
	var ovl bytes.Buffer
	binary.Write(&ovl, binary.LittleEndian, arm9)
	img = append(img, ovl.Bytes()...)

	for i, f := range files {
		start := len(img)
		img = append(img, f...)
		binary.LittleEndian.PutUint32(img[fatOff+8*i:], uint32(start))
		binary.LittleEndian.PutUint32(img[fatOff+8*i+4:], uint32(len(img)))
	}

	binary.LittleEndian.PutUint32(img[0x40:], uint32(fntOff))
	binary.LittleEndian.PutUint32(img[0x44:], uint32(len(fnt)))
	binary.LittleEndian.PutUint32(img[0x48:], uint32(fatOff))
	binary.LittleEndian.PutUint32(img[0x4C:], uint32(nds.FATEntrySize*len(files)))
	binary.LittleEndian.PutUint32(img[0x50:], uint32(ovlOff))
	binary.LittleEndian.PutUint32(img[0x54:], uint32(nds.OverlayEntrySize*len(arm9)))
	binary.LittleEndian.PutUint32(img[0x58:], uint32(ovlOff))
	binary.LittleEndian.PutUint32(img[0x5C:], 0)
	return img
}
