package nds

import (
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/ossyrian/nitroparse/internal/bin"
)

type narcSchema struct {
	header *bin.StructCodec
	chunk  *bin.StructCodec
	info   *bin.StructCodec
}

func newNARCSchema(enc encoding.Encoding) narcSchema {
	return narcSchema{
		header: bin.Struct(
			bin.F("narc", bin.String(4, enc)),
			bin.F("byteOrder", bin.U16LE),
			bin.F("version", bin.U16LE),
			bin.F("fileSize", bin.U32LE),
			bin.F("chunkSize", bin.U16LE),
			bin.F("numChunks", bin.U16LE),
		),
		chunk: bin.Struct(
			bin.F("chunkName", bin.String(4, enc)),
			bin.F("chunkSize", bin.U32LE),
		),
		info: bin.Struct(
			bin.F("numFiles", bin.U16LE),
			bin.F("reserved", bin.U16LE),
		),
	}
}

// NARCHeader is the fixed header at the start of a NARC archive.
type NARCHeader struct {
	Tag        string `json:"tag" yaml:"tag"`
	ByteOrder  uint16 `json:"byte_order" yaml:"byte_order"`
	Version    uint16 `json:"version" yaml:"version"`
	FileSize   uint32 `json:"file_size" yaml:"file_size"`
	HeaderSize uint16 `json:"header_size" yaml:"header_size"`
	ChunkCount uint16 `json:"chunk_count" yaml:"chunk_count"`
}

// ChunkHeader opens every NARC chunk.
type ChunkHeader struct {
	Tag  string `json:"tag" yaml:"tag"`
	Size uint32 `json:"size" yaml:"size"`
}

// NARC is a decoded sub-archive. File ranges are relative to DataOffset.
type NARC struct {
	Header     NARCHeader     `json:"header" yaml:"header"`
	Allocation ChunkHeader    `json:"allocation_chunk" yaml:"allocation_chunk"`
	FileCount  uint16         `json:"file_count" yaml:"file_count"`
	Reserved   uint16         `json:"reserved" yaml:"reserved"`
	Files      []FileRange    `json:"files" yaml:"files"`
	Names      ChunkHeader    `json:"name_chunk" yaml:"name_chunk"`
	FNT        *FileNameTable `json:"fnt" yaml:"fnt"`
	DataOffset uint32         `json:"data_offset" yaml:"data_offset"`
}

// DecodeNARC parses a NARC archive held entirely in buf.
func (d *Decoder) DecodeNARC(buf []byte) (*NARC, error) {
	s := d.narc
	n := &NARC{}
	off := 0

	hdr, err := s.header.ReadRecord(buf, off)
	if err != nil {
		return nil, fmt.Errorf("failed to read NARC header: %w", err)
	}
	n.Header = NARCHeader{
		Tag:        hdr.String("narc"),
		ByteOrder:  uint16(hdr.Uint("byteOrder")),
		Version:    uint16(hdr.Uint("version")),
		FileSize:   hdr.Uint("fileSize"),
		HeaderSize: uint16(hdr.Uint("chunkSize")),
		ChunkCount: uint16(hdr.Uint("numChunks")),
	}
	if err := d.checkTag(n.Header.Tag, TagNARC); err != nil {
		return nil, err
	}
	off += s.header.Len()

	n.Allocation, err = d.readChunkHeader(buf, off, TagBTAF)
	if err != nil {
		return nil, err
	}
	off += s.chunk.Len()

	info, err := s.info.ReadRecord(buf, off)
	if err != nil {
		return nil, fmt.Errorf("failed to read allocation info: %w", err)
	}
	n.FileCount = uint16(info.Uint("numFiles"))
	n.Reserved = uint16(info.Uint("reserved"))
	off += s.info.Len()

	n.Files, err = readFAT(buf, off, int(n.FileCount))
	if err != nil {
		return nil, err
	}
	off += FATEntrySize * int(n.FileCount)

	namesStart := off
	n.Names, err = d.readChunkHeader(buf, off, TagBTNF)
	if err != nil {
		return nil, err
	}
	off += s.chunk.Len()

	n.FNT, err = d.DecodeFNT(buf, uint32(off))
	if err != nil {
		return nil, fmt.Errorf("failed to read NARC name table: %w", err)
	}

	n.DataOffset = uint32(namesStart) + n.Names.Size
	if tag, ok := d.peekTag(buf, int(n.DataOffset)); ok && tag == TagGMIF {
		n.DataOffset += uint32(s.chunk.Len())
	}

	d.logger.Debug("read NARC",
		"file_count", n.FileCount,
		"directory_count", len(n.FNT.Dirs),
		"data_offset", n.DataOffset,
	)

	return n, nil
}

// File copies the contents of file i out of the archive buffer.
func (n *NARC) File(buf []byte, i int) ([]byte, error) {
	if i < 0 || i >= len(n.Files) {
		return nil, fmt.Errorf("NARC file %d of %d: %w", i, len(n.Files), ErrNotFound)
	}
	data, err := n.Files[i].Slice(buf, int(n.DataOffset))
	if err != nil {
		return nil, fmt.Errorf("NARC file %d: %w", i, err)
	}
	return data, nil
}

// Open resolves path in the archive's name table and returns the file.
func (n *NARC) Open(buf []byte, path string) ([]byte, error) {
	id, ok := n.FNT.Resolve(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return n.File(buf, int(id))
}

func (d *Decoder) readChunkHeader(buf []byte, off int, want string) (ChunkHeader, error) {
	rec, err := d.narc.chunk.ReadRecord(buf, off)
	if err != nil {
		return ChunkHeader{}, fmt.Errorf("failed to read %s chunk header: %w", want, err)
	}
	ch := ChunkHeader{
		Tag:  rec.String("chunkName"),
		Size: rec.Uint("chunkSize"),
	}
	if err := d.checkTag(ch.Tag, want); err != nil {
		return ChunkHeader{}, err
	}
	return ch, nil
}

func (d *Decoder) peekTag(buf []byte, off int) (string, bool) {
	rec, err := d.narc.chunk.ReadRecord(buf, off)
	if err != nil {
		return "", false
	}
	return rec.String("chunkName"), true
}

func (d *Decoder) checkTag(got, want string) error {
	if got == want {
		return nil
	}
	if d.strict {
		return fmt.Errorf("%w: got %q, want %q", ErrBadTag, got, want)
	}
	d.logger.Warn("unexpected chunk tag", "got", got, "want", want)
	return nil
}
