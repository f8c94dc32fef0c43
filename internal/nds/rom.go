package nds

import (
	"fmt"
)

// ROM is a fully decoded cartridge image. It holds no reference to the
// image bytes; methods that return file contents take the buffer again.
type ROM struct {
	Header       *Header        `json:"header" yaml:"header"`
	FAT          []FileRange    `json:"fat" yaml:"fat"`
	FNT          *FileNameTable `json:"fnt" yaml:"fnt"`
	ARM9Overlays []Overlay      `json:"arm9_overlays" yaml:"arm9_overlays"`
	ARM7Overlays []Overlay      `json:"arm7_overlays" yaml:"arm7_overlays"`
}

// DecodeROM reads the header and then every table it points at.
func (d *Decoder) DecodeROM(buf []byte) (*ROM, error) {
	h, err := d.DecodeHeader(buf)
	if err != nil {
		return nil, err
	}

	rom := &ROM{Header: h}

	rom.FAT, err = DecodeFAT(buf, h.FAT.Offset, h.FAT.Size)
	if err != nil {
		return nil, err
	}

	rom.FNT, err = d.DecodeFNT(buf, h.FNT.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read file name table: %w", err)
	}

	rom.ARM9Overlays, err = DecodeOverlayTable(buf, h.ARM9Overlays.Offset, h.ARM9Overlays.Size)
	if err != nil {
		return nil, fmt.Errorf("arm9: %w", err)
	}

	rom.ARM7Overlays, err = DecodeOverlayTable(buf, h.ARM7Overlays.Offset, h.ARM7Overlays.Size)
	if err != nil {
		return nil, fmt.Errorf("arm7: %w", err)
	}

	d.logger.Info("decoded ROM",
		"title", h.Title,
		"game_code", h.GameCode,
		"file_count", len(rom.FAT),
		"directory_count", len(rom.FNT.Dirs),
		"arm9_overlays", len(rom.ARM9Overlays),
		"arm7_overlays", len(rom.ARM7Overlays),
	)

	return rom, nil
}

// Lookup resolves a path to a file id.
func (r *ROM) Lookup(path string) (uint16, bool) {
	return r.FNT.Resolve(path)
}

// File copies file id out of the image.
func (r *ROM) File(buf []byte, id int) ([]byte, error) {
	if id < 0 || id >= len(r.FAT) {
		return nil, fmt.Errorf("file id %d of %d: %w", id, len(r.FAT), ErrNotFound)
	}
	data, err := r.FAT[id].Slice(buf, 0)
	if err != nil {
		return nil, fmt.Errorf("file id %d: %w", id, err)
	}
	return data, nil
}

// Open resolves path and copies the file out of the image.
func (r *ROM) Open(buf []byte, path string) ([]byte, error) {
	id, ok := r.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return r.File(buf, int(id))
}

// OverlayData returns the stored payload of an overlay. Compressed overlays
// fail with ErrNotImplemented rather than returning packed bytes.
func (r *ROM) OverlayData(buf []byte, ov Overlay) ([]byte, error) {
	data, err := r.File(buf, int(ov.FileID))
	if err != nil {
		return nil, fmt.Errorf("overlay %d: %w", ov.ID, err)
	}
	if ov.Compressed() {
		return DecompressOverlay(data)
	}
	return data, nil
}

// OpenNARC extracts the file at path and decodes it as a NARC archive. The
// archive bytes are returned alongside so its files can be sliced out.
func (d *Decoder) OpenNARC(buf []byte, rom *ROM, path string) (*NARC, []byte, error) {
	data, err := rom.Open(buf, path)
	if err != nil {
		return nil, nil, err
	}
	narc, err := d.DecodeNARC(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return narc, data, nil
}
