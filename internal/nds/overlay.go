package nds

import (
	"fmt"

	"github.com/ossyrian/nitroparse/internal/bin"
)

// OverlayEntrySize is the on-disk size of one overlay table record.
const OverlayEntrySize = 32

const (
	overlayCompressedFlag = 1 << 24
	overlaySizeMask       = 1<<24 - 1
)

var overlaySpec = bin.Struct(
	bin.F("overlayId", bin.U32LE),
	bin.F("ramAddress", bin.U32LE),
	bin.F("ramSize", bin.U32LE),
	bin.F("bssSize", bin.U32LE),
	bin.F("staticInitialiserStart", bin.U32LE),
	bin.F("staticInitialiserEnd", bin.U32LE),
	bin.F("fileId", bin.U32LE),
	bin.F("compression", bin.U32LE),
)

// Overlay describes one loadable code module.
type Overlay struct {
	ID          uint32 `json:"id" yaml:"id"`
	RAMAddress  uint32 `json:"ram_address" yaml:"ram_address"`
	RAMSize     uint32 `json:"ram_size" yaml:"ram_size"`
	BSSSize     uint32 `json:"bss_size" yaml:"bss_size"`
	StaticStart uint32 `json:"static_init_start" yaml:"static_init_start"`
	StaticEnd   uint32 `json:"static_init_end" yaml:"static_init_end"`
	FileID      uint32 `json:"file_id" yaml:"file_id"`
	// Compression packs a flag byte (bit 24 = compressed) over a 24-bit size.
	Compression uint32 `json:"compression" yaml:"compression"`
}

// Compressed reports whether the overlay payload is stored compressed.
func (o Overlay) Compressed() bool {
	return o.Compression&overlayCompressedFlag != 0
}

// Size returns the low 24 bits of the compression field.
func (o Overlay) Size() uint32 {
	return o.Compression & overlaySizeMask
}

// DecodeOverlayTable reads size/32 overlay records starting at off.
func DecodeOverlayTable(buf []byte, off, size uint32) ([]Overlay, error) {
	count := int(size / OverlayEntrySize)
	recs, err := bin.Array(count, overlaySpec).ReadRecords(buf, int(off))
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay table: %w", err)
	}
	out := make([]Overlay, len(recs))
	for i, rec := range recs {
		out[i] = Overlay{
			ID:          rec.Uint("overlayId"),
			RAMAddress:  rec.Uint("ramAddress"),
			RAMSize:     rec.Uint("ramSize"),
			BSSSize:     rec.Uint("bssSize"),
			StaticStart: rec.Uint("staticInitialiserStart"),
			StaticEnd:   rec.Uint("staticInitialiserEnd"),
			FileID:      rec.Uint("fileId"),
			Compression: rec.Uint("compression"),
		}
	}
	return out, nil
}

// DecompressOverlay would expand a compressed overlay payload. Decompression
// is not supported, so it always fails with ErrNotImplemented.
func DecompressOverlay(payload []byte) ([]byte, error) {
	return nil, fmt.Errorf("overlay decompression (%d bytes): %w", len(payload), ErrNotImplemented)
}
