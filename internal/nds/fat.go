package nds

import (
	"fmt"

	"github.com/ossyrian/nitroparse/internal/bin"
)

// FATEntrySize is the on-disk size of one allocation entry.
const FATEntrySize = 8

var fatEntrySpec = bin.Struct(
	bin.F("startOffset", bin.U32LE),
	bin.F("endOffset", bin.U32LE),
)

// FileRange is the half-open byte range [Start, End) of one file.
type FileRange struct {
	Start uint32 `json:"start" yaml:"start"`
	End   uint32 `json:"end" yaml:"end"`
}

// Len returns the byte length of the range, 0 for an inverted one.
func (r FileRange) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Slice copies the range out of buf. base is added to both ends.
func (r FileRange) Slice(buf []byte, base int) ([]byte, error) {
	if r.End < r.Start {
		return nil, fmt.Errorf("inverted file range [0x%X, 0x%X)", r.Start, r.End)
	}
	v, err := bin.Bytes(int(r.Len())).Read(buf, base+int(r.Start))
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// DecodeFAT reads size/8 allocation entries starting at off. The entry index
// is the file id.
func DecodeFAT(buf []byte, off, size uint32) ([]FileRange, error) {
	return readFAT(buf, int(off), int(size/FATEntrySize))
}

func readFAT(buf []byte, off, count int) ([]FileRange, error) {
	recs, err := bin.Array(count, fatEntrySpec).ReadRecords(buf, off)
	if err != nil {
		return nil, fmt.Errorf("failed to read file allocation table: %w", err)
	}
	fat := make([]FileRange, len(recs))
	for i, rec := range recs {
		fat[i] = FileRange{
			Start: rec.Uint("startOffset"),
			End:   rec.Uint("endOffset"),
		}
	}
	return fat, nil
}
