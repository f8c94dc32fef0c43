package nds

import (
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/ossyrian/nitroparse/internal/bin"
)

// HeaderSize is the number of bytes the ROM header occupies at offset 0.
const HeaderSize = 0x4000

// UnitCodes labels the console generation byte.
var UnitCodes = []string{"NDS", "reserved", "NDS+DSi", "DSi"}

var processLoadSpec = bin.Struct(
	bin.F("romOffset", bin.U32LE),
	bin.F("entryOffset", bin.U32LE),
	bin.F("ramAddress", bin.U32LE),
	bin.F("size", bin.U32LE),
)

func newHeaderSchema(enc encoding.Encoding) *bin.StructCodec {
	return bin.Struct(
		bin.F("title", bin.String(12, enc)),
		bin.F("gamecode", bin.String(4, enc)),
		bin.F("makercode", bin.String(2, enc)),
		bin.F("unitcode", bin.Enum(bin.U8, UnitCodes)),
		bin.F("encryptionSeed", bin.U8),
		bin.F("deviceCapacity", bin.U8),
		bin.F("reserved1", bin.Bytes(7)),
		bin.F("reserved2", bin.U8),
		bin.F("region", bin.U8),
		bin.F("version", bin.U8),
		bin.F("autoStart", bin.U8),
		bin.F("arm9", processLoadSpec),
		bin.F("arm7", processLoadSpec),
		bin.F("fileNameTableOffset", bin.U32LE),
		bin.F("fileNameTableSize", bin.U32LE),
		bin.F("fileAllocationTableOffset", bin.U32LE),
		bin.F("fileAllocationTableSize", bin.U32LE),
		bin.F("fileArm9OverlayOffset", bin.U32LE),
		bin.F("fileArm9OverlaySize", bin.U32LE),
		bin.F("fileArm7OverlayOffset", bin.U32LE),
		bin.F("fileArm7OverlaySize", bin.U32LE),
		bin.F("portSettingNormal", bin.U32LE),
		bin.F("portSettingKey1", bin.U32LE),
		bin.F("iconOffset", bin.U32LE),
		bin.F("secureAreaChecksum", bin.U16LE),
		bin.F("secureAreaDelay", bin.U16LE),
		bin.F("arm9AutoLoad", bin.U32LE),
		bin.F("arm7AutoLoad", bin.U32LE),
		bin.F("secureAreaDisable", bin.Bytes(8)),
		bin.F("usedRomSize", bin.U32LE),
		bin.F("romHeaderSize", bin.U32LE),
		bin.F("unknown", bin.U32LE),
		bin.F("reserved3", bin.Bytes(8)),
		bin.F("nandEndOfRom", bin.U16LE),
		bin.F("nandStartOfRw", bin.U16LE),
		bin.F("reserved4", bin.Bytes(0x18)),
		bin.F("reserved5", bin.Bytes(0x10)),
		bin.F("nintendoLogo", bin.Bytes(0x9C)),
		bin.F("nintendoLogoChecksum", bin.U16LE),
		bin.F("headerChecksum", bin.U16LE),
		bin.F("debugRomOffset", bin.U32LE),
		bin.F("debugSize", bin.U32LE),
		bin.F("debugRamAddress", bin.U32LE),
		bin.F("reserved6", bin.U32LE),
		bin.F("reserved7", bin.Bytes(0x90)),
		bin.F("reserved8", bin.Bytes(0xE00)),
		bin.F("reserved9", bin.Bytes(0x3000)),
	)
}

// ProcessLoad describes where one CPU's boot binary lives and where it runs.
type ProcessLoad struct {
	ROMOffset   uint32 `json:"rom_offset" yaml:"rom_offset"`
	EntryOffset uint32 `json:"entry_offset" yaml:"entry_offset"`
	RAMAddress  uint32 `json:"ram_address" yaml:"ram_address"`
	Size        uint32 `json:"size" yaml:"size"`
}

// Span is an absolute offset and byte count within the image.
type Span struct {
	Offset uint32 `json:"offset" yaml:"offset"`
	Size   uint32 `json:"size" yaml:"size"`
}

// Header is the decoded ROM header. The typed fields cover everything file
// resolution needs; Fields keeps the whole layout in declaration order.
type Header struct {
	Title     string        `json:"title" yaml:"title"`
	GameCode  string        `json:"game_code" yaml:"game_code"`
	MakerCode string        `json:"maker_code" yaml:"maker_code"`
	UnitCode  bin.EnumValue `json:"unit_code" yaml:"unit_code"`
	Version   uint8         `json:"version" yaml:"version"`

	ARM9 ProcessLoad `json:"arm9" yaml:"arm9"`
	ARM7 ProcessLoad `json:"arm7" yaml:"arm7"`

	FNT          Span `json:"fnt" yaml:"fnt"`
	FAT          Span `json:"fat" yaml:"fat"`
	ARM9Overlays Span `json:"arm9_overlays" yaml:"arm9_overlays"`
	ARM7Overlays Span `json:"arm7_overlays" yaml:"arm7_overlays"`

	IconOffset  uint32 `json:"icon_offset" yaml:"icon_offset"`
	UsedROMSize uint32 `json:"used_rom_size" yaml:"used_rom_size"`

	Fields *bin.Record `json:"-" yaml:"-"`
}

func processLoadFrom(rec *bin.Record) ProcessLoad {
	if rec == nil {
		return ProcessLoad{}
	}
	return ProcessLoad{
		ROMOffset:   rec.Uint("romOffset"),
		EntryOffset: rec.Uint("entryOffset"),
		RAMAddress:  rec.Uint("ramAddress"),
		Size:        rec.Uint("size"),
	}
}

// DecodeHeader reads the fixed header at offset 0 of buf.
func (d *Decoder) DecodeHeader(buf []byte) (*Header, error) {
	rec, err := d.header.ReadRecord(buf, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM header: %w", err)
	}
	unit, _ := rec.Enum("unitcode")

	h := &Header{
		Title:     rec.String("title"),
		GameCode:  rec.String("gamecode"),
		MakerCode: rec.String("makercode"),
		UnitCode:  unit,
		Version:   uint8(rec.Uint("version")),
		ARM9:      processLoadFrom(rec.Record("arm9")),
		ARM7:      processLoadFrom(rec.Record("arm7")),
		FNT: Span{
			Offset: rec.Uint("fileNameTableOffset"),
			Size:   rec.Uint("fileNameTableSize"),
		},
		FAT: Span{
			Offset: rec.Uint("fileAllocationTableOffset"),
			Size:   rec.Uint("fileAllocationTableSize"),
		},
		ARM9Overlays: Span{
			Offset: rec.Uint("fileArm9OverlayOffset"),
			Size:   rec.Uint("fileArm9OverlaySize"),
		},
		ARM7Overlays: Span{
			Offset: rec.Uint("fileArm7OverlayOffset"),
			Size:   rec.Uint("fileArm7OverlaySize"),
		},
		IconOffset:  rec.Uint("iconOffset"),
		UsedROMSize: rec.Uint("usedRomSize"),
		Fields:      rec,
	}

	d.logger.Debug("read ROM header",
		"game_code", h.GameCode,
		"unit_code", h.UnitCode.Label,
		"fnt_offset", h.FNT.Offset,
		"fat_offset", h.FAT.Offset,
		"fat_size", h.FAT.Size,
	)

	return h, nil
}
