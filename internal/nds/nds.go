// Package nds decodes Nintendo DS cartridge images and the NARC archives
// stored inside them.
package nds

import (
	"errors"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/ossyrian/nitroparse/internal/bin"
)

// Sentinel errors. Out-of-range reads surface as bin.ErrOutOfRange.
var (
	ErrNotFound       = errors.New("file not found")
	ErrNotImplemented = errors.New("not implemented")
	ErrBadTag         = errors.New("unexpected chunk tag")
	ErrNoEncoding     = errors.New("no text encoding configured")
)

// Chunk tags as they appear on disk.
const (
	TagNARC = "NARC"
	TagBTAF = "BTAF"
	TagBTNF = "BTNF"
	TagGMIF = "GMIF"
)

// Options configure a Decoder.
type Options struct {
	// Encoding decodes fixed-length names and header text. Required.
	Encoding encoding.Encoding

	// StrictTags turns chunk tag mismatches into ErrBadTag instead of a
	// logged warning.
	StrictTags bool

	Logger *slog.Logger
}

// Decoder holds the schemas for one text encoding. It is immutable after
// construction and safe for concurrent use.
type Decoder struct {
	enc    encoding.Encoding
	strict bool
	logger *slog.Logger

	header *bin.StructCodec
	narc   narcSchema
}

// NewDecoder builds a Decoder. A missing encoding is reported as
// ErrNoEncoding rather than deferred to the first string read.
func NewDecoder(opts Options) (*Decoder, error) {
	if opts.Encoding == nil {
		return nil, ErrNoEncoding
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		enc:    opts.Encoding,
		strict: opts.StrictTags,
		logger: logger,
		header: newHeaderSchema(opts.Encoding),
		narc:   newNARCSchema(opts.Encoding),
	}, nil
}
