package bin

import (
	"fmt"
)

// Field is one named member of a Struct.
type Field struct {
	Name  string
	Codec Codec
}

// F is shorthand for building a Field.
func F(name string, c Codec) Field {
	return Field{Name: name, Codec: c}
}

// StructCodec lays its fields out back to back in declaration order.
type StructCodec struct {
	fields  []Field
	offsets []int
	length  int
}

// Struct builds a StructCodec. Field names must be unique; a duplicate or
// nil codec is a programming error and panics.
func Struct(fields ...Field) *StructCodec {
	s := &StructCodec{
		fields:  make([]Field, len(fields)),
		offsets: make([]int, len(fields)),
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Codec == nil {
			panic(fmt.Sprintf("bin: field %q has no codec", f.Name))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("bin: duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		s.fields[i] = f
		s.offsets[i] = s.length
		s.length += f.Codec.Len()
	}
	return s
}

// Len returns the summed length of all fields.
func (s *StructCodec) Len() int { return s.length }

// Offset returns the position of the named field relative to the start of
// the struct.
func (s *StructCodec) Offset(name string) (int, bool) {
	for i, f := range s.fields {
		if f.Name == name {
			return s.offsets[i], true
		}
	}
	return 0, false
}

// Fields returns the declared fields in order.
func (s *StructCodec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Read implements Codec. The returned value is a *Record.
func (s *StructCodec) Read(buf []byte, off int) (any, error) {
	return s.ReadRecord(buf, off)
}

// ReadRecord reads every field at its running offset from off.
func (s *StructCodec) ReadRecord(buf []byte, off int) (*Record, error) {
	rec := newRecord(len(s.fields))
	for i, f := range s.fields {
		v, err := f.Codec.Read(buf, off+s.offsets[i])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		rec.set(f.Name, v)
	}
	return rec, nil
}
