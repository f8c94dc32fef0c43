package bin

import (
	"bytes"
	"encoding/json"

	"go.yaml.in/yaml/v3"
)

// Record is the value of a Struct: field values keyed by name, remembering
// declaration order.
type Record struct {
	names  []string
	values map[string]any
}

func newRecord(n int) *Record {
	return &Record{
		names:  make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

func (r *Record) set(name string, v any) {
	r.names = append(r.names, name)
	r.values[name] = v
}

// Names returns field names in declaration order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the raw value of a field.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Uint returns an integer field widened to uint32, or 0 when the field is
// missing or not an integer. Enum fields yield their raw code.
func (r *Record) Uint(name string) uint32 {
	switch v := r.values[name].(type) {
	case EnumValue:
		return v.Code
	default:
		n, _ := AsUint(v)
		return n
	}
}

// String returns a string field, or "" when absent.
func (r *Record) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Bytes returns a byte field, or nil when absent.
func (r *Record) Bytes(name string) []byte {
	b, _ := r.values[name].([]byte)
	return b
}

// Record returns a nested struct field, or nil when absent.
func (r *Record) Record(name string) *Record {
	rec, _ := r.values[name].(*Record)
	return rec
}

// Enum returns an enum field.
func (r *Record) Enum(name string) (EnumValue, bool) {
	e, ok := r.values[name].(EnumValue)
	return e, ok
}

// MarshalJSON writes the fields as a JSON object in declaration order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits an ordered mapping node.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range r.names {
		var val yaml.Node
		if err := val.Encode(r.values[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&val,
		)
	}
	return node, nil
}
