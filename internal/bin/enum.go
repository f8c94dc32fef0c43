package bin

import "fmt"

// InvalidLabel is the label given to codes outside an enum's label table.
const InvalidLabel = "#INVALID#"

// EnumValue is a decoded enum: the raw code and the label it maps to.
type EnumValue struct {
	Code  uint32 `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// Valid reports whether the code had a label.
func (e EnumValue) Valid() bool { return e.Label != InvalidLabel }

func (e EnumValue) String() string {
	return fmt.Sprintf("%s(%d)", e.Label, e.Code)
}

type enumCodec struct {
	base   Codec
	labels []string
}

// Enum maps the integer read by base onto labels by index. Unknown codes are
// an ordinary result labelled InvalidLabel, never an error.
func Enum(base Codec, labels []string) Codec {
	l := make([]string, len(labels))
	copy(l, labels)
	return enumCodec{base: base, labels: l}
}

func (c enumCodec) Len() int { return c.base.Len() }

func (c enumCodec) Read(buf []byte, off int) (any, error) {
	v, err := c.base.Read(buf, off)
	if err != nil {
		return nil, err
	}
	code, ok := AsUint(v)
	if !ok {
		return nil, fmt.Errorf("enum base produced %T, want an integer", v)
	}
	ev := EnumValue{Code: code, Label: InvalidLabel}
	if int64(code) < int64(len(c.labels)) {
		ev.Label = c.labels[code]
	}
	return ev, nil
}
