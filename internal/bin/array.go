package bin

import "fmt"

// ArrayCodec reads a fixed number of elements of one codec.
type ArrayCodec struct {
	count int
	elem  Codec
}

// Array builds an ArrayCodec of count elements.
func Array(count int, elem Codec) *ArrayCodec {
	if count < 0 {
		panic(fmt.Sprintf("bin: negative array count %d", count))
	}
	if elem == nil {
		panic("bin: array has no element codec")
	}
	return &ArrayCodec{count: count, elem: elem}
}

// Len returns count times the element length.
func (a *ArrayCodec) Len() int { return a.count * a.elem.Len() }

// Count returns the number of elements.
func (a *ArrayCodec) Count() int { return a.count }

// Read implements Codec. The returned value is a []any of Count elements,
// element i read at off + i*elem.Len().
func (a *ArrayCodec) Read(buf []byte, off int) (any, error) {
	out := make([]any, a.count)
	step := a.elem.Len()
	for i := range out {
		v, err := a.elem.Read(buf, off+i*step)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ReadRecords reads an array of structs and returns the elements as records.
func (a *ArrayCodec) ReadRecords(buf []byte, off int) ([]*Record, error) {
	v, err := a.Read(buf, off)
	if err != nil {
		return nil, err
	}
	items := v.([]any)
	out := make([]*Record, len(items))
	for i, item := range items {
		rec, ok := item.(*Record)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not a struct", i, item)
		}
		out[i] = rec
	}
	return out, nil
}
