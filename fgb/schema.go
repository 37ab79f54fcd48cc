package fgb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

// schema is the column layout of a layer. Columns are sorted by name so a
// layer always gets the same layout for the same attributes.
type schema struct {
	names []string
	types []flattypes.ColumnType
	index map[string]int
}

// inferSchema collects every attribute name and the narrowest column type
// that holds all of its values.
func inferSchema(props []geojson.Properties) *schema {
	seen := make(map[string]flattypes.ColumnType)
	for _, p := range props {
		for name, v := range p {
			t := columnType(v)
			if prev, ok := seen[name]; ok {
				t = promote(prev, t)
			}
			seen[name] = t
		}
	}

	s := &schema{
		names: slices.Sorted(maps.Keys(seen)),
		index: make(map[string]int, len(seen)),
	}
	s.types = make([]flattypes.ColumnType, len(s.names))
	for i, name := range s.names {
		s.types[i] = seen[name]
		s.index[name] = i
	}
	return s
}

func (s *schema) columns(b *flatbuffers.Builder) []*writer.Column {
	cols := make([]*writer.Column, len(s.names))
	for i, name := range s.names {
		c := writer.NewColumn(b)
		c.SetName(name)
		c.SetTitle(name)
		c.SetType(s.types[i])
		c.SetNullable(true)
		cols[i] = c
	}
	return cols
}

// columnType maps a Go value to a column type. nil maps to String so that
// a column of nulls still has a type.
func columnType(v any) flattypes.ColumnType {
	switch v := v.(type) {
	case nil, string:
		return flattypes.ColumnTypeString
	case bool:
		return flattypes.ColumnTypeBool
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return flattypes.ColumnTypeLong
		}
		return flattypes.ColumnTypeInt
	case int8, int16, int32:
		return flattypes.ColumnTypeInt
	case int64:
		return flattypes.ColumnTypeLong
	case uint, uint8, uint16, uint32:
		return flattypes.ColumnTypeUInt
	case uint64:
		return flattypes.ColumnTypeULong
	case float32:
		return flattypes.ColumnTypeFloat
	case float64:
		return flattypes.ColumnTypeDouble
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return flattypes.ColumnTypeLong
		}
		return flattypes.ColumnTypeDouble
	}
	return flattypes.ColumnTypeJson
}

var numericRank = map[flattypes.ColumnType]int{
	flattypes.ColumnTypeBool:   0,
	flattypes.ColumnTypeByte:   1,
	flattypes.ColumnTypeUByte:  2,
	flattypes.ColumnTypeShort:  3,
	flattypes.ColumnTypeUShort: 4,
	flattypes.ColumnTypeInt:    5,
	flattypes.ColumnTypeUInt:   6,
	flattypes.ColumnTypeLong:   7,
	flattypes.ColumnTypeULong:  8,
	flattypes.ColumnTypeFloat:  9,
	flattypes.ColumnTypeDouble: 10,
}

// promote returns a type that holds values of both a and b.
func promote(a, b flattypes.ColumnType) flattypes.ColumnType {
	switch {
	case a == b:
		return a
	case a == flattypes.ColumnTypeJson || b == flattypes.ColumnTypeJson:
		return flattypes.ColumnTypeJson
	case a == flattypes.ColumnTypeString || b == flattypes.ColumnTypeString:
		return flattypes.ColumnTypeString
	}
	ra, okA := numericRank[a]
	rb, okB := numericRank[b]
	if !okA || !okB {
		return flattypes.ColumnTypeJson
	}
	if ra > rb {
		return a
	}
	return b
}

// encode writes the non-null values of p as (column index, value) pairs in
// column order. Values are converted to their column's type.
func (s *schema) encode(p geojson.Properties) []byte {
	var buf bytes.Buffer
	for i, name := range s.names {
		v, ok := p[name]
		if !ok || v == nil {
			continue
		}
		buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(i)))
		writeValue(&buf, s.types[i], v)
	}
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, t flattypes.ColumnType, v any) {
	le := binary.LittleEndian
	var b []byte
	switch t {
	case flattypes.ColumnTypeBool:
		b = []byte{0}
		if n, _ := asInt64(v); n != 0 {
			b[0] = 1
		}
	case flattypes.ColumnTypeByte, flattypes.ColumnTypeUByte:
		n, _ := asInt64(v)
		b = []byte{byte(n)}
	case flattypes.ColumnTypeShort, flattypes.ColumnTypeUShort:
		n, _ := asInt64(v)
		b = le.AppendUint16(nil, uint16(n))
	case flattypes.ColumnTypeInt, flattypes.ColumnTypeUInt:
		n, _ := asInt64(v)
		b = le.AppendUint32(nil, uint32(n))
	case flattypes.ColumnTypeLong, flattypes.ColumnTypeULong:
		n, _ := asInt64(v)
		b = le.AppendUint64(nil, uint64(n))
	case flattypes.ColumnTypeFloat:
		f, _ := asFloat64(v)
		b = le.AppendUint32(nil, math.Float32bits(float32(f)))
	case flattypes.ColumnTypeDouble:
		f, _ := asFloat64(v)
		b = le.AppendUint64(nil, math.Float64bits(f))
	case flattypes.ColumnTypeJson:
		js, err := json.Marshal(v)
		if err != nil {
			js = []byte("null")
		}
		b = lengthPrefixed(js)
	default:
		b = lengthPrefixed([]byte(asString(v)))
	}
	buf.Write(b)
}

// lengthPrefixed prepends the uint32 byte length used by string, json and
// binary values.
func lengthPrefixed(p []byte) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(p))), p...)
}

// decodeProperties reads the attribute bytes of one feature.
func decodeProperties(data []byte, h *flattypes.Header) (geojson.Properties, error) {
	props := geojson.Properties{}
	for len(data) > 0 {
		if len(data) < 2 {
			return nil, fmt.Errorf("%w: truncated column index", ErrInvalidData)
		}
		i := int(binary.LittleEndian.Uint16(data))
		data = data[2:]

		var col flattypes.Column
		if i >= h.ColumnsLength() || !h.Columns(&col, i) {
			return nil, fmt.Errorf("%w: index %d of %d", ErrInvalidColumn, i, h.ColumnsLength())
		}
		v, n, err := readValue(data, col.Type())
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		props[string(col.Name())] = v
		data = data[n:]
	}
	return props, nil
}

var fixedSize = map[flattypes.ColumnType]int{
	flattypes.ColumnTypeBool:   1,
	flattypes.ColumnTypeByte:   1,
	flattypes.ColumnTypeUByte:  1,
	flattypes.ColumnTypeShort:  2,
	flattypes.ColumnTypeUShort: 2,
	flattypes.ColumnTypeInt:    4,
	flattypes.ColumnTypeUInt:   4,
	flattypes.ColumnTypeFloat:  4,
	flattypes.ColumnTypeLong:   8,
	flattypes.ColumnTypeULong:  8,
	flattypes.ColumnTypeDouble: 8,
}

// readValue decodes one value and returns it with the number of bytes it
// used.
func readValue(data []byte, t flattypes.ColumnType) (any, int, error) {
	le := binary.LittleEndian
	if size, ok := fixedSize[t]; ok {
		if len(data) < size {
			return nil, 0, fmt.Errorf("%w: %d bytes for %s", ErrInvalidData, len(data), flattypes.EnumNamesColumnType[t])
		}
		switch t {
		case flattypes.ColumnTypeBool:
			return data[0] != 0, 1, nil
		case flattypes.ColumnTypeByte:
			return int8(data[0]), 1, nil
		case flattypes.ColumnTypeUByte:
			return data[0], 1, nil
		case flattypes.ColumnTypeShort:
			return int16(le.Uint16(data)), 2, nil
		case flattypes.ColumnTypeUShort:
			return le.Uint16(data), 2, nil
		case flattypes.ColumnTypeInt:
			return int32(le.Uint32(data)), 4, nil
		case flattypes.ColumnTypeUInt:
			return le.Uint32(data), 4, nil
		case flattypes.ColumnTypeFloat:
			return math.Float32frombits(le.Uint32(data)), 4, nil
		case flattypes.ColumnTypeLong:
			return int64(le.Uint64(data)), 8, nil
		case flattypes.ColumnTypeULong:
			return le.Uint64(data), 8, nil
		default:
			return math.Float64frombits(le.Uint64(data)), 8, nil
		}
	}

	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: missing length", ErrInvalidData)
	}
	n := int64(le.Uint32(data))
	if n > int64(len(data)-4) {
		return nil, 0, fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrInvalidData, n, len(data)-4)
	}
	raw := data[4 : 4+n]
	switch t {
	case flattypes.ColumnTypeString, flattypes.ColumnTypeDateTime:
		return string(raw), int(4 + n), nil
	case flattypes.ColumnTypeJson:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw), int(4 + n), nil
		}
		return v, int(4 + n), nil
	case flattypes.ColumnTypeBinary:
		return slices.Clone(raw), int(4 + n), nil
	}
	return nil, 0, fmt.Errorf("%w: column type %d", ErrInvalidColumn, t)
}

func asInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case uint64:
		return float64(v), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
