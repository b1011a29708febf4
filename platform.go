package pdarrow

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// inferPrimitive picks a buffer type for values when no type is requested.
// Mixing numbers and strings yields the string type, mixing booleans and
// integers yields int64, and anything that is not a plain number, boolean or
// string yields the object type.
func inferPrimitive(values []any) *PrimitiveDType {
	if len(values) == 0 {
		return PrimitiveTypes.Float64
	}
	var nBool, nInt, nBigUint, nFloat, nStr int
	for _, v := range values {
		switch x := v.(type) {
		case bool:
			nBool++
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
			nInt++
		case uint64:
			if x > math.MaxInt64 {
				nBigUint++
			} else {
				nInt++
			}
		case float32, float64:
			nFloat++
		case string:
			nStr++
		default:
			return PrimitiveTypes.Object
		}
	}
	switch {
	case nStr > 0:
		return PrimitiveTypes.String
	case nBool == len(values):
		return PrimitiveTypes.Bool
	case nFloat > 0:
		return PrimitiveTypes.Float64
	case nBigUint > 0 && nBool == 0 && nBigUint+nInt == len(values):
		return PrimitiveTypes.Uint64
	case nBigUint > 0:
		return PrimitiveTypes.Float64
	}
	return PrimitiveTypes.Int64
}

// nestedRows reports whether values is a non-empty sequence of sequences of
// one common length, and returns those rows.
func nestedRows(values []any) ([][]any, int, bool) {
	if len(values) == 0 {
		return nil, 0, false
	}
	rows := make([][]any, len(values))
	width := -1
	for i, v := range values {
		if !elementIsListLike(v) {
			return nil, 0, false
		}
		row, _ := asSequence(v)
		if width >= 0 && len(row) != width {
			return nil, 0, false
		}
		width = len(row)
		rows[i] = row
	}
	return rows, width, true
}

// npArray builds a buffer from values at dt, inferring the type when dt is
// nil. Equal-length nested sequences produce a two-dimensional buffer.
func npArray(mem memory.Allocator, values []any, dt *PrimitiveDType) (*Buffer, error) {
	rows, width, nested := nestedRows(values)
	if !nested {
		if dt == nil {
			dt = inferPrimitive(values)
		}
		return castToPrimitive(mem, values, dt)
	}
	flat := make([]any, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	if dt == nil {
		dt = inferPrimitive(flat)
	}
	b, err := castToPrimitive(mem, flat, dt)
	if err != nil {
		return nil, err
	}
	return b.withShape(len(rows), width), nil
}

// convertPlatform converts an ordered sequence to the most specific buffer
// type holding every element exactly: int64 for integers, float64 for
// numbers mixed with NaN or nil, bool for booleans. Anything else stays an
// object buffer of the original elements. Nested sequences are kept as
// elements.
func convertPlatform(mem memory.Allocator, values []any) *Buffer {
	var nBool, nInt, nFloat, nNull int
	for _, v := range values {
		switch v.(type) {
		case bool:
			nBool++
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			nInt++
		case float32, float64:
			nFloat++
		case nil:
			nNull++
		}
	}
	n := len(values)
	var dt *PrimitiveDType
	switch {
	case n == 0:
		dt = PrimitiveTypes.Float64
	case nBool == n:
		dt = PrimitiveTypes.Bool
	case nInt == n:
		dt = PrimitiveTypes.Int64
	case nInt+nFloat > 0 && nInt+nFloat+nNull == n:
		dt = PrimitiveTypes.Float64
	}
	if dt != nil {
		if b, err := castToPrimitive(mem, values, dt); err == nil {
			return b
		}
	}
	return newObjectBuffer(append([]any(nil), values...))
}

// constructPreservingNA builds the buffer of data at dt, keeping missing
// positions missing. The string type yields an object buffer of strings in
// which missing elements survive unchanged.
func constructPreservingNA(mem memory.Allocator, data any, dt *PrimitiveDType, copy bool) (*Buffer, error) {
	if dt != nil && dt.kind == KindString {
		values, err := elementsOf(data)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(values))
		for i, v := range values {
			if IsMissing(v) {
				out[i] = v
			} else {
				out[i] = formatScalar(v)
			}
		}
		return newObjectBuffer(out), nil
	}
	switch x := data.(type) {
	case *Buffer:
		if dt == nil || dt == x.dtype {
			if copy {
				return x.Copy(mem)
			}
			return x.share(), nil
		}
		b, err := castToPrimitive(mem, x.Objects(), dt)
		if err != nil {
			return nil, err
		}
		return b.withShape(x.shape...), nil
	case []any:
		return npArray(mem, x, dt)
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	return npArray(mem, values, dt)
}
