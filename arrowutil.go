package pdarrow

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"
)

// appender is the subset of the typed Arrow builders used to fill columns.
type appender[T any] interface {
	array.Builder
	Append(T)
}

// buildArray appends vals to b and finalizes it. A nil valid slice marks every
// position present. The builder is released.
func buildArray[T any, B appender[T]](b B, vals []T, valid []bool) arrow.Array {
	defer b.Release()
	b.Reserve(len(vals))
	for i, v := range vals {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(v)
	}
	return b.NewArray()
}

// buildSigned writes int64 values into an Arrow array of the signed type dt.
// Callers range check the values first.
func buildSigned(mem memory.Allocator, dt *PrimitiveDType, vals []int64, valid []bool) arrow.Array {
	switch dt.bitWidth {
	case 8:
		return buildArray(array.NewInt8Builder(mem), narrow[int8](vals), valid)
	case 16:
		return buildArray(array.NewInt16Builder(mem), narrow[int16](vals), valid)
	case 32:
		return buildArray(array.NewInt32Builder(mem), narrow[int32](vals), valid)
	default:
		return buildArray(array.NewInt64Builder(mem), vals, valid)
	}
}

// buildUnsigned writes uint64 values into an Arrow array of the unsigned type dt.
func buildUnsigned(mem memory.Allocator, dt *PrimitiveDType, vals []uint64, valid []bool) arrow.Array {
	switch dt.bitWidth {
	case 8:
		return buildArray(array.NewUint8Builder(mem), narrow[uint8](vals), valid)
	case 16:
		return buildArray(array.NewUint16Builder(mem), narrow[uint16](vals), valid)
	case 32:
		return buildArray(array.NewUint32Builder(mem), narrow[uint32](vals), valid)
	default:
		return buildArray(array.NewUint64Builder(mem), vals, valid)
	}
}

// buildFloat writes float64 values into an Arrow array of the float type dt.
func buildFloat(mem memory.Allocator, dt *PrimitiveDType, vals []float64, valid []bool) arrow.Array {
	if dt.bitWidth == 32 {
		return buildArray(array.NewFloat32Builder(mem), narrow[float32](vals), valid)
	}
	return buildArray(array.NewFloat64Builder(mem), vals, valid)
}

func buildTimestamps(mem memory.Allocator, dt *arrow.TimestampType, nanos []int64, valid []bool) arrow.Array {
	vals := make([]arrow.Timestamp, len(nanos))
	for i, n := range nanos {
		vals[i] = arrow.Timestamp(n)
	}
	return buildArray(array.NewTimestampBuilder(mem, dt), vals, valid)
}

func buildDurations(mem memory.Allocator, nanos []int64, valid []bool) arrow.Array {
	vals := make([]arrow.Duration, len(nanos))
	for i, n := range nanos {
		vals[i] = arrow.Duration(n)
	}
	return buildArray(array.NewDurationBuilder(mem, durationNS), vals, valid)
}

func narrow[T, F constraints.Integer | constraints.Float](vals []F) []T {
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = T(v)
	}
	return out
}

// arrowValue boxes element i of arr into its Go value. Nulls box to nil.
// Timestamps box to naive time.Time values.
func arrowValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return a.Value(i)
	case *array.Int16:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return a.Value(i)
	case *array.Uint16:
		return a.Value(i)
	case *array.Uint32:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.Timestamp:
		return a.Value(i).ToTime(arrow.Nanosecond)
	case *array.Duration:
		return time.Duration(a.Value(i))
	}
	return nil
}

// copyArrow returns a copy of arr that shares no memory with it.
func copyArrow(mem memory.Allocator, arr arrow.Array) (arrow.Array, error) {
	return array.Concatenate([]arrow.Array{arr}, mem)
}

// repeatArrow returns arr concatenated n times.
func repeatArrow(mem memory.Allocator, arr arrow.Array, n int) (arrow.Array, error) {
	if n <= 0 {
		return array.MakeArrayOfNull(mem, arr.DataType(), 0), nil
	}
	parts := make([]arrow.Array, n)
	for i := range parts {
		parts[i] = arr
	}
	return array.Concatenate(parts, mem)
}

func releaseAll(arrs ...arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}
