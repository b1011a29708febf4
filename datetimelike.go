package pdarrow

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DatetimeArray is a nanosecond timestamp array, either zone-naive or
// carrying a single time zone. Values are stored as nanoseconds since the
// epoch: UTC instants for zone-aware arrays and wall clock readings for naive
// ones.
type DatetimeArray struct {
	arrowBacked
	dtype *DatetimeTZDType
}

// NewDatetimeArray builds a timestamp array from data. dtype may be nil to
// infer the zone from the elements, PrimitiveTypes.Datetime to force a naive
// result, or a *DatetimeTZDType. Naive elements are localized to an explicit
// zone and aware elements are converted to it. When inferring, elements in
// different zones or a mixture of aware and naive elements fail with
// ErrMixedTimezones.
func NewDatetimeArray(mem memory.Allocator, data any, dtype DType, copy bool) (*DatetimeArray, error) {
	var tz *DatetimeTZDType
	forceNaive := false
	switch t := dtype.(type) {
	case nil:
	case *DatetimeTZDType:
		tz = t
	case *PrimitiveDType:
		if t != PrimitiveTypes.Datetime {
			return nil, fmt.Errorf("%w: %s is not a datetime type", ErrTypeMismatch, t)
		}
		forceNaive = true
	default:
		return nil, fmt.Errorf("%w: %s is not a datetime type", ErrTypeMismatch, dtype.Name())
	}
	if src, ok := data.(*DatetimeArray); ok && (dtype == nil || DTypeEqual(src.DType(), dtype)) {
		if !copy {
			src.values.Retain()
			return &DatetimeArray{src.arrowBacked, src.dtype}, nil
		}
		vals, err := src.copyValues()
		if err != nil {
			return nil, err
		}
		return &DatetimeArray{vals, src.dtype}, nil
	}

	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	target := dtypeOrDatetime(dtype)
	times := make([]time.Time, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		t, ok, err := toTime(v)
		if err != nil {
			return nil, castErr(target, i, v, err)
		}
		times[i], valid[i] = t, ok
	}
	if tz == nil && !forceNaive {
		loc, err := inferZone(values, times, valid)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			tz = NewDatetimeTZDType(loc)
		}
	}

	nanos := make([]int64, len(values))
	for i, t := range times {
		if !valid[i] {
			continue
		}
		if tz != nil && IsNaive(t) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz.loc)
		}
		n, err := toNanos(t)
		if err != nil {
			return nil, castErr(target, i, values[i], err)
		}
		nanos[i] = n
	}
	arrowType := timestampNS
	if tz != nil {
		arrowType = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: tz.loc.String()}
	}
	return &DatetimeArray{arrowBacked{mem, buildTimestamps(mem, arrowType, nanos, valid)}, tz}, nil
}

func dtypeOrDatetime(dtype DType) DType {
	if dtype == nil {
		return PrimitiveTypes.Datetime
	}
	return dtype
}

// inferZone returns the single zone shared by the present elements, nil when
// they are all naive.
func inferZone(values []any, times []time.Time, valid []bool) (*time.Location, error) {
	var loc *time.Location
	naive, aware := -1, -1
	for i, t := range times {
		if !valid[i] {
			continue
		}
		if IsNaive(t) {
			naive = i
		} else if loc == nil {
			loc, aware = t.Location(), i
		} else if t.Location().String() != loc.String() {
			return nil, castErr(nil, i, values[i], fmt.Errorf("%w: %s and %s", ErrMixedTimezones, loc, t.Location()))
		}
		if naive >= 0 && aware >= 0 {
			return nil, castErr(nil, i, values[i], fmt.Errorf("%w: cannot mix zone-aware and naive values", ErrMixedTimezones))
		}
	}
	return loc, nil
}

func (a *DatetimeArray) DType() DType {
	if a.dtype == nil {
		return PrimitiveTypes.Datetime
	}
	return a.dtype
}

func (a *DatetimeArray) Variant() Variant {
	if a.dtype == nil {
		return VariantDatetime
	}
	return VariantDatetimeTZ
}

// Location returns the array's zone, nil for naive arrays.
func (a *DatetimeArray) Location() *time.Location {
	if a.dtype == nil {
		return nil
	}
	return a.dtype.loc
}

// Value returns element i, NaT when missing.
func (a *DatetimeArray) Value(i int) any {
	v := arrowValue(a.values, i)
	if v == nil {
		return NaT
	}
	t := v.(time.Time)
	if a.dtype != nil {
		return t.In(a.dtype.loc)
	}
	return t
}

func (a *DatetimeArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *DatetimeArray) Copy() (ExtensionArray, error) {
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &DatetimeArray{vals, a.dtype}, nil
}

func (a *DatetimeArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *DatetimeArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &DatetimeArray{vals, a.dtype}, nil
}

func (a *DatetimeArray) String() string { return formatArray(a) }

// TimedeltaArray is a nanosecond duration array.
type TimedeltaArray struct {
	arrowBacked
}

// NewTimedeltaArray builds a duration array from data. Integers are read as
// nanoseconds and strings are parsed with ParseDuration.
func NewTimedeltaArray(mem memory.Allocator, data any, copy bool) (*TimedeltaArray, error) {
	if src, ok := data.(*TimedeltaArray); ok {
		if !copy {
			src.values.Retain()
			return &TimedeltaArray{src.arrowBacked}, nil
		}
		vals, err := src.copyValues()
		if err != nil {
			return nil, err
		}
		return &TimedeltaArray{vals}, nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	nanos, valid, err := toDurations(values, PrimitiveTypes.Timedelta)
	if err != nil {
		return nil, err
	}
	return &TimedeltaArray{arrowBacked{mem, buildDurations(mem, nanos, valid)}}, nil
}

func (a *TimedeltaArray) DType() DType     { return PrimitiveTypes.Timedelta }
func (a *TimedeltaArray) Variant() Variant { return VariantTimedelta }

// Value returns element i, NaT when missing.
func (a *TimedeltaArray) Value(i int) any {
	if v := arrowValue(a.values, i); v != nil {
		return v
	}
	return NaT
}

func (a *TimedeltaArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *TimedeltaArray) Copy() (ExtensionArray, error) {
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &TimedeltaArray{vals}, nil
}

func (a *TimedeltaArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *TimedeltaArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &TimedeltaArray{vals}, nil
}

func (a *TimedeltaArray) String() string { return formatArray(a) }

// EnsureWrappedIfDatetimelike wraps datetime and timedelta buffers in their
// extension arrays. Any other value is returned unchanged.
func EnsureWrappedIfDatetimelike(mem memory.Allocator, arr ArrayLike) (ArrayLike, error) {
	b, ok := arr.(*Buffer)
	if !ok {
		return arr, nil
	}
	switch b.dtype.kind {
	case KindDatetime:
		dta, err := NewDatetimeArray(mem, b, PrimitiveTypes.Datetime, false)
		if err != nil {
			return nil, err
		}
		return dta, nil
	case KindTimedelta:
		tda, err := NewTimedeltaArray(mem, b, false)
		if err != nil {
			return nil, err
		}
		return tda, nil
	}
	return arr, nil
}
