package pdarrow

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Closed names the sides on which an interval contains its bounds.
type Closed string

const (
	ClosedRight   Closed = "right"
	ClosedLeft    Closed = "left"
	ClosedBoth    Closed = "both"
	ClosedNeither Closed = "neither"
)

// ParseClosed validates a closed side name.
func ParseClosed(s string) (Closed, error) {
	switch c := Closed(s); c {
	case ClosedRight, ClosedLeft, ClosedBoth, ClosedNeither:
		return c, nil
	}
	return "", fmt.Errorf("%w: invalid closed side %q", ErrInvalidValue, s)
}

// Interval is a span between two bounds of the same kind.
type Interval struct {
	Left   any
	Right  any
	Closed Closed
}

// NewInterval validates the bounds and returns the interval. Bounds must be
// both numeric, both times or both durations, with left <= right.
func NewInterval(left, right any, closed Closed) (Interval, error) {
	if closed == "" {
		closed = ClosedRight
	}
	if _, err := ParseClosed(string(closed)); err != nil {
		return Interval{}, err
	}
	lk, rk := boundKind(left), boundKind(right)
	if lk == KindInvalid || lk != rk {
		return Interval{}, fmt.Errorf("%w: %T and %T", ErrIntervalSubtype, left, right)
	}
	if compareBounds(left, right) > 0 {
		return Interval{}, fmt.Errorf("%w: left side of interval must be <= right side", ErrInvalidValue)
	}
	return Interval{Left: left, Right: right, Closed: closed}, nil
}

func (iv Interval) String() string {
	open, end := "(", ")"
	if iv.Closed == ClosedLeft || iv.Closed == ClosedBoth {
		open = "["
	}
	if iv.Closed == ClosedRight || iv.Closed == ClosedBoth || iv.Closed == "" {
		end = "]"
	}
	return open + formatScalar(iv.Left) + ", " + formatScalar(iv.Right) + end
}

// boundKind classifies an interval bound: integer, float, datetime or
// timedelta. Zone-aware times are not valid bounds.
func boundKind(v any) Kind {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case time.Time:
		if IsNaive(x) {
			return KindDatetime
		}
	case time.Duration:
		return KindTimedelta
	}
	return KindInvalid
}

func compareBounds(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		return x.Compare(b.(time.Time))
	case time.Duration:
		return cmpOrdered(x, b.(time.Duration))
	}
	fa, _ := toFloat64(a)
	fb, _ := toFloat64(b)
	return cmpOrdered(fa, fb)
}

func cmpOrdered[T int64 | float64 | time.Duration](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IntervalArray stores intervals as two bound arrays sharing one subtype and
// one closed side.
type IntervalArray struct {
	mem   memory.Allocator
	left  arrow.Array
	right arrow.Array
	dtype *IntervalDType
}

// NewIntervalArray builds an interval array from data. The closed side and
// bound subtype come from dtype when it names them, otherwise from the
// elements. Intervals closed on different sides fail with ErrMixedClosed and
// bounds of incompatible kinds with ErrIntervalSubtype.
func NewIntervalArray(mem memory.Allocator, data any, dtype *IntervalDType, copy bool) (*IntervalArray, error) {
	if src, ok := data.(*IntervalArray); ok && (dtype == nil || DTypeEqual(src.dtype, dtype)) {
		return src.clone(copy)
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	var closed Closed
	var subtype *PrimitiveDType
	if dtype != nil {
		closed, subtype = dtype.closed, dtype.subtype
	}
	target := DType(dtype)
	if dtype == nil {
		target = NewIntervalDType(nil, "")
	}

	lefts := make([]any, len(values))
	rights := make([]any, len(values))
	valid := make([]bool, len(values))
	kind := KindInvalid
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		iv, ok := v.(Interval)
		if !ok {
			return nil, castErr(target, i, v, fmt.Errorf("%w: %T is not an interval", ErrInvalidValue, v))
		}
		c := iv.Closed
		if c == "" {
			c = ClosedRight
		}
		if closed == "" {
			closed = c
		} else if c != closed {
			return nil, castErr(target, i, v, fmt.Errorf("%w: %s and %s", ErrMixedClosed, closed, c))
		}
		k := boundKind(iv.Left)
		if k == KindInvalid || k != boundKind(iv.Right) {
			return nil, castErr(target, i, v, fmt.Errorf("%w: %T and %T", ErrIntervalSubtype, iv.Left, iv.Right))
		}
		switch {
		case kind == KindInvalid:
			kind = k
		case kind == k:
		case numericKind(kind) && numericKind(k):
			kind = KindFloat
		default:
			return nil, castErr(target, i, v, fmt.Errorf("%w: %s and %s bounds", ErrIntervalSubtype, kind, k))
		}
		lefts[i], rights[i], valid[i] = iv.Left, iv.Right, true
	}
	if closed == "" {
		closed = ClosedRight
	}
	if subtype == nil {
		subtype = subtypeForKind(kind)
	} else if kind != KindInvalid && !boundsFit(kind, subtype) {
		return nil, castErr(target, -1, nil, fmt.Errorf("%w: %s bounds for subtype %s", ErrIntervalSubtype, kind, subtype))
	}

	left, err := buildBounds(mem, subtype, lefts, valid)
	if err != nil {
		return nil, castErr(target, -1, nil, err)
	}
	right, err := buildBounds(mem, subtype, rights, valid)
	if err != nil {
		left.Release()
		return nil, castErr(target, -1, nil, err)
	}
	return &IntervalArray{mem: mem, left: left, right: right, dtype: NewIntervalDType(subtype, closed)}, nil
}

func numericKind(k Kind) bool {
	return k == KindInt || k == KindFloat
}

func subtypeForKind(k Kind) *PrimitiveDType {
	switch k {
	case KindInt:
		return PrimitiveTypes.Int64
	case KindDatetime:
		return PrimitiveTypes.Datetime
	case KindTimedelta:
		return PrimitiveTypes.Timedelta
	}
	return PrimitiveTypes.Float64
}

func boundsFit(k Kind, subtype *PrimitiveDType) bool {
	if numericKind(k) {
		return numericKind(subtype.kind) || subtype.kind == KindUint
	}
	return k == subtype.kind
}

// buildBounds writes one side of the bounds into an Arrow array of subtype.
func buildBounds(mem memory.Allocator, subtype *PrimitiveDType, vals []any, valid []bool) (arrow.Array, error) {
	switch subtype.kind {
	case KindInt:
		out := make([]int64, len(vals))
		for i, v := range vals {
			if !valid[i] {
				continue
			}
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return buildSigned(mem, subtype, out, valid), nil
	case KindUint:
		out := make([]uint64, len(vals))
		for i, v := range vals {
			if !valid[i] {
				continue
			}
			n, err := toUint64(v)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return buildUnsigned(mem, subtype, out, valid), nil
	case KindFloat:
		out := make([]float64, len(vals))
		for i, v := range vals {
			if valid[i] {
				out[i], _ = toFloat64(v)
			}
		}
		return buildFloat(mem, subtype, out, valid), nil
	case KindDatetime:
		out := make([]int64, len(vals))
		for i, v := range vals {
			if !valid[i] {
				continue
			}
			n, err := toNanos(v.(time.Time))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return buildTimestamps(mem, timestampNS, out, valid), nil
	case KindTimedelta:
		out := make([]int64, len(vals))
		for i, v := range vals {
			if valid[i] {
				out[i] = int64(v.(time.Duration))
			}
		}
		return buildDurations(mem, out, valid), nil
	}
	return nil, fmt.Errorf("%w: %s is not a valid bound type", ErrIntervalSubtype, subtype)
}

func (a *IntervalArray) clone(copy bool) (*IntervalArray, error) {
	if !copy {
		a.left.Retain()
		a.right.Retain()
		return &IntervalArray{mem: a.mem, left: a.left, right: a.right, dtype: a.dtype}, nil
	}
	left, err := copyArrow(a.mem, a.left)
	if err != nil {
		return nil, err
	}
	right, err := copyArrow(a.mem, a.right)
	if err != nil {
		left.Release()
		return nil, err
	}
	return &IntervalArray{mem: a.mem, left: left, right: right, dtype: a.dtype}, nil
}

func (a *IntervalArray) DType() DType     { return a.dtype }
func (a *IntervalArray) Variant() Variant { return VariantInterval }
func (a *IntervalArray) Len() int         { return a.left.Len() }
func (a *IntervalArray) IsNA(i int) bool  { return a.left.IsNull(i) }

// Closed returns the side shared by every interval.
func (a *IntervalArray) Closed() Closed { return a.dtype.closed }

// Left returns the left bounds.
func (a *IntervalArray) Left() arrow.Array { return a.left }

// Right returns the right bounds.
func (a *IntervalArray) Right() arrow.Array { return a.right }

// Value returns element i, NaN when missing.
func (a *IntervalArray) Value(i int) any {
	if a.left.IsNull(i) {
		return nan()
	}
	return Interval{Left: arrowValue(a.left, i), Right: arrowValue(a.right, i), Closed: a.dtype.closed}
}

func (a *IntervalArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *IntervalArray) Copy() (ExtensionArray, error) {
	c, err := a.clone(true)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *IntervalArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *IntervalArray) Repeat(n int) (ExtensionArray, error) {
	left, err := repeatArrow(a.mem, a.left, n)
	if err != nil {
		return nil, err
	}
	right, err := repeatArrow(a.mem, a.right, n)
	if err != nil {
		left.Release()
		return nil, err
	}
	return &IntervalArray{mem: a.mem, left: left, right: right, dtype: a.dtype}, nil
}

func (a *IntervalArray) Release() {
	releaseAll(a.left, a.right)
}

func (a *IntervalArray) String() string { return formatArray(a) }
