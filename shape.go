package pdarrow

import (
	"fmt"
	"iter"
	"reflect"
)

// Wrapper is a column or index like container backed by exactly one array.
type Wrapper interface {
	BackingArray() ArrayLike
}

// ArrayLike is either a *Buffer or an ExtensionArray.
type ArrayLike interface {
	DType() DType
	Len() int
}

// Unwrap replaces a Wrapper with its backing array. With extractPrimitive
// set, a *PrimitiveArray is further replaced by its buffer. Anything else is
// returned unchanged. Unwrap never copies.
func Unwrap(v any, extractPrimitive bool) any {
	if w, ok := v.(Wrapper); ok {
		v = w.BackingArray()
	}
	if extractPrimitive {
		if p, ok := v.(*PrimitiveArray); ok {
			return p.Buffer()
		}
	}
	return v
}

// asSequence returns the elements of an ordered sequence: []any, Tuple, or
// any Go slice or array other than a byte slice. Strings are scalars.
func asSequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return x, true
	case Tuple:
		return []any(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// asIterable materializes generators: Iterable values and iter.Seq[any].
func asIterable(v any) ([]any, bool) {
	var seq iter.Seq[any]
	switch x := v.(type) {
	case Iterable:
		seq = x.All()
	case iter.Seq[any]:
		seq = x
	case func(yield func(any) bool):
		seq = x
	default:
		return nil, false
	}
	var out []any
	for v := range seq {
		out = append(out, v)
	}
	return out, true
}

// isUnorderedSet reports whether v is a Go map; maps have no defined
// iteration order and are rejected as array data.
func isUnorderedSet(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Map
}

// isListLike reports whether v can be iterated into elements.
func isListLike(v any) bool {
	switch v.(type) {
	case *Buffer, *MaskedArray, ExtensionArray, Wrapper, Range, Iterable, iter.Seq[any], func(yield func(any) bool):
		return true
	}
	if _, ok := asSequence(v); ok {
		return true
	}
	return isUnorderedSet(v)
}

// isScalar reports whether v is a single value rather than a container.
// Zero-dimensional buffers count as scalars.
func isScalar(v any) bool {
	if b, ok := v.(*Buffer); ok {
		return b.NDim() == 0
	}
	return !isListLike(v)
}

// elementIsListLike reports whether an element of a sequence is itself a
// nested sequence.
func elementIsListLike(v any) bool {
	switch v.(type) {
	case nil, string, []byte:
		return false
	case []any, Tuple:
		return true
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// elementsOf returns the elements of one-dimensional array data as Go values.
// It accepts everything an extension array can be constructed from.
func elementsOf(data any) ([]any, error) {
	data = Unwrap(data, true)
	switch x := data.(type) {
	case *Buffer:
		if x.NDim() != 1 {
			return nil, shapeErr(x, x.NDim(), ErrInvalidShape)
		}
		return x.Objects(), nil
	case ExtensionArray:
		return x.Objects(), nil
	case *MaskedArray:
		out := x.Data.Objects()
		for i, absent := range x.Mask {
			if absent {
				out[i] = NA
			}
		}
		return out, nil
	case Range:
		if err := x.validate(); err != nil {
			return nil, err
		}
		vals := x.Values()
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v
		}
		return out, nil
	}
	if isUnorderedSet(data) {
		return nil, shapeErr(data, -1, ErrUnorderedSet)
	}
	if values, ok := asSequence(data); ok {
		return values, nil
	}
	if values, ok := asIterable(data); ok {
		return values, nil
	}
	return nil, shapeErr(data, -1, fmt.Errorf("%w: cannot build an array from %T", ErrInvalidShape, data))
}

func allMissing(values []any) bool {
	for _, v := range values {
		if !IsMissing(v) {
			return false
		}
	}
	return true
}
