package pdarrow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape indicates a scalar where a sequence was required, or
	// input whose dimensionality cannot be reduced to one.
	ErrInvalidShape = errors.New("pdarrow: invalid input shape")
	// ErrUnorderedSet indicates an unordered container (a Go map) was passed
	// as array data.
	ErrUnorderedSet = errors.New("pdarrow: unordered input")
	// ErrMissingLength indicates a scalar was passed without a length hint.
	ErrMissingLength = errors.New("pdarrow: length must be specified when data is not list-like")
	// ErrLossyCast indicates values that cannot be represented losslessly in
	// the requested integer type.
	ErrLossyCast = errors.New("pdarrow: lossy cast")
	// ErrTypeMismatch indicates an explicit mismatch between datetime-like
	// values and the requested datetime-like type. It is never degraded.
	ErrTypeMismatch = errors.New("pdarrow: cannot cast")
	// ErrInvalidValue indicates an element that cannot be converted to the
	// requested type.
	ErrInvalidValue = errors.New("pdarrow: invalid value")
	// ErrOutOfBoundsDatetime indicates a timestamp outside the nanosecond range.
	ErrOutOfBoundsDatetime = errors.New("pdarrow: out of bounds nanosecond timestamp")
	// ErrMixedTimezones indicates datetime elements carrying different zones,
	// or a mixture of zone-aware and naive elements.
	ErrMixedTimezones = errors.New("pdarrow: mixed time zones")
	// ErrMixedClosed indicates intervals closed on different sides.
	ErrMixedClosed = errors.New("pdarrow: intervals must all be closed on the same side")
	// ErrIntervalSubtype indicates interval bounds of incompatible types.
	ErrIntervalSubtype = errors.New("pdarrow: incompatible interval bounds")
	// ErrIncompatibleFrequency indicates periods of different frequencies.
	ErrIncompatibleFrequency = errors.New("pdarrow: incompatible period frequency")
	// ErrUnknownDType indicates a type alias that is neither a registered
	// extension type nor a primitive type name.
	ErrUnknownDType = errors.New("pdarrow: data type not understood")
)

// CastError provides context about a failed conversion
type CastError struct {
	DType string // Requested type name, empty when inferring
	Index int    // Element position, -1 when not element specific
	Value any    // Offending element, nil when not element specific
	Err   error  // The underlying error
}

func (e *CastError) Error() string {
	target := e.DType
	if target == "" {
		target = "inferred type"
	}
	if e.Index < 0 {
		return fmt.Sprintf("cannot convert to %s: %v", target, e.Err)
	}
	return fmt.Sprintf("cannot convert element %d (%v, %T) to %s: %v", e.Index, e.Value, e.Value, target, e.Err)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// ShapeError provides context about input that failed the shape checks
type ShapeError struct {
	Input any   // The rejected input
	NDim  int   // Dimensions observed, -1 when not applicable
	Err   error // The underlying error
}

func (e *ShapeError) Error() string {
	if e.NDim >= 0 {
		return fmt.Sprintf("%v: data must be 1-dimensional, got %d dimensions", e.Err, e.NDim)
	}
	return fmt.Sprintf("%v: %T", e.Err, e.Input)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// Is reports every shape failure as ErrInvalidShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}

func castErr(dt DType, i int, v any, err error) error {
	return &CastError{DType: dtypeName(dt), Index: i, Value: v, Err: err}
}

func shapeErr(input any, ndim int, err error) error {
	return &ShapeError{Input: input, NDim: ndim, Err: err}
}

// degradable reports whether a cast failure may be replaced by an object
// result. Out of bounds timestamps and explicit datetime-like mismatches
// always propagate.
func degradable(err error) bool {
	return !errors.Is(err, ErrOutOfBoundsDatetime) && !errors.Is(err, ErrTypeMismatch)
}
