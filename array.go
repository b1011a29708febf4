package pdarrow

import (
	"errors"
	"fmt"
)

// Array builds an extension array from data.
//
// With a nil dtype the element types of data choose the array: periods,
// intervals, zone-aware or naive times, durations, strings, integers, floats
// and booleans each build their specialized array. Periods of mixed
// frequency, intervals with mixed closed sides or bound types, and times in
// mixed zones fall back to a PrimitiveArray of the original elements, as does
// anything else. The datetime64[ns] and timedelta64[ns] primitive types build
// a DatetimeArray and a TimedeltaArray. A scalar fails with ErrInvalidShape.
func (e *Engine) Array(data any, dtype DType, copy bool) (ExtensionArray, error) {
	if isScalar(data) {
		return nil, shapeErr(data, 0, fmt.Errorf("%w: cannot pass scalar %v to Array", ErrInvalidShape, formatScalar(data)))
	}
	if dtype == nil {
		switch x := data.(type) {
		case Wrapper:
			dtype = x.BackingArray().DType()
		case ExtensionArray:
			dtype = x.DType()
		}
	}
	data = Unwrap(data, true)

	dtype, err := e.registry.Resolve(dtype)
	if err != nil {
		return nil, err
	}
	if ext, ok := dtype.(ExtensionDType); ok {
		return ext.ConstructFromSequence(e.mem, data, copy)
	}

	if dtype == nil {
		arr, err := e.inferArray(data, copy)
		if err != nil || arr != nil {
			return arr, err
		}
	}

	prim, _ := dtype.(*PrimitiveDType)
	if prim == PrimitiveTypes.Datetime {
		dta, err := NewDatetimeArray(e.mem, data, prim, copy)
		if err != nil {
			return nil, err
		}
		return dta, nil
	}
	if prim == PrimitiveTypes.Timedelta {
		tda, err := NewTimedeltaArray(e.mem, data, copy)
		if err != nil {
			return nil, err
		}
		return tda, nil
	}

	pa, err := NewPrimitiveArray(e.mem, data, prim, copy)
	if err != nil {
		return nil, err
	}
	return pa, nil
}

// inferArray builds the specialized array matching the inferred element type
// of data. It returns a nil array without error when data should take the
// generic path.
func (e *Engine) inferArray(data any, copy bool) (ExtensionArray, error) {
	inferred, err := inferTypeOf(data, true)
	if err != nil {
		return nil, err
	}

	switch inferred {
	case InferredPeriod:
		arr, err := NewPeriodArray(e.mem, data, nil, copy)
		if errors.Is(err, ErrIncompatibleFrequency) {
			e.logFallback("period", nil, err)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredInterval:
		arr, err := NewIntervalArray(e.mem, data, nil, copy)
		if errors.Is(err, ErrMixedClosed) || errors.Is(err, ErrIntervalSubtype) {
			e.logFallback("interval", nil, err)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredDatetime:
		arr, err := NewDatetimeArray(e.mem, data, nil, copy)
		if errors.Is(err, ErrMixedTimezones) {
			e.logFallback("datetime", nil, err)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredTimedelta:
		arr, err := NewTimedeltaArray(e.mem, data, copy)
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredString:
		arr, err := NewStringArray(e.mem, data, copy)
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredInteger:
		dt := ExtensionTypes.Int64
		if b, ok := data.(*Buffer); ok {
			dt = integerDTypeFor(b.dtype)
		}
		arr, err := NewIntegerArray(e.mem, data, dt, copy)
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredFloating, InferredMixedIntegerFloat:
		dt := ExtensionTypes.Float64
		if b, ok := data.(*Buffer); ok && b.dtype == PrimitiveTypes.Float32 {
			dt = ExtensionTypes.Float32
		}
		arr, err := NewFloatingArray(e.mem, data, dt, copy)
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredBoolean:
		arr, err := NewBooleanArray(e.mem, data, copy)
		if err != nil {
			return nil, err
		}
		return arr, nil

	case InferredEmpty, InferredBytes, InferredDecimal, InferredMixedInteger, InferredMixed:
		return nil, nil
	}
	return nil, nil
}
