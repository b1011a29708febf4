package pdarrow

import (
	"errors"
	"fmt"
	"time"
)

// NoLength is the length hint meaning "not given".
const NoLength = -1

// Sanitize converts data to a one-dimensional *Buffer or ExtensionArray,
// coercing it to dtype when one is given. length is the expected result
// length, or NoLength; a scalar is broadcast to length and a single element
// result is repeated to fill it.
//
// With raiseCastFailure set, a failure to convert to an explicit dtype is
// returned; otherwise the data degrades to an object buffer. Out of bounds
// timestamps and datetime-like type mismatches are always returned.
//
// A buffer of a boolean, floating or datetime-like type passed with
// copy and dtype unset is returned as is: the result is data itself and must
// be released only once. An extension array passed with dtype unset or equal
// to its own type and copy unset is likewise returned as is.
func (e *Engine) Sanitize(data any, length int, dtype DType, copy, raiseCastFailure bool) (ArrayLike, error) {
	dtype, err := e.registry.Resolve(dtype)
	if err != nil {
		return nil, err
	}

	var owned *Buffer
	if m, ok := data.(*MaskedArray); ok {
		if owned, err = SoftenMask(e.mem, m); err != nil {
			return nil, err
		}
		data = owned
	}
	result, err := e.sanitize(data, length, dtype, copy, raiseCastFailure, &owned)
	if owned != nil && (result == nil || result != ArrayLike(owned)) {
		owned.Release()
	}
	return result, err
}

func (e *Engine) sanitize(data any, length int, dtype DType, copy, raise bool, owned **Buffer) (ArrayLike, error) {
	data = Unwrap(data, true)

	if b, ok := data.(*Buffer); ok && b.NDim() == 0 {
		if dtype == nil {
			dtype = b.dtype
		}
		data = b.Value(0)
	}

	var subarr ArrayLike
	var err error
	switch x := data.(type) {
	case *Buffer:
		if dtype != nil && x.dtype.kind == KindFloat && isIntegerDType(dtype) {
			subarr, err = e.tryCast(x, dtype, copy, true)
			if err != nil && degradable(err) {
				e.logFallback("float buffer to integer", dtype, err)
				subarr, err = constructPreservingNA(e.mem, x, nil, copy)
			}
		} else {
			subarr, err = e.tryCast(x, dtype, copy, raise)
		}
	case ExtensionArray:
		if dtype != nil {
			return x.AsType(dtype, copy)
		}
		if copy {
			return x.Copy()
		}
		return x, nil
	case Range:
		if err := x.validate(); err != nil {
			return nil, err
		}
		b := newArrowBuffer(PrimitiveTypes.Int64, buildSigned(e.mem, PrimitiveTypes.Int64, x.Values(), nil))
		*owned = b
		subarr, err = e.tryCast(b, dtype, copy, raise)
	default:
		if isUnorderedSet(data) {
			return nil, shapeErr(data, -1, fmt.Errorf("%w: %T", ErrUnorderedSet, data))
		}
		if values, ok := asSequence(data); ok && len(values) > 0 {
			if dtype != nil {
				subarr, err = e.tryCast(values, dtype, copy, raise)
			} else {
				subarr, err = e.inferSequence(values)
			}
			break
		}
		if !isListLike(data) {
			if length < 0 {
				return nil, shapeErr(data, -1, ErrMissingLength)
			}
			subarr, err = e.constructFromScalar(data, length, dtype)
			break
		}
		var values []any
		if values, err = elementsOf(data); err == nil {
			subarr, err = e.tryCast(values, dtype, copy, raise)
		}
	}
	if err != nil {
		return nil, err
	}

	subarr, err = e.normalizeNDim(subarr, data, dtype, length)
	if err != nil {
		return nil, err
	}
	if isExtension(subarr.DType()) || isExtension(dtype) {
		return subarr, nil
	}
	if b, ok := subarr.(*Buffer); ok {
		if subarr, err = e.guardStringDType(b, data, dtype); err != nil {
			return nil, err
		}
	}
	return e.upgradeObject(subarr, dtype)
}

// inferSequence converts an ordered sequence without a requested type to the
// most specific buffer, then applies the datetime-like upgrade.
func (e *Engine) inferSequence(values []any) (ArrayLike, error) {
	b := convertPlatform(e.mem, values)
	out, err := e.inferDatetimeLike(b)
	if err != nil {
		b.Release()
		return nil, err
	}
	if out != any(b) {
		b.Release()
	}
	return out.(ArrayLike), nil
}

func isIntegerDType(dt DType) bool {
	switch t := dt.(type) {
	case *PrimitiveDType:
		return t.kind.IsInteger()
	case *IntegerDType:
		return true
	}
	return false
}

// tryCast converts a buffer or a sequence to dtype.
func (e *Engine) tryCast(arr any, dtype DType, copy, raise bool) (ArrayLike, error) {
	if b, ok := arr.(*Buffer); ok && castable(b.dtype) && !copy && dtype == nil {
		return b, nil
	}
	if ext, ok := dtype.(ExtensionDType); ok {
		if _, tz := ext.(*DatetimeTZDType); !tz {
			return ext.ConstructFromSequence(e.mem, arr, copy)
		}
	}
	if values, ok := arr.([]any); ok && dtype == PrimitiveTypes.Object {
		return newObjectBuffer(append([]any(nil), values...)), nil
	}

	result, err := e.coerce(arr, dtype, copy)
	if err == nil {
		return result, nil
	}
	if !degradable(err) || (dtype != nil && raise) {
		return nil, err
	}
	e.logFallback("cast", dtype, err)
	return bufferResult(e.objectFallback(arr))
}

// coerce performs the primitive conversion of tryCast.
func (e *Engine) coerce(arr any, dtype DType, copy bool) (ArrayLike, error) {
	prim, _ := dtype.(*PrimitiveDType)
	subarr := arr
	if prim == nil || !prim.kind.IsInteger() {
		converted, err := e.castToDatetimeLike(arr, dtype)
		if err != nil {
			return nil, err
		}
		if dtype != nil && dtype.Kind() == KindDatetime {
			return converted.(ArrayLike), nil
		}
		subarr = converted
	}
	switch x := subarr.(type) {
	case ExtensionArray:
		return x, nil
	case *Buffer:
		if x != arr {
			if prim == nil || prim == x.dtype {
				return x, nil
			}
			defer x.Release()
		}
	}
	return bufferResult(constructPreservingNA(e.mem, subarr, prim, copy))
}

// objectFallback returns an object buffer of the original elements.
func (e *Engine) objectFallback(arr any) (*Buffer, error) {
	if b, ok := arr.(*Buffer); ok {
		return newObjectBuffer(b.Objects()).withShape(b.shape...), nil
	}
	values, err := elementsOf(arr)
	if err != nil {
		return nil, err
	}
	return npArray(e.mem, values, PrimitiveTypes.Object)
}

// castToDatetimeLike converts data to an explicit datetime-like dtype, or
// with a nil dtype upgrades object data holding only times or only
// durations. Any other data is returned unchanged.
func (e *Engine) castToDatetimeLike(data any, dtype DType) (any, error) {
	switch t := dtype.(type) {
	case nil:
		return e.inferDatetimeLike(data)
	case *DatetimeTZDType:
		dta, err := NewDatetimeArray(e.mem, data, t, false)
		if err != nil {
			return nil, err
		}
		return dta, nil
	case *PrimitiveDType:
		if t.kind != KindDatetime && t.kind != KindTimedelta {
			return data, nil
		}
		values, err := elementsOf(data)
		if err != nil {
			return nil, err
		}
		return bufferResult(castToPrimitive(e.mem, values, t))
	}
	return data, nil
}

// inferDatetimeLike upgrades object data whose present elements are all
// times to a datetime buffer, or a zone-aware DatetimeArray when they share a
// zone, and data whose present elements are all durations to a timedelta
// buffer. Times in different zones are left as they are.
func (e *Engine) inferDatetimeLike(data any) (any, error) {
	var values []any
	switch x := data.(type) {
	case []any:
		values = x
	case *Buffer:
		if x.dtype.kind != KindObject || x.NDim() != 1 {
			return data, nil
		}
		values = x.objects
	default:
		return data, nil
	}
	var nTime, nAware, nDuration, nMissing int
	for _, v := range values {
		switch x := v.(type) {
		case time.Time:
			nTime++
			if !IsNaive(x) {
				nAware++
			}
		case time.Duration:
			nDuration++
		default:
			if !IsMissing(v) {
				return data, nil
			}
			nMissing++
		}
	}
	switch {
	case nTime > 0 && nDuration == 0:
		if nAware == 0 {
			return bufferResult(castToPrimitive(e.mem, values, PrimitiveTypes.Datetime))
		}
		dta, err := NewDatetimeArray(e.mem, values, nil, false)
		if errors.Is(err, ErrMixedTimezones) {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		return dta, nil
	case nDuration > 0 && nTime == 0:
		return bufferResult(castToPrimitive(e.mem, values, PrimitiveTypes.Timedelta))
	}
	return data, nil
}

// constructFromScalar builds a buffer of length copies of v at dtype, or an
// extension array when dtype is an extension type. Without a dtype the type
// is inferred from v.
func (e *Engine) constructFromScalar(v any, length int, dtype DType) (ArrayLike, error) {
	if dtype == nil {
		dtype = scalarDType(v)
	}
	values := make([]any, length)
	for i := range values {
		values[i] = v
	}
	if ext, ok := dtype.(ExtensionDType); ok {
		return ext.ConstructFromSequence(e.mem, values, false)
	}
	prim := dtype.(*PrimitiveDType)
	switch {
	case prim.kind.IsInteger() && IsMissing(v):
		prim = PrimitiveTypes.Float64
	case prim.kind == KindString:
		if !IsMissing(v) {
			s := formatScalar(v)
			for i := range values {
				values[i] = s
			}
		}
		return newObjectBuffer(values), nil
	case prim.kind == KindObject:
		return newObjectBuffer(values), nil
	}
	return bufferResult(castToPrimitive(e.mem, values, prim))
}

// scalarDType infers the type of a single value.
func scalarDType(v any) DType {
	switch x := v.(type) {
	case bool:
		return PrimitiveTypes.Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return PrimitiveTypes.Int64
	case uint64:
		return PrimitiveTypes.Uint64
	case float32, float64:
		return PrimitiveTypes.Float64
	case natType:
		return PrimitiveTypes.Datetime
	case time.Time:
		if IsNaive(x) {
			return PrimitiveTypes.Datetime
		}
		return NewDatetimeTZDType(x.Location())
	case time.Duration:
		return PrimitiveTypes.Timedelta
	case Period:
		return NewPeriodDType(x.Freq)
	case Interval:
		if k := boundKind(x.Left); k != KindInvalid {
			return NewIntervalDType(subtypeForKind(k), x.Closed)
		}
	}
	return PrimitiveTypes.Object
}

// normalizeNDim makes result one-dimensional. A single element result is
// repeated to length when a length hint is given. Two-dimensional results
// built from nested sequences become object buffers of row tuples; a
// multi-dimensional buffer passed as data is rejected.
func (e *Engine) normalizeNDim(result ArrayLike, data any, dtype DType, length int) (ArrayLike, error) {
	b, isBuffer := result.(*Buffer)
	switch {
	case isBuffer && b.NDim() == 0:
		return nil, fmt.Errorf("%w: result should be array-like with at least one dimension", ErrInvalidShape)

	case isBuffer && b.NDim() > 1:
		if any(b) != data {
			defer b.Release()
		}
		if src, ok := data.(*Buffer); ok {
			return nil, shapeErr(src, src.NDim(), ErrInvalidShape)
		}
		rows := make([]any, b.shape[0])
		for i := range rows {
			rows[i] = b.Row(i)
		}
		if pt, ok := dtype.(*PrimitiveArrayDType); ok && pt.elem == PrimitiveTypes.Object {
			pa, err := NewPrimitiveArray(e.mem, newObjectBuffer(rows), PrimitiveTypes.Object, false)
			if err != nil {
				return nil, err
			}
			return pa, nil
		}
		return newObjectBuffer(rows), nil
	}

	if length < 0 || result.Len() != 1 || length == 1 {
		return result, nil
	}
	var repeated ArrayLike
	var err error
	switch x := result.(type) {
	case *Buffer:
		repeated, err = x.Repeat(e.mem, length)
	case ExtensionArray:
		repeated, err = x.Repeat(length)
	default:
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if result != data {
		releaseArrayLike(result)
	}
	return repeated, nil
}

// guardStringDType keeps string buffers from stringifying missing values:
// the result is re-derived from data and returned as an object buffer of the
// strings, or of the original elements when data is entirely missing.
func (e *Engine) guardStringDType(b *Buffer, data any, dtype DType) (ArrayLike, error) {
	if b.dtype.kind != KindString {
		return b, nil
	}
	if any(b) != data {
		defer b.Release()
	}
	if isScalar(data) {
		return newObjectBuffer(b.Objects()).withShape(b.shape...), nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	if allMissing(values) {
		return newObjectBuffer(append([]any(nil), values...)), nil
	}
	prim, _ := dtype.(*PrimitiveDType)
	derived, err := npArray(e.mem, values, prim)
	if err != nil {
		return nil, err
	}
	defer derived.Release()
	return newObjectBuffer(derived.Objects()).withShape(derived.shape...), nil
}

// upgradeObject replaces an object buffer holding only intervals or only
// periods with the matching extension array's buffer form. The input is
// released when it is replaced.
func (e *Engine) upgradeObject(result ArrayLike, dtype DType) (ArrayLike, error) {
	b, ok := result.(*Buffer)
	if !ok || b.dtype.kind != KindObject || isObjectDType(dtype) || isStringDType(dtype) || b.NDim() != 1 {
		return result, nil
	}
	switch InferType(b.objects, false) {
	case InferredInterval, InferredPeriod:
	default:
		return result, nil
	}
	arr, err := e.Array(b, nil, false)
	if err != nil {
		return nil, err
	}
	upgraded, ok := Unwrap(arr, true).(ArrayLike)
	if !ok {
		return result, nil
	}
	if upgraded != ArrayLike(b) {
		b.Release()
	}
	return upgraded, nil
}

func bufferResult(b *Buffer, err error) (ArrayLike, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

func releaseArrayLike(a ArrayLike) {
	switch x := a.(type) {
	case *Buffer:
		x.Release()
	case ExtensionArray:
		x.Release()
	}
}
