package pdarrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"
)

// IntegerArray is a nullable integer array.
type IntegerArray struct {
	arrowBacked
	dtype *IntegerDType
}

// NewIntegerArray builds a nullable integer array from data. A nil dtype
// selects Int64. Floats must hold integral values; booleans and strings are
// rejected.
func NewIntegerArray(mem memory.Allocator, data any, dtype *IntegerDType, copy bool) (*IntegerArray, error) {
	if dtype == nil {
		dtype = ExtensionTypes.Int64
	}
	if src, ok := data.(*IntegerArray); ok && src.dtype == dtype {
		return src.clone(copy)
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	prim := dtype.prim
	valid := make([]bool, len(values))
	if prim.kind == KindUint {
		vals := make([]uint64, len(values))
		for i, v := range values {
			if IsMissing(v) {
				continue
			}
			if err := checkNumeric(v); err != nil {
				return nil, castErr(dtype, i, v, err)
			}
			n, err := toUint64(v)
			if err == nil && !fitsUnsigned(n, prim.bitWidth) {
				err = fmt.Errorf("%w: value %d out of range", ErrLossyCast, n)
			}
			if err != nil {
				return nil, castErr(dtype, i, v, err)
			}
			vals[i], valid[i] = n, true
		}
		return &IntegerArray{arrowBacked{mem, buildUnsigned(mem, prim, vals, valid)}, dtype}, nil
	}
	vals := make([]int64, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		if err := checkNumeric(v); err != nil {
			return nil, castErr(dtype, i, v, err)
		}
		n, err := toInt64(v)
		if err == nil && !fitsSigned(n, prim.bitWidth) {
			err = fmt.Errorf("%w: value %d out of range", ErrLossyCast, n)
		}
		if err != nil {
			return nil, castErr(dtype, i, v, err)
		}
		vals[i], valid[i] = n, true
	}
	return &IntegerArray{arrowBacked{mem, buildSigned(mem, prim, vals, valid)}, dtype}, nil
}

// checkNumeric rejects elements that are not plain numbers.
func checkNumeric(v any) error {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, decimal.Decimal:
		return nil
	}
	return fmt.Errorf("%w: %T cannot be converted to a numeric type", ErrInvalidValue, v)
}

func (a *IntegerArray) clone(copy bool) (*IntegerArray, error) {
	if !copy {
		a.values.Retain()
		return &IntegerArray{a.arrowBacked, a.dtype}, nil
	}
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &IntegerArray{vals, a.dtype}, nil
}

func (a *IntegerArray) DType() DType     { return a.dtype }
func (a *IntegerArray) Variant() Variant { return VariantInteger }

// Value returns element i, NA when missing.
func (a *IntegerArray) Value(i int) any {
	if v := arrowValue(a.values, i); v != nil {
		return v
	}
	return NA
}

func (a *IntegerArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *IntegerArray) Copy() (ExtensionArray, error) {
	c, err := a.clone(true)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *IntegerArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *IntegerArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &IntegerArray{vals, a.dtype}, nil
}

func (a *IntegerArray) String() string { return formatArray(a) }

// FloatingArray is a nullable floating array. NaN input is stored as missing.
type FloatingArray struct {
	arrowBacked
	dtype *FloatingDType
}

// NewFloatingArray builds a nullable floating array from data. A nil dtype
// selects Float64.
func NewFloatingArray(mem memory.Allocator, data any, dtype *FloatingDType, copy bool) (*FloatingArray, error) {
	if dtype == nil {
		dtype = ExtensionTypes.Float64
	}
	if src, ok := data.(*FloatingArray); ok && src.dtype == dtype {
		return src.clone(copy)
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		if err := checkNumeric(v); err != nil {
			return nil, castErr(dtype, i, v, err)
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, castErr(dtype, i, v, err)
		}
		vals[i], valid[i] = f, true
	}
	return &FloatingArray{arrowBacked{mem, buildFloat(mem, dtype.prim, vals, valid)}, dtype}, nil
}

func (a *FloatingArray) clone(copy bool) (*FloatingArray, error) {
	if !copy {
		a.values.Retain()
		return &FloatingArray{a.arrowBacked, a.dtype}, nil
	}
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &FloatingArray{vals, a.dtype}, nil
}

func (a *FloatingArray) DType() DType     { return a.dtype }
func (a *FloatingArray) Variant() Variant { return VariantFloating }

// Value returns element i, NA when missing.
func (a *FloatingArray) Value(i int) any {
	if v := arrowValue(a.values, i); v != nil {
		return v
	}
	return NA
}

func (a *FloatingArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *FloatingArray) Copy() (ExtensionArray, error) {
	c, err := a.clone(true)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *FloatingArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *FloatingArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &FloatingArray{vals, a.dtype}, nil
}

func (a *FloatingArray) String() string { return formatArray(a) }

// BooleanArray is a nullable boolean array.
type BooleanArray struct {
	arrowBacked
}

// NewBooleanArray builds a nullable boolean array from data. Numbers are
// accepted when they are 0 or 1.
func NewBooleanArray(mem memory.Allocator, data any, copy bool) (*BooleanArray, error) {
	if src, ok := data.(*BooleanArray); ok {
		return src.clone(copy)
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	vals := make([]bool, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			if err := checkNumeric(v); err != nil {
				return nil, castErr(ExtensionTypes.Boolean, i, v, err)
			}
			f, _ := toFloat64(v)
			if f != 0 && f != 1 {
				return nil, castErr(ExtensionTypes.Boolean, i, v, fmt.Errorf("%w: only 0 and 1 convert to boolean", ErrInvalidValue))
			}
			b = f == 1
		}
		vals[i], valid[i] = b, true
	}
	return &BooleanArray{arrowBacked{mem, buildArray(array.NewBooleanBuilder(mem), vals, valid)}}, nil
}

func (a *BooleanArray) clone(copy bool) (*BooleanArray, error) {
	if !copy {
		a.values.Retain()
		return &BooleanArray{a.arrowBacked}, nil
	}
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &BooleanArray{vals}, nil
}

func (a *BooleanArray) DType() DType     { return ExtensionTypes.Boolean }
func (a *BooleanArray) Variant() Variant { return VariantBoolean }

// Value returns element i, NA when missing.
func (a *BooleanArray) Value(i int) any {
	if v := arrowValue(a.values, i); v != nil {
		return v
	}
	return NA
}

func (a *BooleanArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *BooleanArray) Copy() (ExtensionArray, error) {
	c, err := a.clone(true)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *BooleanArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *BooleanArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &BooleanArray{vals}, nil
}

func (a *BooleanArray) String() string { return formatArray(a) }
