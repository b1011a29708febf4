package pdarrow

import (
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// StringArray is a nullable string array backed by an Arrow string column.
type StringArray struct {
	arrowBacked
}

// NewStringArray builds a string array from data. Missing elements become
// NA and every other element is converted to its string form.
func NewStringArray(mem memory.Allocator, data any, copy bool) (*StringArray, error) {
	if src, ok := data.(*StringArray); ok {
		if !copy {
			src.values.Retain()
			return &StringArray{src.arrowBacked}, nil
		}
		vals, err := src.copyValues()
		if err != nil {
			return nil, err
		}
		return &StringArray{vals}, nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	vals := make([]string, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		vals[i], valid[i] = formatScalar(v), true
	}
	return &StringArray{arrowBacked{mem, buildArray(array.NewStringBuilder(mem), vals, valid)}}, nil
}

func (a *StringArray) DType() DType     { return ExtensionTypes.String }
func (a *StringArray) Variant() Variant { return VariantString }

// Value returns element i, NA when missing.
func (a *StringArray) Value(i int) any {
	if v := arrowValue(a.values, i); v != nil {
		return v
	}
	return NA
}

func (a *StringArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *StringArray) Copy() (ExtensionArray, error) {
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &StringArray{vals}, nil
}

func (a *StringArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *StringArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &StringArray{vals}, nil
}

func (a *StringArray) String() string { return formatArray(a) }
