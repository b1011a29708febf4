package pdarrow

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CategoricalArray is a dictionary-encoded array: int32 codes into a list of
// categories.
type CategoricalArray struct {
	arrowBacked
	dtype *CategoricalDType
}

// NewCategoricalArray builds a categorical array from data. Without explicit
// categories, the distinct present values become the categories, sorted when
// they are all numbers, all strings or all times. Values outside explicit
// categories become missing.
func NewCategoricalArray(mem memory.Allocator, data any, dtype *CategoricalDType, copy bool) (*CategoricalArray, error) {
	if dtype == nil {
		dtype = NewCategoricalDType(nil, false)
	}
	if src, ok := data.(*CategoricalArray); ok && (dtype.categories == nil || DTypeEqual(src.dtype, dtype)) {
		if !copy {
			src.values.Retain()
			return &CategoricalArray{src.arrowBacked, src.dtype}, nil
		}
		vals, err := src.copyValues()
		if err != nil {
			return nil, err
		}
		return &CategoricalArray{vals, src.dtype}, nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if !IsMissing(v) && !hashable(v) {
			return nil, castErr(dtype, i, v, fmt.Errorf("%w: %T cannot be a category", ErrInvalidValue, v))
		}
	}
	categories := dtype.categories
	for _, c := range categories {
		if !hashable(c) {
			return nil, castErr(dtype, -1, c, fmt.Errorf("%w: %T cannot be a category", ErrInvalidValue, c))
		}
	}
	if categories == nil {
		categories = inferCategories(values)
	}
	index := make(map[any]int32, len(categories))
	for i, c := range categories {
		index[c] = int32(i)
	}
	codes := make([]int32, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		if code, ok := index[v]; ok {
			codes[i], valid[i] = code, true
		}
	}
	dt := NewCategoricalDType(categories, dtype.ordered)
	return &CategoricalArray{arrowBacked{mem, buildArray(array.NewInt32Builder(mem), codes, valid)}, dt}, nil
}

// hashable reports whether v can be used as a map key. A comparable static
// type is not enough: an interface field holding a slice panics on hashing.
func hashable(v any) (ok bool) {
	if !reflect.TypeOf(v).Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[any]struct{}{v: {}}
	return true
}

// inferCategories returns the distinct present values in order of first
// appearance, sorted when they share an orderable kind.
func inferCategories(values []any) []any {
	seen := make(map[any]bool)
	var out []any
	for _, v := range values {
		if IsMissing(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	switch InferType(out, true) {
	case InferredInteger, InferredFloating, InferredMixedIntegerFloat:
		slices.SortStableFunc(out, func(a, b any) int { return compareBounds(a, b) })
	case InferredString:
		slices.SortStableFunc(out, func(a, b any) int { return strings.Compare(a.(string), b.(string)) })
	case InferredDatetime:
		slices.SortStableFunc(out, func(a, b any) int { return a.(time.Time).Compare(b.(time.Time)) })
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func (a *CategoricalArray) DType() DType     { return a.dtype }
func (a *CategoricalArray) Variant() Variant { return VariantCategorical }

// Categories returns the category values.
func (a *CategoricalArray) Categories() []any { return a.dtype.categories }

// Codes returns the position of every element in the categories, -1 for
// missing elements.
func (a *CategoricalArray) Codes() []int32 {
	codes := a.values.(*array.Int32)
	out := make([]int32, codes.Len())
	for i := range out {
		if codes.IsNull(i) {
			out[i] = -1
		} else {
			out[i] = codes.Value(i)
		}
	}
	return out
}

// Value returns element i, NaN when missing.
func (a *CategoricalArray) Value(i int) any {
	if a.values.IsNull(i) {
		return nan()
	}
	return a.dtype.categories[a.values.(*array.Int32).Value(i)]
}

func (a *CategoricalArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *CategoricalArray) Copy() (ExtensionArray, error) {
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &CategoricalArray{vals, a.dtype}, nil
}

func (a *CategoricalArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *CategoricalArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &CategoricalArray{vals, a.dtype}, nil
}

func (a *CategoricalArray) String() string { return formatArray(a) }
