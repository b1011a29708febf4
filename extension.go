package pdarrow

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ExtensionArray is a typed array with its own storage and missing value
// representation. Every variant is created by its type's
// ConstructFromSequence and is never mutated afterwards.
type ExtensionArray interface {
	ArrayLike
	// Variant identifies the representation
	Variant() Variant
	// Objects returns every element as a Go value, missing positions as the
	// variant's missing marker
	Objects() []any
	// IsNA reports whether position i is missing
	IsNA(i int) bool
	// Copy returns an array sharing no storage with the receiver
	Copy() (ExtensionArray, error)
	// AsType converts the array to dtype. With copy unset, converting to the
	// array's own type returns the receiver. Aliases resolve through
	// DefaultRegistry; Engine.AsType resolves them through the engine's.
	AsType(dtype DType, copy bool) (ArrayLike, error)
	// Repeat returns the elements repeated n times as a whole
	Repeat(n int) (ExtensionArray, error)
	// Release frees the array's Arrow storage
	Release()
}

// arrowBacked holds the storage shared by the variants that keep their
// values in a single Arrow array with a validity bitmap.
type arrowBacked struct {
	mem    memory.Allocator
	values arrow.Array
}

func (a *arrowBacked) Len() int           { return a.values.Len() }
func (a *arrowBacked) IsNA(i int) bool    { return a.values.IsNull(i) }
func (a *arrowBacked) Arrow() arrow.Array { return a.values }
func (a *arrowBacked) Release()           { a.values.Release() }

func (a *arrowBacked) copyValues() (arrowBacked, error) {
	arr, err := copyArrow(a.mem, a.values)
	if err != nil {
		return arrowBacked{}, err
	}
	return arrowBacked{mem: a.mem, values: arr}, nil
}

func (a *arrowBacked) repeatValues(n int) (arrowBacked, error) {
	arr, err := repeatArrow(a.mem, a.values, n)
	if err != nil {
		return arrowBacked{}, err
	}
	return arrowBacked{mem: a.mem, values: arr}, nil
}

// astype converts arr to dtype through its elements.
func astype(mem memory.Allocator, arr ExtensionArray, dtype DType, copy bool) (ArrayLike, error) {
	dtype, err := DefaultRegistry().Resolve(dtype)
	if err != nil {
		return nil, err
	}
	if dtype == nil || DTypeEqual(arr.DType(), dtype) {
		if copy {
			return arr.Copy()
		}
		return arr, nil
	}
	switch t := dtype.(type) {
	case ExtensionDType:
		return t.ConstructFromSequence(mem, arr, true)
	case *PrimitiveDType:
		if t.kind == KindString {
			return bufferResult(constructPreservingNA(mem, arr, t, true))
		}
		return bufferResult(castToPrimitive(mem, arr.Objects(), t))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDType, dtype.Name())
}

func formatArray(arr ExtensionArray) string {
	objs := arr.Objects()
	parts := make([]string, len(objs))
	for i, v := range objs {
		parts[i] = formatScalar(v)
	}
	return fmt.Sprintf("<%s>\n[%s]\nLength: %d, dtype: %s", arr.Variant(), strings.Join(parts, ", "), len(objs), arr.DType().Name())
}
