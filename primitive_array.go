package pdarrow

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// PrimitiveArray is the generic extension array wrapping a one-dimensional
// Buffer. Wrapping an object buffer gives the generic-object variant.
type PrimitiveArray struct {
	mem memory.Allocator
	buf *Buffer
}

// NewPrimitiveArray wraps data in a PrimitiveArray of type elem. With a nil
// elem the type of a buffer is kept and a sequence is converted to the most
// specific type holding every element exactly, falling back to the object
// type. Data that is not one-dimensional fails with ErrInvalidShape.
func NewPrimitiveArray(mem memory.Allocator, data any, elem *PrimitiveDType, copy bool) (*PrimitiveArray, error) {
	if p, ok := data.(*PrimitiveArray); ok {
		data = p.buf
	}
	if b, ok := data.(*Buffer); ok {
		if b.NDim() != 1 {
			return nil, shapeErr(b, b.NDim(), ErrInvalidShape)
		}
		out, err := constructPreservingNA(mem, b, elem, copy)
		if err != nil {
			return nil, err
		}
		return &PrimitiveArray{mem: mem, buf: out}, nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	var buf *Buffer
	if elem == nil {
		buf = convertPlatform(mem, values)
	} else if elem == PrimitiveTypes.Object {
		buf = newObjectBuffer(append([]any(nil), values...))
	} else if buf, err = castToPrimitive(mem, values, elem); err != nil {
		return nil, err
	}
	return &PrimitiveArray{mem: mem, buf: buf}, nil
}

// Buffer returns the wrapped buffer.
func (a *PrimitiveArray) Buffer() *Buffer { return a.buf }

func (a *PrimitiveArray) DType() DType     { return NewPrimitiveArrayDType(a.buf.dtype) }
func (a *PrimitiveArray) Variant() Variant { return VariantPrimitive }
func (a *PrimitiveArray) Len() int         { return a.buf.Len() }
func (a *PrimitiveArray) IsNA(i int) bool  { return IsMissing(a.buf.Value(i)) }
func (a *PrimitiveArray) Value(i int) any  { return a.buf.Value(i) }
func (a *PrimitiveArray) Objects() []any   { return a.buf.Objects() }
func (a *PrimitiveArray) Release()         { a.buf.Release() }

func (a *PrimitiveArray) Copy() (ExtensionArray, error) {
	buf, err := a.buf.Copy(a.mem)
	if err != nil {
		return nil, err
	}
	return &PrimitiveArray{mem: a.mem, buf: buf}, nil
}

func (a *PrimitiveArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *PrimitiveArray) Repeat(n int) (ExtensionArray, error) {
	buf, err := a.buf.Repeat(a.mem, n)
	if err != nil {
		return nil, err
	}
	return &PrimitiveArray{mem: a.mem, buf: buf}, nil
}

func (a *PrimitiveArray) String() string { return formatArray(a) }
