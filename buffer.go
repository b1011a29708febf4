package pdarrow

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Buffer is a dense, homogeneous value sequence of a primitive type. Values
// are stored row-major in an Arrow array, except for the object type whose
// elements are kept as Go values. A Buffer has no presence mask: floating
// buffers mark missing values with NaN and datetime-like buffers with Arrow
// nulls (NaT).
//
// Buffers are immutable once constructed.
type Buffer struct {
	dtype   *PrimitiveDType
	shape   []int
	values  arrow.Array
	objects []any
}

func newArrowBuffer(dt *PrimitiveDType, arr arrow.Array) *Buffer {
	return &Buffer{dtype: dt, shape: []int{arr.Len()}, values: arr}
}

func newObjectBuffer(objs []any) *Buffer {
	return &Buffer{dtype: PrimitiveTypes.Object, shape: []int{len(objs)}, objects: objs}
}

// NewBuffer converts values to a one-dimensional buffer of type dt.
func NewBuffer(mem memory.Allocator, dt *PrimitiveDType, values []any) (*Buffer, error) {
	return castToPrimitive(mem, values, dt)
}

// NewObjectBuffer wraps values in an object buffer without copying them.
func NewObjectBuffer(values []any) *Buffer {
	return newObjectBuffer(values)
}

// NewScalarBuffer returns a zero-dimensional buffer holding v.
func NewScalarBuffer(mem memory.Allocator, dt *PrimitiveDType, v any) (*Buffer, error) {
	b, err := castToPrimitive(mem, []any{v}, dt)
	if err != nil {
		return nil, err
	}
	b.shape = []int{}
	return b, nil
}

// BufferFromArrow wraps an existing Arrow array. The array is retained.
func BufferFromArrow(arr arrow.Array) (*Buffer, error) {
	dt, err := primitiveForArrow(arr.DataType())
	if err != nil {
		return nil, err
	}
	if arr.NullN() > 0 && dt.kind != KindDatetime && dt.kind != KindTimedelta {
		return nil, fmt.Errorf("buffer of type %s cannot hold nulls, wrap it in a masked array", dt)
	}
	arr.Retain()
	return newArrowBuffer(dt, arr), nil
}

// DType returns the buffer's element type.
func (b *Buffer) DType() DType { return b.dtype }

// PrimitiveDType returns the buffer's element type.
func (b *Buffer) PrimitiveDType() *PrimitiveDType { return b.dtype }

// Len returns the length of the first dimension, 1 for zero-dimensional buffers.
func (b *Buffer) Len() int {
	if len(b.shape) == 0 {
		return 1
	}
	return b.shape[0]
}

// NDim returns the number of dimensions.
func (b *Buffer) NDim() int { return len(b.shape) }

// Shape returns the size of every dimension.
func (b *Buffer) Shape() []int { return append([]int(nil), b.shape...) }

// Size returns the total number of elements.
func (b *Buffer) Size() int {
	if b.values != nil {
		return b.values.Len()
	}
	return len(b.objects)
}

// Arrow returns the backing Arrow array, nil for object buffers.
func (b *Buffer) Arrow() arrow.Array { return b.values }

// Value returns element i in row-major order. Datetime-like nulls box to NaT.
func (b *Buffer) Value(i int) any {
	if b.values == nil {
		return b.objects[i]
	}
	v := arrowValue(b.values, i)
	if v == nil {
		return NaT
	}
	return v
}

// Objects returns every element in row-major order as Go values.
func (b *Buffer) Objects() []any {
	if b.values == nil {
		return append([]any(nil), b.objects...)
	}
	out := make([]any, b.values.Len())
	for i := range out {
		out[i] = b.Value(i)
	}
	return out
}

// Row returns row i of a two-dimensional buffer.
func (b *Buffer) Row(i int) Tuple {
	cols := b.shape[1]
	row := make(Tuple, cols)
	for j := range cols {
		row[j] = b.Value(i*cols + j)
	}
	return row
}

// Copy returns a buffer sharing no storage with b.
func (b *Buffer) Copy(mem memory.Allocator) (*Buffer, error) {
	out := &Buffer{dtype: b.dtype, shape: b.Shape()}
	if b.values == nil {
		out.objects = append([]any(nil), b.objects...)
		return out, nil
	}
	arr, err := copyArrow(mem, b.values)
	if err != nil {
		return nil, err
	}
	out.values = arr
	return out, nil
}

// share returns a second handle on b's storage. Arrow storage is retained so
// that both handles can be released independently.
func (b *Buffer) share() *Buffer {
	if b.values != nil {
		b.values.Retain()
	}
	return &Buffer{dtype: b.dtype, shape: b.Shape(), values: b.values, objects: b.objects}
}

// Reshape returns b viewed with the given shape. Both buffers share the
// storage and must be released.
func (b *Buffer) Reshape(shape ...int) (*Buffer, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrInvalidShape, shape)
		}
		n *= d
	}
	if n != b.Size() {
		return nil, fmt.Errorf("%w: cannot reshape %d elements into %v", ErrInvalidShape, b.Size(), shape)
	}
	out := b.share()
	out.shape = append([]int(nil), shape...)
	return out, nil
}

// Repeat returns a one-dimensional buffer holding b's elements n times.
func (b *Buffer) Repeat(mem memory.Allocator, n int) (*Buffer, error) {
	if b.values == nil {
		objs := make([]any, 0, len(b.objects)*n)
		for range n {
			objs = append(objs, b.objects...)
		}
		return newObjectBuffer(objs), nil
	}
	arr, err := repeatArrow(mem, b.values, n)
	if err != nil {
		return nil, err
	}
	return newArrowBuffer(b.dtype, arr), nil
}

// Release releases the Arrow storage of the buffer.
func (b *Buffer) Release() {
	if b.values != nil {
		b.values.Release()
	}
}

func (b *Buffer) String() string {
	parts := make([]string, b.Size())
	for i := range parts {
		parts[i] = formatScalar(b.Value(i))
	}
	return fmt.Sprintf("[%s] dtype: %s", strings.Join(parts, ", "), b.dtype)
}

// withShape returns b reinterpreted with the given shape. The element count
// must match.
func (b *Buffer) withShape(shape ...int) *Buffer {
	return &Buffer{dtype: b.dtype, shape: shape, values: b.values, objects: b.objects}
}

// castable reports whether buffers of dt can be returned by the cast engine
// without any conversion.
func castable(dt *PrimitiveDType) bool {
	switch dt.kind {
	case KindBool, KindFloat, KindString, KindDatetime, KindTimedelta:
		return true
	}
	return false
}

// MaskedArray is a buffer paired with a presence mask of the same length. A
// true mask entry marks the position absent; its buffer slot holds a
// placeholder.
//
// Callers sharing a MaskedArray across goroutines must not mutate it while a
// construction call reads it.
type MaskedArray struct {
	Data     *Buffer
	Mask     []bool
	HardMask bool
}

// SoftenMask converts m to a plain buffer. When any position is masked, the
// data is upcast to a type able to hold a fill placeholder and every masked
// position receives it; otherwise the data is copied. m is never modified.
func SoftenMask(mem memory.Allocator, m *MaskedArray) (*Buffer, error) {
	if m.Data.Size() != len(m.Mask) {
		return nil, fmt.Errorf("mask length %d does not match data length %d", len(m.Mask), m.Data.Size())
	}
	masked := false
	for _, v := range m.Mask {
		if v {
			masked = true
			break
		}
	}
	if !masked {
		return m.Data.Copy(mem)
	}

	dt, fill := upcastForFill(m.Data.dtype)
	objs := m.Data.Objects()
	for i, absent := range m.Mask {
		if absent {
			objs[i] = fill
		}
	}
	out, err := castToPrimitive(mem, objs, dt)
	if err != nil {
		return nil, err
	}
	return out.withShape(m.Data.shape...), nil
}

// upcastForFill returns the smallest type of the dt family able to hold a
// missing placeholder, and the placeholder.
func upcastForFill(dt *PrimitiveDType) (*PrimitiveDType, any) {
	switch dt.kind {
	case KindInt, KindUint:
		return PrimitiveTypes.Float64, nan()
	case KindFloat:
		return dt, nan()
	case KindDatetime, KindTimedelta:
		return dt, NaT
	}
	return PrimitiveTypes.Object, nan()
}
