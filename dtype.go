package pdarrow

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Kind is the storage class of a type, using the single letter codes common
// to array libraries.
type Kind byte

const (
	KindInvalid   Kind = 0
	KindBool      Kind = 'b'
	KindInt       Kind = 'i'
	KindUint      Kind = 'u'
	KindFloat     Kind = 'f'
	KindString    Kind = 'U'
	KindObject    Kind = 'O'
	KindDatetime  Kind = 'M'
	KindTimedelta Kind = 'm'
)

func (k Kind) String() string {
	if k == KindInvalid {
		return "invalid"
	}
	return string(rune(k))
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	return k == KindInt || k == KindUint
}

// DType is a logical type descriptor. A nil DType means "infer".
type DType interface {
	// Name returns the canonical type name
	Name() string
	// Kind returns the storage class
	Kind() Kind
}

// PrimitiveDType is a type that a Buffer can hold directly.
type PrimitiveDType struct {
	name      string
	kind      Kind
	bitWidth  int
	arrowType arrow.DataType
}

func (t *PrimitiveDType) Name() string   { return t.name }
func (t *PrimitiveDType) Kind() Kind     { return t.kind }
func (t *PrimitiveDType) String() string { return t.name }

// BitWidth returns the element width in bits, 0 for variable width kinds.
func (t *PrimitiveDType) BitWidth() int { return t.bitWidth }

// ArrowType returns the Arrow type backing buffers of this type, nil for the
// object type whose elements are kept as Go values.
func (t *PrimitiveDType) ArrowType() arrow.DataType { return t.arrowType }

var (
	timestampNS = &arrow.TimestampType{Unit: arrow.Nanosecond}
	durationNS  = &arrow.DurationType{Unit: arrow.Nanosecond}
)

// PrimitiveTypes holds the primitive type singletons. Primitive types compare
// by identity.
var PrimitiveTypes = struct {
	Bool      *PrimitiveDType
	Int8      *PrimitiveDType
	Int16     *PrimitiveDType
	Int32     *PrimitiveDType
	Int64     *PrimitiveDType
	Uint8     *PrimitiveDType
	Uint16    *PrimitiveDType
	Uint32    *PrimitiveDType
	Uint64    *PrimitiveDType
	Float32   *PrimitiveDType
	Float64   *PrimitiveDType
	String    *PrimitiveDType
	Object    *PrimitiveDType
	Datetime  *PrimitiveDType
	Timedelta *PrimitiveDType
}{
	Bool:      &PrimitiveDType{name: "bool", kind: KindBool, bitWidth: 1, arrowType: arrow.FixedWidthTypes.Boolean},
	Int8:      &PrimitiveDType{name: "int8", kind: KindInt, bitWidth: 8, arrowType: arrow.PrimitiveTypes.Int8},
	Int16:     &PrimitiveDType{name: "int16", kind: KindInt, bitWidth: 16, arrowType: arrow.PrimitiveTypes.Int16},
	Int32:     &PrimitiveDType{name: "int32", kind: KindInt, bitWidth: 32, arrowType: arrow.PrimitiveTypes.Int32},
	Int64:     &PrimitiveDType{name: "int64", kind: KindInt, bitWidth: 64, arrowType: arrow.PrimitiveTypes.Int64},
	Uint8:     &PrimitiveDType{name: "uint8", kind: KindUint, bitWidth: 8, arrowType: arrow.PrimitiveTypes.Uint8},
	Uint16:    &PrimitiveDType{name: "uint16", kind: KindUint, bitWidth: 16, arrowType: arrow.PrimitiveTypes.Uint16},
	Uint32:    &PrimitiveDType{name: "uint32", kind: KindUint, bitWidth: 32, arrowType: arrow.PrimitiveTypes.Uint32},
	Uint64:    &PrimitiveDType{name: "uint64", kind: KindUint, bitWidth: 64, arrowType: arrow.PrimitiveTypes.Uint64},
	Float32:   &PrimitiveDType{name: "float32", kind: KindFloat, bitWidth: 32, arrowType: arrow.PrimitiveTypes.Float32},
	Float64:   &PrimitiveDType{name: "float64", kind: KindFloat, bitWidth: 64, arrowType: arrow.PrimitiveTypes.Float64},
	String:    &PrimitiveDType{name: "str", kind: KindString, arrowType: arrow.BinaryTypes.String},
	Object:    &PrimitiveDType{name: "object", kind: KindObject},
	Datetime:  &PrimitiveDType{name: "datetime64[ns]", kind: KindDatetime, bitWidth: 64, arrowType: timestampNS},
	Timedelta: &PrimitiveDType{name: "timedelta64[ns]", kind: KindTimedelta, bitWidth: 64, arrowType: durationNS},
}

// ParsePrimitive resolves a primitive type name.
func ParsePrimitive(name string) (*PrimitiveDType, bool) {
	switch strings.TrimSpace(name) {
	case "bool", "bool_":
		return PrimitiveTypes.Bool, true
	case "int8", "i1":
		return PrimitiveTypes.Int8, true
	case "int16", "i2":
		return PrimitiveTypes.Int16, true
	case "int32", "i4":
		return PrimitiveTypes.Int32, true
	case "int64", "i8", "int":
		return PrimitiveTypes.Int64, true
	case "uint8", "u1":
		return PrimitiveTypes.Uint8, true
	case "uint16", "u2":
		return PrimitiveTypes.Uint16, true
	case "uint32", "u4":
		return PrimitiveTypes.Uint32, true
	case "uint64", "u8", "uint":
		return PrimitiveTypes.Uint64, true
	case "float32", "f4":
		return PrimitiveTypes.Float32, true
	case "float64", "f8", "float":
		return PrimitiveTypes.Float64, true
	case "str", "U":
		return PrimitiveTypes.String, true
	case "object", "O":
		return PrimitiveTypes.Object, true
	case "datetime64[ns]", "M8[ns]":
		return PrimitiveTypes.Datetime, true
	case "timedelta64[ns]", "m8[ns]":
		return PrimitiveTypes.Timedelta, true
	}
	return nil, false
}

// primitiveForArrow maps an Arrow type to the primitive type holding it.
func primitiveForArrow(dt arrow.DataType) (*PrimitiveDType, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return PrimitiveTypes.Bool, nil
	case arrow.INT8:
		return PrimitiveTypes.Int8, nil
	case arrow.INT16:
		return PrimitiveTypes.Int16, nil
	case arrow.INT32:
		return PrimitiveTypes.Int32, nil
	case arrow.INT64:
		return PrimitiveTypes.Int64, nil
	case arrow.UINT8:
		return PrimitiveTypes.Uint8, nil
	case arrow.UINT16:
		return PrimitiveTypes.Uint16, nil
	case arrow.UINT32:
		return PrimitiveTypes.Uint32, nil
	case arrow.UINT64:
		return PrimitiveTypes.Uint64, nil
	case arrow.FLOAT32:
		return PrimitiveTypes.Float32, nil
	case arrow.FLOAT64:
		return PrimitiveTypes.Float64, nil
	case arrow.STRING:
		return PrimitiveTypes.String, nil
	case arrow.TIMESTAMP:
		if ts := dt.(*arrow.TimestampType); ts.Unit == arrow.Nanosecond && ts.TimeZone == "" {
			return PrimitiveTypes.Datetime, nil
		}
	case arrow.DURATION:
		if dt.(*arrow.DurationType).Unit == arrow.Nanosecond {
			return PrimitiveTypes.Timedelta, nil
		}
	}
	return nil, fmt.Errorf("unsupported Arrow type for buffer: %s", dt)
}

// Variant identifies a concrete extension array representation.
type Variant int

const (
	VariantInvalid Variant = iota
	VariantInteger
	VariantFloating
	VariantBoolean
	VariantString
	VariantDatetime
	VariantDatetimeTZ
	VariantTimedelta
	VariantInterval
	VariantPeriod
	VariantCategorical
	VariantPrimitive
)

var variantNames = [...]string{
	VariantInvalid:     "invalid",
	VariantInteger:     "integer",
	VariantFloating:    "floating",
	VariantBoolean:     "boolean",
	VariantString:      "string",
	VariantDatetime:    "datetime",
	VariantDatetimeTZ:  "datetimetz",
	VariantTimedelta:   "timedelta",
	VariantInterval:    "interval",
	VariantPeriod:      "period",
	VariantCategorical: "categorical",
	VariantPrimitive:   "primitive",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// ExtensionDType is a type that uniquely determines the extension array
// variant holding it.
type ExtensionDType interface {
	DType
	// Variant returns the array representation for this type
	Variant() Variant
	// ConstructFromSequence builds an array of this type from a sequence
	// ([]any, a typed Go slice, a *Buffer or an ExtensionArray)
	ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error)
}

// IntegerDType is the nullable integer type.
type IntegerDType struct {
	prim *PrimitiveDType
}

func (t *IntegerDType) Name() string {
	if t.prim.kind == KindUint {
		return "UInt" + strings.TrimPrefix(t.prim.name, "uint")
	}
	return "Int" + strings.TrimPrefix(t.prim.name, "int")
}
func (t *IntegerDType) Kind() Kind                 { return t.prim.kind }
func (t *IntegerDType) Variant() Variant           { return VariantInteger }
func (t *IntegerDType) Primitive() *PrimitiveDType { return t.prim }
func (t *IntegerDType) String() string             { return t.Name() }

func (t *IntegerDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewIntegerArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// FloatingDType is the nullable floating type.
type FloatingDType struct {
	prim *PrimitiveDType
}

func (t *FloatingDType) Name() string {
	return "Float" + strings.TrimPrefix(t.prim.name, "float")
}
func (t *FloatingDType) Kind() Kind                 { return KindFloat }
func (t *FloatingDType) Variant() Variant           { return VariantFloating }
func (t *FloatingDType) Primitive() *PrimitiveDType { return t.prim }
func (t *FloatingDType) String() string             { return t.Name() }

func (t *FloatingDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewFloatingArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// BooleanDType is the nullable boolean type.
type BooleanDType struct{}

func (t *BooleanDType) Name() string     { return "boolean" }
func (t *BooleanDType) Kind() Kind       { return KindBool }
func (t *BooleanDType) Variant() Variant { return VariantBoolean }
func (t *BooleanDType) String() string   { return t.Name() }

func (t *BooleanDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewBooleanArray(mem, data, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// StringDType is the nullable string type.
type StringDType struct{}

func (t *StringDType) Name() string     { return "string" }
func (t *StringDType) Kind() Kind       { return KindObject }
func (t *StringDType) Variant() Variant { return VariantString }
func (t *StringDType) String() string   { return t.Name() }

func (t *StringDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewStringArray(mem, data, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// DatetimeTZDType is the zone-aware nanosecond timestamp type.
type DatetimeTZDType struct {
	loc *time.Location
}

// NewDatetimeTZDType returns the zone-aware timestamp type for loc. A nil
// loc or time.UTC selects the aware UTC zone.
func NewDatetimeTZDType(loc *time.Location) *DatetimeTZDType {
	if loc == nil || loc == time.UTC {
		loc = utcZone
	}
	return &DatetimeTZDType{loc: loc}
}

func (t *DatetimeTZDType) Name() string             { return "datetime64[ns, " + t.loc.String() + "]" }
func (t *DatetimeTZDType) Kind() Kind               { return KindDatetime }
func (t *DatetimeTZDType) Variant() Variant         { return VariantDatetimeTZ }
func (t *DatetimeTZDType) Location() *time.Location { return t.loc }
func (t *DatetimeTZDType) String() string           { return t.Name() }

func (t *DatetimeTZDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewDatetimeArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// PeriodDType is the fixed-frequency period type.
type PeriodDType struct {
	freq Freq
}

// NewPeriodDType returns the period type of the given frequency.
func NewPeriodDType(freq Freq) *PeriodDType {
	return &PeriodDType{freq: freq}
}

func (t *PeriodDType) Name() string     { return "period[" + t.freq.String() + "]" }
func (t *PeriodDType) Kind() Kind       { return KindObject }
func (t *PeriodDType) Variant() Variant { return VariantPeriod }
func (t *PeriodDType) Freq() Freq       { return t.freq }
func (t *PeriodDType) String() string   { return t.Name() }

func (t *PeriodDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewPeriodArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// IntervalDType is the interval type. A nil subtype is inferred from the
// bounds at construction.
type IntervalDType struct {
	subtype *PrimitiveDType
	closed  Closed
}

// NewIntervalDType returns the interval type with the given bound type and
// closed side.
func NewIntervalDType(subtype *PrimitiveDType, closed Closed) *IntervalDType {
	if closed == "" {
		closed = ClosedRight
	}
	return &IntervalDType{subtype: subtype, closed: closed}
}

func (t *IntervalDType) Name() string {
	if t.subtype == nil {
		return "interval"
	}
	if t.closed == "" {
		return "interval[" + t.subtype.name + "]"
	}
	return "interval[" + t.subtype.name + ", " + string(t.closed) + "]"
}
func (t *IntervalDType) Kind() Kind               { return KindObject }
func (t *IntervalDType) Variant() Variant         { return VariantInterval }
func (t *IntervalDType) Subtype() *PrimitiveDType { return t.subtype }
func (t *IntervalDType) Closed() Closed           { return t.closed }
func (t *IntervalDType) String() string           { return t.Name() }

func (t *IntervalDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewIntervalArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// CategoricalDType is the dictionary-encoded type. Nil categories are
// inferred from the data at construction.
type CategoricalDType struct {
	categories []any
	ordered    bool
}

// NewCategoricalDType returns a categorical type over the given categories.
func NewCategoricalDType(categories []any, ordered bool) *CategoricalDType {
	return &CategoricalDType{categories: categories, ordered: ordered}
}

func (t *CategoricalDType) Name() string      { return "category" }
func (t *CategoricalDType) Kind() Kind        { return KindObject }
func (t *CategoricalDType) Variant() Variant  { return VariantCategorical }
func (t *CategoricalDType) Categories() []any { return t.categories }
func (t *CategoricalDType) Ordered() bool     { return t.ordered }
func (t *CategoricalDType) String() string    { return t.Name() }

func (t *CategoricalDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewCategoricalArray(mem, data, t, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// PrimitiveArrayDType is the type of the generic extension array that wraps
// a Buffer. Wrapping the object type gives the generic-object variant.
type PrimitiveArrayDType struct {
	elem *PrimitiveDType
}

// NewPrimitiveArrayDType returns the wrapper type for elem.
func NewPrimitiveArrayDType(elem *PrimitiveDType) *PrimitiveArrayDType {
	return &PrimitiveArrayDType{elem: elem}
}

func (t *PrimitiveArrayDType) Name() string          { return t.elem.name }
func (t *PrimitiveArrayDType) Kind() Kind            { return t.elem.kind }
func (t *PrimitiveArrayDType) Variant() Variant      { return VariantPrimitive }
func (t *PrimitiveArrayDType) Elem() *PrimitiveDType { return t.elem }
func (t *PrimitiveArrayDType) String() string        { return "PrimitiveArrayDType(" + t.elem.name + ")" }

func (t *PrimitiveArrayDType) ConstructFromSequence(mem memory.Allocator, data any, copy bool) (ExtensionArray, error) {
	arr, err := NewPrimitiveArray(mem, data, t.elem, copy)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// ExtensionTypes holds the parameterless extension type singletons.
var ExtensionTypes = struct {
	Int8    *IntegerDType
	Int16   *IntegerDType
	Int32   *IntegerDType
	Int64   *IntegerDType
	Uint8   *IntegerDType
	Uint16  *IntegerDType
	Uint32  *IntegerDType
	Uint64  *IntegerDType
	Float32 *FloatingDType
	Float64 *FloatingDType
	Boolean *BooleanDType
	String  *StringDType
	Object  *PrimitiveArrayDType
}{
	Int8:    &IntegerDType{prim: PrimitiveTypes.Int8},
	Int16:   &IntegerDType{prim: PrimitiveTypes.Int16},
	Int32:   &IntegerDType{prim: PrimitiveTypes.Int32},
	Int64:   &IntegerDType{prim: PrimitiveTypes.Int64},
	Uint8:   &IntegerDType{prim: PrimitiveTypes.Uint8},
	Uint16:  &IntegerDType{prim: PrimitiveTypes.Uint16},
	Uint32:  &IntegerDType{prim: PrimitiveTypes.Uint32},
	Uint64:  &IntegerDType{prim: PrimitiveTypes.Uint64},
	Float32: &FloatingDType{prim: PrimitiveTypes.Float32},
	Float64: &FloatingDType{prim: PrimitiveTypes.Float64},
	Boolean: &BooleanDType{},
	String:  &StringDType{},
	Object:  &PrimitiveArrayDType{elem: PrimitiveTypes.Object},
}

func integerDTypeFor(prim *PrimitiveDType) *IntegerDType {
	switch prim {
	case PrimitiveTypes.Int8:
		return ExtensionTypes.Int8
	case PrimitiveTypes.Int16:
		return ExtensionTypes.Int16
	case PrimitiveTypes.Int32:
		return ExtensionTypes.Int32
	case PrimitiveTypes.Uint8:
		return ExtensionTypes.Uint8
	case PrimitiveTypes.Uint16:
		return ExtensionTypes.Uint16
	case PrimitiveTypes.Uint32:
		return ExtensionTypes.Uint32
	case PrimitiveTypes.Uint64:
		return ExtensionTypes.Uint64
	}
	return ExtensionTypes.Int64
}

// Alias is a type given by name that has not been resolved yet. Array
// resolves it through the extension type registry first and then as a
// primitive type name.
type Alias string

func (a Alias) Name() string { return string(a) }
func (a Alias) Kind() Kind   { return KindInvalid }

func dtypeName(dt DType) string {
	if dt == nil {
		return ""
	}
	return dt.Name()
}

// DTypeEqual reports whether a and b describe the same type.
func DTypeEqual(a, b DType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *PrimitiveDType:
		return a == b
	case *CategoricalDType:
		y, ok := b.(*CategoricalDType)
		if !ok {
			return false
		}
		if x.categories == nil || y.categories == nil {
			return x.categories == nil && y.categories == nil && x.ordered == y.ordered
		}
		return x.ordered == y.ordered && reflect.DeepEqual(x.categories, y.categories)
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b) && a.Name() == b.Name()
}

func isExtension(dt DType) bool {
	_, ok := dt.(ExtensionDType)
	return ok
}

func isObjectDType(dt DType) bool {
	return dt != nil && dt.Kind() == KindObject
}

func isStringDType(dt DType) bool {
	if dt == nil {
		return false
	}
	if _, ok := dt.(*StringDType); ok {
		return true
	}
	return dt.Kind() == KindString || dt.Kind() == KindObject
}
