package pdarrow

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// InferredType is the element category of a sequence.
type InferredType int

const (
	InferredEmpty InferredType = iota
	InferredPeriod
	InferredInterval
	InferredDatetime
	InferredTimedelta
	InferredString
	InferredBytes
	InferredInteger
	InferredFloating
	InferredMixedIntegerFloat
	InferredBoolean
	InferredDecimal
	InferredMixedInteger
	InferredMixed
)

var inferredNames = [...]string{
	InferredEmpty:             "empty",
	InferredPeriod:            "period",
	InferredInterval:          "interval",
	InferredDatetime:          "datetime",
	InferredTimedelta:         "timedelta",
	InferredString:            "string",
	InferredBytes:             "bytes",
	InferredInteger:           "integer",
	InferredFloating:          "floating",
	InferredMixedIntegerFloat: "mixed-integer-float",
	InferredBoolean:           "boolean",
	InferredDecimal:           "decimal",
	InferredMixedInteger:      "mixed-integer",
	InferredMixed:             "mixed",
}

func (t InferredType) String() string {
	if t < 0 || int(t) >= len(inferredNames) {
		return "unknown"
	}
	return inferredNames[t]
}

// elementClass buckets one element for type inference.
type elementClass int

const (
	classOther elementClass = iota
	classBool
	classInt
	classFloat
	classNaN
	classString
	classBytes
	classTime
	classDuration
	classPeriod
	classInterval
	classDecimal
	classNaT
	classNull
)

func classify(v any) elementClass {
	switch x := v.(type) {
	case nil, naType:
		return classNull
	case natType:
		return classNaT
	case bool:
		return classBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return classInt
	case float64:
		if math.IsNaN(x) {
			return classNaN
		}
		return classFloat
	case float32:
		if math.IsNaN(float64(x)) {
			return classNaN
		}
		return classFloat
	case string:
		return classString
	case []byte:
		return classBytes
	case time.Time:
		return classTime
	case time.Duration:
		return classDuration
	case Period:
		return classPeriod
	case Interval:
		return classInterval
	case decimal.Decimal:
		return classDecimal
	}
	return classOther
}

// InferType classifies values into a single category. With skipna, missing
// values of any kind are ignored and an all-missing sequence is empty, unless
// every value is NaT, which makes it datetime.
// Without it, NaN counts as a float and may accompany intervals, NaT may
// accompany datetime-like values, and nil or NA make the sequence mixed.
func InferType(values []any, skipna bool) InferredType {
	var counts [classNull + 1]int
	n, skippedNaT := 0, 0
	for _, v := range values {
		c := classify(v)
		if skipna && (c == classNull || c == classNaT || c == classNaN) {
			if c == classNaT {
				skippedNaT++
			}
			continue
		}
		counts[c]++
		n++
	}
	if n == 0 {
		if skippedNaT > 0 && skippedNaT == len(values) {
			return InferredDatetime
		}
		return InferredEmpty
	}
	nat, nanN := counts[classNaT], counts[classNaN]
	switch {
	case counts[classBool] == n:
		return InferredBoolean
	case counts[classInt] == n:
		return InferredInteger
	case counts[classFloat]+nanN == n:
		return InferredFloating
	case counts[classInt]+counts[classFloat]+nanN == n:
		return InferredMixedIntegerFloat
	case counts[classString] == n:
		return InferredString
	case counts[classBytes] == n:
		return InferredBytes
	case counts[classTime]+nat == n:
		return InferredDatetime
	case counts[classDuration] > 0 && counts[classDuration]+nat == n:
		return InferredTimedelta
	case counts[classPeriod] > 0 && counts[classPeriod]+nat == n:
		return InferredPeriod
	case counts[classInterval] > 0 && counts[classInterval]+nanN == n:
		return InferredInterval
	case counts[classDecimal] == n:
		return InferredDecimal
	case counts[classInt] > 0:
		return InferredMixedInteger
	}
	return InferredMixed
}

// inferTypeOf classifies array data. Buffers other than the object type are
// classified by their kind.
func inferTypeOf(data any, skipna bool) (InferredType, error) {
	if b, ok := data.(*Buffer); ok {
		switch b.dtype.kind {
		case KindBool:
			return InferredBoolean, nil
		case KindInt, KindUint:
			return InferredInteger, nil
		case KindFloat:
			return InferredFloating, nil
		case KindString:
			return InferredString, nil
		case KindDatetime:
			return InferredDatetime, nil
		case KindTimedelta:
			return InferredTimedelta, nil
		}
	}
	values, err := elementsOf(data)
	if err != nil {
		return InferredEmpty, err
	}
	return InferType(values, skipna), nil
}
