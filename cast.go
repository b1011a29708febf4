package pdarrow

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

func nan() float64 { return math.NaN() }

// castToPrimitive converts values to a one-dimensional buffer of type dt.
// Every element must convert; missing values become NaN for floating types
// and NaT for datetime-like types. A string type with missing values yields
// an object buffer so that the missing values survive.
func castToPrimitive(mem memory.Allocator, values []any, dt *PrimitiveDType) (*Buffer, error) {
	switch dt.kind {
	case KindBool:
		vals := make([]bool, len(values))
		for i, v := range values {
			b, err := toBool(v)
			if err != nil {
				return nil, castErr(dt, i, v, err)
			}
			vals[i] = b
		}
		return newArrowBuffer(dt, buildArray(array.NewBooleanBuilder(mem), vals, nil)), nil

	case KindInt:
		vals := make([]int64, len(values))
		for i, v := range values {
			n, err := toInt64(v)
			if err == nil && !fitsSigned(n, dt.bitWidth) {
				err = fmt.Errorf("%w: value %d out of range for %s", ErrLossyCast, n, dt)
			}
			if err != nil {
				return nil, castErr(dt, i, v, err)
			}
			vals[i] = n
		}
		return newArrowBuffer(dt, buildSigned(mem, dt, vals, nil)), nil

	case KindUint:
		vals := make([]uint64, len(values))
		for i, v := range values {
			n, err := toUint64(v)
			if err == nil && !fitsUnsigned(n, dt.bitWidth) {
				err = fmt.Errorf("%w: value %d out of range for %s", ErrLossyCast, n, dt)
			}
			if err != nil {
				return nil, castErr(dt, i, v, err)
			}
			vals[i] = n
		}
		return newArrowBuffer(dt, buildUnsigned(mem, dt, vals, nil)), nil

	case KindFloat:
		vals := make([]float64, len(values))
		for i, v := range values {
			f, err := toFloat64(v)
			if err != nil {
				return nil, castErr(dt, i, v, err)
			}
			vals[i] = f
		}
		return newArrowBuffer(dt, buildFloat(mem, dt, vals, nil)), nil

	case KindString:
		vals := make([]string, len(values))
		missing := false
		for i, v := range values {
			if IsMissing(v) {
				missing = true
				continue
			}
			vals[i] = formatScalar(v)
		}
		if missing {
			objs := make([]any, len(values))
			for i, v := range values {
				if IsMissing(v) {
					objs[i] = v
				} else {
					objs[i] = vals[i]
				}
			}
			return newObjectBuffer(objs), nil
		}
		return newArrowBuffer(dt, buildArray(array.NewStringBuilder(mem), vals, nil)), nil

	case KindDatetime:
		nanos, valid, err := toTimestamps(values, nil, dt)
		if err != nil {
			return nil, err
		}
		return newArrowBuffer(dt, buildTimestamps(mem, timestampNS, nanos, valid)), nil

	case KindTimedelta:
		nanos, valid, err := toDurations(values, dt)
		if err != nil {
			return nil, err
		}
		return newArrowBuffer(dt, buildDurations(mem, nanos, valid)), nil
	}
	return newObjectBuffer(append([]any(nil), values...)), nil
}

func fitsSigned(n int64, bits int) bool {
	if bits >= 64 {
		return true
	}
	limit := int64(1) << (bits - 1)
	return n >= -limit && n < limit
}

func fitsUnsigned(n uint64, bits int) bool {
	return bits >= 64 || n < uint64(1)<<bits
}

var errMissingInteger = fmt.Errorf("%w: cannot convert missing value to integer", ErrInvalidValue)

// toInt64 converts v to an integer without losing information.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint, uint8, uint16, uint32, uint64:
		u, _ := toUint64(x)
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrLossyCast, u)
		}
		return int64(u), nil
	case float32:
		return floatToInt[int64](float64(x))
	case float64:
		return floatToInt[int64](x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid literal for integer: %q", ErrInvalidValue, x)
		}
		return n, nil
	case decimal.Decimal:
		if !x.IsInteger() {
			return 0, fmt.Errorf("%w: trying to coerce fractional values to integers", ErrLossyCast)
		}
		return x.IntPart(), nil
	case nil, naType, natType:
		return 0, errMissingInteger
	}
	return 0, fmt.Errorf("%w: %T is not an integer", ErrInvalidValue, v)
}

// toUint64 converts v to an unsigned integer without losing information.
func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case float32:
		return floatToInt[uint64](float64(x))
	case float64:
		return floatToInt[uint64](x)
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		if err != nil {
			if strings.HasPrefix(strings.TrimSpace(x), "-") {
				return 0, fmt.Errorf("%w: trying to coerce negative values to unsigned integers", ErrLossyCast)
			}
			return 0, fmt.Errorf("%w: invalid literal for integer: %q", ErrInvalidValue, x)
		}
		return n, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: trying to coerce negative values to unsigned integers", ErrLossyCast)
	}
	return uint64(n), nil
}

func floatToInt[T constraints.Integer](f float64) (T, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: cannot convert non-finite values (NA or inf) to integer", ErrLossyCast)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: trying to coerce float values to integers", ErrLossyCast)
	}
	n := T(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%w: %v cannot be represented losslessly", ErrLossyCast, f)
	}
	return n, nil
}

// toFloat64 converts v to a float. Missing values become NaN.
func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil, naType, natType:
		return nan(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: could not convert string to float: %q", ErrInvalidValue, x)
		}
		return f, nil
	case decimal.Decimal:
		return x.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
}

// toBool converts v by truth value. Missing values cannot be represented.
func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("%w: invalid literal for bool: %q", ErrInvalidValue, x)
		}
		return b, nil
	}
	if IsMissing(v) {
		return false, fmt.Errorf("%w: cannot convert missing value to bool", ErrInvalidValue)
	}
	f, err := toFloat64(v)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

// toTimestamps converts values to nanoseconds since the epoch. With a nil
// loc the result is naive: aware values are converted to UTC and naive
// values are read as UTC. With a loc, naive values are localized to loc.
func toTimestamps(values []any, loc *time.Location, dt DType) ([]int64, []bool, error) {
	nanos := make([]int64, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		t, ok, err := toTime(v)
		if err != nil {
			return nil, nil, castErr(dt, i, v, err)
		}
		if !ok {
			continue
		}
		if loc != nil && IsNaive(t) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
		}
		n, err := toNanos(t)
		if err != nil {
			return nil, nil, castErr(dt, i, v, err)
		}
		nanos[i], valid[i] = n, true
	}
	return nanos, valid, nil
}

// toTime converts a datetime-like element. It reports false for missing
// values.
func toTime(v any) (time.Time, bool, error) {
	switch x := v.(type) {
	case time.Time:
		return x, true, nil
	case string:
		if isNaTString(x) {
			return time.Time{}, false, nil
		}
		t, err := ParseDatetime(x)
		return t, err == nil, err
	case time.Duration:
		return time.Time{}, false, fmt.Errorf("%w: timedelta to datetime", ErrTypeMismatch)
	case Period:
		return time.Time{}, false, fmt.Errorf("%w: period to datetime", ErrTypeMismatch)
	}
	if IsMissing(v) {
		return time.Time{}, false, nil
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		n, err := toInt64(v)
		if err != nil {
			return time.Time{}, false, err
		}
		return time.Unix(0, n).UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %T is not datetime-like", ErrInvalidValue, v)
}

// toDurations converts values to nanosecond durations.
func toDurations(values []any, dt DType) ([]int64, []bool, error) {
	nanos := make([]int64, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		d, ok, err := toDuration(v)
		if err != nil {
			return nil, nil, castErr(dt, i, v, err)
		}
		nanos[i], valid[i] = int64(d), ok
	}
	return nanos, valid, nil
}

func toDuration(v any) (time.Duration, bool, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, true, nil
	case string:
		if isNaTString(x) {
			return 0, false, nil
		}
		d, err := ParseDuration(x)
		return d, err == nil, err
	case time.Time:
		return 0, false, fmt.Errorf("%w: datetime to timedelta", ErrTypeMismatch)
	}
	if IsMissing(v) {
		return 0, false, nil
	}
	n, err := toInt64(v)
	if err != nil {
		if errors.Is(err, ErrInvalidValue) {
			return 0, false, fmt.Errorf("%w: %T is not timedelta-like", ErrInvalidValue, v)
		}
		return 0, false, err
	}
	return time.Duration(n), true, nil
}

func isNaTString(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaT", "nat", "NAT", "NaN", "nan":
		return true
	}
	return false
}

var datetimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"20060102",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02T15:04:05.999999999-0700",
}

// ParseDatetime parses common date and datetime layouts. Strings carrying a
// zone offset parse as aware values; all others are naive.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			_, off := t.Zone()
			return t.In(fixedZone(off)), nil
		}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unknown datetime string format: %q", ErrInvalidValue, s)
}

// fixedZone returns the aware zone for a UTC offset in seconds, named like
// "+02:00".
func fixedZone(off int) *time.Location {
	if off == 0 {
		return utcZone
	}
	sign, abs := '+', off
	if off < 0 {
		sign, abs = '-', -off
	}
	return time.FixedZone(fmt.Sprintf("%c%02d:%02d", sign, abs/3600, abs%3600/60), off)
}

// ParseDuration parses Go duration strings case-insensitively ("1H" is one
// hour) and the "<n> days" form.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(strings.ToLower(s)); err == nil {
		return d, nil
	}
	fields := strings.Fields(s)
	if len(fields) == 2 && (fields[1] == "days" || fields[1] == "day" || fields[1] == "D") {
		n, err := strconv.ParseFloat(fields[0], 64)
		if err == nil {
			return time.Duration(n * float64(24*time.Hour)), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid duration string: %q", ErrInvalidValue, s)
}

// formatScalar renders v the way string conversion of an array does.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case time.Time:
		if IsNaive(x) {
			return x.Format("2006-01-02 15:04:05.999999999")
		}
		return x.Format("2006-01-02 15:04:05.999999999-07:00")
	case bool:
		if x {
			return "True"
		}
		return "False"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
