package pdarrow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Freq is the span of a period.
type Freq string

const (
	FreqAnnual  Freq = "A"
	FreqQuarter Freq = "Q"
	FreqMonth   Freq = "M"
	FreqWeek    Freq = "W"
	FreqDay     Freq = "D"
	FreqHour    Freq = "H"
	FreqMinute  Freq = "T"
	FreqSecond  Freq = "S"
)

func (f Freq) String() string { return string(f) }

// ParseFreq resolves a frequency code, accepting the aliases "Y" and "min".
func ParseFreq(s string) (Freq, error) {
	switch strings.TrimSpace(s) {
	case "A", "Y":
		return FreqAnnual, nil
	case "Q":
		return FreqQuarter, nil
	case "M":
		return FreqMonth, nil
	case "W":
		return FreqWeek, nil
	case "D":
		return FreqDay, nil
	case "H", "h":
		return FreqHour, nil
	case "T", "min":
		return FreqMinute, nil
	case "S", "s":
		return FreqSecond, nil
	}
	return "", fmt.Errorf("%w: invalid frequency %q", ErrInvalidValue, s)
}

// Period is a span of time identified by its ordinal, the number of whole
// spans of its frequency since the one containing 1970-01-01.
type Period struct {
	Ordinal int64
	Freq    Freq
}

const (
	secondsPerDay = 86400
	// 1970-01-01 falls on a Thursday; weeks end on Sunday.
	weekOffsetDays = 3
)

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// NewPeriod returns the period of frequency f containing the wall clock
// reading of t.
func NewPeriod(t time.Time, f Freq) Period {
	y, m := int64(t.Year()), int64(t.Month())
	secs := Naive(t).Unix()
	var ord int64
	switch f {
	case FreqAnnual:
		ord = y - 1970
	case FreqQuarter:
		ord = (y-1970)*4 + (m-1)/3
	case FreqMonth:
		ord = (y-1970)*12 + m - 1
	case FreqWeek:
		ord = floorDiv(floorDiv(secs, secondsPerDay)+weekOffsetDays, 7)
	case FreqDay:
		ord = floorDiv(secs, secondsPerDay)
	case FreqHour:
		ord = floorDiv(secs, 3600)
	case FreqMinute:
		ord = floorDiv(secs, 60)
	default:
		ord = secs
	}
	return Period{Ordinal: ord, Freq: f}
}

// Start returns the first instant of the period as a naive time.
func (p Period) Start() time.Time {
	switch p.Freq {
	case FreqAnnual:
		return time.Date(int(1970+p.Ordinal), 1, 1, 0, 0, 0, 0, time.UTC)
	case FreqQuarter:
		return time.Date(1970, time.Month(1+3*p.Ordinal), 1, 0, 0, 0, 0, time.UTC)
	case FreqMonth:
		return time.Date(1970, time.Month(1+p.Ordinal), 1, 0, 0, 0, 0, time.UTC)
	case FreqWeek:
		return time.Unix((7*p.Ordinal-weekOffsetDays)*secondsPerDay, 0).UTC()
	case FreqDay:
		return time.Unix(p.Ordinal*secondsPerDay, 0).UTC()
	case FreqHour:
		return time.Unix(p.Ordinal*3600, 0).UTC()
	case FreqMinute:
		return time.Unix(p.Ordinal*60, 0).UTC()
	}
	return time.Unix(p.Ordinal, 0).UTC()
}

func (p Period) String() string {
	s := p.Start()
	switch p.Freq {
	case FreqAnnual:
		return strconv.Itoa(s.Year())
	case FreqQuarter:
		return fmt.Sprintf("%dQ%d", s.Year(), (int(s.Month())-1)/3+1)
	case FreqMonth:
		return s.Format("2006-01")
	case FreqWeek:
		return s.Format("2006-01-02") + "/" + s.AddDate(0, 0, 6).Format("2006-01-02")
	case FreqDay:
		return s.Format("2006-01-02")
	case FreqHour, FreqMinute:
		return s.Format("2006-01-02 15:04")
	}
	return s.Format("2006-01-02 15:04:05")
}

var quarterPattern = regexp.MustCompile(`^(\d{4})-?Q([1-4])$`)

// ParsePeriod parses s as a period of frequency f. Besides datetime strings
// it accepts the quarter form "2015Q2".
func ParsePeriod(s string, f Freq) (Period, error) {
	s = strings.TrimSpace(s)
	if m := quarterPattern.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return NewPeriod(time.Date(y, time.Month(3*q-2), 1, 0, 0, 0, 0, time.UTC), f), nil
	}
	t, err := ParseDatetime(s)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(t, f), nil
}

// PeriodArray is an array of periods sharing one frequency, stored as
// ordinals.
type PeriodArray struct {
	arrowBacked
	dtype *PeriodDType
}

// NewPeriodArray builds a period array from data. A nil dtype takes the
// frequency of the first Period element. Periods of a different frequency
// fail with ErrIncompatibleFrequency; times and strings are converted when
// the frequency is known.
func NewPeriodArray(mem memory.Allocator, data any, dtype *PeriodDType, copy bool) (*PeriodArray, error) {
	if src, ok := data.(*PeriodArray); ok && (dtype == nil || dtype.freq == src.dtype.freq) {
		if !copy {
			src.values.Retain()
			return &PeriodArray{src.arrowBacked, src.dtype}, nil
		}
		vals, err := src.copyValues()
		if err != nil {
			return nil, err
		}
		return &PeriodArray{vals, src.dtype}, nil
	}
	values, err := elementsOf(data)
	if err != nil {
		return nil, err
	}
	if dtype == nil {
		for _, v := range values {
			if p, ok := v.(Period); ok {
				dtype = NewPeriodDType(p.Freq)
				break
			}
		}
	}
	if dtype == nil {
		if !allMissing(values) {
			return nil, fmt.Errorf("%w: frequency not specified and cannot be inferred", ErrInvalidValue)
		}
		dtype = NewPeriodDType(FreqDay)
	}
	ords := make([]int64, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		var p Period
		switch x := v.(type) {
		case Period:
			if x.Freq != dtype.freq {
				return nil, castErr(dtype, i, v, fmt.Errorf("%w: input has different freq=%s from %s", ErrIncompatibleFrequency, x.Freq, dtype.Name()))
			}
			p = x
		case time.Time:
			p = NewPeriod(x, dtype.freq)
		case string:
			if p, err = ParsePeriod(x, dtype.freq); err != nil {
				return nil, castErr(dtype, i, v, err)
			}
		default:
			return nil, castErr(dtype, i, v, fmt.Errorf("%w: %T is not period-like", ErrInvalidValue, v))
		}
		ords[i], valid[i] = p.Ordinal, true
	}
	return &PeriodArray{arrowBacked{mem, buildArray(array.NewInt64Builder(mem), ords, valid)}, dtype}, nil
}

func (a *PeriodArray) DType() DType     { return a.dtype }
func (a *PeriodArray) Variant() Variant { return VariantPeriod }

// Freq returns the frequency shared by every element.
func (a *PeriodArray) Freq() Freq { return a.dtype.freq }

// Value returns element i, NaT when missing.
func (a *PeriodArray) Value(i int) any {
	if a.values.IsNull(i) {
		return NaT
	}
	return Period{Ordinal: a.values.(*array.Int64).Value(i), Freq: a.dtype.freq}
}

func (a *PeriodArray) Objects() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

func (a *PeriodArray) Copy() (ExtensionArray, error) {
	vals, err := a.copyValues()
	if err != nil {
		return nil, err
	}
	return &PeriodArray{vals, a.dtype}, nil
}

func (a *PeriodArray) AsType(dtype DType, copy bool) (ArrayLike, error) {
	return astype(a.mem, a, dtype, copy)
}

func (a *PeriodArray) Repeat(n int) (ExtensionArray, error) {
	vals, err := a.repeatValues(n)
	if err != nil {
		return nil, err
	}
	return &PeriodArray{vals, a.dtype}, nil
}

func (a *PeriodArray) String() string { return formatArray(a) }
