package pdarrow

import (
	"fmt"
	"iter"
	"math"
	"time"
)

// NA is the missing-value marker of the nullable extension arrays.
var NA = naType{}

type naType struct{}

func (naType) String() string { return "<NA>" }

// NaT is the missing-value marker of datetime-like values.
var NaT = natType{}

type natType struct{}

func (natType) String() string { return "NaT" }

// Tuple is one row of nested input flattened into a single element.
type Tuple []any

// Range is a lazily generated integer range [Start, Stop) with a non-zero Step.
type Range struct {
	Start, Stop, Step int64
}

// Len returns the number of values the range generates.
func (r Range) Len() int {
	step := r.Step
	if step == 0 {
		return 0
	}
	var n int64
	if step > 0 && r.Stop > r.Start {
		n = (r.Stop - r.Start + step - 1) / step
	} else if step < 0 && r.Stop < r.Start {
		n = (r.Start - r.Stop - step - 1) / -step
	}
	return int(n)
}

func (r Range) validate() error {
	if r.Step == 0 {
		return fmt.Errorf("%w: range step must not be zero", ErrInvalidValue)
	}
	return nil
}

// Values materializes the range.
func (r Range) Values() []int64 {
	out := make([]int64, r.Len())
	for i := range out {
		out[i] = r.Start + int64(i)*r.Step
	}
	return out
}

// Iterable is implemented by containers that can only be traversed once in
// order, such as generators.
type Iterable interface {
	All() iter.Seq[any]
}

// IsMissing reports whether v is a missing-value sentinel: nil, NA, NaT or a
// floating NaN.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil, naType, natType:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// utcZone is the zone used for values that are explicitly UTC. Values in
// time.UTC itself are treated as zone-naive.
var utcZone = time.FixedZone("UTC", 0)

// IsNaive reports whether t carries no time zone. A time.Time is naive when
// its location is time.UTC; any other location, including a fixed "UTC"
// zone, makes it zone-aware.
func IsNaive(t time.Time) bool {
	return t.Location() == time.UTC
}

// Naive strips the zone of t, keeping its wall clock reading.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func zoneName(t time.Time) string {
	if IsNaive(t) {
		return ""
	}
	return t.Location().String()
}

// LoadZone resolves a zone name. "UTC" yields an aware UTC zone rather than
// time.UTC, which denotes naive values.
func LoadZone(name string) (*time.Location, error) {
	if name == "UTC" || name == "utc" {
		return utcZone, nil
	}
	return time.LoadLocation(name)
}

var (
	minTimestamp = time.Unix(0, math.MinInt64).UTC()
	maxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// toNanos converts t to nanoseconds since the epoch, failing for instants
// outside the representable range.
func toNanos(t time.Time) (int64, error) {
	if t.Before(minTimestamp) || t.After(maxTimestamp) {
		return 0, ErrOutOfBoundsDatetime
	}
	return t.UnixNano(), nil
}
