package pdarrow_test

import (
	"math"
	"testing"
	"time"

	"github.com/fwojciec/pdarrow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferType(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	period := pdarrow.NewPeriod(now, pdarrow.FreqMonth)
	interval := pdarrow.Interval{Left: 0, Right: 1}

	tests := []struct {
		name   string
		values []any
		skipna bool
		want   pdarrow.InferredType
	}{
		{"empty", []any{}, true, pdarrow.InferredEmpty},
		{"all missing", []any{nil, pdarrow.NA, math.NaN(), pdarrow.NaT}, true, pdarrow.InferredEmpty},
		{"all NaT", []any{pdarrow.NaT, pdarrow.NaT}, true, pdarrow.InferredDatetime},
		{"all NaT kept", []any{pdarrow.NaT}, false, pdarrow.InferredDatetime},
		{"booleans", []any{true, false}, true, pdarrow.InferredBoolean},
		{"integers", []any{1, int8(2), uint64(3)}, true, pdarrow.InferredInteger},
		{"integers with NaN", []any{1, math.NaN()}, true, pdarrow.InferredInteger},
		{"integers with NaN kept", []any{1, math.NaN()}, false, pdarrow.InferredMixedIntegerFloat},
		{"floats", []any{1.5, float32(2)}, true, pdarrow.InferredFloating},
		{"floats and NaN kept", []any{1.5, math.NaN()}, false, pdarrow.InferredFloating},
		{"integers and floats", []any{1, 2.5}, true, pdarrow.InferredMixedIntegerFloat},
		{"strings", []any{"a", nil}, true, pdarrow.InferredString},
		{"strings with nil kept", []any{"a", nil}, false, pdarrow.InferredMixed},
		{"bytes", []any{[]byte("a")}, true, pdarrow.InferredBytes},
		{"times", []any{now, pdarrow.NaT}, false, pdarrow.InferredDatetime},
		{"durations", []any{time.Second, pdarrow.NaT}, false, pdarrow.InferredTimedelta},
		{"periods", []any{period, pdarrow.NaT}, false, pdarrow.InferredPeriod},
		{"intervals", []any{interval, math.NaN()}, false, pdarrow.InferredInterval},
		{"decimals", []any{decimal.NewFromInt(1)}, true, pdarrow.InferredDecimal},
		{"integers and strings", []any{1, "a"}, true, pdarrow.InferredMixedInteger},
		{"strings and booleans", []any{"a", true}, true, pdarrow.InferredMixed},
		{"booleans and integers", []any{true, 1}, true, pdarrow.InferredMixedInteger},
		{"times and durations", []any{now, time.Second}, true, pdarrow.InferredMixed},
		{"other values", []any{struct{}{}}, true, pdarrow.InferredMixed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, pdarrow.InferType(tc.values, tc.skipna))
		})
	}
}

func TestInferredType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mixed-integer-float", pdarrow.InferredMixedIntegerFloat.String())
	assert.Equal(t, "empty", pdarrow.InferredEmpty.String())
	assert.Equal(t, "unknown", pdarrow.InferredType(-1).String())
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, pdarrow.NA, pdarrow.NaT, math.NaN(), float32(math.NaN())} {
		assert.True(t, pdarrow.IsMissing(v), "%#v", v)
	}
	for _, v := range []any{0, 0.0, "", false, time.Time{}, math.Inf(1)} {
		assert.False(t, pdarrow.IsMissing(v), "%#v", v)
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	prim, err := e.Array([]any{"a", 1}, nil, false)
	require.NoError(t, err)
	defer prim.Release()
	pa := prim.(*pdarrow.PrimitiveArray)

	col, err := e.NewColumn("c", prim, nil)
	require.NoError(t, err)
	defer col.Release()

	assert.Same(t, pa.Buffer(), pdarrow.Unwrap(pa, true))
	assert.Same(t, pa, pdarrow.Unwrap(pa, false))
	assert.Equal(t, col.BackingArray(), pdarrow.Unwrap(col, false))
	assert.Equal(t, "x", pdarrow.Unwrap("x", true))
}
