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

func TestParseDatetime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		want     time.Time
		wantZone int
		aware    bool
	}{
		{input: "2015", want: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2015-06", want: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2015-06-07", want: time.Date(2015, 6, 7, 0, 0, 0, 0, time.UTC)},
		{input: "2015-06-07 08:09", want: time.Date(2015, 6, 7, 8, 9, 0, 0, time.UTC)},
		{input: "2015-06-07T08:09:10.5", want: time.Date(2015, 6, 7, 8, 9, 10, 500000000, time.UTC)},
		{input: "06/07/2015", want: time.Date(2015, 6, 7, 0, 0, 0, 0, time.UTC)},
		{input: "20150607", want: time.Date(2015, 6, 7, 0, 0, 0, 0, time.UTC)},
		{input: "  2015-06-07  ", want: time.Date(2015, 6, 7, 0, 0, 0, 0, time.UTC)},
		{input: "2015-06-07T08:09:10Z", want: time.Date(2015, 6, 7, 8, 9, 10, 0, time.UTC), aware: true},
		{input: "2015-06-07T08:09:10+02:00", want: time.Date(2015, 6, 7, 6, 9, 10, 0, time.UTC), wantZone: 7200, aware: true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := pdarrow.ParseDatetime(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
			assert.Equal(t, !tc.aware, pdarrow.IsNaive(got))
			_, off := got.Zone()
			assert.Equal(t, tc.wantZone, off)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := pdarrow.ParseDatetime("yesterday")
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1h", time.Hour},
		{"1H", time.Hour},
		{"1h30m", 90 * time.Minute},
		{"250ms", 250 * time.Millisecond},
		{"2 days", 48 * time.Hour},
		{"1 day", 24 * time.Hour},
		{"0.5 D", 12 * time.Hour},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := pdarrow.ParseDuration(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := pdarrow.ParseDuration("forever")
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})
}

func TestNewBuffer_Conversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dtype  *pdarrow.PrimitiveDType
		values []any
		want   []any
	}{
		{
			name:   "int8 from mixed integers",
			dtype:  pdarrow.PrimitiveTypes.Int8,
			values: []any{int64(-128), uint8(127), 3.0},
			want:   []any{int8(-128), int8(127), int8(3)},
		},
		{
			name:   "int64 from strings and decimals",
			dtype:  pdarrow.PrimitiveTypes.Int64,
			values: []any{" 42 ", decimal.NewFromInt(7), true},
			want:   []any{int64(42), int64(7), int64(1)},
		},
		{
			name:   "uint32",
			dtype:  pdarrow.PrimitiveTypes.Uint32,
			values: []any{0, "4294967295"},
			want:   []any{uint32(0), uint32(math.MaxUint32)},
		},
		{
			name:   "float64 with missing",
			dtype:  pdarrow.PrimitiveTypes.Float64,
			values: []any{1, "2.5", decimal.RequireFromString("0.25")},
			want:   []any{1.0, 2.5, 0.25},
		},
		{
			name:   "bool by truth value",
			dtype:  pdarrow.PrimitiveTypes.Bool,
			values: []any{0, 2.5, "true", false},
			want:   []any{false, true, true, false},
		},
		{
			name:   "string",
			dtype:  pdarrow.PrimitiveTypes.String,
			values: []any{1, 2.0, true, "x"},
			want:   []any{"1", "2.0", "True", "x"},
		},
		{
			name:   "string keeps missing values",
			dtype:  pdarrow.PrimitiveTypes.String,
			values: []any{1, nil, pdarrow.NA},
			want:   []any{"1", nil, pdarrow.NA},
		},
		{
			name:   "datetime",
			dtype:  pdarrow.PrimitiveTypes.Datetime,
			values: []any{"2020-01-01", nil, int64(86400e9), "NaT"},
			want: []any{
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				pdarrow.NaT,
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				pdarrow.NaT,
			},
		},
		{
			name:   "timedelta",
			dtype:  pdarrow.PrimitiveTypes.Timedelta,
			values: []any{"1h", 5, math.NaN()},
			want:   []any{time.Hour, time.Duration(5), pdarrow.NaT},
		},
		{
			name:   "object keeps elements",
			dtype:  pdarrow.PrimitiveTypes.Object,
			values: []any{1, "a", nil},
			want:   []any{1, "a", nil},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)

			b, err := pdarrow.NewBuffer(e.Allocator(), tc.dtype, tc.values)
			require.NoError(t, err)
			defer b.Release()

			assert.Equal(t, tc.want, b.Objects())
		})
	}
}

func TestNewBuffer_FloatMissingIsNaN(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	b := mustBuffer(t, e, pdarrow.PrimitiveTypes.Float64, 1.5, nil, pdarrow.NA)
	defer b.Release()

	got := b.Objects()
	assert.Equal(t, 1.5, got[0])
	assert.True(t, math.IsNaN(got[1].(float64)))
	assert.True(t, math.IsNaN(got[2].(float64)))
}

func TestNewBuffer_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dtype     *pdarrow.PrimitiveDType
		values    []any
		wantErr   error
		wantIndex int
	}{
		{"int8 overflow", pdarrow.PrimitiveTypes.Int8, []any{1, 128}, pdarrow.ErrLossyCast, 1},
		{"fractional float to int", pdarrow.PrimitiveTypes.Int64, []any{1.5}, pdarrow.ErrLossyCast, 0},
		{"NaN to int", pdarrow.PrimitiveTypes.Int32, []any{math.NaN()}, pdarrow.ErrLossyCast, 0},
		{"nil to int", pdarrow.PrimitiveTypes.Int64, []any{1, nil}, pdarrow.ErrInvalidValue, 1},
		{"negative to uint", pdarrow.PrimitiveTypes.Uint8, []any{-1}, pdarrow.ErrLossyCast, 0},
		{"negative string to uint", pdarrow.PrimitiveTypes.Uint64, []any{"-3"}, pdarrow.ErrLossyCast, 0},
		{"uint64 beyond int64", pdarrow.PrimitiveTypes.Int64, []any{uint64(math.MaxUint64)}, pdarrow.ErrLossyCast, 0},
		{"fractional decimal", pdarrow.PrimitiveTypes.Int64, []any{decimal.RequireFromString("1.5")}, pdarrow.ErrLossyCast, 0},
		{"bad literal", pdarrow.PrimitiveTypes.Float64, []any{"abc"}, pdarrow.ErrInvalidValue, 0},
		{"missing bool", pdarrow.PrimitiveTypes.Bool, []any{true, nil}, pdarrow.ErrInvalidValue, 1},
		{"duration to datetime", pdarrow.PrimitiveTypes.Datetime, []any{time.Hour}, pdarrow.ErrTypeMismatch, 0},
		{"time to timedelta", pdarrow.PrimitiveTypes.Timedelta, []any{time.Now()}, pdarrow.ErrTypeMismatch, 0},
		{"year 3000", pdarrow.PrimitiveTypes.Datetime, []any{time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)}, pdarrow.ErrOutOfBoundsDatetime, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)

			_, err := pdarrow.NewBuffer(e.Allocator(), tc.dtype, tc.values)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)

			var castErr *pdarrow.CastError
			require.ErrorAs(t, err, &castErr)
			assert.Equal(t, tc.wantIndex, castErr.Index)
			assert.Equal(t, tc.dtype.Name(), castErr.DType)
		})
	}
}

func TestNewScalarBuffer(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	b, err := pdarrow.NewScalarBuffer(e.Allocator(), pdarrow.PrimitiveTypes.Int16, 7)
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, 0, b.NDim())
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, int16(7), b.Value(0))
}
