package pdarrow_test

import (
	"math"
	"testing"
	"time"

	"github.com/fwojciec/pdarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_Inference(t *testing.T) {
	t.Parallel()

	naive := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		name        string
		data        any
		wantVariant pdarrow.Variant
		wantDType   string
		want        []any
	}{
		{
			name:        "integers",
			data:        []any{1, 2, 3},
			wantVariant: pdarrow.VariantInteger,
			wantDType:   "Int64",
			want:        []any{int64(1), int64(2), int64(3)},
		},
		{
			name:        "integers with NaN",
			data:        []any{1, 2, math.NaN()},
			wantVariant: pdarrow.VariantInteger,
			wantDType:   "Int64",
			want:        []any{int64(1), int64(2), pdarrow.NA},
		},
		{
			name:        "floats with missing",
			data:        []any{1.5, nil, 2},
			wantVariant: pdarrow.VariantFloating,
			wantDType:   "Float64",
			want:        []any{1.5, pdarrow.NA, 2.0},
		},
		{
			name:        "booleans",
			data:        []any{true, nil, false},
			wantVariant: pdarrow.VariantBoolean,
			wantDType:   "boolean",
			want:        []any{true, pdarrow.NA, false},
		},
		{
			name:        "strings",
			data:        []string{"a", "b"},
			wantVariant: pdarrow.VariantString,
			wantDType:   "string",
			want:        []any{"a", "b"},
		},
		{
			name:        "naive times",
			data:        []any{naive, nil},
			wantVariant: pdarrow.VariantDatetime,
			wantDType:   "datetime64[ns]",
			want:        []any{naive, pdarrow.NaT},
		},
		{
			name:        "durations",
			data:        []time.Duration{time.Second, 2 * time.Second},
			wantVariant: pdarrow.VariantTimedelta,
			wantDType:   "timedelta64[ns]",
			want:        []any{time.Second, 2 * time.Second},
		},
		{
			name:        "mixed",
			data:        []any{"a", 1},
			wantVariant: pdarrow.VariantPrimitive,
			wantDType:   "object",
			want:        []any{"a", 1},
		},
		{
			name:        "all missing",
			data:        []any{nil, nil},
			wantVariant: pdarrow.VariantPrimitive,
			wantDType:   "object",
			want:        []any{nil, nil},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)

			arr, err := e.Array(tc.data, nil, false)
			require.NoError(t, err)
			defer arr.Release()

			assert.Equal(t, tc.wantVariant, arr.Variant())
			assert.Equal(t, tc.wantDType, arr.DType().Name())
			assert.Equal(t, tc.want, arr.Objects())
		})
	}
}

func TestArray_IntegerValuesArePreserved(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	data := []any{math.MinInt64, -1, 0, 1, math.MaxInt64}
	arr, err := e.Array(data, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	require.Equal(t, pdarrow.VariantInteger, arr.Variant())
	for i, v := range data {
		assert.False(t, arr.IsNA(i))
		assert.Equal(t, int64(v.(int)), arr.Objects()[i])
	}
}

func TestArray_TypedBuffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dtype     *pdarrow.PrimitiveDType
		values    []any
		wantDType string
	}{
		{"uint8", pdarrow.PrimitiveTypes.Uint8, []any{1, 2}, "UInt8"},
		{"int32", pdarrow.PrimitiveTypes.Int32, []any{1, 2}, "Int32"},
		{"float32", pdarrow.PrimitiveTypes.Float32, []any{1.5}, "Float32"},
		{"bool", pdarrow.PrimitiveTypes.Bool, []any{true}, "boolean"},
		{"str", pdarrow.PrimitiveTypes.String, []any{"x"}, "string"},
		{"datetime", pdarrow.PrimitiveTypes.Datetime, []any{"2020-01-01"}, "datetime64[ns]"},
		{"timedelta", pdarrow.PrimitiveTypes.Timedelta, []any{time.Hour}, "timedelta64[ns]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)

			b := mustBuffer(t, e, tc.dtype, tc.values...)
			defer b.Release()

			arr, err := e.Array(b, nil, false)
			require.NoError(t, err)
			defer arr.Release()

			assert.Equal(t, tc.wantDType, arr.DType().Name())
		})
	}
}

func TestArray_AllNaTIsDatetime(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	arr, err := e.Array([]any{pdarrow.NaT, pdarrow.NaT}, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	require.IsType(t, &pdarrow.DatetimeArray{}, arr)
	assert.Equal(t, "datetime64[ns]", arr.DType().Name())
	assert.Equal(t, []any{pdarrow.NaT, pdarrow.NaT}, arr.Objects())
}

func TestArray_ZeroStepRange(t *testing.T) {
	t.Parallel()

	_, err := pdarrow.Array(pdarrow.Range{Start: 0, Stop: 5, Step: 0}, nil, false)
	assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
}

func TestArray_ScalarIsInvalidShape(t *testing.T) {
	t.Parallel()

	for _, v := range []any{1, "a", nil, time.Now()} {
		_, err := pdarrow.Array(v, nil, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidShape)
	}
}

func TestArray_MixedTimezonesFallBack(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	data := []any{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600)),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}
	arr, err := e.Array(data, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, pdarrow.VariantPrimitive, arr.Variant())
	assert.Equal(t, "object", arr.DType().Name())
	assert.Equal(t, data, arr.Objects())
}

func TestArray_AwareAndNaiveFallBack(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	data := []any{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600)),
	}
	arr, err := e.Array(data, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, pdarrow.VariantPrimitive, arr.Variant())
	assert.Equal(t, data, arr.Objects())
}

func TestArray_SingleZone(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	cet := time.FixedZone("CET", 3600)
	data := []any{time.Date(2020, 1, 1, 0, 0, 0, 0, cet), pdarrow.NaT}
	arr, err := e.Array(data, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	dta, ok := arr.(*pdarrow.DatetimeArray)
	require.True(t, ok)
	assert.Equal(t, pdarrow.VariantDatetimeTZ, dta.Variant())
	assert.Equal(t, "datetime64[ns, CET]", dta.DType().Name())
	assert.Equal(t, cet, dta.Location())
	assert.True(t, data[0].(time.Time).Equal(dta.Value(0).(time.Time)))
	assert.Equal(t, pdarrow.NaT, dta.Value(1))
}

func TestArray_PeriodFallback(t *testing.T) {
	t.Parallel()

	day := time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC)

	t.Run("single frequency", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		data := []any{pdarrow.NewPeriod(day, pdarrow.FreqDay), nil, pdarrow.NewPeriod(day.AddDate(0, 0, 1), pdarrow.FreqDay)}
		arr, err := e.Array(data, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		require.Equal(t, pdarrow.VariantPeriod, arr.Variant())
		assert.Equal(t, "period[D]", arr.DType().Name())
		assert.Equal(t, pdarrow.NaT, arr.Objects()[1])
		assert.Equal(t, "2020-05-18", arr.Objects()[2].(pdarrow.Period).String())
	})

	t.Run("mixed frequencies", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		data := []any{pdarrow.NewPeriod(day, pdarrow.FreqDay), pdarrow.NewPeriod(day, pdarrow.FreqMonth)}
		arr, err := e.Array(data, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, pdarrow.VariantPrimitive, arr.Variant())
		assert.Equal(t, data, arr.Objects())
	})
}

func TestArray_IntervalFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        []any
		wantVariant pdarrow.Variant
	}{
		{
			name:        "same closed side",
			data:        []any{pdarrow.Interval{Left: 0, Right: 1, Closed: pdarrow.ClosedLeft}, math.NaN()},
			wantVariant: pdarrow.VariantInterval,
		},
		{
			name: "mixed closed sides",
			data: []any{
				pdarrow.Interval{Left: 0, Right: 1, Closed: pdarrow.ClosedLeft},
				pdarrow.Interval{Left: 1, Right: 2, Closed: pdarrow.ClosedRight},
			},
			wantVariant: pdarrow.VariantPrimitive,
		},
		{
			name: "mixed bound types",
			data: []any{
				pdarrow.Interval{Left: 0, Right: 1},
				pdarrow.Interval{Left: time.Second, Right: time.Minute},
			},
			wantVariant: pdarrow.VariantPrimitive,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)

			arr, err := e.Array(tc.data, nil, false)
			require.NoError(t, err)
			defer arr.Release()

			assert.Equal(t, tc.wantVariant, arr.Variant())
		})
	}
}

func TestArray_ExplicitTypes(t *testing.T) {
	t.Parallel()

	t.Run("nanosecond timestamps", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := e.Array([]any{"2015", "2016"}, pdarrow.PrimitiveTypes.Datetime, false)
		require.NoError(t, err)
		defer arr.Release()

		require.IsType(t, &pdarrow.DatetimeArray{}, arr)
		assert.Equal(t, []any{
			time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		}, arr.Objects())
	})

	t.Run("nanosecond durations", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := e.Array([]any{"1h", 1000}, pdarrow.Alias("timedelta64[ns]"), false)
		require.NoError(t, err)
		defer arr.Release()

		require.IsType(t, &pdarrow.TimedeltaArray{}, arr)
		assert.Equal(t, []any{time.Hour, time.Microsecond}, arr.Objects())
	})

	t.Run("zone-aware alias", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := e.Array([]any{"2020-01-01 12:00"}, pdarrow.Alias("datetime64[ns, UTC]"), false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, "datetime64[ns, UTC]", arr.DType().Name())
		assert.Equal(t, int64(1577880000), arr.Objects()[0].(time.Time).Unix())
	})

	t.Run("extension type", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := e.Array([]any{1, nil, 3}, pdarrow.ExtensionTypes.Uint16, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, "UInt16", arr.DType().Name())
		assert.Equal(t, []any{uint16(1), pdarrow.NA, uint16(3)}, arr.Objects())
	})

	t.Run("primitive type", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := e.Array([]any{1, 2}, pdarrow.PrimitiveTypes.Float32, false)
		require.NoError(t, err)
		defer arr.Release()

		require.IsType(t, &pdarrow.PrimitiveArray{}, arr)
		assert.Equal(t, "float32", arr.DType().Name())
		assert.Equal(t, []any{float32(1), float32(2)}, arr.Objects())
	})

	t.Run("fractional values for integer type", func(t *testing.T) {
		t.Parallel()

		_, err := pdarrow.Array([]any{1.5, "x"}, pdarrow.ExtensionTypes.Int64, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, pdarrow.ErrLossyCast)
	})

	t.Run("strings for integer type", func(t *testing.T) {
		t.Parallel()

		_, err := pdarrow.Array([]any{"1"}, pdarrow.ExtensionTypes.Int64, false)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})
}

func TestArray_AdoptsTypeOfExtensionArray(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	src, err := e.Array([]any{1, 2}, pdarrow.ExtensionTypes.Int8, false)
	require.NoError(t, err)
	defer src.Release()

	arr, err := e.Array(src, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, "Int8", arr.DType().Name())
	assert.Equal(t, src.Objects(), arr.Objects())

	cp, err := e.Array(src, nil, true)
	require.NoError(t, err)
	defer cp.Release()
	assert.Equal(t, src.Objects(), cp.Objects())
}

func TestArray_AdoptsTypeOfWrapper(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	col, err := e.NewColumn("a", []any{"x", "y"}, pdarrow.ExtensionTypes.String)
	require.NoError(t, err)
	defer col.Release()

	arr, err := e.Array(col, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, pdarrow.VariantString, arr.Variant())
	assert.Equal(t, []any{"x", "y"}, arr.Objects())
}

func TestArray_ObjectBufferFromWrapper(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	col, err := e.NewColumn("a", []any{"x", 1}, nil)
	require.NoError(t, err)
	defer col.Release()
	require.Equal(t, "object", col.DType().Name())

	arr, err := e.Array(col, nil, false)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, pdarrow.VariantPrimitive, arr.Variant())
	assert.Equal(t, []any{"x", 1}, arr.Objects())
}
