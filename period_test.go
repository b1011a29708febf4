package pdarrow_test

import (
	"testing"
	"time"

	"github.com/fwojciec/pdarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_String(t *testing.T) {
	t.Parallel()

	at := time.Date(2015, 8, 19, 13, 45, 12, 0, time.UTC)
	tests := []struct {
		freq pdarrow.Freq
		want string
	}{
		{pdarrow.FreqAnnual, "2015"},
		{pdarrow.FreqQuarter, "2015Q3"},
		{pdarrow.FreqMonth, "2015-08"},
		{pdarrow.FreqWeek, "2015-08-17/2015-08-23"},
		{pdarrow.FreqDay, "2015-08-19"},
		{pdarrow.FreqHour, "2015-08-19 13:00"},
		{pdarrow.FreqMinute, "2015-08-19 13:45"},
		{pdarrow.FreqSecond, "2015-08-19 13:45:12"},
	}
	for _, tc := range tests {
		t.Run(string(tc.freq), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, pdarrow.NewPeriod(at, tc.freq).String())
		})
	}
}

func TestNewPeriod_UsesWallClock(t *testing.T) {
	t.Parallel()

	aware := time.Date(2020, 3, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2020-03-01", pdarrow.NewPeriod(aware, pdarrow.FreqDay).String())
	assert.Equal(t, int64(0), pdarrow.NewPeriod(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), pdarrow.FreqMonth).Ordinal)
	assert.Equal(t, int64(-1), pdarrow.NewPeriod(time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC), pdarrow.FreqDay).Ordinal)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	p, err := pdarrow.ParsePeriod("2015Q2", pdarrow.FreqQuarter)
	require.NoError(t, err)
	assert.Equal(t, "2015Q2", p.String())

	p, err = pdarrow.ParsePeriod("2015-02-14", pdarrow.FreqMonth)
	require.NoError(t, err)
	assert.Equal(t, "2015-02", p.String())

	_, err = pdarrow.ParsePeriod("someday", pdarrow.FreqDay)
	assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
}

func TestParseFreq(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]pdarrow.Freq{"Y": pdarrow.FreqAnnual, "min": pdarrow.FreqMinute, "h": pdarrow.FreqHour, "D": pdarrow.FreqDay} {
		got, err := pdarrow.ParseFreq(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := pdarrow.ParseFreq("fortnight")
	assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
}

func TestNewPeriodArray(t *testing.T) {
	t.Parallel()

	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("converts times and strings", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := pdarrow.NewPeriodArray(e.Allocator(), []any{day, "2021-07-15", pdarrow.NaT}, pdarrow.NewPeriodDType(pdarrow.FreqMonth), false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, "period[M]", arr.DType().Name())
		assert.Equal(t, pdarrow.FreqMonth, arr.Freq())
		assert.Equal(t, "2021-06", arr.Value(0).(pdarrow.Period).String())
		assert.Equal(t, "2021-07", arr.Value(1).(pdarrow.Period).String())
		assert.Equal(t, pdarrow.NaT, arr.Value(2))
	})

	t.Run("incompatible frequency", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		_, err := pdarrow.NewPeriodArray(e.Allocator(), []any{pdarrow.NewPeriod(day, pdarrow.FreqDay)}, pdarrow.NewPeriodDType(pdarrow.FreqMonth), false)
		assert.ErrorIs(t, err, pdarrow.ErrIncompatibleFrequency)
	})

	t.Run("frequency cannot be inferred", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		_, err := pdarrow.NewPeriodArray(e.Allocator(), []any{"2021-01"}, nil, false)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})

	t.Run("all missing without frequency", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := pdarrow.NewPeriodArray(e.Allocator(), []any{nil, pdarrow.NaT}, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, []any{pdarrow.NaT, pdarrow.NaT}, arr.Objects())
	})

	t.Run("not period-like", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		_, err := pdarrow.NewPeriodArray(e.Allocator(), []any{1.5}, pdarrow.NewPeriodDType(pdarrow.FreqDay), false)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})
}
