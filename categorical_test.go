package pdarrow_test

import (
	"math"
	"testing"

	"github.com/fwojciec/pdarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategoricalArray(t *testing.T) {
	t.Parallel()

	t.Run("inferred categories are sorted", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{"b", "a", nil, "b"}, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, []any{"a", "b"}, arr.Categories())
		assert.Equal(t, []int32{1, 0, -1, 1}, arr.Codes())
		assert.Equal(t, "b", arr.Value(0))
		assert.True(t, math.IsNaN(arr.Value(2).(float64)))
	})

	t.Run("mixed categories keep first appearance", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{"x", 2, "x", true}, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, []any{"x", 2, true}, arr.Categories())
	})

	t.Run("values outside explicit categories are missing", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		dt := pdarrow.NewCategoricalDType([]any{1, 2}, true)
		arr, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{2, 3, 1}, dt, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, []int32{1, -1, 0}, arr.Codes())
		assert.True(t, arr.DType().(*pdarrow.CategoricalDType).Ordered())
		assert.True(t, arr.IsNA(1))
	})

	t.Run("unhashable values", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		_, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{[]any{1}}, nil, false)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})

	t.Run("struct holding a slice", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		data := []any{"a", holder{X: []int{1}}}
		_, err := pdarrow.NewCategoricalArray(e.Allocator(), data, nil, false)
		require.ErrorIs(t, err, pdarrow.ErrInvalidValue)
		var castErr *pdarrow.CastError
		require.ErrorAs(t, err, &castErr)
		assert.Equal(t, 1, castErr.Index)
	})

	t.Run("unhashable explicit category", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		dt := pdarrow.NewCategoricalDType([]any{holder{X: map[string]int{}}}, false)
		_, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{1}, dt, false)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
	})

	t.Run("comparable struct values", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t)

		arr, err := pdarrow.NewCategoricalArray(e.Allocator(), []any{holder{X: 1}, holder{X: 1}, holder{X: "b"}}, nil, false)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, []int32{0, 0, 1}, arr.Codes())
	})
}

// holder is a comparable struct whose field may hold an unhashable value.
type holder struct {
	X any
}

func TestSanitize_CategoryRejectsUnhashable(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	for _, raise := range []bool{true, false} {
		out, err := e.Sanitize([]any{holder{X: []int{1}}}, pdarrow.NoLength, pdarrow.Alias("category"), false, raise)
		assert.ErrorIs(t, err, pdarrow.ErrInvalidValue)
		assert.Nil(t, out)
	}
}

func TestCategoricalArray_ThroughArray(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	arr, err := e.Array([]any{3, 1, 3}, pdarrow.Alias("category"), false)
	require.NoError(t, err)
	defer arr.Release()

	require.Equal(t, pdarrow.VariantCategorical, arr.Variant())
	assert.Equal(t, []any{3, 1, 3}, arr.Objects())

	cp, err := arr.Copy()
	require.NoError(t, err)
	defer cp.Release()
	assert.Equal(t, arr.Objects(), cp.Objects())

	rep, err := arr.Repeat(2)
	require.NoError(t, err)
	defer rep.Release()
	assert.Equal(t, []any{3, 1, 3, 3, 1, 3}, rep.Objects())
}
