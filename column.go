package pdarrow

// Column is a named one-dimensional array. It is the Wrapper that Array and
// Sanitize unwrap to its backing array.
type Column struct {
	name   string
	values ArrayLike
}

// NewColumn builds a column with the default engine.
func NewColumn(name string, data any, dtype DType) (*Column, error) {
	return defaultEngine.NewColumn(name, data, dtype)
}

// NewColumn sanitizes data into a column. Empty data without a dtype becomes
// an empty object column.
func (e *Engine) NewColumn(name string, data any, dtype DType) (*Column, error) {
	if dtype == nil && IsEmptyData(data) {
		dtype = PrimitiveTypes.Object
		if data == nil {
			data = []any{}
		}
	}
	values, err := e.Sanitize(data, NoLength, dtype, false, false)
	if err != nil {
		return nil, err
	}
	return &Column{name: name, values: values}, nil
}

// IsEmptyData reports whether data is nil or an empty container that carries
// no type of its own.
func IsEmptyData(data any) bool {
	if data == nil {
		return true
	}
	switch data.(type) {
	case *Buffer, *MaskedArray, ExtensionArray, Wrapper:
		return false
	}
	if values, ok := asSequence(data); ok {
		return len(values) == 0
	}
	if r, ok := data.(Range); ok {
		return r.Len() == 0
	}
	return false
}

func (c *Column) Name() string            { return c.name }
func (c *Column) BackingArray() ArrayLike { return c.values }
func (c *Column) DType() DType            { return c.values.DType() }
func (c *Column) Len() int                { return c.values.Len() }

// Value returns element i.
func (c *Column) Value(i int) any {
	if v, ok := c.values.(interface{ Value(int) any }); ok {
		return v.Value(i)
	}
	return c.values.(ExtensionArray).Objects()[i]
}

// Release releases the backing array.
func (c *Column) Release() { releaseArrayLike(c.values) }
