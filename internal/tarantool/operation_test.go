package tarantool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperation(t *testing.T) {
	op, err := NewOperation("=", int64(1), "NEW DATA")
	require.NoError(t, err)
	assert.Equal(t, Operation{"=", int64(1), "NEW DATA"}, op)

	op, err = NewOperation(":", "1", []interface{}{int64(0), int64(2), "ab"})
	require.NoError(t, err)
	assert.Equal(t, Operation{":", int64(1), int64(0), int64(2), "ab"}, op)

	op, err = NewOperation("=", "name", "x")
	require.NoError(t, err)
	assert.Equal(t, Operation{"=", "name", "x"}, op)
}

func TestNewOperation_Unsupported(t *testing.T) {
	_, err := NewOperation("*", 1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
}

func TestParseOperations(t *testing.T) {
	single := []interface{}{"=", int64(1), "a"}
	ops, err := ParseOperations(single)
	require.NoError(t, err)
	assert.Equal(t, []Operation{{"=", int64(1), "a"}}, ops)

	list := []interface{}{
		Operation{"=", int64(1), "a"},
		[]interface{}{"+", int64(2), int64(5)},
	}
	ops, err = ParseOperations(list)
	require.NoError(t, err)
	assert.Equal(t, []Operation{{"=", int64(1), "a"}, {"+", int64(2), int64(5)}}, ops)

	_, err = ParseOperations([]interface{}{"?", int64(1), "a"})
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))

	_, err = ParseOperations("=")
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))

	_, err = ParseOperations([]interface{}{"=", int64(1)})
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
}

func TestParseIterator(t *testing.T) {
	it, err := ParseIterator("")
	require.NoError(t, err)
	assert.Equal(t, IterEq, it)

	it, err = ParseIterator("ge")
	require.NoError(t, err)
	assert.Equal(t, IterGe, it)

	it, err = ParseIterator("BITS_ALL_NOT_SET")
	require.NoError(t, err)
	assert.Equal(t, Iterator(9), it)

	_, err = ParseIterator("sideways")
	assert.True(t, errors.Is(err, ErrUnsupportedIterator))
}

func TestOperation_AsTuple(t *testing.T) {
	op, err := NewOperation(":", "1", []interface{}{int64(0), int64(2), "ab"})
	require.NoError(t, err)

	assert.Equal(t, []interface{}{":", int64(1), int64(0), int64(2), "ab"}, op.AsTuple())
}
