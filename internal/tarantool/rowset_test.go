package tarantool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRowSet(t *testing.T) {
	data := []interface{}{
		[]interface{}{int64(0), "value"},
		"scalar",
		nil,
	}

	rows := NewRowSet(data)
	assert.Equal(t, RowSet{
		{int64(0), "value"},
		{"scalar"},
		{},
	}, rows)
}

func TestNewRowSet_DoesNotShareRows(t *testing.T) {
	tuple := []interface{}{int64(0), "value"}
	rows := NewRowSet([]interface{}{tuple})

	rows[0][1] = "changed"
	assert.Equal(t, "value", tuple[1])
}

func TestNewRowSetFromTuples(t *testing.T) {
	assert.Equal(t, RowSet{}, NewRowSetFromTuples(nil))
	assert.Equal(t, RowSet{{uint64(1), "a"}}, NewRowSetFromTuples([][]interface{}{{uint64(1), "a"}}))
}
