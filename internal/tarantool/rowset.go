package tarantool

// RowSet is an ordered collection of tuples returned by a request.
type RowSet [][]interface{}

// NewRowSet normalizes the tuples returned by a client into a RowSet.
// Values are kept as is, only the container shape changes.
func NewRowSet(data []interface{}) RowSet {
	rows := make(RowSet, 0, len(data))
	for _, item := range data {
		rows = append(rows, toRow(item))
	}

	return rows
}

// NewRowSetFromTuples copies tuples of clients which already
// return data as a slice of tuples.
func NewRowSetFromTuples(data [][]interface{}) RowSet {
	rows := make(RowSet, 0, len(data))
	for _, tuple := range data {
		row := make([]interface{}, len(tuple))
		copy(row, tuple)
		rows = append(rows, row)
	}

	return rows
}

func toRow(item interface{}) []interface{} {
	switch t := item.(type) {
	case []interface{}:
		row := make([]interface{}, len(t))
		copy(row, t)
		return row
	case nil:
		return []interface{}{}
	}

	return []interface{}{item}
}
