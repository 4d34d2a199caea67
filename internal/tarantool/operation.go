package tarantool

import (
	"fmt"
	"strconv"
)

// Operation is a single update operation: sign, field number and arguments.
type Operation []interface{}

// AsTuple returns the operation as it is sent to Tarantool.
func (op Operation) AsTuple() []interface{} {
	return op
}

const allowedOperations = "+-&|^:!=#"

func isAllowedOperation(op string) bool {
	switch op {
	case "+", "-", "&", "|", "^", ":", "!", "=", "#":
		return true
	}

	return false
}

// NewOperation checks the operation sign and builds the operation tuple.
// A list argument is flattened into the tuple, e.g. for the splice operation
// it must contain offset, count and value.
func NewOperation(op string, field interface{}, arg interface{}) (Operation, error) {
	if !isAllowedOperation(op) {
		return nil, fmt.Errorf("%w: '%s', allowed ones are %s", ErrUnsupportedOperation, op, allowedOperations)
	}

	res := Operation{op, fieldRef(field)}
	if list, ok := arg.([]interface{}); ok {
		return append(res, list...), nil
	}

	return append(res, arg), nil
}

// ParseOperations accepts either a single operation or a list of operations.
func ParseOperations(v interface{}) ([]Operation, error) {
	list, ok := toList(v)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: operation list must be a non-empty list, got %T", ErrUnsupportedOperation, v)
	}

	if _, nested := toList(list[0]); !nested {
		op, err := parseOperation(list)
		if err != nil {
			return nil, err
		}
		return []Operation{op}, nil
	}

	ops := make([]Operation, 0, len(list))
	for _, item := range list {
		opList, ok := toList(item)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not an operation", ErrUnsupportedOperation, item)
		}
		op, err := parseOperation(opList)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

func parseOperation(list []interface{}) (Operation, error) {
	if len(list) < 3 {
		return nil, fmt.Errorf("%w: %v must contain sign, field and argument", ErrUnsupportedOperation, list)
	}

	sign, ok := list[0].(string)
	if !ok || !isAllowedOperation(sign) {
		return nil, fmt.Errorf("%w: '%v', allowed ones are %s", ErrUnsupportedOperation, list[0], allowedOperations)
	}

	return Operation(list), nil
}

func toList(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case Operation:
		return []interface{}(t), true
	case []interface{}:
		return t, true
	}

	return nil, false
}

// fieldRef turns a numeric string into a field number,
// other values are treated as field names or numbers as is.
func fieldRef(field interface{}) interface{} {
	s, ok := field.(string)
	if !ok {
		return field
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	return s
}
