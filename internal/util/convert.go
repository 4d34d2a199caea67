package util

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ToUint64 converts v to uint64. Strings are parsed as base 10 numbers,
// so leading zeros do not turn a key into an octal one.
func ToUint64(v interface{}) (uint64, error) {
	if s, ok := numericText(v); ok {
		return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
	}

	return cast.ToUint64E(v)
}

// ToInt64 converts v to int64. Strings are parsed as base 10 numbers.
func ToInt64(v interface{}) (int64, error) {
	if s, ok := numericText(v); ok {
		return strconv.ParseInt(s, 10, 64)
	}

	return cast.ToInt64E(v)
}

func numericText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case []byte:
		return strings.TrimSpace(string(t)), true
	}

	return "", false
}
