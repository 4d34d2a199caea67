package tarantool

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/shmel1k/rftarantool/internal/util"
)

// KeyType tells how a key given by the caller must be
// interpreted before it is sent to Tarantool.
type KeyType string

const (
	KeyTypeStr   KeyType = "STR"   // string
	KeyTypeNum   KeyType = "NUM"   // uint32
	KeyTypeNum64 KeyType = "NUM64" // uint64
	KeyTypeInt   KeyType = "INT"   // int64
)

// KeyTypes lists every recognized hint.
var KeyTypes = []KeyType{KeyTypeStr, KeyTypeNum, KeyTypeNum64, KeyTypeInt}

// ParseKeyType turns a caller supplied hint into a KeyType.
// The hint is case-insensitive.
func ParseKeyType(hint string) (KeyType, error) {
	kt := KeyType(strings.ToUpper(strings.TrimSpace(hint)))
	switch kt {
	case KeyTypeStr, KeyTypeNum, KeyTypeNum64, KeyTypeInt:
		return kt, nil
	}

	return "", fmt.Errorf("%w: '%s', allowed ones are %s", ErrInvalidKeyType, hint, allowedKeyTypes())
}

// Convert casts the key to the Go type that corresponds to the key type.
func (kt KeyType) Convert(key interface{}) (interface{}, error) {
	switch kt {
	case KeyTypeStr:
		return cast.ToStringE(key)
	case KeyTypeNum:
		v, err := util.ToUint64(key)
		if err != nil {
			return nil, err
		}
		if v > math.MaxUint32 {
			return nil, fmt.Errorf("key %v overflows %s", key, kt)
		}
		return uint32(v), nil
	case KeyTypeNum64:
		return util.ToUint64(key)
	case KeyTypeInt:
		return util.ToInt64(key)
	}

	return nil, fmt.Errorf("%w: '%s', allowed ones are %s", ErrInvalidKeyType, kt, allowedKeyTypes())
}

// ConvertKey applies the hint to a scalar key or to every part
// of a composite key. An empty hint leaves the key untouched.
func ConvertKey(key interface{}, hint string) (interface{}, error) {
	if hint == "" {
		return key, nil
	}

	kt, err := ParseKeyType(hint)
	if err != nil {
		return nil, err
	}

	parts, ok := key.([]interface{})
	if !ok {
		return kt.Convert(key)
	}

	converted := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		v, err := kt.Convert(p)
		if err != nil {
			return nil, err
		}
		converted = append(converted, v)
	}

	return converted, nil
}

// KeyTuple wraps a scalar key into a single element tuple.
func KeyTuple(key interface{}) []interface{} {
	if key == nil {
		return []interface{}{}
	}
	if tuple, ok := key.([]interface{}); ok {
		return tuple
	}

	return []interface{}{key}
}

func allowedKeyTypes() string {
	names := make([]string, 0, len(KeyTypes))
	for _, kt := range KeyTypes {
		names = append(names, string(kt))
	}

	return strings.Join(names, ", ")
}
