package tarantool

import (
	"fmt"
	"strings"
)

// Iterator is the iproto iterator type used by select requests.
type Iterator uint32

const (
	IterEq Iterator = iota
	IterReq
	IterAll
	IterLt
	IterLe
	IterGe
	IterGt
	IterBitsAllSet
	IterBitsAnySet
	IterBitsAllNotSet
	IterOverlaps
	IterNeighbor
)

var iteratorNames = map[string]Iterator{
	"EQ":               IterEq,
	"REQ":              IterReq,
	"ALL":              IterAll,
	"LT":               IterLt,
	"LE":               IterLe,
	"GE":               IterGe,
	"GT":               IterGt,
	"BITS_ALL_SET":     IterBitsAllSet,
	"BITS_ANY_SET":     IterBitsAnySet,
	"BITS_ALL_NOT_SET": IterBitsAllNotSet,
	"OVERLAPS":         IterOverlaps,
	"NEIGHBOR":         IterNeighbor,
}

// ParseIterator accepts an iterator name like "GE" or "bits_any_set".
// An empty name means EQ.
func ParseIterator(name string) (Iterator, error) {
	if name == "" {
		return IterEq, nil
	}

	it, ok := iteratorNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedIterator, name)
	}

	return it, nil
}
