package tarantool

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	DriverTarantool = "tarantool"
	DriverViciious  = "viciious"
)

// DefaultLimit is the maximum of unsigned int32 which
// Tarantool treats as "no limit".
const DefaultLimit = uint32(0xffffffff)

// Conn is a single connection to a Tarantool instance.
// Implementations only translate requests into client calls.
type Conn interface {
	Select(ctx context.Context, req SelectRequest) (RowSet, error)
	Insert(ctx context.Context, space string, tuple []interface{}) (RowSet, error)
	Update(ctx context.Context, req UpdateRequest) (RowSet, error)
	Delete(ctx context.Context, req DeleteRequest) (RowSet, error)
	Ping(ctx context.Context) error
	Close() error
}

// Options describes how to establish a connection.
type Options struct {
	Addr           string
	User           string
	Password       string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	Reconnect      time.Duration
	MaxReconnects  uint
}

// Dialer opens new connections.
type Dialer interface {
	Dial(ctx context.Context, opts Options) (Conn, error)
}

type DialerFunc func(ctx context.Context, opts Options) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, opts Options) (Conn, error) {
	return f(ctx, opts)
}

// NewDialer returns the dialer of the named client library.
func NewDialer(driver string) (Dialer, error) {
	switch driver {
	case "", DriverTarantool:
		return DialerFunc(dialTarantool), nil
	case DriverViciious:
		return DialerFunc(dialViciious), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}

type SelectRequest struct {
	Space    string
	Index    string
	Key      interface{}
	Offset   uint32
	Limit    uint32
	Iterator Iterator
}

type DeleteRequest struct {
	Space string
	Index string
	Key   interface{}
}

type UpdateRequest struct {
	Space      string
	Index      string
	Key        interface{}
	Operations []Operation
}

// spaceRef returns either a numeric space id or the space name.
func spaceRef(space string) (interface{}, error) {
	if space == "" {
		return nil, errEmptySpaceName
	}
	if id, err := strconv.ParseUint(space, 10, 32); err == nil {
		return uint32(id), nil
	}

	return space, nil
}

// indexRef returns the primary index for an empty value,
// a numeric index id or the index name.
func indexRef(index string) interface{} {
	if index == "" {
		return uint32(0)
	}
	if id, err := strconv.ParseUint(index, 10, 32); err == nil {
		return uint32(id)
	}

	return index
}
