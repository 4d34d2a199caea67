package tarantool

import (
	"context"
	"errors"
	"net"

	tnt "github.com/tarantool/go-tarantool"
)

var (
	ErrInvalidKeyType       = errors.New("invalid key type")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnsupportedIterator  = errors.New("unsupported iterator")
	ErrUnknownDriver        = errors.New("unknown tarantool driver")
	errEmptySpaceName       = &QueryError{Err: errors.New("space name must not be empty")}
)

// ConnectionError is returned when there is no live connection
// to send the request through. The message of the client error is kept as is.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError is returned when the server (or the schema known to the client)
// rejects the request. The message of the client error is kept as is.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// connectionAware is implemented by errors of clients which know
// whether the failure happened on the connection level.
type connectionAware interface {
	Connection() bool
}

// Classify wraps an error returned by a client into
// ConnectionError or QueryError. Already classified errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var connErr *ConnectionError
	var queryErr *QueryError
	if errors.As(err, &connErr) || errors.As(err, &queryErr) {
		return err
	}

	if isConnectionFailure(err) {
		return &ConnectionError{Err: err}
	}

	return &QueryError{Err: err}
}

func isConnectionFailure(err error) bool {
	var clientErr tnt.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Code {
		case tnt.ErrConnectionNotReady, tnt.ErrConnectionClosed, tnt.ErrTimeouted:
			return true
		}
		return false
	}

	var aware connectionAware
	if errors.As(err, &aware) {
		return aware.Connection()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Kind names the class of the error the way it is reported to the test runner.
func Kind(err error) string {
	var connErr *ConnectionError
	var queryErr *QueryError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidKeyType):
		return "InvalidKeyType"
	case errors.As(err, &connErr):
		return "ConnectionError"
	case errors.As(err, &queryErr):
		return "QueryError"
	}

	return "Error"
}
