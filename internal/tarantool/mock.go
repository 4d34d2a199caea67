package tarantool

import (
	"context"
	"sync"
)

// MockConn is an in-memory Conn which records requests
// and answers with preconfigured rows or error.
type MockConn struct {
	Rows RowSet
	Err  error

	mu       sync.Mutex
	requests []interface{}
	closed   bool
}

func (m *MockConn) Select(_ context.Context, req SelectRequest) (RowSet, error) {
	return m.answer(req)
}

func (m *MockConn) Insert(_ context.Context, space string, tuple []interface{}) (RowSet, error) {
	return m.answer(InsertRequest{Space: space, Tuple: tuple})
}

func (m *MockConn) Update(_ context.Context, req UpdateRequest) (RowSet, error) {
	return m.answer(req)
}

func (m *MockConn) Delete(_ context.Context, req DeleteRequest) (RowSet, error) {
	return m.answer(req)
}

func (m *MockConn) Ping(_ context.Context) error {
	_, err := m.answer(PingRequest{})
	return err
}

func (m *MockConn) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	return nil
}

// Requests returns all requests received by the connection.
func (m *MockConn) Requests() []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	dst := make([]interface{}, len(m.requests))
	copy(dst, m.requests)

	return dst
}

func (m *MockConn) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *MockConn) answer(req interface{}) (RowSet, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, Classify(m.Err)
	}

	return NewRowSetFromTuples(m.Rows), nil
}

// InsertRequest and PingRequest are recorded by MockConn only.
type InsertRequest struct {
	Space string
	Tuple []interface{}
}

type PingRequest struct{}

// MockDialer returns the same connection for every dial
// unless Err is set.
type MockDialer struct {
	Conn Conn
	Err  error

	mu    sync.Mutex
	dials []Options
}

func (d *MockDialer) Dial(_ context.Context, opts Options) (Conn, error) {
	d.mu.Lock()
	d.dials = append(d.dials, opts)
	d.mu.Unlock()

	if d.Err != nil {
		return nil, Classify(d.Err)
	}
	if d.Conn == nil {
		return &MockConn{}, nil
	}

	return d.Conn, nil
}

func (d *MockDialer) Dials() []Options {
	d.mu.Lock()
	defer d.mu.Unlock()

	dst := make([]Options, len(d.dials))
	copy(dst, d.dials)

	return dst
}
