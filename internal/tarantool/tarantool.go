package tarantool

import (
	"context"

	tnt "github.com/tarantool/go-tarantool"
)

// tarantoolConn is the Conn over github.com/tarantool/go-tarantool.
// The client has no context support, so ctx is not used for cancellation;
// the request timeout is configured on the client.
type tarantoolConn struct {
	conn *tnt.Connection
}

func dialTarantool(_ context.Context, opts Options) (Conn, error) {
	conn, err := tnt.Connect(opts.Addr, tnt.Opts{
		Timeout:       opts.RequestTimeout,
		Reconnect:     opts.Reconnect,
		MaxReconnects: opts.MaxReconnects,
		User:          opts.User,
		Pass:          opts.Password,
	})
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	return &tarantoolConn{conn: conn}, nil
}

func (c *tarantoolConn) Select(_ context.Context, req SelectRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	resp, err := c.conn.Select(space, indexRef(req.Index), req.Offset, req.Limit, uint32(req.Iterator), KeyTuple(req.Key))
	return c.result(resp, err)
}

func (c *tarantoolConn) Insert(_ context.Context, space string, tuple []interface{}) (RowSet, error) {
	ref, err := spaceRef(space)
	if err != nil {
		return nil, err
	}

	resp, err := c.conn.Insert(ref, tuple)
	return c.result(resp, err)
}

func (c *tarantoolConn) Update(_ context.Context, req UpdateRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	ops := make([]interface{}, 0, len(req.Operations))
	for _, op := range req.Operations {
		ops = append(ops, []interface{}(op))
	}

	resp, err := c.conn.Update(space, indexRef(req.Index), KeyTuple(req.Key), ops)
	return c.result(resp, err)
}

func (c *tarantoolConn) Delete(_ context.Context, req DeleteRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	resp, err := c.conn.Delete(space, indexRef(req.Index), KeyTuple(req.Key))
	return c.result(resp, err)
}

func (c *tarantoolConn) Ping(_ context.Context) error {
	_, err := c.conn.Ping()
	return Classify(err)
}

func (c *tarantoolConn) Close() error {
	return c.conn.Close()
}

func (c *tarantoolConn) result(resp *tnt.Response, err error) (RowSet, error) {
	if err != nil {
		return nil, Classify(err)
	}
	if resp == nil {
		return RowSet{}, nil
	}

	return NewRowSet(resp.Data), nil
}
