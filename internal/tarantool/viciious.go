package tarantool

import (
	"context"

	vtnt "github.com/viciious/go-tarantool"
)

// viciiousConn is the Conn over github.com/viciious/go-tarantool.
type viciiousConn struct {
	connector *vtnt.Connector
}

func dialViciious(_ context.Context, opts Options) (Conn, error) {
	connector := vtnt.New(opts.Addr, &vtnt.Options{
		ConnectTimeout: opts.ConnectTimeout,
		QueryTimeout:   opts.RequestTimeout,
		User:           opts.User,
		Password:       opts.Password,
	})

	// Connect eagerly so that a wrong address fails the connect keyword
	// and not the first query.
	if _, err := connector.Connect(); err != nil {
		connector.Close()
		return nil, &ConnectionError{Err: err}
	}

	return &viciiousConn{connector: connector}, nil
}

func (c *viciiousConn) Select(ctx context.Context, req SelectRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	return c.exec(ctx, &vtnt.Select{
		Space:    space,
		Index:    indexRef(req.Index),
		Offset:   req.Offset,
		Limit:    req.Limit,
		Iterator: uint8(req.Iterator),
		KeyTuple: KeyTuple(req.Key),
	})
}

func (c *viciiousConn) Insert(ctx context.Context, space string, tuple []interface{}) (RowSet, error) {
	ref, err := spaceRef(space)
	if err != nil {
		return nil, err
	}

	return c.exec(ctx, &vtnt.Insert{
		Space: ref,
		Tuple: tuple,
	})
}

func (c *viciiousConn) Update(ctx context.Context, req UpdateRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	ops := make([]vtnt.Operator, 0, len(req.Operations))
	for _, op := range req.Operations {
		ops = append(ops, op)
	}

	return c.exec(ctx, &vtnt.Update{
		Space:    space,
		Index:    indexRef(req.Index),
		KeyTuple: KeyTuple(req.Key),
		Set:      ops,
	})
}

func (c *viciiousConn) Delete(ctx context.Context, req DeleteRequest) (RowSet, error) {
	space, err := spaceRef(req.Space)
	if err != nil {
		return nil, err
	}

	return c.exec(ctx, &vtnt.Delete{
		Space:    space,
		Index:    indexRef(req.Index),
		KeyTuple: KeyTuple(req.Key),
	})
}

func (c *viciiousConn) Ping(ctx context.Context) error {
	_, err := c.exec(ctx, &vtnt.Ping{})
	return err
}

func (c *viciiousConn) Close() error {
	c.connector.Close()
	return nil
}

func (c *viciiousConn) exec(ctx context.Context, q vtnt.Query) (RowSet, error) {
	conn, err := c.connector.Connect()
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	resp := conn.Exec(ctx, q)
	if resp.Error != nil {
		return nil, Classify(resp.Error)
	}

	return NewRowSetFromTuples(resp.Data), nil
}
