package library

import (
	"context"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shmel1k/rftarantool/internal/config"
	"github.com/shmel1k/rftarantool/internal/connection"
	"github.com/shmel1k/rftarantool/internal/keyword"
	"github.com/shmel1k/rftarantool/internal/metrics"
	"github.com/shmel1k/rftarantool/internal/tarantool"
)

// Doc is the introduction of the library shown by the test runner.
const Doc = `Robot Framework library for working with Tarantool DB.

Connections are opened with Connect To Tarantool and addressed by the
returned index or by an alias. Data keywords work with the current connection.`

// unknownKeyword labels metrics of calls to keywords which do not exist.
const unknownKeyword = "unknown"

// Library implements the Tarantool keywords. It keeps no state
// between calls except the cache of opened connections.
type Library struct {
	dialer   tarantool.Dialer
	cache    *connection.Cache
	connOpts *config.ConnectConfig
	registry *keyword.Registry
	logger   zerolog.Logger
}

func New(dialer tarantool.Dialer, connOpts *config.ConnectConfig) *Library {
	l := &Library{
		dialer:   dialer,
		cache:    connection.NewCache(),
		connOpts: connOpts,
		registry: keyword.NewRegistry(),
		logger:   zerolog.Nop(),
	}
	l.registry.MustRegister(l.keywords()...)

	return l
}

func (l *Library) SetLogger(logger zerolog.Logger) {
	l.logger = logger
}

// Registry returns the keywords of the library.
func (l *Library) Registry() *keyword.Registry {
	return l.registry
}

// Run executes the keyword, collects metrics and classifies the failure.
func (l *Library) Run(ctx context.Context, name string, positional []interface{}, named map[string]interface{}) (interface{}, error) {
	label := unknownKeyword
	if kw, err := l.registry.Lookup(name); err == nil {
		label = kw.Name
	}

	txn := metrics.StartKeyword(label)
	defer txn.End()

	res, err := l.registry.Run(ctx, name, positional, named)
	if err != nil {
		metrics.NewFailedKeyword(label, tarantool.Kind(err))
		l.logger.Debug().Err(err).Str("keyword", name).Msg("Keyword failed")
		return nil, err
	}

	return res, nil
}

// Shutdown closes all opened connections.
func (l *Library) Shutdown() {
	if err := l.cache.CloseAll(); err != nil {
		l.logger.Err(err).Msg("Failed to close tarantool connections")
	}
	metrics.SetOpenConnections(0)
}

// ConnectToTarantool opens a connection and makes it current.
func (l *Library) ConnectToTarantool(ctx context.Context, host, port, user, password, alias string) (int, error) {
	l.logger.Debug().Msgf("Connecting to the Tarantool DB using host=%s, port=%s, user=%s", host, port, user)

	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return 0, &tarantool.ConnectionError{Err: err}
	}

	conn, err := l.dialer.Dial(ctx, l.connOpts.Options(net.JoinHostPort(host, port), user, password))
	if err != nil {
		return 0, tarantool.Classify(err)
	}

	idx := l.cache.Register(conn, alias)
	metrics.SetOpenConnections(l.cache.Len())

	return idx, nil
}

// SwitchTarantoolConnection returns the index of the previous connection.
func (l *Library) SwitchTarantoolConnection(indexOrAlias string) (int, error) {
	l.logger.Debug().Msgf("Switching to tarantool connection with alias/index %s", indexOrAlias)

	return l.cache.Switch(indexOrAlias)
}

func (l *Library) CloseAllTarantoolConnections() error {
	err := l.cache.CloseAll()
	metrics.SetOpenConnections(0)

	return err
}

// Select retrieves tuples by the key. The key type hint is applied
// before the request and an unknown hint fails without any request.
func (l *Library) Select(ctx context.Context, req tarantool.SelectRequest, keyType string) (tarantool.RowSet, error) {
	l.logger.Debug().Msgf("Select data from space %s by key %v", req.Space, req.Key)

	conn, err := l.cache.Current()
	if err != nil {
		return nil, err
	}

	req.Key, err = tarantool.ConvertKey(req.Key, keyType)
	if err != nil {
		return nil, err
	}

	return conn.Select(ctx, req)
}

func (l *Library) Insert(ctx context.Context, space string, values []interface{}) (tarantool.RowSet, error) {
	l.logger.Debug().Msgf("Insert values %v in space %s", values, space)

	conn, err := l.cache.Current()
	if err != nil {
		return nil, err
	}

	return conn.Insert(ctx, space, values)
}

func (l *Library) Update(ctx context.Context, req tarantool.UpdateRequest, keyType string) (tarantool.RowSet, error) {
	l.logger.Debug().Msgf("Update data in space %s with key %v with operations %v", req.Space, req.Key, req.Operations)

	conn, err := l.cache.Current()
	if err != nil {
		return nil, err
	}

	req.Key, err = tarantool.ConvertKey(req.Key, keyType)
	if err != nil {
		return nil, err
	}

	return conn.Update(ctx, req)
}

func (l *Library) Delete(ctx context.Context, req tarantool.DeleteRequest, keyType string) (tarantool.RowSet, error) {
	l.logger.Debug().Msgf("Delete data in space %s by key %v", req.Space, req.Key)

	conn, err := l.cache.Current()
	if err != nil {
		return nil, err
	}

	req.Key, err = tarantool.ConvertKey(req.Key, keyType)
	if err != nil {
		return nil, err
	}

	return conn.Delete(ctx, req)
}
