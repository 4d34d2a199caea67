package connection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shmel1k/rftarantool/internal/tarantool"
)

var (
	ErrNoConnection    = &tarantool.ConnectionError{Err: errors.New("no open tarantool connection, use 'Connect To Tarantool' first")}
	ErrUnknownIdentity = errors.New("non-existing index or alias")
)

// Cache keeps opened connections addressable by a 1-based index
// or by an optional alias. The last registered or switched to
// connection is the current one.
type Cache struct {
	mu      sync.RWMutex
	conns   []tarantool.Conn
	aliases map[string]int
	current int
}

func NewCache() *Cache {
	return &Cache{
		aliases: make(map[string]int),
	}
}

// Register stores the connection, makes it current and returns its index.
// An alias which is already taken is moved to the new connection,
// the old one stays reachable by its index.
func (c *Cache) Register(conn tarantool.Conn, alias string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conns = append(c.conns, conn)
	c.current = len(c.conns)
	if key := normalizeAlias(alias); key != "" {
		c.aliases[key] = c.current
	}

	return c.current
}

// Switch makes the connection with the given index or alias current.
// It returns the index of the previously current connection, 0 if there was none.
func (c *Cache) Switch(indexOrAlias string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.resolve(indexOrAlias)
	if err != nil {
		return 0, err
	}

	prev := c.current
	c.current = idx

	return prev, nil
}

// Current returns the current connection.
func (c *Cache) Current() (tarantool.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == 0 {
		return nil, ErrNoConnection
	}

	return c.conns[c.current-1], nil
}

// CurrentIndex returns the index of the current connection, 0 if there is none.
func (c *Cache) CurrentIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// Len returns the number of registered connections.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.conns)
}

// CloseAll closes every registered connection and resets the cache,
// so the next registered connection gets index 1.
func (c *Cache) CloseAll() error {
	c.mu.Lock()
	conns := c.conns
	c.conns = nil
	c.aliases = make(map[string]int)
	c.current = 0
	c.mu.Unlock()

	var firstErr error
	for _, conn := range conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *Cache) resolve(indexOrAlias string) (int, error) {
	if idx, ok := c.aliases[normalizeAlias(indexOrAlias)]; ok {
		return idx, nil
	}

	idx, err := strconv.Atoi(strings.TrimSpace(indexOrAlias))
	if err != nil || idx < 1 || idx > len(c.conns) {
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownIdentity, indexOrAlias)
	}

	return idx, nil
}

// normalizeAlias ignores case, whitespace and underscores.
func normalizeAlias(alias string) string {
	alias = strings.ReplaceAll(alias, "_", "")
	return strings.ToLower(strings.Join(strings.Fields(alias), ""))
}
