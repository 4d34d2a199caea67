package config

import (
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/shmel1k/rftarantool/internal/tarantool"
	"github.com/shmel1k/rftarantool/internal/util"
)

const (
	defaultAddr           = ":8270"
	defaultLogLevel       = "debug"
	defaultDriver         = tarantool.DriverTarantool
	defaultUser           = "guest"
	defaultConnectTimeout = 1 * time.Second
	defaultRequestTimeout = 1 * time.Second
)

type Config struct {
	// Server is the Robot Framework remote library server.
	Server struct {
		Addr string `yaml:"addr"`

		// AllowStop lets the test runner stop the
		// server with the Stop Remote Server keyword.
		AllowStop *bool `yaml:"allow_stop"`
	} `yaml:"server"`

	Logging Logging `yaml:"logging"`

	// Connection contains the defaults for
	// every connection opened by the library.
	Connection *ConnectConfig `yaml:"connection"`
}

type Logging struct {
	Level              string `yaml:"level"`
	SysLogEnabled      bool   `yaml:"syslog_enabled"`
	FileLoggingEnabled bool   `yaml:"file_enabled"`
	Filename           string `yaml:"filename"`
	MaxSize            int    `yaml:"max_size"` // megabytes
	MaxBackups         int    `yaml:"max_backups"`
	MaxAge             int    `yaml:"max_age"` // days
}

type ConnectConfig struct {
	Driver         *string        `yaml:"driver"`
	User           *string        `yaml:"user"`
	Password       *string        `yaml:"password"`
	ConnectTimeout *time.Duration `yaml:"connect_timeout"`
	RequestTimeout *time.Duration `yaml:"request_timeout"`
	Reconnect      *time.Duration `yaml:"reconnect"`
	MaxReconnects  *uint          `yaml:"max_reconnects"`
}

// Options builds connection options for the given address.
// Empty user and password fall back to the configured ones.
func (c *ConnectConfig) Options(addr, user, password string) tarantool.Options {
	if user == "" {
		user = *c.User
		if password == "" {
			password = *c.Password
		}
	}

	return tarantool.Options{
		Addr:           addr,
		User:           user,
		Password:       password,
		ConnectTimeout: *c.ConnectTimeout,
		RequestTimeout: *c.RequestTimeout,
		Reconnect:      *c.Reconnect,
		MaxReconnects:  *c.MaxReconnects,
	}
}

// Setup reads the config file. An empty path gives the default config.
func Setup(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = file.Close()
		}()

		data, err := ioutil.ReadAll(file)
		if err != nil {
			return nil, err
		}

		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			return nil, err
		}
	}

	cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) withDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.AllowStop == nil {
		c.Server.AllowStop = util.NewBool(false)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Connection == nil {
		c.Connection = &ConnectConfig{}
	}
	conn := c.Connection
	if conn.Driver == nil {
		conn.Driver = util.NewString(defaultDriver)
	}
	if conn.User == nil {
		conn.User = util.NewString(defaultUser)
	}
	if conn.Password == nil {
		conn.Password = util.NewString("")
	}
	if conn.ConnectTimeout == nil {
		conn.ConnectTimeout = util.NewDuration(defaultConnectTimeout)
	}
	if conn.RequestTimeout == nil {
		conn.RequestTimeout = util.NewDuration(defaultRequestTimeout)
	}
	if conn.Reconnect == nil {
		conn.Reconnect = util.NewDuration(0)
	}
	if conn.MaxReconnects == nil {
		conn.MaxReconnects = util.NewUint(0)
	}
}

func (c *Config) validate() error {
	if err := validateDriver(c.Connection.Driver); err != nil {
		return err
	}
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}

	return validateLogFile(&c.Logging)
}
