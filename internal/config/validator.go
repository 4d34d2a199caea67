package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shmel1k/rftarantool/internal/tarantool"
)

func validateDriver(v *string) error {
	if v == nil {
		return fmt.Errorf("option 'driver' must not be empty")
	}

	if *v != tarantool.DriverTarantool && *v != tarantool.DriverViciious {
		return fmt.Errorf("option 'driver' has a wrong value: %s", *v)
	}

	return nil
}

func validateLogLevel(v string) error {
	if _, err := zerolog.ParseLevel(v); err != nil {
		return fmt.Errorf("option 'level' has a wrong value: %s", v)
	}

	return nil
}

func validateLogFile(l *Logging) error {
	if l.FileLoggingEnabled && l.Filename == "" {
		return fmt.Errorf("option 'filename' must not be empty when file logging is enabled")
	}

	return nil
}
