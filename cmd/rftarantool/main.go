package main

import (
	"context"
	"fmt"
	"io"
	"log/syslog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shmel1k/rftarantool/internal/config"
	"github.com/shmel1k/rftarantool/internal/library"
	"github.com/shmel1k/rftarantool/internal/rfhttp"
	"github.com/shmel1k/rftarantool/internal/tarantool"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	configPath = flag.StringP("config", "c", "", "Config file path")
	addr       = flag.String("addr", "", "Address to listen on, overrides server.addr from the config")
)

func main() {
	flag.Parse()
	cfg, err := config.Setup(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed to read config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := initLogger(cfg)

	dialer, err := tarantool.NewDialer(*cfg.Connection.Driver)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init tarantool driver")
	}

	lib := library.New(dialer, cfg.Connection)
	lib.SetLogger(logger)

	// stop_remote_server asks the main goroutine to shut down.
	stopRequested := make(chan struct{}, 1)
	var stop func()
	if *cfg.Server.AllowStop {
		stop = func() {
			select {
			case stopRequested <- struct{}{}:
			default:
			}
		}
	}

	server := initHTTPServer(cfg, logger, lib, stop)

	logger.Info().Msgf("Starting rftarantool %s, commit %s, built at %s", version, commit, buildDate)
	logger.Info().Msgf("Using tarantool driver '%s'", *cfg.Connection.Driver)

	go func() {
		logger.Info().Msgf("Listening on %s", cfg.Server.Addr)

		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to listen HTTP server")
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		logger.Info().Msgf("Received system signal: %s. Shutting down rftarantool", sig)
	case <-stopRequested:
		logger.Info().Msg("Stop is requested by the test runner. Shutting down rftarantool")
		// Let the stop_remote_server response reach the client.
		time.Sleep(100 * time.Millisecond)
	}

	lib.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		logger.Err(err).Msg("Failed to shutting down the HTTP server gracefully")
	}
}

func initLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	loggingCfg := cfg.Logging

	logLevel, err := zerolog.ParseLevel(loggingCfg.Level)
	if err != nil {
		log.Warn().Msgf("Unknown Level String: '%s', defaulting to DebugLevel", loggingCfg.Level)
		logLevel = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	writers := make([]io.Writer, 0, 1)
	writers = append(writers, os.Stdout)

	if loggingCfg.SysLogEnabled {
		w, err := syslog.New(syslog.LOG_INFO, "rftarantool")
		if err != nil {
			log.Warn().Err(err).Msg("Unable to connect to the system log daemon")
		} else {
			writers = append(writers, zerolog.SyslogLevelWriter(w))
		}
	}

	if loggingCfg.FileLoggingEnabled {
		w, err := newRollingLogFile(&loggingCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Unable to init file logger")
		} else {
			writers = append(writers, w)
		}
	}

	var baseLogger zerolog.Logger
	if len(writers) == 1 {
		baseLogger = zerolog.New(writers[0])
	} else {
		baseLogger = zerolog.New(zerolog.MultiLevelWriter(writers...))
	}

	return baseLogger.Level(logLevel).With().Timestamp().Logger()
}

func newRollingLogFile(cfg *config.Logging) (io.Writer, error) {
	dir := path.Dir(cfg.Filename)
	if unix.Access(dir, unix.W_OK) != nil {
		return nil, fmt.Errorf("no permissions to write logs to dir: %s", dir)
	}

	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxBackups: cfg.MaxBackups,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
	}, nil
}

func initHTTPServer(cfg *config.Config, logger zerolog.Logger, lib *library.Library, stop func()) *http.Server {
	router := mux.NewRouter()
	rfhttp.RegisterRemoteHandlers(router, rfhttp.NewRemoteHandler(logger, lib, library.Doc, stop))
	rfhttp.RegisterDebugHandlers(router, version, commit, buildDate)

	// Keywords block on tarantool requests, so the write
	// timeout covers the longest request the client allows.
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5*time.Second + *cfg.Connection.ConnectTimeout + *cfg.Connection.RequestTimeout,
	}
}
