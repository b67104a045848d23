package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ManadaHerath/realtime-grid-client/internal/api"
	"github.com/ManadaHerath/realtime-grid-client/internal/config"
	"github.com/ManadaHerath/realtime-grid-client/internal/diagnostics"
	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/session"
	"github.com/ManadaHerath/realtime-grid-client/internal/store"
	"github.com/ManadaHerath/realtime-grid-client/internal/surface"
	"github.com/ManadaHerath/realtime-grid-client/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "grid-client",
		Usage: "play the territory grid game in a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "server", Usage: "game server websocket URL"},
			&cli.StringFlag{Name: "api-addr", Usage: "inspection API listen address, empty to disable"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for snapshots and diagnostics"},
			&cli.StringFlag{Name: "session", Usage: "session id to resume"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.StringFlag{Name: "log-file", Usage: "log file used while the terminal UI is running"},
			&cli.BoolFlag{Name: "headless", Usage: "run without the terminal UI"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			applyFlags(c, &cfg)
			return run(c.Context, cfg)
		},
	}
}

// applyFlags overrides cfg with every flag given on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("server") {
		cfg.ServerURL = c.String("server")
	}
	if c.IsSet("api-addr") {
		cfg.APIAddr = c.String("api-addr")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}
	if c.IsSet("session") {
		cfg.SessionID = c.String("session")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
}

// setupLogging points the global logger at stderr for headless runs and at
// the log file otherwise, so the terminal UI is never written over.
func setupLogging(cfg config.Config) (func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Headless {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { _ = f.Close() }, nil
}

// sessionOptions wires snapshots and published diagnostics only when Redis
// is configured; a process-local store could never be read after a restart.
func sessionOptions(cfg config.Config, rdb *redis.Client, obs grid.Observer) []session.Option {
	opts := []session.Option{session.WithID(cfg.SessionID), session.WithObserver(obs)}
	if rdb == nil {
		return append(opts, session.WithReporter(diagnostics.LogReporter{}))
	}
	return append(opts,
		session.WithStore(store.NewRedisStore(rdb)),
		session.WithReporter(diagnostics.Multi{diagnostics.LogReporter{}, diagnostics.NewRedisReporter(rdb)}),
	)
}

func run(ctx context.Context, cfg config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis")
	}

	conn, err := transport.Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("server", cfg.ServerURL).Msg("connected")

	mem := surface.NewMemory()
	mirror := surface.NewMirror(mem)
	sess := session.New(conn, sessionOptions(cfg, rdb, mirror)...)
	log.Info().Str("session", sess.ID).Msg("session started")

	// only a resumed session has anything to restore
	if cfg.SessionID != "" {
		switch err := sess.Restore(ctx); {
		case err == nil:
			log.Info().Str("session", sess.ID).Msg("restored snapshot")
		case !errors.Is(err, store.ErrSnapshotNotFound):
			log.Warn().Err(err).Str("session", sess.ID).Msg("could not restore snapshot")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.APIAddr != "" {
		srv := &http.Server{Addr: cfg.APIAddr, Handler: api.NewAPI(sess, rdb).Router()}
		go func() {
			log.Info().Str("addr", cfg.APIAddr).Msg("inspection api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("inspection api stopped")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- conn.ReadLoop(ctx, sess.HandleMessage)
		cancel()
	}()

	if !cfg.Headless {
		if err := surface.NewTerminal(mem, mirror).Run(ctx, sess); err != nil {
			return err
		}
		cancel()
	}

	<-ctx.Done()
	select {
	case err := <-readErr:
		return err
	case <-time.After(time.Second):
		return nil
	}
}
