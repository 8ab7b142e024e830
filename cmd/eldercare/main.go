package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eldercare/internal/backend"
	"eldercare/internal/config"
	"eldercare/internal/errs"
	"eldercare/internal/kv"
	"eldercare/internal/security"
	"eldercare/internal/service"
	"eldercare/internal/session"
	"eldercare/internal/storage"
)

// Buckets of the bbolt file
const (
	dataBucket    = "data"
	sessionBucket = "session"
)

func main() {
	debug := flag.Bool("debug", false, "Enable development logging")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logger, err := newLogger(cfg.LogLevel, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer a.close()

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", name, describe(err))
		stop()
		a.close()
		os.Exit(1)
	}
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// describe turns service errors into messages for the terminal.
func describe(err error) string {
	var ve errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, errs.ErrAuthentication):
		return "invalid credentials"
	case errors.Is(err, errs.ErrConflict):
		return "already exists: " + err.Error()
	case errors.Is(err, errs.ErrNotFound):
		return "not found: " + err.Error()
	case errors.Is(err, errs.ErrBackendUnavailable):
		return "storage is unavailable: " + err.Error()
	default:
		return err.Error()
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: eldercare [-debug] <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run 'eldercare <command> -h' for the flags of a command.")
}

// app wires the services for one CLI invocation.
type app struct {
	logger *zap.Logger
	kvFile *kv.BoltDB
	store  *storage.Dispatcher
	auth   *service.AuthService
	elders *service.ElderService
	links  *service.LinkService
	closed bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{logger: logger}

	var dataStore, sessionStore kv.Store
	kvFile, err := kv.OpenBolt(cfg.KVPath)
	if err != nil {
		logger.Warn("key-value file unavailable", zap.String("path", cfg.KVPath), zap.Error(err))
		sessionStore = kv.Unavailable{Reason: err}
	} else {
		a.kvFile = kvFile
		dataStore = kvFile.Bucket(dataBucket)
		sessionStore = kvFile.Bucket(sessionBucket)
	}

	store := backend.NewSelector(backend.Options{
		Config: cfg,
		Store:  dataStore,
		Logger: logger,
	}).Select(ctx)
	a.store = store
	if err := store.InitSchema(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	mailer, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	sessions := session.NewTokenStore(sessionStore, cfg.SessionSecret, cfg.SessionDuration)
	a.auth = service.NewAuthService(store, security.NewBcryptHasher(cfg.BcryptCost), sessions, logger)
	a.elders = service.NewElderService(store, logger)
	a.links = service.NewLinkService(store, mailer, logger)
	return a, nil
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	if a.kvFile != nil {
		if err := a.kvFile.Close(); err != nil {
			a.logger.Warn("failed to close key-value file", zap.Error(err))
		}
	}
}
