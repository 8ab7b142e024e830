// Package backend picks the storage substrate for the process: the
// relational engine when it can be opened, the key-value emulation otherwise.
package backend

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"eldercare/internal/config"
	"eldercare/internal/database"
	"eldercare/internal/emulated"
	"eldercare/internal/kv"
	"eldercare/internal/storage"
)

// Options configures a Selector.
type Options struct {
	Config *config.Config
	// Store backs the emulated backend. Nil means no persistence is available.
	Store  kv.Store
	Logger *zap.Logger
}

// Selector decides once which backend serves the data model.
type Selector struct {
	opts Options

	once   sync.Once
	handle *storage.Dispatcher

	engineAvailable func(cfg *config.Config) bool
	openEngine      func(ctx context.Context, cfg *config.Config) (storage.Backend, error)
}

// NewSelector creates a selector. Nothing is opened until Select.
func NewSelector(opts Options) *Selector {
	if opts.Config == nil {
		opts.Config = &config.Config{Backend: config.BackendAuto, DatabaseType: "sqlite"}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Selector{
		opts:            opts,
		engineAvailable: engineAvailable,
		openEngine:      openEngine,
	}
}

// Select returns the storage handle, choosing the backend on the first call.
// It never fails: when the engine cannot be used the emulated backend is
// returned instead. The handle still needs InitSchema before use.
func (s *Selector) Select(ctx context.Context) *storage.Dispatcher {
	s.once.Do(func() {
		s.handle = storage.NewDispatcher(s.choose(ctx), s.opts.Logger)
	})
	return s.handle
}

func (s *Selector) choose(ctx context.Context) storage.Backend {
	cfg := s.opts.Config
	log := s.opts.Logger

	switch cfg.Backend {
	case config.BackendEmulated:
		log.Info("using emulated backend", zap.String("reason", "configured"))
		return s.emulated()
	case config.BackendAuto, config.BackendEngine, "":
	default:
		log.Warn("unknown backend mode, using auto", zap.String("backend", cfg.Backend))
	}

	if !s.engineAvailable(cfg) {
		log.Warn("engine backend unavailable, falling back to emulated backend",
			zap.String("db_type", cfg.DatabaseType))
		return s.emulated()
	}

	engine, err := s.openEngine(ctx, cfg)
	if err != nil {
		log.Warn("failed to open engine backend, falling back to emulated backend",
			zap.String("db_type", cfg.DatabaseType), zap.Error(err))
		return s.emulated()
	}
	log.Info("using engine backend", zap.String("db_type", cfg.DatabaseType))
	return engine
}

func (s *Selector) emulated() storage.Backend {
	if s.opts.Store == nil {
		s.opts.Logger.Warn("no key-value store configured, storage calls will fail")
		return emulated.New(kv.Unavailable{Reason: errNoStore})
	}
	return emulated.New(s.opts.Store)
}

// engineAvailable reports whether the configured engine is compiled in.
func engineAvailable(cfg *config.Config) bool {
	dialect, _, err := database.DialectFor(cfg)
	if err != nil {
		return false
	}
	if dialect.Name() == "sqlite" {
		return database.SQLiteAvailable
	}
	return true
}

func openEngine(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return database.NewEngine(db), nil
}

var errNoStore = errors.New("no key-value store configured")
