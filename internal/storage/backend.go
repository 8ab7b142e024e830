// Package storage defines the logical read/write operations of the eldercare
// data model and the dispatcher that runs them against the active backend.
//
// Two backends implement Backend: the relational engine (internal/database)
// and the key-value emulation (internal/emulated). For identical stored data
// both must return the same records for every Query.
package storage

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"eldercare/internal/errs"
)

// BackendKind tags which substrate serves the data model.
type BackendKind string

const (
	Engine   BackendKind = "engine"
	Emulated BackendKind = "emulated"
)

// Backend is implemented by each storage substrate.
type Backend interface {
	Kind() BackendKind
	// InitSchema idempotently creates the five collections.
	InitSchema(ctx context.Context) error
	// Query runs a read operation and returns records projected on q.Columns().
	Query(ctx context.Context, q Query) ([]Record, error)
	// Mutate runs a write operation.
	Mutate(ctx context.Context, m Mutation) (Result, error)
	Close() error
}

// Dispatcher routes operations to one backend and refuses them until the
// schema has been initialized.
type Dispatcher struct {
	backend Backend
	logger  *zap.Logger
	ready   atomic.Bool
}

// NewDispatcher wraps a backend.
func NewDispatcher(backend Backend, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{backend: backend, logger: logger}
}

// Kind reports the active backend.
func (d *Dispatcher) Kind() BackendKind {
	return d.backend.Kind()
}

// InitSchema initializes the backend schema and enables the dispatcher.
func (d *Dispatcher) InitSchema(ctx context.Context) error {
	if err := d.backend.InitSchema(ctx); err != nil {
		d.logger.Error("schema initialization failed",
			zap.String("backend", string(d.backend.Kind())), zap.Error(err))
		return err
	}
	d.ready.Store(true)
	d.logger.Info("schema ready", zap.String("backend", string(d.backend.Kind())))
	return nil
}

// Query runs a read operation.
func (d *Dispatcher) Query(ctx context.Context, q Query) ([]Record, error) {
	if !d.ready.Load() {
		return nil, fmt.Errorf("%s: %w", q.Kind(), errs.ErrBackendUnavailable)
	}
	records, err := d.backend.Query(ctx, q)
	if err != nil {
		d.logger.Debug("query failed", zap.Stringer("op", q.Kind()), zap.Error(err))
		return nil, err
	}
	d.logger.Debug("query", zap.Stringer("op", q.Kind()), zap.Int("rows", len(records)))
	return records, nil
}

// QueryOne returns the first record, or errs.ErrNotFound.
func (d *Dispatcher) QueryOne(ctx context.Context, q Query) (Record, error) {
	records, err := d.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Kind(), errs.ErrNotFound)
	}
	return records[0], nil
}

// Mutate runs a write operation.
func (d *Dispatcher) Mutate(ctx context.Context, m Mutation) (Result, error) {
	if !d.ready.Load() {
		return Result{}, fmt.Errorf("%s: %w", m.Kind(), errs.ErrBackendUnavailable)
	}
	if err := CheckText(m); err != nil {
		return Result{}, err
	}
	res, err := d.backend.Mutate(ctx, m)
	if err != nil {
		d.logger.Debug("mutation failed", zap.Stringer("op", m.Kind()), zap.Error(err))
		return Result{}, err
	}
	d.logger.Debug("mutation",
		zap.Stringer("op", m.Kind()),
		zap.Int64("id", res.GeneratedID),
		zap.Int64("affected", res.Affected),
	)
	return res, nil
}

// Close releases the backend.
func (d *Dispatcher) Close() error {
	d.ready.Store(false)
	return d.backend.Close()
}

// Unsupported builds the error returned for operations a backend cannot map.
func Unsupported(backend BackendKind, op fmt.Stringer) error {
	return fmt.Errorf("%s backend: %s: %w", backend, op, errs.ErrUnsupportedOperation)
}
