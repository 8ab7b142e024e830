//go:build cgo

package backend

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"eldercare/internal/config"
	"eldercare/internal/database"
	"eldercare/internal/emulated"
	"eldercare/internal/kv"
	"eldercare/internal/storage"
)

func TestEquivalence_EngineAndEmulated(t *testing.T) {
	requireEquivalent(t,
		func(t *testing.T) storage.Backend {
			db, err := database.Initialize(filepath.Join(t.TempDir(), "eldercare.db"))
			require.NoError(t, err)
			return database.NewEngine(db)
		},
		func(t *testing.T) storage.Backend { return emulated.New(kv.NewMemory()) },
	)
}

func TestSelector_OpensSQLite(t *testing.T) {
	cfg := &config.Config{
		Backend:      config.BackendAuto,
		DatabaseType: "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "eldercare.db"),
	}
	d := NewSelector(Options{Config: cfg, Store: kv.NewMemory()}).Select(t.Context())
	t.Cleanup(func() { _ = d.Close() })
	require.Equal(t, storage.Engine, d.Kind())
	require.NoError(t, d.InitSchema(t.Context()))
}
