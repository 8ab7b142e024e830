//go:build cgo

package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"eldercare/internal/database"
	"eldercare/internal/storage"
)

func init() {
	backends["sqlite"] = func(t *testing.T) storage.Backend {
		db, err := database.Initialize(filepath.Join(t.TempDir(), "eldercare.db"))
		require.NoError(t, err)
		return database.NewEngine(db)
	}
}
