package databaseaccess

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/stretchr/testify/require"
)

func TestBoltDatabase(t *testing.T) {
	newDB := func(t *testing.T) *BBoltDatabase {
		t.Helper()

		db := &BBoltDatabase{}
		require.NoError(t, db.Init(filepath.Join(t.TempDir(), "recovery.db")))

		t.Cleanup(func() {
			_ = db.Close()
		})

		return db
	}

	t.Run("Init should fail", func(t *testing.T) {
		db := &BBoltDatabase{}
		require.Error(t, db.Init(""))
	})

	t.Run("Get missing", func(t *testing.T) {
		record, err := newDB(t).Get("assetX")
		require.NoError(t, err)
		require.Nil(t, record)
	})

	t.Run("Set Get Delete", func(t *testing.T) {
		db := newDB(t)
		updatedAt := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
		record := &core.RecoveryRecord{
			AssetKey:        "assetX",
			Flow:            core.FlowImport,
			RequestID:       "99",
			SourceSignature: "sigA",
			Status:          core.RecoveryStatusPending,
			UpdatedAt:       updatedAt,
		}

		require.NoError(t, db.Set("assetX", record))

		got, err := db.Get("assetX")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "99", got.RequestID)
		require.Equal(t, "sigA", got.SourceSignature)
		require.Equal(t, core.RecoveryStatusPending, got.Status)
		require.True(t, updatedAt.Equal(got.UpdatedAt))

		require.NoError(t, db.Delete("assetX"))

		got, err = db.Get("assetX")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("Set invalid", func(t *testing.T) {
		db := newDB(t)

		require.Error(t, db.Set("", &core.RecoveryRecord{}))
		require.Error(t, db.Set("assetX", nil))
	})

	t.Run("List newest first", func(t *testing.T) {
		db := newDB(t)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, db.Set("a", &core.RecoveryRecord{AssetKey: "a", UpdatedAt: base}))
		require.NoError(t, db.Set("b", &core.RecoveryRecord{AssetKey: "b", UpdatedAt: base.Add(time.Hour)}))
		require.NoError(t, db.Set("c", &core.RecoveryRecord{AssetKey: "c", UpdatedAt: base.Add(time.Minute)}))

		records, err := db.List()
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, "b", records[0].AssetKey)
		require.Equal(t, "c", records[1].AssetKey)
		require.Equal(t, "a", records[2].AssetKey)
	})

	t.Run("Persists across reopen", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "recovery.db")

		store, err := NewDatabase(filePath)
		require.NoError(t, err)
		require.NoError(t, store.Set("assetX", &core.RecoveryRecord{AssetKey: "assetX", RequestID: "99"}))
		require.NoError(t, store.Close())

		store, err = NewDatabase(filePath)
		require.NoError(t, err)

		defer store.Close()

		got, err := store.Get("assetX")
		require.NoError(t, err)
		require.Equal(t, "99", got.RequestID)
	})
}
