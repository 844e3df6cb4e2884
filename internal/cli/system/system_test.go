package system

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitd/internal/backup"
	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
)

func setupTestContext(t *testing.T, initialize bool) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitd.db"))
	if initialize {
		require.NoError(t, store.Init())
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	return &cli.Context{Store: store, Timezone: "UTC", Out: &out}, store, &out
}

func TestMigrateCmd(t *testing.T) {
	ctx, store, out := setupTestContext(t, false)

	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "schema version 1")

	// Running again is a no-op
	out.Reset()
	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "schema version 1")

	require.NoError(t, store.Load())
	current, latest, err := store.SchemaStatus()
	require.NoError(t, err)
	assert.Equal(t, latest, current)
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, store, out := setupTestContext(t, true)

	_, err := backup.NewManager(store.GetConfigPath()).Create()
	require.NoError(t, err)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "All diagnostics passed!")
	assert.NotContains(t, out.String(), "WARNING")
}

func TestDoctorCmd_MissingBackupsIsWarning(t *testing.T) {
	ctx, _, out := setupTestContext(t, true)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Backups present: WARNING")
}

func TestDoctorCmd_MissingDatabase(t *testing.T) {
	ctx, _, out := setupTestContext(t, false)

	err := (&DoctorCmd{}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Database reachable: FAIL")
	assert.Contains(t, out.String(), "Schema version: SKIPPED")
	assert.Contains(t, out.String(), "Orphaned rows: SKIPPED")
}

func TestDoctorCmd_NewerSchemaIsReachable(t *testing.T) {
	ctx, store, out := setupTestContext(t, true)

	_, err := store.GetDB().Exec(`UPDATE schema_version SET version = 99`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.Error(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Database reachable: OK")
	assert.Contains(t, out.String(), "Schema version: FAIL")
	assert.Contains(t, out.String(), "is newer than supported version")
	assert.NotContains(t, out.String(), "Orphaned rows: SKIPPED")
}

func TestDoctorCmd_InvalidTimezone(t *testing.T) {
	ctx, _, out := setupTestContext(t, true)
	ctx.Timezone = "Nowhere/Special"

	require.Error(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Timezone: FAIL")
}

func TestDoctorCmd_OrphanedRows(t *testing.T) {
	ctx, store, out := setupTestContext(t, true)

	id := uuid.NewString()
	require.NoError(t, store.CreateHabit(context.Background(), models.Habit{
		ID:        id,
		Title:     "Run",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WeekDays:  models.NewWeekDays(id, []int{1}),
	}))

	// The store keeps a single connection, so the pragma sticks
	db := store.GetDB()
	_, err := db.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	require.NoError(t, err)

	require.Error(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Orphaned rows: FAIL")
}

func TestServeCmdAddr(t *testing.T) {
	assert.Equal(t, ":3001", (&ServeCmd{Port: 3001}).Addr())
	assert.Equal(t, "127.0.0.1:8080", (&ServeCmd{Host: "127.0.0.1", Port: 8080}).Addr())
	assert.Equal(t, "[::1]:80", (&ServeCmd{Host: "::1", Port: 80}).Addr())
}

func TestServeCmdFailsFast(t *testing.T) {
	t.Run("invalid timezone", func(t *testing.T) {
		ctx, _, _ := setupTestContext(t, false)
		ctx.Timezone = "Nowhere/Special"
		assert.Error(t, (&ServeCmd{Port: 0, Migrate: true}).Run(ctx))
	})

	t.Run("uninitialized store without migrate", func(t *testing.T) {
		ctx, _, _ := setupTestContext(t, false)
		assert.Error(t, (&ServeCmd{Port: 0}).Run(ctx))
	})

	t.Run("port in use", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		port := ln.Addr().(*net.TCPAddr).Port

		ctx, _, _ := setupTestContext(t, false)
		cmd := &ServeCmd{Host: "127.0.0.1", Port: port, Migrate: true, ShutdownTimeout: time.Second}
		assert.Error(t, cmd.Run(ctx))
	})
}
