package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mscx/internal/logging"
	"mscx/internal/rename"
	"mscx/internal/testsupport"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	run := store.WithRunID("run-1")

	require.NoError(t, run.Record(ctx, rename.Result{Source: "/a.mscx", Destination: "/out/A.mscx", Checksum: "aa", Status: rename.StatusRenamed}))
	require.NoError(t, run.Record(ctx, rename.Result{Source: "/b.mscx", Status: rename.StatusSkipped}))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/b.mscx", entries[0].Source)
	assert.Equal(t, rename.StatusSkipped, entries[0].Status)
	assert.Equal(t, "/out/A.mscx", entries[1].Destination)
	assert.Equal(t, "run-1", entries[1].RunID)
	assert.WithinDuration(t, time.Now(), entries[1].CreatedAt, time.Minute)

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRunIDFromContext(t *testing.T) {
	store := openStore(t)
	ctx := logging.WithRunID(context.Background(), "ctx-run")

	require.NoError(t, store.Record(ctx, rename.Result{Source: "/a.mscx", Status: rename.StatusDryRun}))

	entries, err := store.Run(context.Background(), "ctx-run")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rename.StatusDryRun, entries[0].Status)
}

func TestFindByDestination(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, rename.Result{Source: "/a.mscx", Destination: "/out/A.mscx", Status: rename.StatusRenamed}))

	entry, err := store.FindByDestination(ctx, "/out/A.mscx")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "/a.mscx", entry.Source)

	missing, err := store.FindByDestination(ctx, "/nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	store, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), rename.Result{Source: "/a.mscx", Status: rename.StatusRenamed}))
	require.NoError(t, store.Close())

	reopened, err := OpenPath(path)
	require.NoError(t, err)
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenPath(path)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestEngineRecordsIntoJournal(t *testing.T) {
	store := openStore(t)
	target := t.TempDir()
	engine := rename.New(rename.Options{Template: "$title", TargetDir: target}, rename.WithRecorder(store.WithRunID("r")))

	source := filepath.Join(t.TempDir(), "in.mscx")
	testsupport.WriteFile(t, source, []byte("x"))

	result, err := engine.Rename(context.Background(), source, map[string]string{"title": "Song"})
	require.NoError(t, err)

	entries, err := store.Run(context.Background(), "r")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.Destination, entries[0].Destination)
	assert.Equal(t, result.Checksum, entries[0].Checksum)
}
