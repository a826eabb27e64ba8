package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mscx/internal/fields"
	"mscx/internal/journal"
	"mscx/internal/rename"
	"mscx/internal/score"
	"mscx/internal/testsupport"
)

type renderRecorder struct {
	calls []string
	err   error
}

func (r *renderRecorder) Render(_ context.Context, source, destination string) error {
	r.calls = append(r.calls, source+"->"+destination)
	return r.err
}

func setTitle(value string) Handler {
	return func(_ context.Context, reg *fields.Registry) error {
		return reg.Set("title", value)
	}
}

func TestCollectFilesOrdersAndFilters(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.mscx"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "sub", "a.mscz"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	single := filepath.Join(t.TempDir(), "single.mscx")
	testsupport.WriteFile(t, single, []byte("x"))

	files, err := CollectFiles([]string{single, dir, filepath.Join(dir, "b.mscx")}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "b.mscx"),
		filepath.Join(dir, "sub", "a.mscz"),
	}, files)

	only, err := CollectFiles([]string{dir}, "*.mscz")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "a.mscz")}, only)
}

func TestCollectFilesErrors(t *testing.T) {
	_, err := CollectFiles([]string{filepath.Join(t.TempDir(), "missing")}, "")
	require.Error(t, err)

	_, err = CollectFiles([]string{t.TempDir()}, "[")
	require.Error(t, err)
}

func TestRunAppliesHandlerAndSaves(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Old"})

	var reported []FileResult
	runner := NewRunner(Options{Verbosity: fields.DefaultVerbosity, Diff: true}, WithReporter(func(r FileResult) {
		reported = append(reported, r)
	}))
	summary, err := runner.Run(context.Background(), []string{path}, setTitle("New"))
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, runner.RunID(), summary.RunID)
	assert.Len(t, reported, 1)
	result := summary.Results[0]
	require.NoError(t, result.Err)
	assert.NotEmpty(t, result.Changes)
	assert.Contains(t, result.Diff, "+")

	sc, err := score.Open(path)
	require.NoError(t, err)
	defer sc.Close()
	got, err := fields.New(sc).Get("title")
	require.NoError(t, err)
	assert.Equal(t, "New", got)
}

func TestRunDryRunDoesNotSave(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Old"})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = NewRunner(Options{DryRun: true}).Run(context.Background(), []string{path}, setTitle("New"))
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunStopsOnFirstErrorWithoutTolerance(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "a.mscx")
	testsupport.WriteFile(t, broken, []byte("<museScore version=\"3.01\"><<"))
	good := testsupport.WriteScore(t, dir, "b.mscx", testsupport.Score{Version: "3.01"})

	summary, err := NewRunner(Options{}).Run(context.Background(), []string{broken, good}, nil)
	require.Error(t, err)
	assert.Len(t, summary.Results, 1)
	assert.NotEmpty(t, summary.Results[0].ParseErrors)
}

func TestRunContinuesWhenTolerant(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "a.mscx")
	testsupport.WriteFile(t, broken, []byte("<museScore version=\"3.01\"><<"))
	good := testsupport.WriteScore(t, dir, "b.mscx", testsupport.Score{Version: "3.01"})

	summary, err := NewRunner(Options{ErrorTolerant: true}).Run(context.Background(), []string{broken, good}, setTitle("T"))
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Error(t, summary.Results[0].Err)
	assert.NoError(t, summary.Results[1].Err)
	assert.Equal(t, 1, summary.Failed())
}

func TestRunReportsHandlerErrors(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01"})
	handler := func(_ context.Context, reg *fields.Registry) error {
		return reg.Distribute([]string{"title"}, "$title - $composer")
	}

	summary, err := NewRunner(Options{ErrorTolerant: true}).Run(context.Background(), []string{path}, handler)
	require.NoError(t, err)
	assert.ErrorIs(t, summary.Results[0].Err, fields.ErrUnmatchedPattern)
}

func TestRunRenders(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01"})
	rec := &renderRecorder{}

	_, err := NewRunner(Options{Render: true}, WithRenderer(rec)).Run(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path + "->" + path}, rec.calls)

	rec.err = errors.New("boom")
	_, err = NewRunner(Options{Render: true}, WithRenderer(rec)).Run(context.Background(), []string{path}, nil)
	require.ErrorIs(t, err, score.ErrRender)
}

func TestRunBackupExportAndLogLine(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Hello", Composer: "Me"})
	logFile := filepath.Join(t.TempDir(), "logs", "run.log")

	opts := Options{Backup: true, Export: fields.FormatJSON, LogFile: logFile, LogTemplate: "$title by $composer"}
	summary, err := NewRunner(opts).Run(context.Background(), []string{path, path}, nil)
	require.NoError(t, err)

	result := summary.Results[0]
	assert.Equal(t, filepath.Join(dir, "song_bak.mscx"), result.Backup)
	assert.FileExists(t, result.Backup)
	assert.Equal(t, filepath.Join(dir, "song.json"), result.ExportPath)
	assert.FileExists(t, result.ExportPath)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello by Me", "Hello by Me"}, strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestRunDryRunSkipsBackup(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Hello"})

	summary, err := NewRunner(Options{Backup: true, DryRun: true}).Run(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	assert.Empty(t, summary.Results[0].Backup)
	assert.NoFileExists(t, filepath.Join(dir, "song_bak.mscx"))
}

func TestRunRenamesAndJournals(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRenameTemplate("$composer/$title"), testsupport.WithRenameTarget("out"), testsupport.WithJournal())
	dir := t.TempDir()
	path := testsupport.WriteScore(t, dir, "song.mscx", testsupport.Score{Version: "4.20", Title: "Air", Composer: "Bach"})

	store, err := journal.Open(cfg)
	require.NoError(t, err)
	defer store.Close()
	engine, err := rename.FromConfig(cfg, rename.WithRecorder(store))
	require.NoError(t, err)

	runner := NewRunner(OptionsFromConfig(cfg), WithRenamer(engine), WithRunID("run-42"))
	summary, err := runner.Run(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	result := summary.Results[0]
	require.NotNil(t, result.Rename)
	assert.Equal(t, rename.StatusRenamed, result.Rename.Status)
	assert.Equal(t, filepath.Join(cfg.Rename.TargetDir, "Bach", "Air.mscx"), result.Rename.Destination)
	assert.NoFileExists(t, path)

	entries, err := store.Run(context.Background(), "run-42")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.Rename.Destination, entries[0].Destination)
}
