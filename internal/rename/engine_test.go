package rename

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mscx/internal/testsupport"
)

type recorder struct {
	results []Result
}

func (r *recorder) Record(_ context.Context, result Result) error {
	r.results = append(r.results, result)
	return nil
}

type countingLocker struct {
	locks, unlocks int
}

func (l *countingLocker) Lock() error   { l.locks++; return nil }
func (l *countingLocker) Unlock() error { l.unlocks++; return nil }

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, []byte(content))
	return path
}

func TestNormalizePipeline(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		input string
		want  string
	}{
		{"plain", Options{}, "  Foo / Bar  ", "Foo - Bar"},
		{"alphanum", Options{Alphanum: true}, "Foo! (Bar)?", "Foo Bar"},
		{"ascii", Options{ASCII: true}, "Éléonore Ärger", "Eleonore Arger"},
		{"no whitespace", Options{NoWhitespace: true}, "a  b\tc", "a_b_c"},
		{"combined", Options{Alphanum: true, ASCII: true, NoWhitespace: true}, "Für Elise!", "Fur_Elise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.opts).Normalize(tt.input))
		})
	}
}

func TestDestinationKeepsExtensionAndSubdirectories(t *testing.T) {
	target := t.TempDir()
	e := New(Options{Template: "$composer/$title", TargetDir: target})

	dest, err := e.Destination("/tmp/in.mscz", map[string]string{"title": "A/B", "composer": "Bach"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "Bach", "A-B.mscz"), dest)
}

func TestDestinationEmptyTemplate(t *testing.T) {
	e := New(Options{Template: "$title", TargetDir: t.TempDir()})
	_, err := e.Destination("in.mscx", map[string]string{"title": "  "})
	require.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestRenameMovesFile(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	rec := &recorder{}
	lock := &countingLocker{}
	e := New(Options{Template: "$title", TargetDir: target}, WithRecorder(rec), WithLocker(lock))

	source := writeSource(t, src, "in.mscx", "content")
	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Song"})
	require.NoError(t, err)

	assert.Equal(t, StatusRenamed, result.Status)
	assert.Equal(t, filepath.Join(target, "Song.mscx"), result.Destination)
	assert.NoFileExists(t, source)
	assert.FileExists(t, result.Destination)
	assert.NotEmpty(t, result.Checksum)
	require.Len(t, rec.results, 1)
	assert.Equal(t, result, rec.results[0])
	assert.Equal(t, 1, lock.locks)
	assert.Equal(t, 1, lock.unlocks)
}

func TestRenameIdenticalContentIsAlreadyPresent(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	e := New(Options{Template: "$title", TargetDir: target})

	writeSource(t, target, "Song.mscx", "same")
	source := writeSource(t, src, "in.mscx", "same")

	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Song"})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyPresent, result.Status)
	assert.Equal(t, filepath.Join(target, "Song.mscx"), result.Destination)
	assert.NoFileExists(t, filepath.Join(target, "Song1.mscx"))
	assert.FileExists(t, source)
}

func TestRenameDifferentContentGetsNumberedName(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	e := New(Options{Template: "$title", TargetDir: target})

	first := writeSource(t, src, "a.mscx", "one")
	second := writeSource(t, src, "b.mscx", "two")
	third := writeSource(t, src, "c.mscx", "three")

	snapshot := map[string]string{"title": "Song"}
	r1, err := e.Rename(context.Background(), first, snapshot)
	require.NoError(t, err)
	r2, err := e.Rename(context.Background(), second, snapshot)
	require.NoError(t, err)
	r3, err := e.Rename(context.Background(), third, snapshot)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(target, "Song.mscx"), r1.Destination)
	assert.Equal(t, filepath.Join(target, "Song1.mscx"), r2.Destination)
	assert.Equal(t, filepath.Join(target, "Song2.mscx"), r3.Destination)

	got, err := os.ReadFile(r2.Destination)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestRenameSkipsWhenRequiredFieldEmpty(t *testing.T) {
	src := t.TempDir()
	rec := &recorder{}
	e := New(Options{Template: "$title", TargetDir: t.TempDir(), SkipIfEmpty: []string{"title", "composer"}}, WithRecorder(rec))
	source := writeSource(t, src, "in.mscx", "x")

	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Song", "composer": ""})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, []string{"composer"}, result.Missing)
	assert.FileExists(t, source)
	require.Len(t, rec.results, 1)
}

func TestRenameDryRunLeavesSource(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	e := New(Options{Template: "$title", TargetDir: target, DryRun: true})
	source := writeSource(t, src, "in.mscx", "x")

	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Song"})
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, result.Status)
	assert.FileExists(t, source)
	assert.NoFileExists(t, result.Destination)
}

func TestRenameToSelfIsUnchanged(t *testing.T) {
	dir := t.TempDir()
	e := New(Options{Template: "$title", TargetDir: dir})
	source := writeSource(t, dir, "Song.mscx", "x")

	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Song"})
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, result.Status)
	assert.FileExists(t, source)
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "/x/a.mscz", Candidate("/x/a.mscz", 0))
	assert.Equal(t, "/x/a3.mscz", Candidate("/x/a.mscz", 3))
}

func TestFromConfigUsesFileLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRenameTemplate("$title"))
	cfg.Rename.Lock = true
	cfg.Rename.TargetDir = t.TempDir()

	e, err := FromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, e.locker)

	source := writeSource(t, t.TempDir(), "in.mscx", "x")
	result, err := e.Rename(context.Background(), source, map[string]string{"title": "Locked"})
	require.NoError(t, err)
	assert.Equal(t, StatusRenamed, result.Status)
	assert.FileExists(t, cfg.RenameLockPath())
}

func TestFromConfigAppliesOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRenameTemplate("$title"))
	cfg.Rename.Lock = true

	opts := OptionsFromConfig(cfg)
	opts.Template = "$composer - $title"
	opts.TargetDir = t.TempDir()
	e, err := FromConfig(cfg, WithOptions(opts))
	require.NoError(t, err)
	require.NotNil(t, e.locker)

	dest, err := e.Destination("/in/song.mscx", map[string]string{"title": "Air", "composer": "Bach"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.TargetDir, "Bach - Air.mscx"), dest)
}
