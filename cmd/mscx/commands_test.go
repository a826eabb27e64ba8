package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mscx/internal/fields"
	"mscx/internal/score"
	"mscx/internal/testsupport"
)

func readField(t *testing.T, path, name string) string {
	t.Helper()
	sc, err := score.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer sc.Close()
	value, err := fields.New(sc).Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return value
}

func TestMetaSetReportsChanges(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Old", Composer: "Bach"})

	out, _, err := runCLI(t, []string{"meta", "--set", "title=$composer: New", path}, env.configPath)
	if err != nil {
		t.Fatalf("meta --set: %v", err)
	}
	requireContains(t, out, path)
	requireContains(t, out, `title: "Old" -> "Bach: New"`)
	if got := readField(t, path, "title"); got != "Bach: New" {
		t.Fatalf("title = %q", got)
	}
}

func TestMetaDryRunKeepsFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Old"})

	out, _, err := runCLI(t, []string{"--dry-run", "--diff", "meta", "--set", "title=New", path}, env.configPath)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	requireContains(t, out, "+++ b/song.mscx")
	if got := readField(t, path, "title"); got != "Old" {
		t.Fatalf("dry run changed title to %q", got)
	}
}

func TestMetaDistributeAndClean(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "4.20", Title: "Air - Bach"})

	if _, _, err := runCLI(t, []string{"meta", "--distribute-from", "title", "--distribute-format", "$title - $composer", path}, env.configPath); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if got := readField(t, path, "composer"); got != "Bach" {
		t.Fatalf("composer = %q", got)
	}
	if _, _, err := runCLI(t, []string{"meta", "--clean", "composer", path}, env.configPath); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if got := readField(t, path, "composer"); got != "" {
		t.Fatalf("composer after clean = %q", got)
	}
}

func TestMetaRejectsUnknownField(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01"})

	if _, _, err := runCLI(t, []string{"meta", "--set", "nope=1", path}, env.configPath); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestCatchErrorsContinues(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := filepath.Join(env.scoreDir, "a.mscx")
	testsupport.WriteFile(t, broken, []byte("<museScore version=\"3.01\"><<"))
	good := testsupport.WriteScore(t, env.scoreDir, "b.mscx", testsupport.Score{Version: "3.01"})

	if _, _, err := runCLI(t, []string{"meta", "--set", "composer=X", env.scoreDir}, env.configPath); err == nil {
		t.Fatal("expected failure without --catch-errors")
	}

	out, _, err := runCLI(t, []string{"--catch-errors", "meta", "--set", "composer=X", env.scoreDir}, env.configPath)
	if err != nil {
		t.Fatalf("meta --catch-errors: %v", err)
	}
	requireContains(t, out, "1 of 2 files failed")
	if got := readField(t, good, "composer"); got != "X" {
		t.Fatalf("composer = %q", got)
	}
}

func TestStyleSetAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01", Style: testsupport.DefaultStyle()})

	out, _, err := runCLI(t, []string{"style", "--set", "staffDistance=7.5", "--page-size", "letter", "--list", path}, env.configPath)
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	requireContains(t, out, "Spatium: 1.75 mm")
	requireContains(t, out, "staffDistance")
	requireContains(t, out, "7.5")

	sc, err := score.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sc.Close()
	width, height, err := sc.Style().PageSize()
	if err != nil {
		t.Fatalf("page size: %v", err)
	}
	if width != 8.5 || height != 11 {
		t.Fatalf("page size = %vx%v", width, height)
	}
}

func TestStyleTextStyleNeedsVersionTwo(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01"})

	_, _, err := runCLI(t, []string{"style", "--text-style", "Title:size=24", path}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), score.ErrUnsupportedOperation.Error()) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}

func TestRenameCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithJournal())
	target := filepath.Join(testsupport.BaseDir(env.cfg), "out")
	first := testsupport.WriteScore(t, env.scoreDir, "a.mscx", testsupport.Score{Version: "3.01", Title: "Für Elise", Composer: "Beethoven"})

	out, _, err := runCLI(t, []string{"rename", "--template", "$composer/$title", "--target", target, "--ascii", "--no-whitespace", first}, env.configPath)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	dest := filepath.Join(target, "Beethoven", "Fur_Elise.mscx")
	requireContains(t, out, "renamed")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected %s: %v", dest, err)
	}

	out, _, err = runCLI(t, []string{"journal", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode journal: %v", err)
	}
	if len(entries) != 1 || entries[0]["destination"] != dest {
		t.Fatalf("journal entries = %v", entries)
	}
}

func TestRenameSkipIfEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	target := t.TempDir()
	path := testsupport.WriteScore(t, env.scoreDir, "a.mscx", testsupport.Score{Version: "3.01", Title: "T"})

	out, _, err := runCLI(t, []string{"rename", "--target", target, "--skip-if-empty", "composer", path}, env.configPath)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	requireContains(t, out, "skipped")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("source should stay: %v", err)
	}
}

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "4.20", Title: "Air", Composer: "Bach"})

	out, _, err := runCLI(t, []string{"show", path}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Air")
	requireContains(t, out, "vbox_composer")
	requireNotContains(t, out, "readonly_basename")

	out, _, err = runCLI(t, []string{"-v", "show", path}, env.configPath)
	if err != nil {
		t.Fatalf("show -v: %v", err)
	}
	requireContains(t, out, "readonly_basename")
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01", Title: "Air"})

	if _, _, err := runCLI(t, []string{"export", "--format", "yaml", path}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(env.scoreDir, "song.yaml"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(data), "title: Air")

	if _, _, err := runCLI(t, []string{"export", "--format", "xml", path}, env.configPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestFieldsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"fields"}, "")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	requireContains(t, out, "metatag_composer")
	requireContains(t, out, "readonly_basename")
}

func TestJournalEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"journal"}, env.configPath)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	requireContains(t, out, "Journal is empty")
}

func TestDepsReportsStubbedRenderer(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRenderer())
	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "MuseScore")
	requireContains(t, out, "[OK]")
}

func TestRenderUsesConfiguredBinary(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRenderer())
	path := testsupport.WriteScore(t, env.scoreDir, "song.mscx", testsupport.Score{Version: "3.01"})

	if _, _, err := runCLI(t, []string{"--render", "meta", path}, env.configPath); err != nil {
		t.Fatalf("render: %v", err)
	}
}
