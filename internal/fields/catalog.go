package fields

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mscx/internal/fileutil"
	"mscx/internal/score"
	"mscx/internal/textutil"
)

// Verbosity tiers used to filter diffs and listings.
const (
	VerbosityCombined = 1
	VerbositySource   = 2
	VerbosityReadOnly = 3

	// DefaultVerbosity hides read-only fields.
	DefaultVerbosity = VerbositySource
)

type getter func(s *score.Score) (string, bool)

type setter func(s *score.Score, value string) error

// Field describes one named value of a score.
type Field struct {
	Name        string
	Path        string
	ReadOnly    bool
	Verbosity   int
	Description string

	get getter
	set setter
	// sources lists the concrete fields behind a combined field.
	sources []string
}

// Sources returns the concrete fields a combined field resolves from.
func (f Field) Sources() []string {
	return append([]string(nil), f.sources...)
}

// Combined reports whether the field is resolved from other fields.
func (f Field) Combined() bool {
	return len(f.sources) > 0
}

type metaTagDef struct {
	tag  string
	name string
}

var metaTagDefs = []metaTagDef{
	{"arranger", "arranger"},
	{"audioComUrl", "audio_com_url"},
	{"composer", "composer"},
	{"copyright", "copyright"},
	{"creationDate", "creation_date"},
	{"lyricist", "lyricist"},
	{"movementNumber", "movement_number"},
	{"movementTitle", "movement_title"},
	{"mscVersion", "msc_version"},
	{"platform", "platform"},
	{"poet", "poet"},
	{"source", "source"},
	{"sourceRevisionId", "source_revision_id"},
	{"subtitle", "subtitle"},
	{"translator", "translator"},
	{"workNumber", "work_number"},
	{"workTitle", "work_title"},
}

var vboxDefs = []struct {
	kind score.VBoxText
	name string
}{
	{score.VBoxTitle, "title"},
	{score.VBoxSubtitle, "subtitle"},
	{score.VBoxComposer, "composer"},
	{score.VBoxLyricist, "lyricist"},
}

var combinedDefs = []struct {
	name        string
	description string
	sources     []string
}{
	{"title", "The title, taken from the header frame, the work title, the movement title or the file name", []string{"vbox_title", "metatag_work_title", "metatag_movement_title", "readonly_basename"}},
	{"subtitle", "The subtitle, taken from the header frame, the subtitle tag or the movement title", []string{"vbox_subtitle", "metatag_subtitle", "metatag_movement_title"}},
	{"composer", "The composer, taken from the header frame or the composer tag", []string{"vbox_composer", "metatag_composer"}},
	{"lyricist", "The lyricist, taken from the header frame or the lyricist tag", []string{"vbox_lyricist", "metatag_lyricist"}},
}

var (
	catalog = buildCatalog()
	index   = buildIndex(catalog)
)

func buildCatalog() []Field {
	var out []Field
	for _, def := range combinedDefs {
		out = append(out, Field{
			Name:        def.name,
			Path:        "meta." + def.name,
			Verbosity:   VerbosityCombined,
			Description: def.description,
			sources:     def.sources,
		})
	}
	for _, def := range vboxDefs {
		kind := def.kind
		out = append(out, Field{
			Name:        "vbox_" + def.name,
			Path:        "meta.vbox." + def.name,
			Verbosity:   VerbositySource,
			Description: "The " + def.name + " text of the header frame",
			get: func(s *score.Score) (string, bool) {
				return s.VBoxText(kind)
			},
			set: func(s *score.Score, value string) error {
				return s.SetVBoxText(kind, value)
			},
		})
	}
	for _, def := range metaTagDefs {
		tag := def.tag
		out = append(out, Field{
			Name:        "metatag_" + def.name,
			Path:        "meta.metatag." + def.name,
			Verbosity:   VerbositySource,
			Description: "The metaTag " + strconv.Quote(tag),
			get: func(s *score.Score) (string, bool) {
				return s.MetaTag(tag)
			},
			set: func(s *score.Score, value string) error {
				return s.SetMetaTag(tag, value)
			},
		})
	}
	return append(out, readOnlyFields()...)
}

func readOnlyFields() []Field {
	ro := func(name, path, description string, get getter) Field {
		return Field{
			Name:        name,
			Path:        path,
			ReadOnly:    true,
			Verbosity:   VerbosityReadOnly,
			Description: description,
			get:         get,
		}
	}
	return []Field{
		ro("version", "version", "The format version, e.g. 4.20", func(s *score.Score) (string, bool) {
			return s.VersionText(), s.Parsed()
		}),
		ro("version_major", "version_major", "The major format version, e.g. 4", func(s *score.Score) (string, bool) {
			if !s.Parsed() {
				return "", false
			}
			return strconv.Itoa(s.VersionMajor), true
		}),
		ro("program_version", "meta.program_version", "The version of the program that wrote the score", (*score.Score).ProgramVersion),
		ro("program_revision", "meta.program_revision", "The revision of the program that wrote the score", (*score.Score).ProgramRevision),
		ro("readonly_abspath", "path.abspath", "The absolute path of the score", func(s *score.Score) (string, bool) {
			return s.Path, true
		}),
		ro("readonly_basename", "path.basename", "The file name without extension", func(s *score.Score) (string, bool) {
			name := filepath.Base(s.Path)
			return strings.TrimSuffix(name, filepath.Ext(name)), true
		}),
		ro("readonly_dirname", "path.dirname", "The directory holding the score", func(s *score.Score) (string, bool) {
			return filepath.Dir(s.Path), true
		}),
		ro("readonly_extension", "path.extension", "The file extension without the dot", func(s *score.Score) (string, bool) {
			return strings.TrimPrefix(filepath.Ext(s.Path), "."), true
		}),
		ro("readonly_filename", "path.filename", "The file name with extension", func(s *score.Score) (string, bool) {
			return filepath.Base(s.Path), true
		}),
		ro("readonly_relpath", "path.relpath", "The path relative to the working directory", func(s *score.Score) (string, bool) {
			return relPath(s.Path), true
		}),
		ro("readonly_relpath_backup", "path.relpath_backup", "The relative path of the backup copy", func(s *score.Score) (string, bool) {
			return fileutil.BackupPath(relPath(s.Path)), true
		}),
	}
}

func relPath(abs string) string {
	wd, err := os.Getwd()
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return abs
	}
	return rel
}

func buildIndex(fields []Field) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return idx
}

// All returns the catalog in display order.
func All() []Field {
	return append([]Field(nil), catalog...)
}

// Names returns every field name in display order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, f := range catalog {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name, ignoring case.
func Lookup(name string) (Field, bool) {
	if i, ok := index[name]; ok {
		return catalog[i], true
	}
	if i, ok := index[textutil.Fold(name)]; ok {
		return catalog[i], true
	}
	return Field{}, false
}
