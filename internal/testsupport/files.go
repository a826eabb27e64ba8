package testsupport

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// Score describes a synthetic score document.
type Score struct {
	// Version is the root version attribute, e.g. "2.06", "3.01" or "4.20".
	Version string
	// Title and friends populate the header VBox. NoVBox omits it.
	Title    string
	Subtitle string
	Composer string
	Lyricist string
	NoVBox   bool
	MetaTags map[string]string
	// Style values are written inline for unpackaged or pre-4 documents and
	// into score_style.mss for packaged version 4 documents.
	Style map[string]string
	// TextStyles adds version 2 <TextStyle> blocks keyed by name.
	TextStyles map[string]map[string]string
}

// DefaultStyle returns an A4 page layout in inches.
func DefaultStyle() map[string]string {
	return map[string]string{
		"pageWidth":            "8.27",
		"pageHeight":           "11.69",
		"pagePrintableWidth":   "7.4826",
		"pageEvenTopMargin":    "0.393701",
		"pageEvenBottomMargin": "0.787402",
		"pageEvenLeftMargin":   "0.393701",
		"pageOddTopMargin":     "0.393701",
		"pageOddBottomMargin":  "0.787402",
		"pageOddLeftMargin":    "0.393701",
		"Spatium":              "1.75",
	}
}

func (s Score) major() string {
	major, _, _ := strings.Cut(s.Version, ".")
	return major
}

func (s Score) programVersion() string {
	switch s.major() {
	case "2":
		return "2.3.2"
	case "3":
		return "3.6.2"
	default:
		return "4.2.0"
	}
}

func (s Score) textStyle(name string) string {
	if s.major() == "4" {
		return strings.ToLower(name)
	}
	return name
}

// XML renders the primary document. inlineStyle controls whether Style is
// embedded under Score.
func (s Score) XML(inlineStyle bool) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<museScore version=\"%s\">\n", s.Version)
	fmt.Fprintf(&b, "  <programVersion>%s</programVersion>\n", s.programVersion())
	b.WriteString("  <programRevision>3543170</programRevision>\n")
	b.WriteString("  <Score>\n")
	if inlineStyle && (len(s.Style) > 0 || len(s.TextStyles) > 0) {
		b.WriteString("    <Style>\n")
		writeStyleValues(&b, s.Style, "      ")
		for _, name := range sortedKeys(s.TextStyles) {
			b.WriteString("      <TextStyle>\n")
			fmt.Fprintf(&b, "        <name>%s</name>\n", name)
			writeStyleValues(&b, s.TextStyles[name], "        ")
			b.WriteString("        </TextStyle>\n")
		}
		b.WriteString("      </Style>\n")
	}
	b.WriteString("    <Division>480</Division>\n")
	for _, name := range sortedKeys(s.MetaTags) {
		fmt.Fprintf(&b, "    <metaTag name=\"%s\">%s</metaTag>\n", name, s.MetaTags[name])
	}
	b.WriteString("    <Part>\n")
	b.WriteString("      <Staff id=\"1\">\n")
	b.WriteString("        <StaffType group=\"pitched\"/>\n")
	b.WriteString("        </Staff>\n")
	b.WriteString("      <trackName>Piano</trackName>\n")
	b.WriteString("      </Part>\n")
	b.WriteString("    <Staff id=\"1\">\n")
	if !s.NoVBox {
		b.WriteString("      <VBox>\n")
		b.WriteString("        <height>10</height>\n")
		for _, entry := range [][2]string{
			{"Title", s.Title},
			{"Subtitle", s.Subtitle},
			{"Composer", s.Composer},
			{"Lyricist", s.Lyricist},
		} {
			if entry[1] == "" {
				continue
			}
			b.WriteString("        <Text>\n")
			fmt.Fprintf(&b, "          <style>%s</style>\n", s.textStyle(entry[0]))
			fmt.Fprintf(&b, "          <text>%s</text>\n", entry[1])
			b.WriteString("          </Text>\n")
		}
		b.WriteString("        </VBox>\n")
	}
	b.WriteString("      <Measure>\n")
	b.WriteString("        <voice>\n")
	b.WriteString("          <Rest>\n")
	b.WriteString("            <durationType>measure</durationType>\n")
	b.WriteString("            <duration>4/4</duration>\n")
	b.WriteString("            </Rest>\n")
	b.WriteString("          </voice>\n")
	b.WriteString("        </Measure>\n")
	b.WriteString("      </Staff>\n")
	b.WriteString("    </Score>\n")
	b.WriteString("  </museScore>\n")
	return b.String()
}

// StyleXML renders a standalone .mss style document.
func (s Score) StyleXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<museScore version=\"%s\">\n", s.Version)
	b.WriteString("  <Style>\n")
	writeStyleValues(&b, s.Style, "    ")
	b.WriteString("    </Style>\n")
	b.WriteString("  </museScore>\n")
	return b.String()
}

func writeStyleValues(b *strings.Builder, values map[string]string, indent string) {
	for _, key := range sortedKeys(values) {
		fmt.Fprintf(b, "%s<%s>%s</%s>\n", indent, key, values[key], key)
	}
}

// WriteScore writes an unpackaged .mscx document into dir.
func WriteScore(t testing.TB, dir, name string, score Score) string {
	t.Helper()
	target := filepath.Join(dir, name)
	writeBytes(t, target, []byte(score.XML(true)))
	return target
}

// WriteBundle writes a packaged .mscz document into dir. Version 4 bundles
// carry their style in score_style.mss; older ones embed it.
func WriteBundle(t testing.TB, dir, name string, score Score) string {
	t.Helper()
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	primary := stem + ".mscx"
	external := score.major() == "4"

	members := map[string][]byte{
		primary:                    []byte(score.XML(!external)),
		"META-INF/container.xml":   []byte(Manifest(primary, "Thumbnails/thumbnail.png")),
		"Thumbnails/thumbnail.png": {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	}
	if external {
		members["score_style.mss"] = []byte(score.StyleXML())
		members["audiosettings.json"] = []byte(`{"activeSoundFlags":{}}` + "\n")
		members["viewsettings.json"] = []byte(`{"notation":{"viewMode":"page"}}` + "\n")
	}
	target := filepath.Join(dir, name)
	WriteZip(t, target, members)
	return target
}

// Manifest renders META-INF/container.xml listing rootFiles.
func Manifest(rootFiles ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<container>\n  <rootfiles>\n")
	for _, rf := range rootFiles {
		fmt.Fprintf(&b, "    <rootfile full-path=\"%s\"/>\n", rf)
	}
	b.WriteString("    </rootfiles>\n  </container>\n")
	return b.String()
}

// WriteZip packs members into a zip archive at path using a fixed timestamp.
func WriteZip(t testing.TB, path string, members map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	stamp := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for _, name := range sortedKeys(members) {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: stamp})
		if err != nil {
			t.Fatalf("zip header %s: %v", name, err)
		}
		if _, err := w.Write(members[name]); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}

// ReadZip returns every member of the archive at path.
func ReadZip(t testing.TB, path string) map[string][]byte {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip %s: %v", path, err)
	}
	defer reader.Close()

	out := make(map[string][]byte, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", file.Name, err)
		}
		out[file.Name] = data
	}
	return out
}

// WriteFile stores content at path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()
	writeBytes(t, path, content)
}

func writeBytes(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
