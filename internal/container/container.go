package container

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Role identifies the purpose of a member inside a packaged score.
type Role string

const (
	RolePrimary       Role = "primary_document"
	RoleStyle         Role = "style_file"
	RoleThumbnail     Role = "thumbnail"
	RoleAudioSettings Role = "audio_settings"
	RoleViewSettings  Role = "view_settings"
)

// ManifestPath is the member listing the root files of the package.
const ManifestPath = "META-INF/container.xml"

// ErrManifest marks packages without a usable primary document.
var ErrManifest = errors.New("invalid container manifest")

// memberEpoch stamps members created after Open.
var memberEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type manifest struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type memberHeader struct {
	method   uint16
	modified time.Time
}

// Container is an extracted package living in a scratch directory.
type Container struct {
	scratch string
	roles   map[Role]string
	headers map[string]memberHeader
}

// Open extracts the package at path into a fresh scratch directory.
func Open(path string) (*Container, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer reader.Close()

	scratch, err := os.MkdirTemp("", "mscx-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	c := &Container{
		scratch: scratch,
		roles:   make(map[Role]string),
		headers: make(map[string]memberHeader),
	}
	if err := c.extract(&reader.Reader); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.classify(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Container) extract(reader *zip.Reader) error {
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target, err := c.memberPath(file.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create member directory: %w", err)
		}
		if err := extractFile(file, target); err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
		c.headers[file.Name] = memberHeader{method: file.Method, modified: file.Modified}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// memberPath maps a member name onto the scratch directory, refusing names
// that would escape it.
func (c *Container) memberPath(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: unsafe member name %q", ErrManifest, name)
	}
	return filepath.Join(c.scratch, filepath.FromSlash(clean)), nil
}

func (c *Container) classify() error {
	members, err := c.Members()
	if err != nil {
		return err
	}
	rootFiles, err := c.readManifest()
	if err != nil {
		return err
	}

	candidates := make([]string, 0, len(rootFiles)+len(members))
	candidates = append(candidates, rootFiles...)
	rest := append([]string(nil), members...)
	sort.SliceStable(rest, func(i, j int) bool {
		di, dj := strings.Count(rest[i], "/"), strings.Count(rest[j], "/")
		if di != dj {
			return di < dj
		}
		return rest[i] < rest[j]
	})
	candidates = append(candidates, rest...)

	for _, name := range candidates {
		role, ok := roleFor(name)
		if !ok {
			continue
		}
		if _, taken := c.roles[role]; taken {
			continue
		}
		target, err := c.memberPath(name)
		if err != nil {
			return err
		}
		if _, err := os.Stat(target); err != nil {
			continue
		}
		c.roles[role] = target
	}
	if _, ok := c.roles[RolePrimary]; !ok {
		return fmt.Errorf("%w: no primary document", ErrManifest)
	}
	return nil
}

func (c *Container) readManifest() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(c.scratch, filepath.FromSlash(ManifestPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	paths := make([]string, 0, len(m.RootFiles))
	for _, rf := range m.RootFiles {
		if p := strings.TrimSpace(rf.FullPath); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func roleFor(name string) (Role, bool) {
	base := strings.ToLower(path.Base(name))
	switch {
	case strings.HasSuffix(base, ".mscx"):
		return RolePrimary, true
	case strings.HasSuffix(base, ".mss"):
		return RoleStyle, true
	case strings.HasSuffix(base, ".png"):
		return RoleThumbnail, true
	case base == "audiosettings.json":
		return RoleAudioSettings, true
	case base == "viewsettings.json":
		return RoleViewSettings, true
	default:
		return "", false
	}
}

// ScratchDir returns the directory holding the extracted members.
func (c *Container) ScratchDir() string { return c.scratch }

// Path returns the absolute scratch path of the member holding role.
func (c *Container) Path(role Role) (string, bool) {
	p, ok := c.roles[role]
	return p, ok
}

// Members lists every regular file in the scratch directory as sorted,
// slash separated member names.
func (c *Container) Members() ([]string, error) {
	var names []string
	err := filepath.WalkDir(c.scratch, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.scratch, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk scratch directory: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// ReadMember returns the current content of a member.
func (c *Container) ReadMember(name string) ([]byte, error) {
	target, err := c.memberPath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// SetMember writes a member into the scratch directory. A member with a known
// role that is not assigned yet is registered for that role.
func (c *Container) SetMember(name string, data []byte) (string, error) {
	target, err := c.memberPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create member directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write member %s: %w", name, err)
	}
	if role, ok := roleFor(name); ok {
		if _, taken := c.roles[role]; !taken {
			c.roles[role] = target
		}
	}
	return target, nil
}

// Save zips the scratch directory into dest.
func (c *Container) Save(dest string) error {
	names, err := c.Members()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".mscx-*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary package: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	zw := zip.NewWriter(tmp)
	for _, name := range names {
		if err := c.writeMember(zw, name); err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("pack %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finish package: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("move package into place: %w", err)
	}
	return nil
}

func (c *Container) writeMember(zw *zip.Writer, name string) error {
	header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: memberEpoch}
	if original, ok := c.headers[name]; ok {
		header.Modified = original.modified
		if original.method == zip.Store {
			header.Method = zip.Store
		}
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(c.scratch, filepath.FromSlash(name)))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Close removes the scratch directory.
func (c *Container) Close() error {
	if c == nil || c.scratch == "" {
		return nil
	}
	err := os.RemoveAll(c.scratch)
	c.scratch = ""
	return err
}
