package score

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"mscx/internal/container"
	"mscx/internal/logging"
	"mscx/internal/xmldoc"
)

var (
	// ErrVersion marks documents without a numeric root version attribute.
	ErrVersion = errors.New("invalid score version")
	// ErrUnsupportedOperation marks operations the document generation cannot perform.
	ErrUnsupportedOperation = errors.New("unsupported operation for this score version")
	// ErrRender marks failures of the external renderer.
	ErrRender = errors.New("render failed")
	// ErrNoDocument is returned when the XML tree could not be parsed.
	ErrNoDocument = errors.New("score document not loaded")
)

// PackagedExtension is the suffix of ZIP bundled scores.
const PackagedExtension = ".mscz"

// Option configures Open.
type Option func(*Score)

// WithRenderer sets the renderer used by Save when rendering is requested.
func WithRenderer(r Renderer) Option {
	return func(s *Score) {
		s.renderer = r
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Score) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Score is one opened document.
type Score struct {
	// Path is the absolute path the score was opened from.
	Path string
	// Version is the numeric root version attribute, e.g. 4.2.
	Version float64
	// VersionMajor is the integral part of Version.
	VersionMajor int
	// Errors collects parse errors. A score with errors has no tree.
	Errors []error

	versionText string
	doc         *xmldoc.Document
	container   *container.Container
	storage     styleStorage
	renderer    Renderer
	logger      *slog.Logger
	snapshot    []byte
	opts        []Option
}

// Open loads the score at path. Packaged documents are extracted into a
// scratch directory that stays alive until Close.
func Open(path string, opts ...Option) (*Score, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	s := &Score{
		Path:   abs,
		logger: logging.NewNop(),
		opts:   opts,
	}
	for _, opt := range opts {
		opt(s)
	}

	primary := abs
	if s.Packaged() {
		c, err := container.Open(abs)
		if err != nil {
			return nil, err
		}
		s.container = c
		primary, _ = c.Path(container.RolePrimary)
	}

	doc, err := xmldoc.ParseFile(primary)
	if err != nil {
		if !errors.Is(err, xmldoc.ErrParse) {
			_ = s.Close()
			return nil, err
		}
		s.Errors = append(s.Errors, err)
		s.logger.Warn("score not parsed", logging.String(logging.FieldFile, abs), logging.Error(err))
		return s, nil
	}
	s.doc = doc

	if err := s.readVersion(); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.selectStorage(); err != nil {
		_ = s.Close()
		return nil, err
	}
	snapshot, err := s.serialize()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.snapshot = snapshot
	return s, nil
}

func (s *Score) readVersion() error {
	raw := strings.TrimSpace(s.doc.Root().SelectAttrValue("version", ""))
	if raw == "" {
		return fmt.Errorf("%s: %w: missing version attribute", s.Path, ErrVersion)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s: %w: %q", s.Path, ErrVersion, raw)
	}
	s.versionText = raw
	s.Version = v
	s.VersionMajor = int(v)
	return nil
}

// Packaged reports whether the score is a ZIP bundle.
func (s *Score) Packaged() bool {
	return strings.EqualFold(filepath.Ext(s.Path), PackagedExtension)
}

// Parsed reports whether the XML tree is available.
func (s *Score) Parsed() bool {
	return s != nil && s.doc != nil
}

// VersionText returns the version attribute exactly as stored.
func (s *Score) VersionText() string {
	return s.versionText
}

// Document returns the primary XML document, or nil when it did not parse.
func (s *Score) Document() *xmldoc.Document {
	return s.doc
}

// Container returns the bundle of packaged scores, or nil.
func (s *Score) Container() *container.Container {
	return s.container
}

// Close releases the scratch directory of packaged scores.
func (s *Score) Close() error {
	if s == nil || s.container == nil {
		return nil
	}
	err := s.container.Close()
	s.container = nil
	return err
}

func (s *Score) requireDocument() error {
	if s.doc == nil {
		if len(s.Errors) > 0 {
			return fmt.Errorf("%s: %w: %w", s.Path, ErrNoDocument, s.Errors[0])
		}
		return fmt.Errorf("%s: %w", s.Path, ErrNoDocument)
	}
	return nil
}
