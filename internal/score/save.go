package score

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"mscx/internal/container"
	"mscx/internal/fileutil"
	"mscx/internal/logging"
	"mscx/internal/xmldoc"
)

// Renderer re-saves a score through the external notation program.
type Renderer interface {
	Render(ctx context.Context, source, destination string) error
}

// emptyTextPaths lists elements that the notation program misreads when
// written self-closing.
var emptyTextPaths = []string{
	".//LayerTag",
	".//metaTag",
	".//font",
	".//i",
	".//evenFooterL",
	".//evenFooterC",
	".//evenFooterR",
	".//oddFooterL",
	".//oddFooterC",
	".//oddFooterR",
	".//chord/name",
	".//StaffText/text",
	".//Jump/continueAt",
	".//Jump/jumpTo",
	".//Jump/playUntil",
}

// serialize returns the primary document followed by the external style, if any.
func (s *Score) serialize() ([]byte, error) {
	primary, err := s.doc.Bytes()
	if err != nil {
		return nil, err
	}
	style, err := s.storage.bytes()
	if err != nil {
		return nil, err
	}
	return append(primary, style...), nil
}

// Changed reports whether the in-memory score differs from what was opened.
func (s *Score) Changed() bool {
	if s.doc == nil {
		return false
	}
	current, err := s.serialize()
	if err != nil {
		return true
	}
	return !bytes.Equal(current, s.snapshot)
}

// Save writes the score to dest, or back to Path when dest is empty. An
// in-place save of an unchanged score writes nothing unless render is set.
// With render the renderer re-saves the written file in place.
func (s *Score) Save(ctx context.Context, dest string, render bool) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	target := s.Path
	if dest != "" {
		abs, err := filepath.Abs(dest)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dest, err)
		}
		target = abs
	}
	logger := s.logger.With(logging.String(logging.FieldFile, s.Path))

	if target == s.Path && !render && !s.Changed() {
		logger.Debug("score unchanged, skipping save")
		return nil
	}

	for _, path := range emptyTextPaths {
		for _, el := range xmldoc.FindAll(s.doc.Root(), path) {
			xmldoc.EnsureText(el)
		}
	}
	if err := s.storage.persist(); err != nil {
		return fmt.Errorf("%s: persist style: %w", s.Path, err)
	}

	if s.container != nil {
		primary, _ := s.container.Path(container.RolePrimary)
		if err := s.doc.WriteFile(primary); err != nil {
			return err
		}
		if err := s.container.Save(target); err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	} else if err := s.doc.WriteFile(target); err != nil {
		return err
	}
	logger.Debug("score saved", logging.String(logging.FieldDestination, target))

	if target == s.Path {
		snapshot, err := s.serialize()
		if err != nil {
			return err
		}
		s.snapshot = snapshot
	}

	if render {
		if s.renderer == nil {
			return fmt.Errorf("%s: %w: no renderer configured", target, ErrRender)
		}
		if err := s.renderer.Render(ctx, target, target); err != nil {
			return fmt.Errorf("%s: %w: %w", target, ErrRender, err)
		}
		logger.Debug("score rendered", logging.String(logging.FieldDestination, target))
	}
	return nil
}

// Diff returns a unified diff between the opened and the current
// serialization. It is empty when nothing changed.
func (s *Score) Diff() (string, error) {
	if err := s.requireDocument(); err != nil {
		return "", err
	}
	current, err := s.serialize()
	if err != nil {
		return "", err
	}
	name := filepath.Base(s.Path)
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(s.snapshot)),
		B:        difflib.SplitLines(string(current)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}

// Backup copies the file on disk to its _bak sibling and returns that path.
func (s *Score) Backup() (string, error) {
	backup := fileutil.BackupPath(s.Path)
	if err := fileutil.CopyFile(s.Path, backup); err != nil {
		return "", fmt.Errorf("backup %s: %w", s.Path, err)
	}
	return backup, nil
}

// Reload closes the score and opens a fresh one from path, or from Path
// when path is empty, with the original options.
func (s *Score) Reload(path string) (*Score, error) {
	if path == "" {
		path = s.Path
	}
	if err := s.Close(); err != nil {
		return nil, err
	}
	return Open(path, s.opts...)
}
