package score

import (
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"

	"mscx/internal/container"
	"mscx/internal/xmldoc"
)

// StyleMember is the member name used when a packaged score gets its first
// external style file.
const StyleMember = "score_style.mss"

const (
	inlineStylePath = "Score/Style"
	styleTag        = "Style"
)

// styleStorage hides where the style subtree of a score lives.
type styleStorage interface {
	// locate returns the Style element. With create unset a missing
	// element yields nil.
	locate(create bool) *etree.Element
	// bytes serializes whatever lives outside the primary document.
	bytes() ([]byte, error)
	// persist prepares the style for writing the primary document.
	persist() error
	name() string
}

func (s *Score) selectStorage() error {
	if s.container == nil || s.VersionMajor < 4 {
		s.storage = &inlineStyle{root: s.doc.Root()}
		return nil
	}
	ext := &externalStyle{
		primary:   s.doc.Root(),
		container: s.container,
		version:   s.versionText,
	}
	if err := ext.load(); err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	s.storage = ext
	return nil
}

// StorageName reports "inline" or "external".
func (s *Score) StorageName() string {
	if s.storage == nil {
		return ""
	}
	return s.storage.name()
}

type inlineStyle struct {
	root *etree.Element
}

func (i *inlineStyle) locate(create bool) *etree.Element {
	style := xmldoc.Find(i.root, inlineStylePath)
	if style != nil || !create {
		return style
	}
	scoreEl := xmldoc.EnsurePath(i.root, "Score")
	style = etree.NewElement(styleTag)
	scoreEl.InsertChildAt(0, style)
	return style
}

func (i *inlineStyle) bytes() ([]byte, error) { return nil, nil }

func (i *inlineStyle) persist() error { return nil }

func (i *inlineStyle) name() string { return "inline" }

type externalStyle struct {
	primary   *etree.Element
	container *container.Container
	version   string
	doc       *xmldoc.Document
}

// load reads the style member, falling back to a copy of an inline style.
func (e *externalStyle) load() error {
	if p, ok := e.container.Path(container.RoleStyle); ok {
		doc, err := xmldoc.ParseFile(p)
		if err != nil {
			return err
		}
		e.doc = doc
		return nil
	}
	if inline := xmldoc.Find(e.primary, inlineStylePath); inline != nil {
		e.doc = e.newDocument()
		e.doc.Root().AddChild(inline.Copy())
	}
	return nil
}

func (e *externalStyle) newDocument() *xmldoc.Document {
	doc := xmldoc.New("museScore")
	doc.Root().CreateAttr("version", e.version)
	return doc
}

func (e *externalStyle) locate(create bool) *etree.Element {
	if e.doc == nil {
		if !create {
			return nil
		}
		e.doc = e.newDocument()
	}
	root := e.doc.Root()
	if root.Tag == styleTag {
		return root
	}
	style := root.SelectElement(styleTag)
	if style == nil && create {
		style = root.CreateElement(styleTag)
	}
	return style
}

func (e *externalStyle) bytes() ([]byte, error) {
	if e.doc == nil {
		return nil, nil
	}
	return e.doc.Bytes()
}

func (e *externalStyle) persist() error {
	xmldoc.RemoveTags(e.primary, inlineStylePath)
	if e.doc == nil {
		return nil
	}
	data, err := e.doc.Bytes()
	if err != nil {
		return err
	}
	member := StyleMember
	if p, ok := e.container.Path(container.RoleStyle); ok {
		rel, err := filepath.Rel(e.container.ScratchDir(), p)
		if err != nil {
			return fmt.Errorf("style member path: %w", err)
		}
		member = filepath.ToSlash(rel)
	}
	if _, err := e.container.SetMember(member, data); err != nil {
		return err
	}
	return nil
}

func (e *externalStyle) name() string { return "external" }
