package xmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

// Declaration is written in front of every serialized document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

var (
	// ErrParse marks malformed XML input.
	ErrParse = errors.New("xml parse error")
	// ErrPathNotFound is returned by the safe query variants when nothing matches.
	ErrPathNotFound = errors.New("path not found")
	// ErrAmbiguousPath is returned by FindOne when more than one element matches.
	ErrAmbiguousPath = errors.New("path matches more than one element")
)

// Document is a single parsed XML tree.
type Document struct {
	tree *etree.Document
}

func newTree() *etree.Document {
	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true
	tree.WriteSettings.CanonicalText = true
	tree.WriteSettings.CanonicalAttrVal = true
	return tree
}

// New creates a document holding an empty root element.
func New(rootTag string) *Document {
	tree := newTree()
	tree.CreateElement(rootTag)
	return &Document{tree: tree}
}

// Parse reads a document from r.
func Parse(r io.Reader) (*Document, error) {
	tree := newTree()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return wrap(tree)
}

// ParseBytes reads a document from an in-memory buffer.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile reads the document stored at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func wrap(tree *etree.Document) (*Document, error) {
	root := tree.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	// The declaration is rewritten on output; anything else outside the root
	// element is not part of the score format.
	for _, tok := range append([]etree.Token(nil), tree.Child...) {
		if el, ok := tok.(*etree.Element); ok && el == root {
			continue
		}
		tree.RemoveChild(tok)
	}
	return &Document{tree: tree}, nil
}

// Root returns the root element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Declaration)
	buf.WriteByte('\n')
	if _, err := d.tree.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// String serializes the document, returning an empty string on failure.
func (d *Document) String() string {
	data, err := d.Bytes()
	if err != nil {
		return ""
	}
	return string(data)
}

// WriteFile serializes the document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
