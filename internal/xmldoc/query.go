package xmldoc

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Compile validates an etree path expression.
func Compile(path string) (etree.Path, error) {
	compiled, err := etree.CompilePath(path)
	if err != nil {
		return etree.Path{}, fmt.Errorf("compile path %q: %w", path, err)
	}
	return compiled, nil
}

// Find returns the first element matching path below elem, or nil.
// An invalid path expression panics, matching etree.
func Find(elem *etree.Element, path string) *etree.Element {
	if elem == nil {
		return nil
	}
	return elem.FindElement(path)
}

// FindAll returns every element matching path below elem.
func FindAll(elem *etree.Element, path string) []*etree.Element {
	if elem == nil {
		return nil
	}
	return elem.FindElements(path)
}

// Select evaluates a caller supplied path, reporting syntax errors instead of panicking.
func Select(elem *etree.Element, path string) ([]*etree.Element, error) {
	compiled, err := Compile(path)
	if err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, nil
	}
	return elem.FindElementsPath(compiled), nil
}

// FindSafe is Find that fails with ErrPathNotFound when nothing matches.
func FindSafe(elem *etree.Element, path string) (*etree.Element, error) {
	found := Find(elem, path)
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return found, nil
}

// FindAllSafe is FindAll that fails with ErrPathNotFound on zero matches.
func FindAllSafe(elem *etree.Element, path string) ([]*etree.Element, error) {
	found := FindAll(elem, path)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return found, nil
}

// FindOne expects exactly one match.
func FindOne(elem *etree.Element, path string) (*etree.Element, error) {
	found := FindAll(elem, path)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s (%d matches)", ErrAmbiguousPath, path, len(found))
	}
}

// RemoveTags deletes every element matched by paths. Paths that match nothing
// are ignored.
func RemoveTags(elem *etree.Element, paths ...string) {
	for _, path := range paths {
		for _, match := range FindAll(elem, path) {
			Remove(match)
		}
	}
}

// Remove detaches elem from its parent together with the whitespace that
// followed it.
func Remove(elem *etree.Element) {
	parent := elem.Parent()
	if parent == nil {
		return
	}
	idx := elem.Index()
	if idx+1 < len(parent.Child) {
		if cd, ok := parent.Child[idx+1].(*etree.CharData); ok && cd.IsWhitespace() {
			parent.RemoveChildAt(idx + 1)
		}
	}
	parent.RemoveChildAt(idx)
}

// InnerText concatenates all character data below elem, ignoring markup.
func InnerText(elem *etree.Element) string {
	if elem == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(elem)
	return b.String()
}

// ReplaceText drops every child of elem and stores value as its only text.
func ReplaceText(elem *etree.Element, value string) {
	for len(elem.Child) > 0 {
		elem.RemoveChildAt(0)
	}
	if value != "" {
		elem.SetText(value)
	}
}

// EnsureText gives an element without any content an empty text node, so it
// is written as <tag></tag> instead of <tag/>.
func EnsureText(elem *etree.Element) {
	if len(elem.Child) == 0 {
		elem.AddChild(etree.NewText(""))
	}
}

// Walk follows a slash separated list of child tags without creating anything.
func Walk(elem *etree.Element, path string) *etree.Element {
	current := elem
	for _, tag := range splitTags(path) {
		if current == nil {
			return nil
		}
		current = current.SelectElement(tag)
	}
	return current
}

// EnsurePath follows a slash separated list of child tags, creating missing
// elements on the way.
func EnsurePath(elem *etree.Element, path string) *etree.Element {
	current := elem
	for _, tag := range splitTags(path) {
		next := current.SelectElement(tag)
		if next == nil {
			next = current.CreateElement(tag)
		}
		current = next
	}
	return current
}

// TextAt returns the text stored at a slash separated tag path.
func TextAt(elem *etree.Element, path string) (string, bool) {
	found := Walk(elem, path)
	if found == nil {
		return "", false
	}
	return InnerText(found), true
}

// SetTextAt stores value at a slash separated tag path, creating the path.
func SetTextAt(elem *etree.Element, path, value string) *etree.Element {
	target := EnsurePath(elem, path)
	ReplaceText(target, value)
	return target
}

func splitTags(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	tags := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
