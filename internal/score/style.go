package score

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"mscx/internal/xmldoc"
)

// Page selects the even or odd page margins.
type Page string

const (
	EvenPage Page = "Even"
	OddPage  Page = "Odd"
)

// Side selects one page margin.
type Side string

const (
	Top    Side = "Top"
	Bottom Side = "Bottom"
	Left   Side = "Left"
	Right  Side = "Right"
)

const (
	keyPageWidth          = "pageWidth"
	keyPageHeight         = "pageHeight"
	keyPagePrintableWidth = "pagePrintableWidth"
	keySpatium            = "Spatium"
)

// PageFormat is a named paper size in inches.
type PageFormat struct {
	Name   string
	Width  float64
	Height float64
}

// PageFormats lists the paper sizes SetPageFormat accepts.
var PageFormats = []PageFormat{
	{Name: "a4", Width: 8.27, Height: 11.69},
	{Name: "letter", Width: 8.5, Height: 11},
}

// MarginKey returns the style key storing a margin. Right margins are not
// stored and have no key.
func MarginKey(page Page, side Side) string {
	return "page" + string(page) + string(side) + "Margin"
}

// Style is a view on the style subtree of a score.
type Style struct {
	score *Score
}

// StyleValue is one leaf of the style subtree.
type StyleValue struct {
	Name  string
	Value string
}

// Style returns the style view of the score.
func (s *Score) Style() *Style {
	return &Style{score: s}
}

func (st *Style) element(create bool) (*etree.Element, error) {
	if err := st.score.requireDocument(); err != nil {
		return nil, err
	}
	return st.score.storage.locate(create), nil
}

// Get returns the text at a slash separated path below the style root.
func (st *Style) Get(name string) (string, bool) {
	root, err := st.element(false)
	if err != nil || root == nil {
		return "", false
	}
	return xmldoc.TextAt(root, name)
}

// Set stores value at a slash separated path, creating missing elements.
func (st *Style) Set(name, value string) error {
	root, err := st.element(true)
	if err != nil {
		return err
	}
	if strings.Trim(name, "/ ") == "" {
		return fmt.Errorf("style: empty element name")
	}
	if current, ok := xmldoc.TextAt(root, name); ok && current == value {
		return nil
	}
	xmldoc.SetTextAt(root, name, value)
	return nil
}

// GetFloat parses the value at name. A missing value reports false.
func (st *Style) GetFloat(name string) (float64, bool, error) {
	raw, ok := st.Get(name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, true, fmt.Errorf("style %s: %q is not a number", name, raw)
	}
	return v, true, nil
}

// SetFloat stores v rounded to six decimals in its shortest form.
func (st *Style) SetFloat(name string, v float64) error {
	return st.Set(name, FormatFloat(v))
}

// FormatFloat renders v the way style values are stored.
func FormatFloat(v float64) string {
	rounded := math.Round(v*1e6) / 1e6
	if rounded == 0 {
		// -0
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func (st *Style) requireFloat(name string) (float64, error) {
	v, ok, err := st.GetFloat(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("style %s: %w", name, xmldoc.ErrPathNotFound)
	}
	return v, nil
}

// Margin returns a page margin. Right margins are derived as
// pageWidth - pagePrintableWidth - left margin.
func (st *Style) Margin(page Page, side Side) (float64, error) {
	if side != Right {
		return st.requireFloat(MarginKey(page, side))
	}
	width, err := st.requireFloat(keyPageWidth)
	if err != nil {
		return 0, err
	}
	printable, err := st.requireFloat(keyPagePrintableWidth)
	if err != nil {
		return 0, err
	}
	left, err := st.requireFloat(MarginKey(page, Left))
	if err != nil {
		return 0, err
	}
	return width - printable - left, nil
}

// SetMargin stores a page margin. Setting a right margin solves the
// printable width from the page width and the left margin.
func (st *Style) SetMargin(page Page, side Side, v float64) error {
	if side != Right {
		return st.SetFloat(MarginKey(page, side), v)
	}
	width, err := st.requireFloat(keyPageWidth)
	if err != nil {
		return err
	}
	left, err := st.requireFloat(MarginKey(page, Left))
	if err != nil {
		return err
	}
	return st.SetFloat(keyPagePrintableWidth, width-left-v)
}

// SetAllMargins applies v to every margin of even and odd pages.
func (st *Style) SetAllMargins(v float64) error {
	for _, side := range []Side{Top, Bottom, Left, Right} {
		for _, page := range []Page{EvenPage, OddPage} {
			if err := st.SetMargin(page, side, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// PageSize returns the page width and height.
func (st *Style) PageSize() (float64, float64, error) {
	w, err := st.requireFloat(keyPageWidth)
	if err != nil {
		return 0, 0, err
	}
	h, err := st.requireFloat(keyPageHeight)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// SetPageSize changes the page dimensions and rescales the printable width
// by the ratio of new to old width.
func (st *Style) SetPageSize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("style: page size must be positive, got %gx%g", width, height)
	}
	oldWidth, hasWidth, err := st.GetFloat(keyPageWidth)
	if err != nil {
		return err
	}
	printable, hasPrintable, err := st.GetFloat(keyPagePrintableWidth)
	if err != nil {
		return err
	}
	if hasWidth && hasPrintable && oldWidth > 0 {
		if err := st.SetFloat(keyPagePrintableWidth, printable*width/oldWidth); err != nil {
			return err
		}
	}
	if err := st.SetFloat(keyPageWidth, width); err != nil {
		return err
	}
	return st.SetFloat(keyPageHeight, height)
}

// SetPageFormat applies a named paper size such as "a4" or "letter".
func (st *Style) SetPageFormat(name string) error {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, format := range PageFormats {
		if format.Name == want {
			return st.SetPageSize(format.Width, format.Height)
		}
	}
	return fmt.Errorf("style: unknown page format %q", name)
}

// Spatium returns the staff space in millimetres.
func (st *Style) Spatium() (float64, error) {
	return st.requireFloat(keySpatium)
}

// Values lists every leaf of the style subtree in document order. Nested
// leaves are named by their slash separated path.
func (st *Style) Values() []StyleValue {
	root, err := st.element(false)
	if err != nil || root == nil {
		return nil
	}
	var out []StyleValue
	var walk func(el *etree.Element, prefix string)
	walk = func(el *etree.Element, prefix string) {
		for _, child := range el.ChildElements() {
			name := child.Tag
			if prefix != "" {
				name = prefix + "/" + child.Tag
			}
			if len(child.ChildElements()) == 0 {
				out = append(out, StyleValue{Name: name, Value: xmldoc.InnerText(child)})
				continue
			}
			walk(child, name)
		}
	}
	walk(root, "")
	return out
}

// LoadFile replaces the style content with the Style element of an .mss file.
func (st *Style) LoadFile(path string) error {
	doc, err := xmldoc.ParseFile(path)
	if err != nil {
		return err
	}
	source := doc.Root()
	if source.Tag != styleTag {
		source = source.SelectElement(styleTag)
	}
	if source == nil {
		return fmt.Errorf("%s: %w: Style", path, xmldoc.ErrPathNotFound)
	}
	root, err := st.element(true)
	if err != nil {
		return err
	}
	for len(root.Child) > 0 {
		root.RemoveChildAt(0)
	}
	dup := source.Copy()
	for len(dup.Child) > 0 {
		tok := dup.Child[0]
		dup.RemoveChildAt(0)
		root.AddChild(tok)
	}
	return nil
}

// TextStyle returns the properties of a named text style. Only version 2
// documents store text styles inside the style subtree.
func (st *Style) TextStyle(name string) (map[string]string, error) {
	if err := st.requireTextStyles(); err != nil {
		return nil, err
	}
	el := st.textStyle(name, false)
	if el == nil {
		return nil, fmt.Errorf("text style %q: %w", name, xmldoc.ErrPathNotFound)
	}
	out := map[string]string{}
	for _, child := range el.ChildElements() {
		if child.Tag == "name" {
			continue
		}
		out[child.Tag] = xmldoc.InnerText(child)
	}
	return out, nil
}

// SetTextStyle writes properties of a named text style, creating it when
// needed. Only version 2 documents are supported.
func (st *Style) SetTextStyle(name string, values map[string]string) error {
	if err := st.requireTextStyles(); err != nil {
		return err
	}
	el := st.textStyle(name, true)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		xmldoc.SetTextAt(el, k, values[k])
	}
	return nil
}

// TextStyleNames lists the text styles of a version 2 document.
func (st *Style) TextStyleNames() ([]string, error) {
	if err := st.requireTextStyles(); err != nil {
		return nil, err
	}
	root, _ := st.element(false)
	if root == nil {
		return nil, nil
	}
	var names []string
	for _, el := range root.SelectElements("TextStyle") {
		if name, ok := xmldoc.TextAt(el, "name"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (st *Style) requireTextStyles() error {
	if err := st.score.requireDocument(); err != nil {
		return err
	}
	if st.score.VersionMajor != 2 {
		return fmt.Errorf("text styles in version %s: %w", st.score.versionText, ErrUnsupportedOperation)
	}
	return nil
}

func (st *Style) textStyle(name string, create bool) *etree.Element {
	root, _ := st.element(create)
	if root == nil {
		return nil
	}
	for _, el := range root.SelectElements("TextStyle") {
		if n, _ := xmldoc.TextAt(el, "name"); n == name {
			return el
		}
	}
	if !create {
		return nil
	}
	el := root.CreateElement("TextStyle")
	el.CreateElement("name").SetText(name)
	return el
}
