package score

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"mscx/internal/xmldoc"
)

// VBoxText names a header text frame entry by its style.
type VBoxText string

const (
	VBoxTitle    VBoxText = "Title"
	VBoxSubtitle VBoxText = "Subtitle"
	VBoxComposer VBoxText = "Composer"
	VBoxLyricist VBoxText = "Lyricist"
)

const vboxDefaultHeight = "10"

// styleName returns the spelling the document generation uses.
func (s *Score) styleName(kind VBoxText) string {
	if s.VersionMajor >= 4 {
		return strings.ToLower(string(kind))
	}
	return string(kind)
}

func (s *Score) firstVBox() *etree.Element {
	if s.doc == nil {
		return nil
	}
	staff := xmldoc.Find(s.doc.Root(), "Score/Staff")
	return xmldoc.Find(staff, "VBox")
}

func vboxTexts(vbox *etree.Element, kind VBoxText) []*etree.Element {
	var out []*etree.Element
	if vbox == nil {
		return nil
	}
	for _, text := range vbox.SelectElements("Text") {
		style, _ := xmldoc.TextAt(text, "style")
		if strings.EqualFold(strings.TrimSpace(style), string(kind)) {
			out = append(out, text)
		}
	}
	return out
}

// VBoxText returns the text of the first header frame entry of kind. The
// boolean is false when the score, the frame or the entry is missing.
func (s *Score) VBoxText(kind VBoxText) (string, bool) {
	texts := vboxTexts(s.firstVBox(), kind)
	if len(texts) == 0 {
		return "", false
	}
	return xmldoc.TextAt(texts[0], "text")
}

// SetVBoxText stores value in the header frame, creating the frame and entry
// on demand. An empty value removes the entry.
func (s *Score) SetVBoxText(kind VBoxText, value string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	vbox := s.firstVBox()
	texts := vboxTexts(vbox, kind)
	if value == "" {
		for _, text := range texts {
			xmldoc.Remove(text)
		}
		return nil
	}
	if len(texts) > 0 {
		if current, _ := xmldoc.TextAt(texts[0], "text"); current != value {
			xmldoc.SetTextAt(texts[0], "text", value)
		}
		return nil
	}
	if vbox == nil {
		staff, err := xmldoc.FindSafe(s.doc.Root(), "Score/Staff")
		if err != nil {
			return fmt.Errorf("%s: create header frame: %w", s.Path, err)
		}
		vbox = etree.NewElement("VBox")
		vbox.CreateElement("height").SetText(vboxDefaultHeight)
		staff.InsertChildAt(0, vbox)
	}
	text := vbox.CreateElement("Text")
	text.CreateElement("style").SetText(s.styleName(kind))
	text.CreateElement("text").SetText(value)
	return nil
}

// MetaTag returns the value of a Score/metaTag entry.
func (s *Score) MetaTag(name string) (string, bool) {
	if s.doc == nil {
		return "", false
	}
	tag := s.metaTag(name)
	if tag == nil {
		return "", false
	}
	return xmldoc.InnerText(tag), true
}

func (s *Score) metaTag(name string) *etree.Element {
	scoreEl := xmldoc.Find(s.doc.Root(), "Score")
	if scoreEl == nil {
		return nil
	}
	for _, tag := range scoreEl.SelectElements("metaTag") {
		if tag.SelectAttrValue("name", "") == name {
			return tag
		}
	}
	return nil
}

// SetMetaTag stores value in the metaTag called name, appending a new tag
// after the existing ones when needed. Clearing a missing tag is a no-op.
func (s *Score) SetMetaTag(name, value string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if tag := s.metaTag(name); tag != nil {
		if xmldoc.InnerText(tag) != value {
			xmldoc.ReplaceText(tag, value)
		}
		return nil
	}
	if value == "" {
		return nil
	}
	scoreEl, err := xmldoc.FindSafe(s.doc.Root(), "Score")
	if err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	tag := etree.NewElement("metaTag")
	tag.CreateAttr("name", name)
	tag.SetText(value)

	index := len(scoreEl.Child)
	if existing := scoreEl.SelectElements("metaTag"); len(existing) > 0 {
		index = existing[len(existing)-1].Index() + 1
	}
	scoreEl.InsertChildAt(index, tag)
	return nil
}

// MetaTags returns every metaTag keyed by name.
func (s *Score) MetaTags() map[string]string {
	out := map[string]string{}
	if s.doc == nil {
		return out
	}
	for _, tag := range xmldoc.FindAll(s.doc.Root(), "Score/metaTag[@name]") {
		out[tag.SelectAttrValue("name", "")] = xmldoc.InnerText(tag)
	}
	return out
}

// MetaTagNames lists the metaTag names present in the score, sorted.
func (s *Score) MetaTagNames() []string {
	tags := s.MetaTags()
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProgramVersion returns the version of the program that wrote the score.
func (s *Score) ProgramVersion() (string, bool) {
	if s.doc == nil {
		return "", false
	}
	return xmldoc.TextAt(s.doc.Root(), "programVersion")
}

// ProgramRevision returns the source revision of the program that wrote the score.
func (s *Score) ProgramRevision() (string, bool) {
	if s.doc == nil {
		return "", false
	}
	return xmldoc.TextAt(s.doc.Root(), "programRevision")
}
