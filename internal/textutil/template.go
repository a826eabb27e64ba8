package textutil

import "strings"

// Segment is one piece of a parsed template. Exactly one of Literal or Name
// is meaningful: Name is set for placeholders.
type Segment struct {
	Literal string
	Name    string
}

// IsPlaceholder reports whether the segment refers to a field.
func (s Segment) IsPlaceholder() bool {
	return s.Name != ""
}

// ParseTemplate splits template into literal and placeholder segments.
// Recognized forms are $name, ${name} and $$. A $ not followed by a valid
// name is kept literally. Adjacent literals are merged.
func ParseTemplate(template string) []Segment {
	var segments []Segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			lit.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			lit.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(template[i+2:], '}')
			if end < 0 {
				lit.WriteByte(c)
				continue
			}
			name := template[i+2 : i+2+end]
			if !validName(name) {
				lit.WriteByte(c)
				continue
			}
			flush()
			segments = append(segments, Segment{Name: name})
			i += 2 + end
		case isNameStart(next):
			j := i + 1
			for j < len(template) && isNameChar(template[j]) {
				j++
			}
			flush()
			segments = append(segments, Segment{Name: template[i+1 : j]})
			i = j - 1
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return segments
}

// Expand substitutes every placeholder in template with lookup(name). Names
// unknown to lookup expand to the empty string.
func Expand(template string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	for _, seg := range ParseTemplate(template) {
		if !seg.IsPlaceholder() {
			b.WriteString(seg.Literal)
			continue
		}
		if lookup == nil {
			continue
		}
		if value, ok := lookup(seg.Name); ok {
			b.WriteString(value)
		}
	}
	return b.String()
}

// ExpandMap is Expand backed by a map.
func ExpandMap(template string, values map[string]string) string {
	return Expand(template, func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	})
}

// Placeholders lists the placeholder names of template in order of
// appearance, duplicates included.
func Placeholders(template string) []string {
	var names []string
	for _, seg := range ParseTemplate(template) {
		if seg.IsPlaceholder() {
			names = append(names, seg.Name)
		}
	}
	return names
}

// HasPlaceholder reports whether value would change under expansion.
func HasPlaceholder(value string) bool {
	return strings.Contains(value, "$")
}

func validName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return false
		}
	}
	return true
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
