package fields

import (
	"fmt"
	"regexp"
	"strings"

	"mscx/internal/textutil"
)

// compilePattern turns a format such as "$title - $composer" into an
// anchored expression with one group per placeholder.
func compilePattern(format string) (*regexp.Regexp, []string, error) {
	var b strings.Builder
	var names []string
	b.WriteString("^")
	for _, seg := range textutil.ParseTemplate(format) {
		if !seg.IsPlaceholder() {
			b.WriteString(regexp.QuoteMeta(seg.Literal))
			continue
		}
		names = append(names, seg.Name)
		b.WriteString("(.*)")
	}
	b.WriteString("$")
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoFieldsInPattern, format)
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, fmt.Errorf("compile pattern %q: %w", format, err)
	}
	return re, names, nil
}

// Distribute matches the value of each source field in turn against format
// and assigns the captured parts of the first match to the fields named by
// the placeholders.
func (r *Registry) Distribute(sources []string, format string) error {
	re, names, err := compilePattern(format)
	if err != nil {
		return err
	}
	targets := make([]Field, len(names))
	for i, name := range names {
		f, err := r.field(name)
		if err != nil {
			return err
		}
		if f.ReadOnly {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, f.Name)
		}
		targets[i] = f
	}

	for _, src := range sources {
		value, err := r.Get(strings.TrimSpace(src))
		if err != nil {
			return err
		}
		match := re.FindStringSubmatch(value)
		if match == nil {
			continue
		}
		for i, f := range targets {
			if err := r.assign(f, match[i+1]); err != nil {
				return fmt.Errorf("distribute %s: %w", f.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q against %s", ErrUnmatchedPattern, format, strings.Join(sources, ", "))
}
