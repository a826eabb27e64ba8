package fields

import (
	"errors"
	"fmt"
	"strings"

	"mscx/internal/score"
	"mscx/internal/textutil"
)

var (
	// ErrUnknownField is returned for names missing from the catalog.
	ErrUnknownField = errors.New("unknown field")
	// ErrReadOnlyField is returned when setting a derived field.
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrNoFieldsInPattern is returned by Distribute for patterns without placeholders.
	ErrNoFieldsInPattern = errors.New("no fields in pattern")
	// ErrUnmatchedPattern is returned by Distribute when no source value matches.
	ErrUnmatchedPattern = errors.New("pattern does not match any source field")
)

// CleanAll selects every writable field in Clean.
const CleanAll = "all"

// Registry binds the catalog to one score.
type Registry struct {
	score *score.Score
}

// New returns the registry of s.
func New(s *score.Score) *Registry {
	return &Registry{score: s}
}

// Score returns the bound score.
func (r *Registry) Score() *score.Score {
	return r.score
}

func (r *Registry) field(name string) (Field, error) {
	f, ok := Lookup(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Get returns the value of name. Absent values read as "".
func (r *Registry) Get(name string) (string, error) {
	f, err := r.field(name)
	if err != nil {
		return "", err
	}
	v, _ := r.value(f)
	return v, nil
}

// Lookup returns the value of name and whether it is present in the score.
func (r *Registry) Lookup(name string) (string, bool, error) {
	f, err := r.field(name)
	if err != nil {
		return "", false, err
	}
	v, ok := r.value(f)
	return v, ok, nil
}

func (r *Registry) value(f Field) (string, bool) {
	if !f.Combined() {
		return f.get(r.score)
	}
	present := false
	for _, src := range f.sources {
		v, ok := r.value(catalog[index[src]])
		if v != "" {
			return v, true
		}
		present = present || ok
	}
	return "", present
}

// Set assigns value to name. Values containing $ are expanded against the
// current Snapshot first, so "$title (live)" refers to the old title.
func (r *Registry) Set(name, value string) error {
	f, err := r.field(name)
	if err != nil {
		return err
	}
	if f.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, f.Name)
	}
	if textutil.HasPlaceholder(value) {
		value = textutil.ExpandMap(value, r.Snapshot())
	}
	return r.assign(f, value)
}

// assign writes value without template expansion. Combined fields write
// through to every writable source.
func (r *Registry) assign(f Field, value string) error {
	if !f.Combined() {
		if f.ReadOnly {
			return nil
		}
		return f.set(r.score, value)
	}
	var errs []error
	for _, src := range f.sources {
		if err := r.assign(catalog[index[src]], value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot returns the value of every field keyed by name.
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, len(catalog))
	for _, f := range catalog {
		v, _ := r.value(f)
		out[f.Name] = v
	}
	return out
}

// Clean empties fields. selection is "all" or a comma separated list of names;
// read-only fields are skipped.
func (r *Registry) Clean(selection string) error {
	var targets []Field
	if strings.TrimSpace(selection) == CleanAll {
		targets = catalog
	} else {
		for _, name := range strings.Split(selection, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f, err := r.field(name)
			if err != nil {
				return err
			}
			targets = append(targets, f)
		}
	}
	for _, f := range targets {
		if f.ReadOnly {
			continue
		}
		if err := r.assign(f, ""); err != nil {
			return fmt.Errorf("clean %s: %w", f.Name, err)
		}
	}
	return nil
}

// Change is one field that differs between two snapshots.
type Change struct {
	Field string
	Old   string
	New   string
}

// Diff compares pre with the current values and returns the changed fields
// whose verbosity does not exceed verbosity, in catalog order.
func (r *Registry) Diff(pre map[string]string, verbosity int) []Change {
	post := r.Snapshot()
	var changes []Change
	for _, f := range catalog {
		if f.Verbosity > verbosity {
			continue
		}
		if pre[f.Name] != post[f.Name] {
			changes = append(changes, Change{Field: f.Name, Old: pre[f.Name], New: post[f.Name]})
		}
	}
	return changes
}
