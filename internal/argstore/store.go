// Package argstore binds launch arguments for one document-processing run.
//
// Bindings come from two places: `key:=value` positional arguments on the
// command line, and <arg> declarations met while walking a document. A name
// is bound at most once. Command-line bindings are loaded before traversal
// starts, so they always win over document defaults; between two document
// declarations the first one wins.
package argstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// Separator splits a CLI binding into key and value.
const Separator = ":="

// Binding is one `key:=value` pair from the command line.
type Binding struct {
	Key   string
	Value string
}

// Bindings keeps CLI bindings in the order they were given.
type Bindings []Binding

// ParseBinding splits s once on ":=".
func ParseBinding(s string) (Binding, error) {
	key, value, ok := strings.Cut(s, Separator)
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q has no %q separator", xerr.ErrMalformedBinding, s, Separator)
	}
	if key == "" {
		return Binding{}, fmt.Errorf("%w: %q has an empty name", xerr.ErrMalformedBinding, s)
	}
	return Binding{Key: key, Value: value}, nil
}

// ParseBindings parses every positional argument, failing on the first
// malformed one.
func ParseBindings(args []string) (Bindings, error) {
	out := make(Bindings, 0, len(args))
	for _, a := range args {
		b, err := ParseBinding(a)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Store is the argument scope of a single document.
type Store struct {
	values map[string]string
	// mandatory holds names declared by an <arg> without value that nothing bound.
	mandatory map[string]struct{}
}

// New returns a store seeded with the CLI bindings. Repeated CLI keys keep
// their first value.
func New(bindings Bindings) *Store {
	s := &Store{
		values:    make(map[string]string, len(bindings)),
		mandatory: make(map[string]struct{}),
	}
	for _, b := range bindings {
		if _, ok := s.values[b.Key]; !ok {
			s.values[b.Key] = b.Value
		}
	}
	return s
}

// Declare records an <arg> declaration. With hasValue set, name is bound to
// value unless it is already bound; the return value reports whether a new
// binding was made. Without a value the name becomes mandatory: looking it up
// before something binds it fails.
func (s *Store) Declare(name, value string, hasValue bool) bool {
	if _, ok := s.values[name]; ok {
		return false
	}
	if !hasValue {
		s.mandatory[name] = struct{}{}
		return false
	}
	s.values[name] = value
	delete(s.mandatory, name)
	return true
}

// Lookup returns the value bound to name.
func (s *Store) Lookup(name string) (string, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if _, ok := s.mandatory[name]; ok {
		return "", fmt.Errorf("%w: mandatory argument %q was not given", xerr.ErrMissingArgument, name)
	}
	return "", fmt.Errorf("%w: unknown argument %q", xerr.ErrMissingArgument, name)
}

// Snapshot returns a copy of the current bindings.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the bound names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
