// Package templates stores named header/footer pairs that can be spliced
// around a merged program. Template text is never parsed.
package templates

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nemooon/nc-file-merger/internal/merger"
)

// None is the name that selects no template.
const None = "none"

// Template is a named header/footer pair.
type Template struct {
	Name        string `json:"name" yaml:"-"`
	Description string `json:"description" yaml:"description"`
	Header      string `json:"header" yaml:"header"`
	Footer      string `json:"footer" yaml:"footer"`
}

// builtins are always available unless a file overrides them by name.
var builtins = []Template{
	{
		Name:        "basic",
		Description: "Metric, absolute, XY plane; spindle stop at the end",
		Header:      "(BASIC HEADER)\nG21 G90 G17",
		Footer:      "M05\nM09",
	},
	{
		Name:        "fanuc",
		Description: "Fanuc safety block and return to reference",
		Header:      "G21 G17 G40 G49 G80 G90",
		Footer:      "M05\nM09\nG91 G28 Z0\nG28 X0 Y0\nG90",
	},
	{
		Name:        "detailed",
		Description: "Annotated safety block with work offset",
		Header: strings.Join([]string{
			"(====================================)",
			"(MERGED PROGRAM)",
			"(UNITS: MM  /  WORK OFFSET: G54)",
			"(====================================)",
			"G21 G17 G40 G49 G80 G90",
			"G54",
		}, "\n"),
		Footer: strings.Join([]string{
			"(END OF MERGED PROGRAM)",
			"M05",
			"M09",
			"G91 G28 Z0",
			"G90",
		}, "\n"),
	},
	{
		Name:        "minimal",
		Description: "Absolute positioning only",
		Header:      "G90",
	},
}

// File is the on-disk template format: a map from name to template.
type File struct {
	Templates map[string]Template `yaml:"templates"`
}

// Store is a read-mostly catalogue of templates.
type Store struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewStore returns a store holding the built-in templates.
func NewStore() *Store {
	s := &Store{templates: make(map[string]Template, len(builtins))}
	for _, t := range builtins {
		s.templates[t.Name] = t
	}
	return s
}

// LoadFile adds the templates in a YAML file, replacing built-ins of the
// same name.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read templates: %w", err)
	}
	return s.LoadYAML(data)
}

// LoadYAML is LoadFile for in-memory data.
func (s *Store) LoadYAML(data []byte) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range f.Templates {
		name = strings.TrimSpace(name)
		if name == "" || name == None {
			return fmt.Errorf("parse templates: invalid template name %q", name)
		}
		t.Name = name
		s.templates[name] = t
	}
	return nil
}

// Get looks up a template by name.
func (s *Store) Get(name string) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	return t, ok
}

// All returns every template sorted by name.
func (s *Store) All() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns None followed by every template name, sorted.
func (s *Store) Names() []string {
	all := s.All()
	names := make([]string, 0, len(all)+1)
	names = append(names, None)
	for _, t := range all {
		names = append(names, t.Name)
	}
	return names
}

// ForMerge resolves name to merge options. Empty, None and unknown names
// yield nil.
func (s *Store) ForMerge(name string) *merger.Template {
	if name == "" || name == None {
		return nil
	}
	t, ok := s.Get(name)
	if !ok {
		return nil
	}
	return &merger.Template{Header: t.Header, Footer: t.Footer}
}
