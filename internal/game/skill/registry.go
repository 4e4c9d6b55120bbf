package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds all known skill Defs keyed by ID.
type Registry struct {
	defs map[int]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[int]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) {
	if def == nil {
		panic("skill: Register called with nil def")
	}
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id int) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// MustGet returns the Def for id and panics when it is unknown.
func (r *Registry) MustGet(id int) *Def {
	d, ok := r.defs[id]
	if !ok {
		panic(fmt.Sprintf("skill: unknown skill id %d", id))
	}
	return d
}

// All returns every registered Def ordered by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir. Each file holds a list of skills.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skill dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var defs []*Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&defs); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range defs {
			if d.Repeats == 0 {
				d.Repeats = 1
			}
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("validating %q: %w", path, err)
			}
			if _, dup := reg.Get(d.ID); dup {
				return nil, fmt.Errorf("%q: duplicate skill id %d", path, d.ID)
			}
			reg.Register(d)
		}
	}
	return reg, nil
}
