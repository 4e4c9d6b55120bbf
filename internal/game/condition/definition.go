package condition

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Restriction limits what a combatant under a condition may do.
// Higher values are stronger.
type Restriction int

const (
	RestrictNone Restriction = iota
	RestrictAttackEnemy
	RestrictAttackAnyone
	RestrictAttackAlly
	RestrictCannotMove
)

var restrictionNames = []string{"none", "attack_enemy", "attack_anyone", "attack_ally", "cannot_move"}

func (r Restriction) String() string {
	if r < 0 || int(r) >= len(restrictionNames) {
		return fmt.Sprintf("restriction(%d)", int(r))
	}
	return restrictionNames[r]
}

// UnmarshalYAML accepts a restriction name.
func (r *Restriction) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range restrictionNames {
		if n == node.Value {
			*r = Restriction(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown restriction %q", node.Line, node.Value)
}

// RemovalTiming says when an expired condition is swept.
type RemovalTiming int

const (
	// RemoveNever conditions stay until cured, until death, or until battle end.
	RemoveNever RemovalTiming = iota
	// RemoveAtActionEnd conditions are swept when their holder finishes its actions.
	RemoveAtActionEnd
	// RemoveAtTurnEnd conditions are swept in the end-of-turn hook.
	RemoveAtTurnEnd
)

var timingNames = []string{"never", "action_end", "turn_end"}

func (t RemovalTiming) String() string {
	if t < 0 || int(t) >= len(timingNames) {
		return fmt.Sprintf("timing(%d)", int(t))
	}
	return timingNames[t]
}

// UnmarshalYAML accepts a timing name.
func (t *RemovalTiming) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range timingNames {
		if n == node.Value {
			*t = RemovalTiming(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown auto_removal_timing %q", node.Line, node.Value)
}

// Messages are the presentation strings of a condition. %s is the holder's name.
type Messages struct {
	Actor  string `yaml:"actor"`  // shown when an actor gains it
	Enemy  string `yaml:"enemy"`  // shown when an enemy gains it
	Stay   string `yaml:"stay"`   // shown while it persists
	Remove string `yaml:"remove"` // shown when it is removed
}

// Def is the static definition of a condition, loaded from YAML.
type Def struct {
	ID                  int           `yaml:"id"`
	Name                string        `yaml:"name"`
	Priority            int           `yaml:"priority"`
	Restriction         Restriction   `yaml:"restriction"`
	AutoRemovalTiming   RemovalTiming `yaml:"auto_removal_timing"`
	MinTurns            int           `yaml:"min_turns"`
	MaxTurns            int           `yaml:"max_turns"`
	RemoveAtBattleEnd   bool          `yaml:"remove_at_battle_end"`
	RemoveByRestriction bool          `yaml:"remove_by_restriction"`
	RemoveByDamage      bool          `yaml:"remove_by_damage"`
	ChanceByDamage      int           `yaml:"chance_by_damage"` // percent
	Traits              []trait.Trait `yaml:"traits"`
	Messages            Messages      `yaml:"messages"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil if valid, or an error naming every violated field.
func (d *Def) Validate() error {
	var errs []error
	if d.ID < 1 {
		errs = append(errs, fmt.Errorf("condition id must be >= 1, got %d", d.ID))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("condition %d: name must not be empty", d.ID))
	}
	if d.MinTurns < 0 || d.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("condition %d: turn range must be non-negative", d.ID))
	}
	if d.ChanceByDamage < 0 || d.ChanceByDamage > 100 {
		errs = append(errs, fmt.Errorf("condition %d: chance_by_damage must be 0-100, got %d", d.ID, d.ChanceByDamage))
	}
	return errors.Join(errs...)
}

// Registry holds all known condition Defs keyed by ID.
type Registry struct {
	defs map[int]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[int]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) {
	if def == nil {
		panic("condition: Register called with nil def")
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
		panic(fmt.Sprintf("condition: unknown condition id %d", id))
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

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// validates it, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
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
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		if _, dup := reg.Get(def.ID); dup {
			return nil, fmt.Errorf("%q: duplicate condition id %d", path, def.ID)
		}
		reg.Register(&def)
	}
	return reg, nil
}
