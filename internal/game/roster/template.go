// Package roster provides actor, enemy, and troop templates loaded from YAML
// and builds combatants and parties from them.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Params holds the eight base parameters of a template.
type Params struct {
	MHP int `yaml:"mhp"`
	MMP int `yaml:"mmp"`
	ATK int `yaml:"atk"`
	DEF int `yaml:"def"`
	MAT int `yaml:"mat"`
	MDF int `yaml:"mdf"`
	AGI int `yaml:"agi"`
	LUK int `yaml:"luk"`
}

func (p Params) array() [trait.ParamCount]int {
	return [trait.ParamCount]int{p.MHP, p.MMP, p.ATK, p.DEF, p.MAT, p.MDF, p.AGI, p.LUK}
}

func (p Params) validate() error {
	if p.MHP < 1 {
		return fmt.Errorf("params.mhp must be >= 1, got %d", p.MHP)
	}
	for i, v := range p.array() {
		if v < 0 {
			return fmt.Errorf("params.%s must be >= 0, got %d", trait.Param(i), v)
		}
	}
	return nil
}

// Actor is a player-side combatant archetype.
type Actor struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Level  int           `yaml:"level"`
	Params Params        `yaml:"params"`
	Traits []trait.Trait `yaml:"traits"`
	Skills []int         `yaml:"skills"`
}

// Validate checks the template's own fields. Skill references are checked by
// the Roster that owns the template.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, and
// every parameter is in range.
func (a *Actor) Validate() error {
	if a.ID == "" {
		return errors.New("actor: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("actor %q: name must not be empty", a.ID)
	}
	if a.Level < 1 {
		return fmt.Errorf("actor %q: level must be >= 1", a.ID)
	}
	if err := a.Params.validate(); err != nil {
		return fmt.Errorf("actor %q: %w", a.ID, err)
	}
	return nil
}

// Enemy is a troop-side combatant archetype with its defeat yield.
type Enemy struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Params Params         `yaml:"params"`
	Traits []trait.Trait  `yaml:"traits"`
	Skills []int          `yaml:"skills"`
	Exp    int            `yaml:"exp"`
	Gold   int            `yaml:"gold"`
	Drops  []battler.Drop `yaml:"drops"`
}

// Validate checks the template's own fields.
func (e *Enemy) Validate() error {
	if e.ID == "" {
		return errors.New("enemy: id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", e.ID)
	}
	if err := e.Params.validate(); err != nil {
		return fmt.Errorf("enemy %q: %w", e.ID, err)
	}
	if e.Exp < 0 || e.Gold < 0 {
		return fmt.Errorf("enemy %q: exp and gold must be >= 0", e.ID)
	}
	for i, d := range e.Drops {
		if d.Denominator < 1 {
			return fmt.Errorf("enemy %q: drops[%d].denominator must be >= 1", e.ID, i)
		}
	}
	return nil
}

// TroopMember places one enemy in a troop.
type TroopMember struct {
	Enemy string `yaml:"enemy"`
}

// Troop is an encounter: the enemies that fight together.
type Troop struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Members []TroopMember `yaml:"members"`
}

// Validate checks the template's own fields.
func (t *Troop) Validate() error {
	if t.ID == "" {
		return errors.New("troop: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("troop %q: name must not be empty", t.ID)
	}
	if len(t.Members) == 0 {
		return fmt.Errorf("troop %q: must have at least one member", t.ID)
	}
	for i, m := range t.Members {
		if m.Enemy == "" {
			return fmt.Errorf("troop %q: members[%d].enemy must not be empty", t.ID, i)
		}
	}
	return nil
}

// LoadActors reads every *.yaml file in dir; each file holds a list of actors.
func LoadActors(dir string) ([]*Actor, error) {
	return loadDir(dir, "actor", (*Actor).Validate)
}

// LoadEnemies reads every *.yaml file in dir; each file holds a list of enemies.
func LoadEnemies(dir string) ([]*Enemy, error) {
	return loadDir(dir, "enemy", (*Enemy).Validate)
}

// LoadTroops reads every *.yaml file in dir; each file holds a list of troops.
func LoadTroops(dir string) ([]*Troop, error) {
	return loadDir(dir, "troop", (*Troop).Validate)
}

// DecodeActors parses a YAML list of actors.
func DecodeActors(data []byte) ([]*Actor, error) { return decode(data, (*Actor).Validate) }

// DecodeEnemies parses a YAML list of enemies.
func DecodeEnemies(data []byte) ([]*Enemy, error) { return decode(data, (*Enemy).Validate) }

// DecodeTroops parses a YAML list of troops.
func DecodeTroops(data []byte) ([]*Troop, error) { return decode(data, (*Troop).Validate) }

func decode[T any](data []byte, validate func(*T) error) ([]*T, error) {
	var out []*T
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	for _, v := range out {
		if err := validate(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// loadDir decodes every *.yaml file in dir in name order.
//
// Postcondition: Returns all templates or an error naming the first bad file;
// on error the partial result is discarded.
func loadDir[T any](dir, kind string, validate func(*T) error) ([]*T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s dir %q: %w", kind, dir, err)
	}
	var out []*T
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		items, err := decode(data, validate)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		out = append(out, items...)
	}
	return out, nil
}
