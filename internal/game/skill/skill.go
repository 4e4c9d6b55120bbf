// Package skill holds the static definitions of the capabilities combatants
// use in battle: targeting scope, hit type, damage, and side effects.
package skill

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scope is a skill's target-selection rule.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeEnemy
	ScopeEnemies
	ScopeRandomEnemies
	ScopeAlly
	ScopeAllies
	ScopeDeadAlly
	ScopeDeadAllies
	ScopeUser
)

var scopeNames = []string{"none", "enemy", "enemies", "random_enemies", "ally", "allies", "dead_ally", "dead_allies", "user"}

func (s Scope) String() string { return enumName(scopeNames, int(s), "scope") }

// UnmarshalYAML accepts a scope name.
func (s *Scope) UnmarshalYAML(node *yaml.Node) error {
	i, err := parseEnum(node, scopeNames, "scope")
	*s = Scope(i)
	return err
}

// HitType decides which evasion and reflection rules apply.
type HitType int

const (
	HitCertain HitType = iota
	HitPhysical
	HitMagical
)

var hitTypeNames = []string{"certain", "physical", "magical"}

func (h HitType) String() string { return enumName(hitTypeNames, int(h), "hit_type") }

// UnmarshalYAML accepts a hit type name.
func (h *HitType) UnmarshalYAML(node *yaml.Node) error {
	i, err := parseEnum(node, hitTypeNames, "hit_type")
	*h = HitType(i)
	return err
}

// DamageType is what a skill's damage formula changes.
type DamageType int

const (
	DamageNone DamageType = iota
	DamageHP
	DamageMP
	RecoverHP
	RecoverMP
	DrainHP
	DrainMP
)

var damageTypeNames = []string{"none", "hp_damage", "mp_damage", "hp_recover", "mp_recover", "hp_drain", "mp_drain"}

func (d DamageType) String() string { return enumName(damageTypeNames, int(d), "damage_type") }

// UnmarshalYAML accepts a damage type name.
func (d *DamageType) UnmarshalYAML(node *yaml.Node) error {
	i, err := parseEnum(node, damageTypeNames, "damage type")
	*d = DamageType(i)
	return err
}

// ElementNormalAttack makes a skill use the user's attack elements.
const ElementNormalAttack = -1

// Damage describes the formula part of a skill.
type Damage struct {
	Type DamageType `yaml:"type"`
	// ElementID is the element of the damage; ElementNormalAttack uses the
	// user's attack elements, 0 means no element.
	ElementID int    `yaml:"element_id"`
	Formula   string `yaml:"formula"`
	Variance  int    `yaml:"variance"` // percent
	Critical  bool   `yaml:"critical"`
}

// EffectCode is what a skill effect does.
type EffectCode int

const (
	EffectRecoverHP EffectCode = iota
	EffectRecoverMP
	EffectGainTP
	EffectAddState
	EffectRemoveState
	EffectAddBuff
	EffectAddDebuff
	EffectRemoveBuff
	EffectRemoveDebuff
)

var effectNames = []string{"recover_hp", "recover_mp", "gain_tp", "add_state", "remove_state", "add_buff", "add_debuff", "remove_buff", "remove_debuff"}

func (e EffectCode) String() string { return enumName(effectNames, int(e), "effect") }

// UnmarshalYAML accepts an effect code name.
func (e *EffectCode) UnmarshalYAML(node *yaml.Node) error {
	i, err := parseEnum(node, effectNames, "effect code")
	*e = EffectCode(i)
	return err
}

// Effect is one side effect applied to every hit target.
//
// Value1 and Value2 depend on Code: recover effects use a rate of the max
// (Value1) plus a flat amount (Value2); add_state uses a chance (Value1);
// buffs use a turn count (Value1).
type Effect struct {
	Code   EffectCode `yaml:"code"`
	DataID int        `yaml:"data_id"`
	Value1 float64    `yaml:"value1"`
	Value2 float64    `yaml:"value2"`
}

// Def is the static definition of a skill, loaded from YAML.
type Def struct {
	ID            int      `yaml:"id"`
	Name          string   `yaml:"name"`
	Message       string   `yaml:"message"` // %s is the user's name
	Scope         Scope    `yaml:"scope"`
	RandomTargets int      `yaml:"random_targets"`
	Speed         int      `yaml:"speed"`
	SuccessRate   int      `yaml:"success_rate"` // percent
	Repeats       int      `yaml:"repeats"`
	TPGain        int      `yaml:"tp_gain"`
	HitType       HitType  `yaml:"hit_type"`
	Damage        Damage   `yaml:"damage"`
	Effects       []Effect `yaml:"effects"`
	MPCost        int      `yaml:"mp_cost"`
	TPCost        int      `yaml:"tp_cost"`
	SkillTypeID   int      `yaml:"skill_type_id"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil if valid, or an error naming every violated field.
func (d *Def) Validate() error {
	var errs []error
	if d.ID < 1 {
		errs = append(errs, fmt.Errorf("skill id must be >= 1, got %d", d.ID))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("skill %d: name must not be empty", d.ID))
	}
	if d.SuccessRate < 0 || d.SuccessRate > 100 {
		errs = append(errs, fmt.Errorf("skill %d: success_rate must be 0-100, got %d", d.ID, d.SuccessRate))
	}
	if d.Repeats < 1 {
		errs = append(errs, fmt.Errorf("skill %d: repeats must be >= 1, got %d", d.ID, d.Repeats))
	}
	if d.Scope == ScopeRandomEnemies && d.RandomTargets < 1 {
		errs = append(errs, fmt.Errorf("skill %d: random_enemies scope requires random_targets >= 1", d.ID))
	}
	if d.Damage.Type != DamageNone && d.Damage.Formula == "" {
		errs = append(errs, fmt.Errorf("skill %d: damage type %s requires a formula", d.ID, d.Damage.Type))
	}
	if d.MPCost < 0 || d.TPCost < 0 {
		errs = append(errs, fmt.Errorf("skill %d: costs must be non-negative", d.ID))
	}
	return errors.Join(errs...)
}

// IsForOpponent reports whether the skill targets the other side.
func (d *Def) IsForOpponent() bool {
	return d.Scope == ScopeEnemy || d.Scope == ScopeEnemies || d.Scope == ScopeRandomEnemies
}

// IsForFriend reports whether the skill targets the user's side, including the user.
func (d *Def) IsForFriend() bool {
	return d.Scope >= ScopeAlly && d.Scope <= ScopeUser
}

// IsForDeadFriend reports whether the skill targets dead allies.
func (d *Def) IsForDeadFriend() bool {
	return d.Scope == ScopeDeadAlly || d.Scope == ScopeDeadAllies
}

// IsForUser reports whether the skill targets only its user.
func (d *Def) IsForUser() bool { return d.Scope == ScopeUser }

// IsForOne reports whether the skill hits a single chosen target.
func (d *Def) IsForOne() bool {
	return d.Scope == ScopeEnemy || d.Scope == ScopeAlly || d.Scope == ScopeDeadAlly || d.Scope == ScopeUser
}

// IsForRandom reports whether targets are drawn at random.
func (d *Def) IsForRandom() bool { return d.Scope == ScopeRandomEnemies }

// IsForAll reports whether the skill hits a whole side.
func (d *Def) IsForAll() bool {
	return d.Scope == ScopeEnemies || d.Scope == ScopeAllies || d.Scope == ScopeDeadAllies
}

// NeedsSelection reports whether a target index must be chosen.
func (d *Def) NeedsSelection() bool {
	return d.Scope == ScopeEnemy || d.Scope == ScopeAlly || d.Scope == ScopeDeadAlly
}

// IsCertainHit reports whether the skill ignores hit and evasion.
func (d *Def) IsCertainHit() bool { return d.HitType == HitCertain }

// IsPhysical reports whether the skill is a physical attack.
func (d *Def) IsPhysical() bool { return d.HitType == HitPhysical }

// IsMagical reports whether the skill is a magical attack.
func (d *Def) IsMagical() bool { return d.HitType == HitMagical }

// IsDamage reports whether the formula deals HP or MP damage.
func (d *Def) IsDamage() bool { return d.Damage.Type == DamageHP || d.Damage.Type == DamageMP }

// IsRecover reports whether the formula restores HP or MP.
func (d *Def) IsRecover() bool { return d.Damage.Type == RecoverHP || d.Damage.Type == RecoverMP }

// IsDrain reports whether the formula transfers HP or MP to the user.
func (d *Def) IsDrain() bool { return d.Damage.Type == DrainHP || d.Damage.Type == DrainMP }

// AffectsHP reports whether the formula changes HP.
func (d *Def) AffectsHP() bool {
	return d.Damage.Type == DamageHP || d.Damage.Type == RecoverHP || d.Damage.Type == DrainHP
}

// AffectsMP reports whether the formula changes MP.
func (d *Def) AffectsMP() bool {
	return d.Damage.Type == DamageMP || d.Damage.Type == RecoverMP || d.Damage.Type == DrainMP
}

func enumName(names []string, i int, kind string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func parseEnum(node *yaml.Node, names []string, kind string) (int, error) {
	for i, n := range names {
		if n == node.Value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q", node.Line, kind, node.Value)
}
