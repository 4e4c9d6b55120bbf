// Package battler implements the combatant: its vitals, its status ledger,
// the attribute engine that folds base values, traits, and buffs into derived
// stats, and the action queue the scheduler consumes.
package battler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Kind distinguishes player-controlled combatants from troop-controlled ones.
type Kind int

const (
	KindActor Kind = iota
	KindEnemy
)

func (k Kind) String() string {
	if k == KindActor {
		return "actor"
	}
	return "enemy"
}

// Limits are the rule constants a combatant's derived stats obey.
type Limits struct {
	MaxTP         int
	ParamMax      [trait.ParamCount]int
	DeathStateID  int
	AttackSkillID int
	GuardSkillID  int
	// PreserveTP keeps TP across battles for every combatant.
	PreserveTP bool
}

// DefaultActorLimits returns the standard limits for player-side combatants.
func DefaultActorLimits() Limits {
	return Limits{
		MaxTP:         100,
		ParamMax:      [trait.ParamCount]int{9999, 9999, 999, 999, 999, 999, 999, 999},
		DeathStateID:  1,
		AttackSkillID: 1,
		GuardSkillID:  2,
	}
}

// DefaultEnemyLimits returns the standard limits for troop-side combatants.
func DefaultEnemyLimits() Limits {
	l := DefaultActorLimits()
	l.ParamMax = [trait.ParamCount]int{999999, 9999, 999, 999, 999, 999, 999, 999}
	return l
}

// Drop is one entry of an enemy's drop table: the item drops with
// probability 1/Denominator, scaled by the drop rate.
type Drop struct {
	ItemID      int `yaml:"item_id"`
	Denominator int `yaml:"denominator"`
}

// Yield is what defeating a combatant is worth.
type Yield struct {
	Exp   int
	Gold  int
	Drops []Drop
}

// Config carries everything New needs to build a Combatant.
type Config struct {
	Name       string
	Kind       Kind
	Index      int
	Level      int
	Base       [trait.ParamCount]int
	Traits     []trait.Trait
	SkillIDs   []int
	Yield      Yield
	Limits     Limits
	Conditions *condition.Registry
	Skills     *skill.Registry
	Roller     *dice.Roller
}

// Combatant is one participant of a battle. Its ledger and vitals are owned
// exclusively by it and mutated only through its methods.
type Combatant struct {
	id       uuid.UUID
	name     string
	kind     Kind
	index    int
	level    int
	base     [trait.ParamCount]int
	plus     [trait.ParamCount]int
	traits   []trait.Trait
	skillIDs []int
	yield    Yield
	limits   Limits

	hp, mp, tp int
	exp        int
	hidden     bool
	speed      int

	ledger  *condition.Ledger
	conds   *condition.Registry
	skills  *skill.Registry
	roller  *dice.Roller
	actions []*Action
	result  ActionResult
}

// New builds a Combatant at full HP and MP with no conditions.
//
// Precondition: cfg.Conditions, cfg.Skills, and cfg.Roller must be non-nil; cfg.Name non-empty.
// Postcondition: HP() == MHP() and MP() == MMP().
func New(cfg Config) *Combatant {
	if cfg.Conditions == nil || cfg.Skills == nil || cfg.Roller == nil {
		panic("battler: New requires Conditions, Skills, and Roller")
	}
	if cfg.Name == "" {
		panic("battler: New requires a Name")
	}
	c := &Combatant{
		id:       uuid.New(),
		name:     cfg.Name,
		kind:     cfg.Kind,
		index:    cfg.Index,
		level:    cfg.Level,
		base:     cfg.Base,
		traits:   append([]trait.Trait(nil), cfg.Traits...),
		skillIDs: append([]int(nil), cfg.SkillIDs...),
		yield:    cfg.Yield,
		limits:   cfg.Limits,
		ledger:   condition.NewLedger(cfg.Conditions),
		conds:    cfg.Conditions,
		skills:   cfg.Skills,
		roller:   cfg.Roller,
	}
	c.hp = c.MHP()
	c.mp = c.MMP()
	return c
}

func (c *Combatant) ID() uuid.UUID { return c.id }
func (c *Combatant) Name() string  { return c.name }
func (c *Combatant) Kind() Kind    { return c.kind }
func (c *Combatant) IsActor() bool { return c.kind == KindActor }
func (c *Combatant) IsEnemy() bool { return c.kind == KindEnemy }
func (c *Combatant) Level() int    { return c.level }

// Index is the combatant's position within its collective.
func (c *Combatant) Index() int { return c.index }

// SetIndex records the combatant's position within its collective.
func (c *Combatant) SetIndex(i int) { c.index = i }

// Limits returns the rule constants the combatant obeys.
func (c *Combatant) Limits() Limits { return c.limits }

// Ledger exposes the status ledger for read-only queries by presentation code.
func (c *Combatant) Ledger() *condition.Ledger { return c.ledger }

// Skills returns the skill registry the combatant resolves ids against.
func (c *Combatant) Skills() *skill.Registry { return c.skills }

// Roller returns the combatant's random source.
func (c *Combatant) Roller() *dice.Roller { return c.roller }

// ExpYield, GoldYield and Drops describe the reward for defeating the combatant.
func (c *Combatant) ExpYield() int  { return c.yield.Exp }
func (c *Combatant) GoldYield() int { return c.yield.Gold }
func (c *Combatant) Drops() []Drop  { return c.yield.Drops }

// Experience returns the experience the combatant has earned.
func (c *Combatant) Experience() int { return c.exp }

// GainExp adds n scaled by the experience rate, rounded.
func (c *Combatant) GainExp(n int) int {
	gained := int(roundHalfUp(float64(n) * c.SParam(trait.EXR)))
	c.exp += gained
	return gained
}

// Hide removes the combatant from play without killing it.
func (c *Combatant) Hide() { c.hidden = true }

// Appear returns a hidden combatant to play.
func (c *Combatant) Appear() { c.hidden = false }

func (c *Combatant) IsHidden() bool   { return c.hidden }
func (c *Combatant) IsAppeared() bool { return !c.hidden }

// IsDeathStateAffected reports whether the death condition is active.
func (c *Combatant) IsDeathStateAffected() bool {
	return c.ledger.Has(c.limits.DeathStateID)
}

// IsAlive reports whether the combatant is in play and not dead.
func (c *Combatant) IsAlive() bool { return c.IsAppeared() && !c.IsDeathStateAffected() }

// IsDead reports whether the combatant is in play and dead.
func (c *Combatant) IsDead() bool { return c.IsAppeared() && c.IsDeathStateAffected() }

// IsDying reports whether the combatant is alive below a quarter of its max HP.
func (c *Combatant) IsDying() bool { return c.IsAlive() && c.hp < c.MHP()/4 }

// DropItems draws the combatant's drop table. rate doubles with the drop-item-double ability.
func (c *Combatant) DropItems(rate float64) []int {
	var out []int
	for _, d := range c.yield.Drops {
		if d.ItemID <= 0 || d.Denominator <= 0 {
			continue
		}
		if c.roller.Chance("drop "+c.name, rate/float64(d.Denominator)) {
			out = append(out, d.ItemID)
		}
	}
	return out
}

// Result returns the outcome record of the last action applied to the combatant.
func (c *Combatant) Result() *ActionResult { return &c.result }

// ClearResult resets the outcome record.
func (c *Combatant) ClearResult() { c.result.Clear() }

func (c *Combatant) String() string {
	return fmt.Sprintf("%s(%s#%d hp=%d/%d)", c.name, c.kind, c.index, c.hp, c.MHP())
}
