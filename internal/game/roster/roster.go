package roster

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
)

// Roster holds the loaded templates and the registries they reference.
// It is read-only after construction and safe for concurrent use.
type Roster struct {
	actors  map[string]*Actor
	enemies map[string]*Enemy
	troops  map[string]*Troop
	conds   *condition.Registry
	skills  *skill.Registry
	battle  config.BattleConfig
}

// Content is everything a Roster is built from.
type Content struct {
	Conditions *condition.Registry
	Skills     *skill.Registry
	Actors     []*Actor
	Enemies    []*Enemy
	Troops     []*Troop
}

// Load reads every content directory and builds a Roster.
//
// Postcondition: Returns a Roster whose templates all reference known skills,
// conditions, and enemies, or the first loading error.
func Load(content config.ContentConfig, battle config.BattleConfig) (*Roster, error) {
	conds, err := condition.LoadDirectory(content.Conditions)
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	skills, err := skill.LoadDirectory(content.Skills)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	actors, err := LoadActors(content.Actors)
	if err != nil {
		return nil, fmt.Errorf("loading actors: %w", err)
	}
	enemies, err := LoadEnemies(content.Enemies)
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	troops, err := LoadTroops(content.Troops)
	if err != nil {
		return nil, fmt.Errorf("loading troops: %w", err)
	}
	return New(Content{
		Conditions: conds,
		Skills:     skills,
		Actors:     actors,
		Enemies:    enemies,
		Troops:     troops,
	}, battle)
}

// New indexes c and checks every cross reference.
//
// Precondition: c.Conditions and c.Skills must be non-nil.
// Postcondition: Returns an error naming the first duplicate id or dangling reference.
func New(c Content, battle config.BattleConfig) (*Roster, error) {
	if c.Conditions == nil || c.Skills == nil {
		panic("roster: New requires condition and skill registries")
	}
	r := &Roster{
		actors:  make(map[string]*Actor, len(c.Actors)),
		enemies: make(map[string]*Enemy, len(c.Enemies)),
		troops:  make(map[string]*Troop, len(c.Troops)),
		conds:   c.Conditions,
		skills:  c.Skills,
		battle:  battle,
	}
	for _, id := range []int{battle.AttackSkillID, battle.GuardSkillID} {
		if _, ok := r.skills.Get(id); !ok {
			return nil, fmt.Errorf("roster: battle skill %d is not defined", id)
		}
	}
	if _, ok := r.conds.Get(battle.DeathStateID); !ok {
		return nil, fmt.Errorf("roster: death state %d is not defined", battle.DeathStateID)
	}
	for _, a := range c.Actors {
		if _, dup := r.actors[a.ID]; dup {
			return nil, fmt.Errorf("roster: duplicate actor id %q", a.ID)
		}
		if err := r.checkSkills("actor", a.ID, a.Skills); err != nil {
			return nil, err
		}
		r.actors[a.ID] = a
	}
	for _, e := range c.Enemies {
		if _, dup := r.enemies[e.ID]; dup {
			return nil, fmt.Errorf("roster: duplicate enemy id %q", e.ID)
		}
		if err := r.checkSkills("enemy", e.ID, e.Skills); err != nil {
			return nil, err
		}
		r.enemies[e.ID] = e
	}
	for _, t := range c.Troops {
		if _, dup := r.troops[t.ID]; dup {
			return nil, fmt.Errorf("roster: duplicate troop id %q", t.ID)
		}
		if len(t.Members) > battle.MaxTroopMembers {
			return nil, fmt.Errorf("roster: troop %q has %d members, max is %d", t.ID, len(t.Members), battle.MaxTroopMembers)
		}
		for _, m := range t.Members {
			if _, ok := r.enemies[m.Enemy]; !ok {
				return nil, fmt.Errorf("roster: troop %q references unknown enemy %q", t.ID, m.Enemy)
			}
		}
		r.troops[t.ID] = t
	}
	return r, nil
}

func (r *Roster) checkSkills(kind, id string, skills []int) error {
	for _, s := range skills {
		if _, ok := r.skills.Get(s); !ok {
			return fmt.Errorf("roster: %s %q references unknown skill %d", kind, id, s)
		}
	}
	return nil
}

// Conditions returns the condition registry combatants are built against.
func (r *Roster) Conditions() *condition.Registry { return r.conds }

// Skills returns the skill registry combatants are built against.
func (r *Roster) Skills() *skill.Registry { return r.skills }

// Actor returns the actor template for id.
func (r *Roster) Actor(id string) (*Actor, bool) {
	a, ok := r.actors[id]
	return a, ok
}

// Enemy returns the enemy template for id.
func (r *Roster) Enemy(id string) (*Enemy, bool) {
	e, ok := r.enemies[id]
	return e, ok
}

// Troop returns the troop template for id.
func (r *Roster) Troop(id string) (*Troop, bool) {
	t, ok := r.troops[id]
	return t, ok
}

// ActorIDs returns every actor id in ascending order.
func (r *Roster) ActorIDs() []string { return sortedKeys(r.actors) }

// TroopIDs returns every troop id in ascending order.
func (r *Roster) TroopIDs() []string { return sortedKeys(r.troops) }

func sortedKeys[V any](m map[string]V) []string { return slices.Sorted(maps.Keys(m)) }

// Limits returns the rule constants combatants of kind obey.
func (r *Roster) Limits(kind battler.Kind) battler.Limits {
	l := battler.Limits{
		MaxTP:         r.battle.MaxTP,
		DeathStateID:  r.battle.DeathStateID,
		AttackSkillID: r.battle.AttackSkillID,
		GuardSkillID:  r.battle.GuardSkillID,
		PreserveTP:    r.battle.PreserveTP,
	}
	caps := r.battle.ActorParamMax
	if kind == battler.KindEnemy {
		caps = r.battle.EnemyParamMax
	}
	copy(l.ParamMax[:], caps)
	return l
}

// NewActor builds a combatant from actor template id.
//
// Precondition: roller must be non-nil.
func (r *Roster) NewActor(id string, roller *dice.Roller) (*battler.Combatant, error) {
	a, ok := r.actors[id]
	if !ok {
		return nil, fmt.Errorf("roster: unknown actor %q", id)
	}
	return battler.New(battler.Config{
		Name:       a.Name,
		Kind:       battler.KindActor,
		Level:      a.Level,
		Base:       a.Params.array(),
		Traits:     a.Traits,
		SkillIDs:   a.Skills,
		Limits:     r.Limits(battler.KindActor),
		Conditions: r.conds,
		Skills:     r.skills,
		Roller:     roller,
	}), nil
}

// NewEnemy builds a combatant from enemy template id under the given display name.
func (r *Roster) NewEnemy(id, name string, roller *dice.Roller) (*battler.Combatant, error) {
	e, ok := r.enemies[id]
	if !ok {
		return nil, fmt.Errorf("roster: unknown enemy %q", id)
	}
	return battler.New(battler.Config{
		Name:       name,
		Kind:       battler.KindEnemy,
		Level:      1,
		Base:       e.Params.array(),
		Traits:     e.Traits,
		SkillIDs:   e.Skills,
		Yield:      battler.Yield{Exp: e.Exp, Gold: e.Gold, Drops: e.Drops},
		Limits:     r.Limits(battler.KindEnemy),
		Conditions: r.conds,
		Skills:     r.skills,
		Roller:     roller,
	}), nil
}

// NewParty builds the player party from actor ids, in order. Actors beyond
// the battle member limit join as reserve.
func (r *Roster) NewParty(name string, actorIDs []string, roller *dice.Roller) (*party.Party, error) {
	p := party.New(name, r.battle.MaxBattleMembers, roller)
	for _, id := range actorIDs {
		c, err := r.NewActor(id, roller)
		if err != nil {
			return nil, err
		}
		p.Add(c)
	}
	return p, nil
}

// NewTroop builds the enemy collective of troop id. Enemies sharing a name
// are told apart by letter suffixes in troop order ("Slime A", "Slime B").
func (r *Roster) NewTroop(id string, roller *dice.Roller) (*party.Party, error) {
	t, ok := r.troops[id]
	if !ok {
		return nil, fmt.Errorf("roster: unknown troop %q", id)
	}
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = r.enemies[m.Enemy].Name
	}
	p := party.New(t.Name, r.battle.MaxTroopMembers, roller)
	for i, name := range UniqueNames(names) {
		c, err := r.NewEnemy(t.Members[i].Enemy, name, roller)
		if err != nil {
			return nil, err
		}
		p.Add(c)
	}
	return p, nil
}

// UniqueNames suffixes every name that occurs more than once with a letter
// counting up from A in order of appearance. Names that occur once are kept.
func UniqueNames(names []string) []string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	seen := make(map[string]int, len(names))
	out := slices.Clone(names)
	for i, n := range names {
		if counts[n] < 2 {
			continue
		}
		out[i] = fmt.Sprintf("%s %s", n, letter(seen[n]))
		seen[n]++
	}
	return out
}

func letter(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if i < len(letters) {
		return letters[i : i+1]
	}
	return fmt.Sprint(i + 1)
}
