// Package party implements the collective: an ordered group of combatants
// fighting on one side of a battle, with the aggregate queries and hooks the
// scheduler consumes.
package party

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Item is one item gained by the party, tagged with a unique instance id.
type Item struct {
	InstanceID uuid.UUID
	ItemID     int
}

// Party is an ordered collection of combatants. The first MaxBattleMembers
// members fight; the rest are reserve.
//
// It is not safe for concurrent use. During a battle only the owning session mutates it.
type Party struct {
	name      string
	maxBattle int
	members   []*battler.Combatant
	turnCount int
	gold      int
	items     []Item
	roller    *dice.Roller
}

// New creates an empty Party.
//
// Precondition: name must be non-empty; maxBattle must be >= 1; roller must be non-nil.
func New(name string, maxBattle int, roller *dice.Roller) *Party {
	if name == "" {
		panic("party: New requires a name")
	}
	if maxBattle < 1 {
		panic(fmt.Sprintf("party: maxBattle must be >= 1, got %d", maxBattle))
	}
	if roller == nil {
		panic("party: New requires a non-nil Roller")
	}
	return &Party{name: name, maxBattle: maxBattle, roller: roller}
}

// Name returns the party's display name.
func (p *Party) Name() string { return p.name }

// MaxBattleMembers returns how many members fight at once.
func (p *Party) MaxBattleMembers() int { return p.maxBattle }

// Add appends c and records its position.
//
// Precondition: c must be non-nil and not already a member.
// Postcondition: c.Index() equals its position in Members().
func (p *Party) Add(c *battler.Combatant) {
	if c == nil {
		panic("party: Add requires a non-nil combatant")
	}
	if slices.Contains(p.members, c) {
		panic(fmt.Sprintf("party: %s is already a member of %s", c.Name(), p.name))
	}
	c.SetIndex(len(p.members))
	p.members = append(p.members, c)
}

// Remove drops c from the party and renumbers the remaining members.
// Removing a non-member is a no-op.
func (p *Party) Remove(c *battler.Combatant) {
	i := slices.Index(p.members, c)
	if i < 0 {
		return
	}
	p.members = slices.Delete(p.members, i, i+1)
	for j, m := range p.members {
		m.SetIndex(j)
	}
}

// Members returns every member, fighting and reserve.
func (p *Party) Members() []*battler.Combatant {
	return append([]*battler.Combatant(nil), p.members...)
}

// Member returns the member at index i, or nil.
func (p *Party) Member(i int) *battler.Combatant {
	if i < 0 || i >= len(p.members) {
		return nil
	}
	return p.members[i]
}

// BattleMembers returns the appeared members among the first MaxBattleMembers.
func (p *Party) BattleMembers() []*battler.Combatant {
	n := min(p.maxBattle, len(p.members))
	var out []*battler.Combatant
	for _, m := range p.members[:n] {
		if m.IsAppeared() {
			out = append(out, m)
		}
	}
	return out
}

// Reserve returns the members beyond MaxBattleMembers.
func (p *Party) Reserve() []*battler.Combatant {
	if len(p.members) <= p.maxBattle {
		return nil
	}
	return append([]*battler.Combatant(nil), p.members[p.maxBattle:]...)
}

// IsBattleMember reports whether c currently fights for the party.
func (p *Party) IsBattleMember(c *battler.Combatant) bool {
	return slices.Contains(p.BattleMembers(), c)
}

func (p *Party) filter(keep func(*battler.Combatant) bool) []*battler.Combatant {
	var out []*battler.Combatant
	for _, m := range p.BattleMembers() {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// AliveMembers returns the battle members that are alive.
func (p *Party) AliveMembers() []*battler.Combatant {
	return p.filter((*battler.Combatant).IsAlive)
}

// DeadMembers returns the battle members that are dead.
func (p *Party) DeadMembers() []*battler.Combatant {
	return p.filter((*battler.Combatant).IsDead)
}

// MovableMembers returns the battle members that can act.
func (p *Party) MovableMembers() []*battler.Combatant {
	return p.filter((*battler.Combatant).CanMove)
}

// IsAllDead reports whether no battle member is alive.
func (p *Party) IsAllDead() bool { return len(p.AliveMembers()) == 0 }

// IsEmpty reports whether the party has no battle members at all.
func (p *Party) IsEmpty() bool { return len(p.BattleMembers()) == 0 }

// CanInput reports whether any battle member accepts commands.
func (p *Party) CanInput() bool {
	return slices.ContainsFunc(p.BattleMembers(), (*battler.Combatant).CanInput)
}

// AgilityAvg returns the mean agility of the battle members, or 0 with none.
func (p *Party) AgilityAvg() float64 {
	ms := p.BattleMembers()
	if len(ms) == 0 {
		return 0
	}
	sum := 0
	for _, m := range ms {
		sum += m.AGI()
	}
	return float64(sum) / float64(len(ms))
}

// TGRSum returns the total target rate of the alive members.
func (p *Party) TGRSum() float64 {
	sum := 0.0
	for _, m := range p.AliveMembers() {
		sum += m.SParam(trait.TGR)
	}
	return sum
}

// HasAbility reports whether any battle member has the party ability.
func (p *Party) HasAbility(ability int) bool {
	return slices.ContainsFunc(p.BattleMembers(), func(m *battler.Combatant) bool {
		return m.PartyAbility(ability)
	})
}

// TurnCount returns the number of turns started in the current battle.
func (p *Party) TurnCount() int { return p.turnCount }

// IncreaseTurn advances the turn counter.
func (p *Party) IncreaseTurn() { p.turnCount++ }

// Gold returns the party's purse.
func (p *Party) Gold() int { return p.gold }

// GainGold adds n to the purse. The purse never goes negative.
func (p *Party) GainGold(n int) { p.gold = max(p.gold+n, 0) }

// GainItem adds one instance of itemID to the party.
//
// Postcondition: Returns the new Item with a fresh InstanceID.
func (p *Party) GainItem(itemID int) Item {
	it := Item{InstanceID: uuid.New(), ItemID: itemID}
	p.items = append(p.items, it)
	return it
}

// Items returns every item the party holds.
func (p *Party) Items() []Item { return append([]Item(nil), p.items...) }
