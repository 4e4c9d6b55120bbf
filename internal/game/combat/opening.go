package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// OpeningRates returns the probabilities of a preemptive strike and of a
// surprise attack for an encounter between p and troop.
type OpeningRates func(p, troop *party.Party) (preemptive, surprise float64)

// DefaultOpeningRates compares average agility. The faster side gets the
// better odds: preemptive 0.05 or 0.03, surprise 0.03 or 0.05. Raise-preemptive
// quadruples the preemptive rate and cancel-surprise removes surprise.
func DefaultOpeningRates(p, troop *party.Party) (float64, float64) {
	faster := p.AgilityAvg() >= troop.AgilityAvg()
	preemptive, surprise := 0.03, 0.05
	if faster {
		preemptive, surprise = 0.05, 0.03
	}
	if p.HasAbility(trait.AbilityRaisePreemptive) {
		preemptive *= 4
	}
	if p.HasAbility(trait.AbilityCancelSurprise) {
		surprise = 0
	}
	return preemptive, surprise
}

// initialEscapeRatio is 0.5 * party agility / troop agility.
func initialEscapeRatio(p, troop *party.Party) float64 {
	troopAgi := troop.AgilityAvg()
	if troopAgi <= 0 {
		return 1
	}
	return 0.5 * p.AgilityAvg() / troopAgi
}
