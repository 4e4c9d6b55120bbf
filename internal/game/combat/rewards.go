package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Reward is what a victory is worth.
type Reward struct {
	Gold  int
	Exp   int
	Items []int
}

// RewardSink receives the reward tuple exactly once per victory.
type RewardSink interface {
	Grant(r Reward)
}

// PartyRewards grants rewards to a party: experience to every battle member
// that is not dead, gold and items to the purse.
type PartyRewards struct {
	Party *party.Party
}

// Grant implements RewardSink.
func (pr PartyRewards) Grant(r Reward) {
	for _, m := range pr.Party.BattleMembers() {
		if !m.IsDead() {
			m.GainExp(r.Exp)
		}
	}
	pr.Party.GainGold(r.Gold)
	for _, id := range r.Items {
		pr.Party.GainItem(id)
	}
}

// makeReward sums the yield of the defeated troop members. The winners'
// gold-double and drop-item-double abilities double the gold and the drop rate.
func makeReward(winners, losers *party.Party) Reward {
	gold := losers.GoldTotal()
	if winners.HasAbility(trait.AbilityGoldDouble) {
		gold *= 2
	}
	rate := 1.0
	if winners.HasAbility(trait.AbilityDropItemDouble) {
		rate = 2
	}
	return Reward{
		Gold:  gold,
		Exp:   losers.ExpTotal(),
		Items: losers.MakeDropItems(rate),
	}
}
