package game

import (
	"slices"
)

// Contribution is one player's chips in the hand, as seen by pot building
type Contribution struct {
	PlayerID string
	Amount   int
	Folded   bool
}

// Pot is one layer of the chips in play. Only Eligible players can win it;
// Contributors are everyone who paid into it, folded or not.
type Pot struct {
	Amount       int      `json:"amount"`
	Eligible     []string `json:"eligible"`
	Contributors []string `json:"contributors"`
}

// Payout is the chips one player receives from a pot
type Payout struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
}

// CalculatePots layers contributions into a main pot and side pots. Each
// layer is cut at the smallest remaining contribution, so pots come back in
// ascending order of the contribution level that closes them; the first is
// the main pot. The pots always sum to the total contributed.
func CalculatePots(contributions []Contribution) []Pot {
	remaining := make([]int, len(contributions))
	for i, c := range contributions {
		remaining[i] = max(c.Amount, 0)
	}

	var pots []Pot
	for {
		level := 0
		for _, r := range remaining {
			if r > 0 && (level == 0 || r < level) {
				level = r
			}
		}
		if level == 0 {
			return pots
		}

		pot := Pot{}
		for i, c := range contributions {
			if remaining[i] == 0 {
				continue
			}
			pot.Amount += level
			pot.Contributors = append(pot.Contributors, c.PlayerID)
			if !c.Folded {
				pot.Eligible = append(pot.Eligible, c.PlayerID)
			}
			remaining[i] -= level
		}
		pots = append(pots, pot)
	}
}

// DistributePot splits a pot between the winners that are eligible for it.
// Each gets an equal share; leftover chips go one at a time to the winners in
// the order given. It returns nil when no winner is eligible.
func DistributePot(pot Pot, winners []string) []Payout {
	var eligible []string
	for _, w := range winners {
		if slices.Contains(pot.Eligible, w) && !slices.Contains(eligible, w) {
			eligible = append(eligible, w)
		}
	}
	if len(eligible) == 0 || pot.Amount <= 0 {
		return nil
	}

	share := pot.Amount / len(eligible)
	remainder := pot.Amount % len(eligible)
	payouts := make([]Payout, len(eligible))
	for i, id := range eligible {
		payouts[i] = Payout{PlayerID: id, Amount: share}
		if i < remainder {
			payouts[i].Amount++
		}
	}
	return payouts
}

// refund returns a layer to the players who paid into it
func refund(pot Pot) []Payout {
	if len(pot.Contributors) == 0 {
		return nil
	}
	share := pot.Amount / len(pot.Contributors)
	remainder := pot.Amount % len(pot.Contributors)
	payouts := make([]Payout, len(pot.Contributors))
	for i, id := range pot.Contributors {
		payouts[i] = Payout{PlayerID: id, Amount: share}
		if i < remainder {
			payouts[i].Amount++
		}
	}
	return payouts
}
