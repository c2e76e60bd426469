package game

import "fmt"

// Pot is the wagering ledger for one round. It records how much each
// player has put in, in the order players first contributed.
type Pot struct {
	bets      map[int]int
	order     []int
	total     int
	lastRaise int
}

// NewPot creates an empty pot. The reference raise size starts at the big
// blind.
func NewPot(smallBlind int) *Pot {
	return &Pot{
		bets:      make(map[int]int),
		lastRaise: 2 * smallBlind,
	}
}

// PlayerBet returns how much a player has contributed so far
func (p *Pot) PlayerBet(id int) int {
	return p.bets[id]
}

// CurrentBet is the largest contribution of any player
func (p *Pot) CurrentBet() int {
	current := 0
	for _, bet := range p.bets {
		current = max(current, bet)
	}
	return current
}

// AmountToCall returns the chips a player owes to match the current bet
func (p *Pot) AmountToCall(id int) int {
	return p.CurrentBet() - p.bets[id]
}

// MinimumToBet is the smallest legal bet: the call plus the last raise
func (p *Pot) MinimumToBet(id int) int {
	return max(0, p.AmountToCall(id)+p.lastRaise)
}

// MaximumToBet is the largest legal bet for player. Nobody may raise more
// than the shortest active stack could follow, more than they hold, or more
// than ceiling above the minimum. A ceiling of zero disables that limit.
func (p *Pot) MaximumToBet(player *Player, active []*Player, ceiling int) int {
	minimum := p.MinimumToBet(player.ID)

	headroom := player.Money - minimum
	for _, q := range active {
		headroom = min(headroom, q.Money-p.MinimumToBet(q.ID))
	}

	maximum := min(minimum+headroom, player.Money)
	if ceiling > 0 {
		maximum = min(maximum, minimum+ceiling)
	}
	return maximum
}

// Bet adds chips to a player's contribution
func (p *Pot) Bet(id, amount int) error {
	if amount < 0 {
		return fmt.Errorf("negative bet %d from player %d", amount, id)
	}
	if _, ok := p.bets[id]; !ok {
		p.order = append(p.order, id)
	}
	p.bets[id] += amount
	p.total += amount
	return nil
}

// RecordRaise sets the size the next raise must at least match
func (p *Pot) RecordRaise(size int) {
	if size > 0 {
		p.lastRaise = size
	}
}

// LastRaise returns the current reference raise size
func (p *Pot) LastRaise() int {
	return p.lastRaise
}

// Total returns the chips held by the pot
func (p *Pot) Total() int {
	return p.total
}

// Contributors returns player IDs in first-contribution order
func (p *Pot) Contributors() []int {
	out := make([]int, len(p.order))
	copy(out, p.order)
	return out
}

// TakePotForPlayer withdraws the winner's share: from every contributor,
// as much as the winner staked. Called once per winner, strongest first,
// so an all-in winner can only claim up to their own stake from each
// player.
func (p *Pot) TakePotForPlayer(id int) int {
	stake := p.bets[id]
	winnings := 0
	for _, contributor := range p.order {
		take := min(p.bets[contributor], stake)
		p.bets[contributor] -= take
		winnings += take
	}
	p.total -= winnings
	return winnings
}

// Refund empties the pot, returning each contributor's unclaimed chips
func (p *Pot) Refund() map[int]int {
	refunds := make(map[int]int)
	for _, contributor := range p.order {
		if left := p.bets[contributor]; left > 0 {
			refunds[contributor] = left
			p.bets[contributor] = 0
		}
	}
	p.total = 0
	return refunds
}
