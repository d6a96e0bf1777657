package game

import (
	"fmt"
)

// ProcessAction applies the seat's action. For Bet the amount is the chips to
// bet; for Raise it is the street total to raise to. The call is validated in
// full before anything changes, so a failed action leaves the engine exactly
// as it was.
func (e *Engine) ProcessAction(seat int, action Action, amount int) (State, error) {
	commit, err := e.validate(seat, action, amount)
	if err != nil {
		return State{}, err
	}

	p := e.players[seat]
	phase := e.phase
	committed := 0

	switch action {
	case Fold:
		p.Folded = true
		e.pending[seat] = false
	case Check:
		e.pending[seat] = false
	case Call:
		committed = p.commit(commit)
		e.pending[seat] = false
	case Bet, Raise:
		committed = p.commit(commit)
		e.currentBet = max(e.currentBet, p.CurrentBet)
		e.resetPending(seat)
	case AllIn:
		committed = p.commit(p.Stack)
		if p.CurrentBet > e.currentBet {
			e.currentBet = p.CurrentBet
			e.resetPending(seat)
		} else {
			e.pending[seat] = false
		}
	}

	e.log = append(e.log, ActionLogEntry{
		HandNumber: e.handNumber,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     action,
		Amount:     committed,
		Phase:      phase,
		Timestamp:  e.clock.Now().UTC(),
	})
	e.logger.Debug("action",
		"hand", e.handNumber,
		"player", p.ID,
		"action", action,
		"amount", committed,
		"phase", phase)

	if err := e.progress(seat); err != nil {
		return State{}, err
	}
	return e.State(), nil
}

// validate checks an action against the current state and returns the chips
// it would commit
func (e *Engine) validate(seat int, action Action, amount int) (int, error) {
	if !e.phase.IsBetting() {
		return 0, fmt.Errorf("%w: no betting in phase %s", ErrPrecondition, e.phase)
	}
	if seat < 0 || seat >= len(e.players) {
		return 0, fmt.Errorf("%w: no seat %d", ErrPrecondition, seat)
	}
	p := e.players[seat]
	if seat != e.current {
		return 0, fmt.Errorf("%w: not %s's turn", ErrPrecondition, p.Name)
	}
	if !p.CanAct() {
		return 0, fmt.Errorf("%w: %s cannot act", ErrPrecondition, p.Name)
	}

	toCall := e.currentBet - p.CurrentBet

	switch action {
	case Fold:
		return 0, nil

	case Check:
		if toCall > 0 {
			return 0, fmt.Errorf("%w: cannot check facing %d, call or raise", ErrIllegalAction, toCall)
		}
		return 0, nil

	case Call:
		if toCall <= 0 {
			return 0, fmt.Errorf("%w: nothing to call, check instead", ErrIllegalAction)
		}
		return min(toCall, p.Stack), nil

	case Bet:
		if e.currentBet != 0 {
			return 0, fmt.Errorf("%w: cannot bet, there is already a bet of %d", ErrIllegalAction, e.currentBet)
		}
		if amount <= 0 {
			return 0, fmt.Errorf("%w: bet amount must be positive, got %d", ErrIllegalAction, amount)
		}
		if amount < e.bigBlind && amount < p.Stack {
			return 0, fmt.Errorf("%w: minimum bet is %d, got %d", ErrIllegalAction, e.bigBlind, amount)
		}
		return min(amount, p.Stack), nil

	case Raise:
		if e.currentBet == 0 {
			return 0, fmt.Errorf("%w: cannot raise, there is no bet", ErrIllegalAction)
		}
		if p.Stack <= toCall {
			return 0, fmt.Errorf("%w: stack of %d cannot raise over %d to call", ErrIllegalAction, p.Stack, toCall)
		}
		minTarget := e.currentBet + e.bigBlind
		if amount < minTarget {
			return 0, fmt.Errorf("%w: minimum raise is to %d, got %d", ErrIllegalAction, minTarget, amount)
		}
		return min(amount-p.CurrentBet, p.Stack), nil

	case AllIn:
		return p.Stack, nil

	default:
		return 0, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, action)
	}
}

// progress moves the hand forward after an action: it ends the hand when a
// single player is left, closes finished betting rounds, deals out streets
// nobody can bet on and finally hands the turn to the next pending seat after
// from.
func (e *Engine) progress(from int) error {
	for {
		if e.countPlayers(func(p *Player) bool { return !p.Folded }) == 1 {
			e.awardUncontested()
			return nil
		}
		if !e.roundClosed() {
			e.current = e.nextPending(from)
			return nil
		}
		if err := e.advanceStreet(); err != nil {
			return err
		}
		if e.phase == Showdown {
			return nil
		}
		// Postflop action starts left of the button
		from = e.dealer
	}
}

// roundClosed reports whether the current street is finished: nobody owes a
// decision, or at most one player can still bet and they are not facing one
func (e *Engine) roundClosed() bool {
	pending := false
	for _, owes := range e.pending {
		pending = pending || owes
	}
	if !pending {
		return true
	}

	canAct := 0
	facingBet := false
	for _, p := range e.players {
		if p.CanAct() {
			canAct++
			facingBet = facingBet || p.CurrentBet < e.currentBet
		}
	}
	return canAct <= 1 && !facingBet
}

// nextPending returns the next seat after from that owes a decision
func (e *Engine) nextPending(from int) int {
	n := len(e.players)
	for off := 1; off <= n; off++ {
		if seat := (from + off) % n; e.pending[seat] {
			return seat
		}
	}
	return -1
}

// resetPending marks every player able to act as owing a decision, except
// the given seat
func (e *Engine) resetPending(except int) {
	for i, p := range e.players {
		e.pending[i] = i != except && p.CanAct()
	}
}

func (e *Engine) clearPending() {
	for i := range e.pending {
		e.pending[i] = false
	}
}

// advanceStreet clears street bets and deals the next street, or settles
// the hand after the river
func (e *Engine) advanceStreet() error {
	e.currentBet = 0
	for _, p := range e.players {
		p.CurrentBet = 0
	}

	var deal int
	switch e.phase {
	case PreFlop:
		deal = 3
	case Flop, Turn:
		deal = 1
	case River:
		e.phase = Showdown
		e.clearPending()
		e.current = -1
		return e.settle()
	default:
		return fmt.Errorf("%w: cannot advance from phase %s", ErrPrecondition, e.phase)
	}

	if err := e.deck.Burn(); err != nil {
		return fmt.Errorf("burning before %s: %w", e.phase+1, err)
	}
	cards, err := e.deck.Deal(deal)
	if err != nil {
		return fmt.Errorf("dealing %s: %w", e.phase+1, err)
	}
	e.board = append(e.board, cards...)
	e.phase++
	e.current = -1
	e.resetPending(-1)

	e.logger.Debug("street dealt", "hand", e.handNumber, "phase", e.phase, "board", e.board)
	return nil
}
