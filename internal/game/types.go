package game

import (
	"fmt"
	"strings"
)

// Phase is the stage of the current hand
type Phase uint8

const (
	Waiting Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	Complete
)

var phaseNames = [...]string{
	Waiting:  "waiting",
	PreFlop:  "pre_flop",
	Flop:     "flop",
	Turn:     "turn",
	River:    "river",
	Showdown: "showdown",
	Complete: "complete",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

// IsBetting reports whether players act in this phase
func (p Phase) IsBetting() bool {
	return p >= PreFlop && p <= River
}

// IsHandOver reports whether the hand has been settled
func (p Phase) IsHandOver() bool {
	return p == Showdown || p == Complete
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Action is a player's betting decision
type Action uint8

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

var actionNames = [...]string{
	Fold:  "fold",
	Check: "check",
	Call:  "call",
	Bet:   "bet",
	Raise: "raise",
	AllIn: "all_in",
}

// Actions lists every action in declaration order
var Actions = []Action{Fold, Check, Call, Bet, Raise, AllIn}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", a)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction parses an action name. It accepts "allin" and "all-in" as well
// as "all_in", in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "x":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "bet", "b":
		return Bet, nil
	case "raise", "r":
		return Raise, nil
	case "all_in", "allin", "all-in", "a":
		return AllIn, nil
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, s)
}

// Decision is an action together with its amount. For Bet the amount is the
// chips to put in; for Raise it is the street total to raise to. Other
// actions ignore it.
type Decision struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (d Decision) String() string {
	if d.Action == Bet || d.Action == Raise {
		return fmt.Sprintf("%s %d", d.Action, d.Amount)
	}
	return d.Action.String()
}
