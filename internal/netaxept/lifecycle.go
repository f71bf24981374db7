package netaxept

import (
	"fmt"
	"strings"
)

// State is the gateway-side lifecycle position of a transaction. The client
// never stores it; callers obtain it from PaymentInfo.State or track it
// themselves and use the functions below as a pre-flight hint.
type State int

const (
	StateNew State = iota
	StateRegistered
	StateAuthorized
	StateSold
	StateCaptured
	StateCredited
	StateAnnulled
	StateFailed
)

var stateNames = map[State]string{
	StateNew:        "new",
	StateRegistered: "registered",
	StateAuthorized: "authorized",
	StateSold:       "sold",
	StateCaptured:   "captured",
	StateCredited:   "credited",
	StateAnnulled:   "annulled",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func ParseState(s string) (State, error) {
	for state, name := range stateNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return state, nil
		}
	}
	return StateNew, fmt.Errorf("unknown transaction state %q", s)
}

type transition struct {
	from State
	op   Operation
}

// transitions excludes Query, which is legal everywhere and changes nothing.
var transitions = map[transition]State{
	{StateNew, OpRegister}:       StateRegistered,
	{StateRegistered, OpAuth}:    StateAuthorized,
	{StateRegistered, OpSale}:    StateSold,
	{StateAuthorized, OpCapture}: StateCaptured,
	{StateSold, OpCredit}:        StateCredited,
	{StateCaptured, OpCredit}:    StateCredited,
	{StateRegistered, OpAnnul}:   StateAnnulled,
	{StateAuthorized, OpAnnul}:   StateAnnulled,
	{StateSold, OpAnnul}:         StateAnnulled,
}

// Next returns the state after op succeeds from s.
func Next(s State, op Operation) (State, bool) {
	if op == OpQuery {
		return s, true
	}
	next, ok := transitions[transition{s, op}]
	return next, ok
}

func Permits(s State, op Operation) bool {
	_, ok := Next(s, op)
	return ok
}

// AllowedOperations lists the operations the table allows from s, in a stable
// order.
func AllowedOperations(s State) []Operation {
	var allowed []Operation
	for _, op := range operations {
		if Permits(s, op) {
			allowed = append(allowed, op)
		}
	}
	return allowed
}

func CheckTransition(s State, op Operation) error {
	if !op.Valid() {
		return &InvalidOperationError{Operation: op}
	}
	if !Permits(s, op) {
		return &IllegalTransitionError{From: s, Operation: op}
	}
	return nil
}

// Outcome is the state a caller should assume after op returned. A rejected
// mutation yields StateFailed; a query leaves the state untouched either way.
// A success the table does not list is still believed: the result is the state
// op leads to from anywhere.
func Outcome(s State, op Operation, successful bool) State {
	if op == OpQuery {
		return s
	}
	if !successful {
		return StateFailed
	}
	if next, ok := Next(s, op); ok {
		return next
	}
	for t, next := range transitions {
		if t.op == op {
			return next
		}
	}
	return s
}
