package adjudicator

import "fmt"

// Phase is the state of a stake cell.
type Phase int

const (
	// AwaitingMoves: the cell holds game parameters only.
	AwaitingMoves Phase = iota
	// Disputed: the cell holds a dispute claim and its window is running.
	Disputed
	// Settled: the cell was consumed and paid out.
	Settled
)

func (p Phase) String() string {
	switch p {
	case AwaitingMoves:
		return "awaiting-moves"
	case Disputed:
		return "disputed"
	case Settled:
		return "settled"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Event is what a transaction does to a stake cell.
type Event int

const (
	// Claim produces a successor cell with a dispute claim.
	Claim Event = iota
	// Settle pays out according to a supplied move chain.
	Settle
	// Timeout pays out according to the embedded claim alone.
	Timeout
)

func (e Event) String() string {
	switch e {
	case Claim:
		return "claim"
	case Settle:
		return "settle"
	case Timeout:
		return "timeout"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// NextPhase is the transition function of a stake cell.
func NextPhase(from Phase, e Event) (Phase, error) {
	switch {
	case from == AwaitingMoves && e == Claim:
		return Disputed, nil
	case from == AwaitingMoves && e == Settle:
		return Settled, nil
	case from == Disputed && e == Claim:
		return Disputed, nil
	case from == Disputed && e == Settle:
		return Settled, nil
	case from == Disputed && e == Timeout:
		return Settled, nil
	}
	return 0, fmt.Errorf("%w: no %v transition from %v", ErrWrongPriorState, e, from)
}
