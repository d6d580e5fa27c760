package script

import (
	"encoding/binary"

	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
)

// State is threaded through every fragment of a replay. Fragments may only
// change Winner; the other fields describe the round being executed.
type State struct {
	// Winner is zero while unset.
	Winner encoding.Mover
	Round  int
	Mover  encoding.Mover
	// Seed holds the first 16 bytes of the round signature as two little
	// endian words. It is identical on every node.
	Seed [2]uint64
}

func (s *State) enterRound(round int, m encoding.Mover, sig wallet.Signature) {
	s.Round = round
	s.Mover = m
	s.Seed[0] = binary.LittleEndian.Uint64(sig[0:8])
	s.Seed[1] = binary.LittleEndian.Uint64(sig[8:16])
}

// Outcome is the result of a replay.
type Outcome struct {
	Winner encoding.Mover
}

func (o Outcome) IsDraw() bool {
	return o.Winner == 0
}

// Loser returns the opponent of the winner. It must not be called on a draw.
func (o Outcome) Loser() encoding.Mover {
	return o.Winner.Opponent()
}

func (o Outcome) String() string {
	if o.IsDraw() {
		return "draw"
	}
	return o.Winner.String() + " wins"
}
