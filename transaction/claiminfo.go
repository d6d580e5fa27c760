package transaction

import (
	"errors"
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/channel/defaults"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
)

// ClaimInfo disputes a stake cell with the moves played so far. The last
// move becomes the claimed round.
type ClaimInfo struct {
	Stake StakeInput
	Moves []channel.SignedMove
}

func NewClaimInfo(stake StakeInput, moves []channel.SignedMove) *ClaimInfo {
	return &ClaimInfo{Stake: stake, Moves: moves}
}

func (ci ClaimInfo) Claim() (encoding.DisputeClaim, error) {
	if len(ci.Moves) == 0 {
		return encoding.DisputeClaim{}, errors.New("no moves to claim")
	}
	if len(ci.Moves) > defaults.MaxRounds {
		return encoding.DisputeClaim{}, fmt.Errorf("%d moves exceed %d rounds", len(ci.Moves), defaults.MaxRounds)
	}
	last := ci.Moves[len(ci.Moves)-1]
	return encoding.DisputeClaim{
		RoundOffset: uint8(len(ci.Moves) - 1),
		Signature:   last.Signature,
		Round:       last.Record,
	}, nil
}
