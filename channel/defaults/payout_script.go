package defaults

import (
	"bytes"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
)

type KnownPayoutScript int

const (
	UnknownPayoutScript KnownPayoutScript = iota
	// RefHashPayoutScript is the payout lock named by the game's reference
	// hash with the player's identity as args.
	RefHashPayoutScript
	// NominatedPayoutScript is a lock the player nominated explicitly.
	NominatedPayoutScript
)

func (k KnownPayoutScript) String() string {
	switch k {
	case RefHashPayoutScript:
		return "ref-hash"
	case NominatedPayoutScript:
		return "nominated"
	}
	return "unknown"
}

// ClassifyPayoutScript checks whether lock pays out to the player with the
// given identity. nominated may be nil.
func ClassifyPayoutScript(lock *types.Script, refHash types.Hash, id address.Identity, nominated *types.Script) KnownPayoutScript {
	if lock == nil {
		return UnknownPayoutScript
	}
	if lock.CodeHash == refHash && bytes.Equal(lock.Args, id[:]) {
		return RefHashPayoutScript
	}
	if nominated != nil && lock.Equals(nominated) {
		return NominatedPayoutScript
	}
	return UnknownPayoutScript
}
