package adjudicator

import (
	"fmt"

	"github.com/Pilatuz/bigz/uint128"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
	"github.com/softprodev/ckb-nft-kabletop/channel/defaults"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/script"
)

// Payout is the capacity owed to each party of a settlement.
type Payout struct {
	Players [2]uint64
	// Unclaimed is owed to the reference payout lock with empty args.
	Unclaimed uint64
}

// Deposits splits the stake cell capacity between the players. Player 1
// receives the odd unit.
func Deposits(capacity uint64) [2]uint64 {
	return [2]uint64{capacity - capacity/2, capacity / 2}
}

// ComputePayout returns what each party is owed for outcome.
func ComputePayout(params encoding.GameParameters, capacity uint64, outcome script.Outcome, split DrawSplit) (Payout, error) {
	dep := Deposits(capacity)
	var p Payout
	if !outcome.IsDraw() {
		w, l := outcome.Winner.Index(), outcome.Loser().Index()
		if params.Stake > dep[l] {
			return Payout{}, fmt.Errorf("%w: stake %d exceeds deposit %d", ErrOutputMismatch, params.Stake, dep[l])
		}
		p.Players[w] = dep[w] + params.Stake
		p.Players[l] = dep[l] - params.Stake
		return p, nil
	}
	switch split {
	case DrawReturnDeposits:
		p.Players = dep
	case DrawForfeitStakes:
		for i := range dep {
			if params.Stake > dep[i] {
				return Payout{}, fmt.Errorf("%w: stake %d exceeds deposit %d", ErrOutputMismatch, params.Stake, dep[i])
			}
			p.Players[i] = dep[i] - params.Stake
		}
		p.Unclaimed = 2 * params.Stake
	default:
		return Payout{}, fmt.Errorf("draw split %v", split)
	}
	return p, nil
}

// recipient classifies output locks of a settlement.
type recipient int

const (
	other recipient = iota
	player1
	player2
	unclaimed
)

func (r recipient) String() string {
	switch r {
	case player1:
		return "player1"
	case player2:
		return "player2"
	case unclaimed:
		return "unclaimed"
	}
	return "other"
}

func (a *Adjudicator) recipientOf(params encoding.GameParameters, lock *types.Script) recipient {
	for i, pl := range params.Players {
		if defaults.ClassifyPayoutScript(lock, params.RefHash, pl.Identity, a.cfg.PayoutLocks[i]) != defaults.UnknownPayoutScript {
			return recipient(i + 1)
		}
	}
	if lock != nil && lock.CodeHash == params.RefHash && len(lock.Args) == 0 {
		return unclaimed
	}
	return other
}

// checkOutputs checks that outputs pay p and hand the assets to whom outcome
// says. Outputs carrying assets are not counted as capacity payout.
func (a *Adjudicator) checkOutputs(params encoding.GameParameters, outputs backend.CKBOutputs, p Payout, outcome script.Outcome) error {
	var paid [unclaimed + 1]uint128.Uint128
	for _, o := range outputs {
		if _, ok := asset.FromOutput(o, a.cfg.AssetTypeCodeHash); ok {
			continue
		}
		r := a.recipientOf(params, o.Output.Lock)
		paid[r] = paid[r].Add(uint128.From64(o.Output.Capacity))
	}
	owed := [unclaimed + 1]uint128.Uint128{
		player1:   uint128.From64(p.Players[0]),
		player2:   uint128.From64(p.Players[1]),
		unclaimed: uint128.From64(p.Unclaimed),
	}
	var shortfall uint128.Uint128
	for r := player1; r <= unclaimed; r++ {
		if paid[r].Cmp(owed[r]) > 0 {
			return fmt.Errorf("%w: %v paid %s, owed %s", ErrOutputMismatch, r, paid[r], owed[r])
		}
		shortfall = shortfall.Add(owed[r].Sub(paid[r]))
	}
	if shortfall.Cmp(uint128.From64(a.cfg.FeeAllowance)) > 0 {
		return fmt.Errorf("%w: payouts short by %s, fee allowance is %d", ErrOutputMismatch, shortfall, a.cfg.FeeAllowance)
	}
	return a.checkAssets(params, outputs, outcome)
}

func (a *Adjudicator) checkAssets(params encoding.GameParameters, outputs backend.CKBOutputs, outcome script.Outcome) error {
	locks, err := asset.Locate(outputs, a.cfg.AssetTypeCodeHash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputMismatch, err)
	}
	for owner, pl := range params.Players {
		to := recipient(owner + 1)
		if !outcome.IsDraw() {
			to = recipient(outcome.Winner)
		}
		for _, id := range pl.Assets {
			lock, ok := locks[id]
			if !ok {
				return fmt.Errorf("%w: asset %s not paid out", ErrOutputMismatch, id)
			}
			if got := a.recipientOf(params, lock); got != to {
				return fmt.Errorf("%w: asset %s goes to %v, expected %v", ErrOutputMismatch, id, got, to)
			}
		}
	}
	return nil
}
