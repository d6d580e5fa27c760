package transaction

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/channel/adjudicator"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/script"
)

// PayoutInfo describes how a stake cell is paid out.
type PayoutInfo struct {
	Stake   StakeInput
	Params  encoding.GameParameters
	Outcome script.Outcome
	Split   adjudicator.DrawSplit
	// Fee is withheld from the largest payout.
	Fee    uint64
	Assets []AssetCell
	// PayoutLocks optionally replace the reference payout lock per player.
	PayoutLocks [2]*types.Script
}

// SettleInfo pays out a stake cell according to a full move chain.
type SettleInfo struct {
	Payout PayoutInfo
	Moves  []channel.SignedMove
}

func NewSettleInfo(payout PayoutInfo, moves []channel.SignedMove) *SettleInfo {
	return &SettleInfo{Payout: payout, Moves: moves}
}

// TimeoutInfo pays out a disputed stake cell once its window expired. Since
// is the block number the input is locked until.
type TimeoutInfo struct {
	Payout PayoutInfo
	Since  uint64
}

func NewTimeoutInfo(payout PayoutInfo, since uint64) *TimeoutInfo {
	return &TimeoutInfo{Payout: payout, Since: since}
}
