package transaction

import (
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/collector"
	"github.com/nervosnetwork/ckb-sdk-go/v2/transaction"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/channel/adjudicator"
	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/encoding/molecule"
)

// KabletopScriptHandler builds transactions around stake cells for a
// deployment of the kabletop scripts. Open transactions go through the sdk
// builder, which funds them. Claim, settle and timeout transactions consume
// the stake cell and are built directly; the returned transactions are
// unsigned.
type KabletopScriptHandler struct {
	deployment backend.Deployment
}

var _ collector.ScriptHandler = (*KabletopScriptHandler)(nil)

func NewKabletopScriptHandler(deployment backend.Deployment) *KabletopScriptHandler {
	return &KabletopScriptHandler{deployment: deployment}
}

// BuildTransaction implements collector.ScriptHandler.
func (ksh *KabletopScriptHandler) BuildTransaction(builder collector.TransactionBuilder, group *transaction.ScriptGroup, context interface{}) (bool, error) {
	var openInfo *OpenInfo
	switch v := context.(type) {
	case OpenInfo:
		openInfo = &v
	case *OpenInfo:
		openInfo = v
	default:
		return false, nil
	}
	if err := openInfo.Params.Validate(); err != nil {
		return false, fmt.Errorf("invalid game parameters: %w", err)
	}
	builder.AddCellDep(&ksh.deployment.StakeLockDep)
	stakeCell, stakeData := openInfo.MkStakeCell(ksh.deployment).AsOutputAndData()
	builder.AddOutput(&stakeCell, stakeData)
	return true, nil
}

// ClaimTransaction disputes the stake cell. The successor cell keeps lock
// and capacity and stores the claim.
func (ksh *KabletopScriptHandler) ClaimTransaction(info *ClaimInfo) (*types.Transaction, error) {
	claim, err := info.Claim()
	if err != nil {
		return nil, err
	}
	successor := info.Stake.Cell.Output
	tx := ksh.mkTransaction([]types.CellInput{info.Stake.Input}, info.Moves)
	tx.Outputs = append(tx.Outputs, &successor)
	tx.OutputsData = append(tx.OutputsData, claim.Pack())
	return tx, nil
}

// SettleTransaction pays out the stake cell according to the moves.
func (ksh *KabletopScriptHandler) SettleTransaction(info *SettleInfo) (*types.Transaction, error) {
	if len(info.Moves) == 0 {
		return nil, errors.New("settlement without moves")
	}
	return ksh.mkPayoutTransaction(info.Payout, 0, info.Moves)
}

// TimeoutTransaction pays out a disputed stake cell without new moves.
func (ksh *KabletopScriptHandler) TimeoutTransaction(info *TimeoutInfo) (*types.Transaction, error) {
	since := backend.BlockNumberSince(info.Since, true)
	return ksh.mkPayoutTransaction(info.Payout, since.Raw(), nil)
}

func (ksh *KabletopScriptHandler) mkPayoutTransaction(info PayoutInfo, since uint64, moves []channel.SignedMove) (*types.Transaction, error) {
	stakeInput := info.Stake.Input
	stakeInput.Since = since
	inputs := []types.CellInput{stakeInput}
	for _, a := range info.Assets {
		inputs = append(inputs, a.Input)
	}
	tx := ksh.mkTransaction(inputs, moves)

	payout, err := adjudicator.ComputePayout(info.Params, info.Stake.Cell.Output.Capacity, info.Outcome, info.Split)
	if err != nil {
		return nil, err
	}
	if err := withholdFee(&payout, info.Fee); err != nil {
		return nil, err
	}
	for i, c := range payout.Players {
		if c == 0 {
			continue
		}
		tx.Outputs = append(tx.Outputs, ksh.mkPaymentOutput(ksh.payoutLock(info, i), c))
		tx.OutputsData = append(tx.OutputsData, []byte{})
	}
	if payout.Unclaimed > 0 {
		lock := &types.Script{CodeHash: info.Params.RefHash, HashType: ksh.deployment.PayoutLockHashType}
		tx.Outputs = append(tx.Outputs, ksh.mkPaymentOutput(lock, payout.Unclaimed))
		tx.OutputsData = append(tx.OutputsData, []byte{})
	}

	for _, a := range info.Assets {
		id, ok := asset.FromOutput(a.Cell, ksh.deployment.AssetTypeCodeHash)
		if !ok {
			return nil, errors.New("asset cell without asset type")
		}
		owner, err := ownerOf(info.Params, id)
		if err != nil {
			return nil, err
		}
		to := owner
		if !info.Outcome.IsDraw() {
			to = info.Outcome.Winner
		}
		out := a.Cell.Output
		out.Lock = ksh.payoutLock(info, to.Index())
		tx.Outputs = append(tx.Outputs, &out)
		tx.OutputsData = append(tx.OutputsData, a.Cell.Data)
	}
	return tx, nil
}

// mkTransaction lays out inputs with one empty witness each, followed by
// one witness per round.
func (ksh *KabletopScriptHandler) mkTransaction(inputs []types.CellInput, moves []channel.SignedMove) *types.Transaction {
	tx := &types.Transaction{
		CellDeps: ksh.deployment.CellDeps(),
	}
	for i := range inputs {
		in := inputs[i]
		tx.Inputs = append(tx.Inputs, &in)
		tx.Witnesses = append(tx.Witnesses, []byte{})
	}
	for _, m := range moves {
		tx.Witnesses = append(tx.Witnesses, molecule.PackRoundWitness(molecule.RoundWitness{
			Signature: m.Signature,
			Round:     m.Record,
		}))
	}
	return tx
}

func (ksh *KabletopScriptHandler) payoutLock(info PayoutInfo, player int) *types.Script {
	if l := info.PayoutLocks[player]; l != nil {
		return l
	}
	id := info.Params.Players[player].Identity
	return &types.Script{
		CodeHash: info.Params.RefHash,
		HashType: ksh.deployment.PayoutLockHashType,
		Args:     id[:],
	}
}

func (ksh *KabletopScriptHandler) mkPaymentOutput(lock *types.Script, capacity uint64) *types.CellOutput {
	return &types.CellOutput{
		Capacity: capacity,
		Lock:     lock,
		Type:     nil,
	}
}

func withholdFee(p *adjudicator.Payout, fee uint64) error {
	i := 0
	if p.Players[1] > p.Players[0] {
		i = 1
	}
	if p.Players[i] < fee {
		return fmt.Errorf("fee %d exceeds largest payout %d", fee, p.Players[i])
	}
	p.Players[i] -= fee
	return nil
}

func ownerOf(params encoding.GameParameters, id asset.ID) (encoding.Mover, error) {
	switch {
	case params.Players[0].Assets.Contains(id):
		return encoding.Player1, nil
	case params.Players[1].Assets.Contains(id):
		return encoding.Player2, nil
	}
	return 0, fmt.Errorf("asset %s belongs to neither player", id)
}
