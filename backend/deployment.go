package backend

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

// Deployment contains all information about the deployed scripts necessary to
// build and verify kabletop stake transactions on a network.
type Deployment struct {
	Network types.Network

	// StakeLock is the kabletop verifier guarding stake cells. Its args are
	// the encoded game parameters.
	StakeLockDep      types.CellDep
	StakeLockCodeHash types.Hash
	StakeLockHashType types.ScriptHashType

	// PayoutLock is the lock players are paid out to. Its code hash is the
	// reference hash recorded in the game parameters, its args the player's
	// identity.
	PayoutLockDep      types.CellDep
	PayoutLockCodeHash types.Hash
	PayoutLockHashType types.ScriptHashType

	// AssetType guards collectible asset cells. Its args are the asset id.
	AssetTypeDep      types.CellDep
	AssetTypeCodeHash types.Hash
	AssetTypeHashType types.ScriptHashType
}

func (d Deployment) StakeLockScript(args []byte) *types.Script {
	return &types.Script{
		CodeHash: d.StakeLockCodeHash,
		HashType: d.StakeLockHashType,
		Args:     args,
	}
}

func (d Deployment) PayoutLockScript(identity []byte) *types.Script {
	return &types.Script{
		CodeHash: d.PayoutLockCodeHash,
		HashType: d.PayoutLockHashType,
		Args:     identity,
	}
}

func (d Deployment) AssetTypeScript(id []byte) *types.Script {
	return &types.Script{
		CodeHash: d.AssetTypeCodeHash,
		HashType: d.AssetTypeHashType,
		Args:     id,
	}
}

// CellDeps returns the dependencies every stake transaction needs.
func (d Deployment) CellDeps() []*types.CellDep {
	stake, payout, asset := d.StakeLockDep, d.PayoutLockDep, d.AssetTypeDep
	return []*types.CellDep{&stake, &payout, &asset}
}
