package test

import (
	"math/rand"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
)

func NewRandomDeployment(rng *rand.Rand, opt ...DeploymentOpt) *backend.Deployment {
	d := &backend.Deployment{
		Network:            types.NetworkTest,
		StakeLockDep:       *NewRandomCellDep(rng),
		StakeLockCodeHash:  NewRandomHash(rng),
		StakeLockHashType:  NewRandomHashType(rng),
		PayoutLockDep:      *NewRandomCellDep(rng),
		PayoutLockCodeHash: NewRandomHash(rng),
		PayoutLockHashType: NewRandomHashType(rng),
		AssetTypeDep:       *NewRandomCellDep(rng),
		AssetTypeCodeHash:  NewRandomHash(rng),
		AssetTypeHashType:  NewRandomHashType(rng),
	}
	for _, o := range opt {
		o(d)
	}
	return d
}

type DeploymentOpt func(*backend.Deployment)

func WithNetwork(network types.Network) DeploymentOpt {
	return func(d *backend.Deployment) {
		d.Network = network
	}
}

func WithStakeLock(h types.Hash, dep types.CellDep, t types.ScriptHashType) DeploymentOpt {
	return func(d *backend.Deployment) {
		d.StakeLockCodeHash = h
		d.StakeLockDep = dep
		d.StakeLockHashType = t
	}
}

func WithPayoutLock(h types.Hash, dep types.CellDep, t types.ScriptHashType) DeploymentOpt {
	return func(d *backend.Deployment) {
		d.PayoutLockCodeHash = h
		d.PayoutLockDep = dep
		d.PayoutLockHashType = t
	}
}

func WithAssetType(h types.Hash, dep types.CellDep, t types.ScriptHashType) DeploymentOpt {
	return func(d *backend.Deployment) {
		d.AssetTypeCodeHash = h
		d.AssetTypeDep = dep
		d.AssetTypeHashType = t
	}
}
