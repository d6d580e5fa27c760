package transaction

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
)

// OpenInfo creates a stake cell. Capacity holds both deposits.
type OpenInfo struct {
	Params   encoding.GameParameters
	Capacity uint64
}

func NewOpenInfo(params encoding.GameParameters, capacity uint64) *OpenInfo {
	return &OpenInfo{Params: params, Capacity: capacity}
}

// MkStakeCell returns the stake cell guarded by the deployed stake lock with
// the encoded game parameters as args.
func (oi OpenInfo) MkStakeCell(d backend.Deployment) backend.CKBOutput {
	return backend.CKBOutput{
		Output: types.CellOutput{
			Capacity: oi.Capacity,
			Lock:     d.StakeLockScript(oi.Params.Pack()),
		},
		Data: []byte{},
	}
}
