package test

import (
	"math/rand"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

func NewRandomCellDep(rng *rand.Rand) *types.CellDep {
	return &types.CellDep{
		OutPoint: NewRandomOutpoint(rng),
		DepType:  types.DepTypeCode,
	}
}

func NewRandomOutpoint(rng *rand.Rand) *types.OutPoint {
	return &types.OutPoint{
		TxHash: NewRandomHash(rng),
		Index:  rng.Uint32(),
	}
}

func NewRandomHash(rng *rand.Rand) types.Hash {
	bytes := make([]byte, 32)
	_, _ = rng.Read(bytes)
	return types.BytesToHash(bytes)
}

func NewRandomHashType(rng *rand.Rand) types.ScriptHashType {
	types := []types.ScriptHashType{
		types.HashTypeData,
		types.HashTypeType,
		types.HashTypeData1,
	}

	return types[rng.Intn(len(types))]
}

func NewRandomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	_, _ = rng.Read(b)
	return b
}
