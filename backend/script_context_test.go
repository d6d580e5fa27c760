package backend_test

import (
	"testing"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"
)

func TestNewScriptContext(t *testing.T) {
	rng := pkgtest.Prng(t)
	lock := btest.NewRandomScriptWithArgs(rng, []byte{1, 2, 3})
	other := btest.NewRandomScript(rng)
	cell := backend.CKBOutput{
		Output: types.CellOutput{Capacity: 2000, Lock: lock},
	}
	tx := &types.Transaction{
		Inputs: []*types.CellInput{
			{PreviousOutput: btest.NewRandomOutpoint(rng)},
			{PreviousOutput: btest.NewRandomOutpoint(rng), Since: 10036},
		},
		Outputs: []*types.CellOutput{
			{Capacity: 1500, Lock: other},
			{Capacity: 2000, Lock: lock},
		},
		OutputsData: [][]byte{{}, {0xaa}},
		Witnesses:   [][]byte{{}, {}, {0x01}, {0x02}},
	}

	ctx, err := backend.NewScriptContext(tx, 1, cell)
	require.NoError(t, err)
	require.Equal(t, uint64(10036), ctx.Since)
	require.Equal(t, [][]byte{{0x01}, {0x02}}, ctx.Witnesses)
	require.Equal(t, []byte{1, 2, 3}, ctx.LockArgs())
	require.Len(t, ctx.Outputs, 2)

	successors := ctx.Successors()
	require.Len(t, successors, 1)
	require.Equal(t, []byte{0xaa}, successors[0].Data)
	require.True(t, successors[0].HasLock(lock))

	t.Run("no round witnesses", func(t *testing.T) {
		noWitness := *tx
		noWitness.Witnesses = [][]byte{{}, {}}
		ctx, err := backend.NewScriptContext(&noWitness, 0, cell)
		require.NoError(t, err)
		require.Empty(t, ctx.Witnesses)
	})

	t.Run("input index out of range", func(t *testing.T) {
		_, err := backend.NewScriptContext(tx, 2, cell)
		require.Error(t, err)
	})

	t.Run("output data mismatch", func(t *testing.T) {
		broken := *tx
		broken.OutputsData = [][]byte{{}}
		_, err := backend.NewScriptContext(&broken, 0, cell)
		require.Error(t, err)
	})
}
