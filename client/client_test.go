package client_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/softprodev/ckb-nft-kabletop/client"
	ctest "github.com/softprodev/ckb-nft-kabletop/client/test"
	"github.com/stretchr/testify/require"
	"polycry.pt/poly-go/test"
)

func newRandomCell(rng *rand.Rand) backend.CKBOutput {
	return backend.CKBOutput{
		Output: types.CellOutput{
			Capacity: uint64(rng.Int63()),
			Lock:     btest.NewRandomScript(rng),
		},
		Data: btest.NewRandomBytes(rng, 16),
	}
}

// spending returns a transaction consuming prev at input 1 and carrying two
// round witnesses.
func spending(rng *rand.Rand, prev *types.OutPoint) *types.Transaction {
	return &types.Transaction{
		Inputs: []*types.CellInput{
			{PreviousOutput: btest.NewRandomOutpoint(rng)},
			{PreviousOutput: prev, Since: 42},
		},
		Outputs:     []*types.CellOutput{{Capacity: 1, Lock: btest.NewRandomScript(rng)}},
		OutputsData: [][]byte{{}},
		Witnesses:   [][]byte{{}, {}, {0x01}, {0x02}},
	}
}

func TestScriptContextFromLiveCell(t *testing.T) {
	rng := test.Prng(t)
	op := btest.NewRandomOutpoint(rng)
	cell := newRandomCell(rng)
	rpc := ctest.NewMockRPC(ctest.WithLiveCell(op, cell))
	c := client.NewClient(rpc)

	sc, err := c.ScriptContext(context.Background(), spending(rng, op), 1)
	require.NoError(t, err)
	require.Equal(t, cell.Output.Capacity, sc.Input.Output.Capacity)
	require.Equal(t, cell.Data, sc.Input.Data)
	require.Equal(t, uint64(42), sc.Since)
	require.Equal(t, [][]byte{{0x01}, {0x02}}, sc.Witnesses)
	require.Len(t, sc.Outputs, 1)
	require.Zero(t, rpc.TransactionCalls)
}

func TestScriptContextFromConsumedCell(t *testing.T) {
	rng := test.Prng(t)
	cell := newRandomCell(rng)
	origin := &types.Transaction{
		Outputs:     []*types.CellOutput{{Capacity: 7, Lock: btest.NewRandomScript(rng)}, &cell.Output},
		OutputsData: [][]byte{{}, cell.Data},
	}
	originHash := btest.NewRandomHash(rng)
	op := &types.OutPoint{TxHash: originHash, Index: 1}

	spend := spending(rng, op)
	spendHash := btest.NewRandomHash(rng)
	rpc := ctest.NewMockRPC(
		ctest.WithTransaction(originHash, origin),
		ctest.WithTransaction(spendHash, spend),
	)
	c := client.NewClient(rpc)

	sc, err := c.ScriptContextByHash(context.Background(), spendHash, 1)
	require.NoError(t, err)
	require.Equal(t, cell.Output.Capacity, sc.Input.Output.Capacity)
	require.True(t, sc.Input.HasLock(cell.Output.Lock))
	require.Equal(t, cell.Data, sc.Input.Data)

	t.Run("cached", func(t *testing.T) {
		calls := rpc.LiveCellCalls
		_, err := c.ResolveCell(context.Background(), *op)
		require.NoError(t, err)
		require.Equal(t, calls, rpc.LiveCellCalls)
	})
}

func TestResolveErrors(t *testing.T) {
	rng := test.Prng(t)
	ctx := context.Background()
	c := client.NewClient(ctest.NewMockRPC())

	_, err := c.GetTransaction(ctx, btest.NewRandomHash(rng))
	require.ErrorIs(t, err, client.ErrUnknownTransaction)

	_, err = c.ResolveCell(ctx, *btest.NewRandomOutpoint(rng))
	require.ErrorIs(t, err, client.ErrUnknownTransaction)

	originHash := btest.NewRandomHash(rng)
	c = client.NewClient(ctest.NewMockRPC(ctest.WithTransaction(originHash, &types.Transaction{})))
	_, err = c.ResolveCell(ctx, types.OutPoint{TxHash: originHash, Index: 0})
	require.ErrorIs(t, err, client.ErrUnknownCell)

	tx := spending(rng, btest.NewRandomOutpoint(rng))
	_, err = c.ScriptContext(ctx, tx, 2)
	require.Error(t, err)
	_, err = c.ScriptContext(ctx, nil, 0)
	require.Error(t, err)
}

func TestStableCellCache(t *testing.T) {
	rng := test.Prng(t)
	cache := client.NewStableCellCache()
	op := *btest.NewRandomOutpoint(rng)
	cell := newRandomCell(rng)

	_, ok := cache.Get(op)
	require.False(t, ok)
	require.NoError(t, cache.Set(op, cell))
	require.NoError(t, cache.Set(op, cell), "setting the same cell again is fine")

	other := cell
	other.Data = append([]byte{0xff}, cell.Data...)
	require.Error(t, cache.Set(op, other))

	got, ok := cache.Get(op)
	require.True(t, ok)
	require.Equal(t, cell.Data, got.Data)
}
