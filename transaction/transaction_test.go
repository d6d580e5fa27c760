package transaction_test

import (
	"math/rand"
	"testing"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/channel/adjudicator"
	ctest "github.com/softprodev/ckb-nft-kabletop/channel/test"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/encoding/molecule"
	"github.com/softprodev/ckb-nft-kabletop/script"
	"github.com/softprodev/ckb-nft-kabletop/transaction"
	txtest "github.com/softprodev/ckb-nft-kabletop/transaction/test"
	"github.com/stretchr/testify/require"
	ptest "polycry.pt/poly-go/test"
)

const (
	capacity = 2000
	stake    = 500
)

type setup struct {
	deployment *backend.Deployment
	params     encoding.GameParameters
	stake      transaction.StakeInput
	moves      []channel.SignedMove
	ksh        *transaction.KabletopScriptHandler
}

func newSetup(t *testing.T, rng *rand.Rand, rounds int) setup {
	players := ctest.NewRandomPlayers(rng)
	d := btest.NewRandomDeployment(rng)
	params := ctest.NewRandomParameters(rng, players,
		ctest.WithStake(stake),
		ctest.WithRefHash(d.PayoutLockCodeHash))
	s := setup{
		deployment: d,
		params:     params,
		stake: transaction.StakeInput{
			Input: types.CellInput{PreviousOutput: btest.NewRandomOutpoint(rng)},
			Cell:  transaction.NewOpenInfo(params, capacity).MkStakeCell(*d),
		},
		ksh: transaction.NewKabletopScriptHandler(*d),
	}
	anchor := channel.Anchor(s.stake.Cell.LockHash(), capacity)
	moves, err := ctest.SignChain(players, anchor, ctest.NewRandomRecords(rng, rounds, encoding.Player1))
	require.NoError(t, err)
	s.moves = moves
	return s
}

func (s setup) payoutInfo(out script.Outcome, split adjudicator.DrawSplit) transaction.PayoutInfo {
	return transaction.PayoutInfo{
		Stake:   s.stake,
		Params:  s.params,
		Outcome: out,
		Split:   split,
	}
}

func requireRoundWitnesses(t *testing.T, moves []channel.SignedMove, witnesses [][]byte) {
	require.Len(t, witnesses, len(moves))
	for i, w := range witnesses {
		rw, err := molecule.UnpackRoundWitness(w)
		require.NoError(t, err)
		require.Equal(t, moves[i].Signature, rw.Signature)
		require.Equal(t, moves[i].Record, rw.Round)
	}
}

func TestOpenInfo(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 1)

	cell := s.stake.Cell
	require.Equal(t, uint64(capacity), cell.Output.Capacity)
	require.Equal(t, s.deployment.StakeLockCodeHash, cell.Output.Lock.CodeHash)
	params, err := encoding.UnpackGameParameters(cell.Output.Lock.Args)
	require.NoError(t, err)
	require.Equal(t, s.params, params)

	b := transaction.NewKabletopTransactionBuilder(types.NetworkTest, nil, s.ksh)
	ok, err := s.ksh.BuildTransaction(b, nil, transaction.NewOpenInfo(s.params, capacity))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ksh.BuildTransaction(b, nil, struct{}{})
	require.NoError(t, err)
	require.False(t, ok, "foreign contexts are ignored")

	invalid := s.params
	invalid.Players[1].Identity = invalid.Players[0].Identity
	_, err = s.ksh.BuildTransaction(b, nil, *transaction.NewOpenInfo(invalid, capacity))
	require.Error(t, err)
}

func TestClaimTransaction(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 3)

	tx, err := s.ksh.ClaimTransaction(transaction.NewClaimInfo(s.stake, s.moves))
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.CellDeps, 3)
	require.Equal(t, []byte{}, tx.Witnesses[0])
	requireRoundWitnesses(t, s.moves, tx.Witnesses[1:])

	require.Len(t, tx.Outputs, 1)
	require.True(t, tx.Outputs[0].Lock.Equals(s.stake.Cell.Output.Lock))
	require.Equal(t, uint64(capacity), tx.Outputs[0].Capacity)
	claim, err := encoding.UnpackDisputeClaim(tx.OutputsData[0])
	require.NoError(t, err)
	require.Equal(t, uint8(2), claim.RoundOffset)
	require.Equal(t, s.moves[2].Signature, claim.Signature)
	require.Equal(t, s.moves[2].Record, claim.Round)

	_, err = s.ksh.ClaimTransaction(transaction.NewClaimInfo(s.stake, nil))
	require.Error(t, err)
}

func TestSettleTransaction(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 2)

	info := s.payoutInfo(script.Outcome{Winner: encoding.Player2}, adjudicator.DrawReturnDeposits)
	info.Fee = 10
	tx, err := s.ksh.SettleTransaction(transaction.NewSettleInfo(info, s.moves))
	require.NoError(t, err)
	require.Zero(t, tx.Inputs[0].Since)
	requireRoundWitnesses(t, s.moves, tx.Witnesses[1:])

	require.Len(t, tx.Outputs, 2)
	for i, want := range []uint64{500, 1490} {
		out := tx.Outputs[i]
		require.Equal(t, want, out.Capacity)
		require.Equal(t, s.params.RefHash, out.Lock.CodeHash)
		require.Equal(t, s.deployment.PayoutLockHashType, out.Lock.HashType)
		require.Equal(t, s.params.Players[i].Identity[:], out.Lock.Args)
	}

	_, err = s.ksh.SettleTransaction(transaction.NewSettleInfo(info, nil))
	require.Error(t, err, "settlement needs moves")

	info.Fee = 1501
	_, err = s.ksh.SettleTransaction(transaction.NewSettleInfo(info, s.moves))
	require.Error(t, err, "fee exceeds the largest payout")
}

func TestSettleTransactionAssets(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 1)

	var assets []transaction.AssetCell
	for i, pl := range s.params.Players {
		owner := s.deployment.PayoutLockScript(s.params.Players[i].Identity[:])
		for _, id := range pl.Assets {
			id := id
			assets = append(assets, transaction.AssetCell{
				Input: types.CellInput{PreviousOutput: btest.NewRandomOutpoint(rng)},
				Cell: backend.CKBOutput{
					Output: types.CellOutput{Capacity: 142, Lock: owner, Type: s.deployment.AssetTypeScript(id[:])},
					Data:   []byte{byte(i)},
				},
			})
		}
	}

	for _, out := range []script.Outcome{{Winner: encoding.Player1}, {}} {
		info := s.payoutInfo(out, adjudicator.DrawReturnDeposits)
		info.Assets = assets
		tx, err := s.ksh.SettleTransaction(transaction.NewSettleInfo(info, s.moves))
		require.NoError(t, err)
		require.Len(t, tx.Inputs, 1+len(assets))
		require.Len(t, tx.Witnesses, 1+len(assets)+len(s.moves))

		outputs := backend.MkCKBOutputsFromTransaction(tx)
		located := 0
		for _, o := range outputs {
			if o.Output.Type == nil {
				continue
			}
			located++
			owner := encoding.Player1
			if o.Data[0] == 1 {
				owner = encoding.Player2
			}
			to := owner
			if !out.IsDraw() {
				to = out.Winner
			}
			identity := s.params.Player(to).Identity
			require.Equal(t, identity[:], o.Output.Lock.Args, "asset of %v after %v", owner, out)
		}
		require.Equal(t, len(assets), located)
	}
}

func TestSettleTransactionDrawForfeit(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 2)

	tx, err := s.ksh.SettleTransaction(transaction.NewSettleInfo(
		s.payoutInfo(script.Outcome{}, adjudicator.DrawForfeitStakes), s.moves))
	require.NoError(t, err)
	require.Len(t, tx.Outputs, 3)
	require.Equal(t, uint64(500), tx.Outputs[0].Capacity)
	require.Equal(t, uint64(500), tx.Outputs[1].Capacity)
	unclaimed := tx.Outputs[2]
	require.Equal(t, uint64(1000), unclaimed.Capacity)
	require.Equal(t, s.params.RefHash, unclaimed.Lock.CodeHash)
	require.Empty(t, unclaimed.Lock.Args)
}

func TestNominatedPayoutLock(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 1)

	nominated := btest.NewRandomScript(rng)
	info := s.payoutInfo(script.Outcome{Winner: encoding.Player1}, adjudicator.DrawReturnDeposits)
	info.PayoutLocks[0] = nominated
	tx, err := s.ksh.SettleTransaction(transaction.NewSettleInfo(info, s.moves))
	require.NoError(t, err)
	require.True(t, tx.Outputs[0].Lock.Equals(nominated))
	require.Equal(t, s.params.Players[1].Identity[:], tx.Outputs[1].Lock.Args)
}

func TestTimeoutTransaction(t *testing.T) {
	rng := ptest.Prng(t)
	s := newSetup(t, rng, 1)

	claimTx, err := s.ksh.ClaimTransaction(transaction.NewClaimInfo(s.stake, s.moves))
	require.NoError(t, err)
	disputed := transaction.StakeInput{
		Input: types.CellInput{PreviousOutput: btest.NewRandomOutpoint(rng)},
		Cell:  backend.CKBOutput{Output: *claimTx.Outputs[0], Data: claimTx.OutputsData[0]},
	}
	info := s.payoutInfo(script.Outcome{Winner: encoding.Player2}, adjudicator.DrawReturnDeposits)
	info.Stake = disputed

	tx, err := s.ksh.TimeoutTransaction(transaction.NewTimeoutInfo(info, 10036))
	require.NoError(t, err)
	require.Len(t, tx.Witnesses, len(tx.Inputs), "timeouts carry no rounds")
	since, err := backend.ParseSince(tx.Inputs[0].Since)
	require.NoError(t, err)
	require.Equal(t, backend.SinceBlockNumber, since.Metric)
	require.Equal(t, uint64(10036), since.Value)
	require.Equal(t, uint64(500), tx.Outputs[0].Capacity)
	require.Equal(t, uint64(1500), tx.Outputs[1].Capacity)
}

func TestCKBOnlyIterator(t *testing.T) {
	rng := ptest.Prng(t)
	plain := []*types.TransactionInput{
		txtest.NewRandomInput(rng, 100, nil),
		txtest.NewRandomInput(rng, 200, nil),
	}
	iter := transaction.NewCKBOnlyIterator(txtest.NewMockIterator(
		txtest.NewRandomInput(rng, 1, btest.NewRandomScript(rng)),
		plain[0],
		txtest.NewRandomInput(rng, 2, btest.NewRandomScript(rng)),
		txtest.NewRandomInput(rng, 3, btest.NewRandomScript(rng)),
		plain[1],
		txtest.NewRandomInput(rng, 4, btest.NewRandomScript(rng)),
	))

	var got []*types.TransactionInput
	for iter.HasNext() {
		if c := iter.Next(); c != nil {
			got = append(got, c)
		}
	}
	require.Equal(t, plain, got)
}
