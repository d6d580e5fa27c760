package channel_test

import (
	"errors"
	"testing"

	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	ctest "github.com/softprodev/ckb-nft-kabletop/channel/test"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"github.com/softprodev/ckb-nft-kabletop/wallet/external"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"
)

func requireLinkError(t *testing.T, err error, index int, target error) {
	t.Helper()
	var le *channel.LinkError
	require.True(t, errors.As(err, &le), "expected link error, got %v", err)
	require.Equal(t, index, le.Index)
	require.True(t, errors.Is(err, target), "expected %v, got %v", target, err)
}

func TestVerifyChain(t *testing.T) {
	rng := pkgtest.Prng(t)
	players := ctest.NewRandomPlayers(rng)
	ids := players.Identities()
	anchor := channel.Anchor(btest.NewRandomHash(rng), 2000)
	records := ctest.NewRandomRecords(rng, 6, encoding.Player1)
	moves, err := ctest.SignChain(players, anchor, records)
	require.NoError(t, err)

	head, err := channel.VerifyChain(moves, anchor, encoding.Player1, ids)
	require.NoError(t, err)
	c := channel.NewChain(anchor)
	for _, m := range moves {
		c.Add(m)
	}
	require.Equal(t, c.Head(), head)
	require.Equal(t, 6, c.Len())

	t.Run("empty", func(t *testing.T) {
		_, err := channel.VerifyChain(nil, anchor, encoding.Player1, ids)
		require.True(t, errors.Is(err, channel.ErrEmptyChain))
	})

	t.Run("wrong first mover", func(t *testing.T) {
		_, err := channel.VerifyChain(moves, anchor, encoding.Player2, ids)
		requireLinkError(t, err, 0, channel.ErrBrokenAlternation)
	})

	t.Run("consecutive movers", func(t *testing.T) {
		recs := ctest.NewRandomRecords(rng, 5, encoding.Player1)
		recs[3].Mover = encoding.Player1
		bad, err := ctest.SignChain(players, anchor, recs)
		require.NoError(t, err)
		_, err = channel.VerifyChain(bad, anchor, encoding.Player1, ids)
		requireLinkError(t, err, 3, channel.ErrBrokenAlternation)
	})

	t.Run("signed by opponent", func(t *testing.T) {
		bad := append([]channel.SignedMove(nil), moves...)
		sig, err := channel.Sign(players.Account(encoding.Player1), bad[1].Record, channel.NextDigest(channel.MessageDigest(anchor, bad[0].Record), bad[0].Signature))
		require.NoError(t, err)
		bad[1].Signature = sig
		_, err = channel.VerifyChain(bad, anchor, encoding.Player1, ids)
		requireLinkError(t, err, 1, channel.ErrBadSignature)
	})

	t.Run("foreign anchor", func(t *testing.T) {
		_, err := channel.VerifyChain(moves, channel.Anchor(btest.NewRandomHash(rng), 2000), encoding.Player1, ids)
		requireLinkError(t, err, 0, channel.ErrBadSignature)
	})
}

func TestBitFlipInvalidatesSuffix(t *testing.T) {
	rng := pkgtest.Prng(t)
	players := ctest.NewRandomPlayers(rng)
	ids := players.Identities()
	anchor := channel.Anchor(btest.NewRandomHash(rng), 1000)
	moves, err := ctest.SignChain(players, anchor, ctest.NewRandomRecords(rng, 5, encoding.Player1))
	require.NoError(t, err)

	for i := range moves {
		bad := append([]channel.SignedMove(nil), moves...)
		packed := bad[i].Record.Pack()
		// Flip a bit inside the last fragment so the record still decodes.
		packed[len(packed)-1] ^= 1 << uint(rng.Intn(8))
		rec, err := encoding.UnpackMoveRecord(packed)
		require.NoError(t, err)
		bad[i].Record = rec

		for j := i; j < len(bad); j++ {
			_, err := channel.VerifyChain(bad[:j+1], anchor, encoding.Player1, ids)
			requireLinkError(t, err, i, channel.ErrBadSignature)
		}

		// Every later signature is bound to the original prefix as well.
		head := anchor
		for j, m := range bad {
			msg := channel.MessageDigest(head, m.Record)
			require.Equal(t, j < i, wallet.Verify(ids[m.Record.Mover.Index()], msg[:], m.Signature), "round %d after flip in %d", j, i)
			head = channel.NextDigest(msg, m.Signature)
		}
	}
}

// deviceClient is an external signer backed by the players' wallet.
type deviceClient struct {
	players ctest.Players
}

func (d deviceClient) Unlock(address.Address) error {
	return nil
}

func (d deviceClient) SignDigest(addr address.Address, digest []byte) ([]byte, error) {
	acc, err := d.players.Wallet.AccountOf(addr.Identity)
	if err != nil {
		return nil, err
	}
	sig, err := acc.SignDigest(digest)
	return sig[:], err
}

func TestExtendFromWallet(t *testing.T) {
	rng := pkgtest.Prng(t)
	players := ctest.NewRandomPlayers(rng)
	ids := players.Identities()
	anchor := channel.Anchor(btest.NewRandomHash(rng), 3000)
	records := ctest.NewRandomRecords(rng, 4, encoding.Player2)

	local := channel.NewChain(anchor)
	device := channel.NewChain(anchor)
	w := external.NewWallet(deviceClient{players: players})
	for _, r := range records {
		_, err := local.ExtendFrom(players.Wallet, ids, r)
		require.NoError(t, err)
		_, err = device.ExtendFrom(w, ids, r)
		require.NoError(t, err)
	}
	require.Equal(t, local.Head(), device.Head(), "signatures are deterministic")
	head, err := channel.VerifyChain(device.Moves(), anchor, encoding.Player2, ids)
	require.NoError(t, err)
	require.Equal(t, device.Head(), head)

	t.Run("unknown identity", func(t *testing.T) {
		c := channel.NewChain(anchor)
		_, err := c.ExtendFrom(players.Wallet, [2]address.Identity{ids[0], {}}, records[0])
		require.Error(t, err)
		require.Zero(t, c.Len())
	})

	t.Run("invalid mover", func(t *testing.T) {
		_, err := channel.NewChain(anchor).ExtendFrom(players.Wallet, ids, channel.Append(0))
		require.Error(t, err)
	})
}

func TestAppendCopies(t *testing.T) {
	op := []byte("draw()")
	r := channel.Append(encoding.Player2, op)
	op[0] = 'X'
	require.Equal(t, []byte("draw()"), r.Operations[0])
	require.Equal(t, encoding.Player2, r.Mover)
}
