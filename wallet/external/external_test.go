package external_test

import (
	"errors"
	"testing"

	"github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"github.com/softprodev/ckb-nft-kabletop/wallet/external"
	wtest "github.com/softprodev/ckb-nft-kabletop/wallet/test"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"
)

type mockClient struct {
	signer   *wallet.Account
	unlocked bool
}

func (c *mockClient) Unlock(address.Address) error {
	c.unlocked = true
	return nil
}

func (c *mockClient) SignDigest(_ address.Address, digest []byte) ([]byte, error) {
	if !c.unlocked {
		return nil, errors.New("locked")
	}
	sig, err := c.signer.SignDigest(digest)
	return sig[:], err
}

func TestExternalAccount(t *testing.T) {
	rng := pkgtest.Prng(t)
	acc := wtest.NewRandomAccountFromRng(rng)
	addr, err := address.IsAddress(acc.Address())
	require.NoError(t, err)

	client := &mockClient{signer: acc}
	w := external.NewWallet(client)
	unlocked, err := w.Unlock(addr)
	require.NoError(t, err)

	msg := []byte("round 0")
	sig, err := unlocked.SignData(msg)
	require.NoError(t, err)
	valid, err := wallet.Backend.VerifySignature(msg, sig, addr)
	require.NoError(t, err)
	require.True(t, valid)
}

func TestExternalAccountRejectsForeignSignature(t *testing.T) {
	rng := pkgtest.Prng(t)
	acc := wtest.NewRandomAccountFromRng(rng)
	impostor := wtest.NewRandomAccountFromRng(rng)
	addr, err := address.IsAddress(acc.Address())
	require.NoError(t, err)

	client := &mockClient{signer: impostor, unlocked: true}
	digest := ckbhash.Blake256([]byte("round 1"))
	_, err = external.NewAccount(client, *addr).SignDigest(digest[:])
	require.Error(t, err)
}
