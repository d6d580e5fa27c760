package test

import (
	"math/rand"

	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
)

// NewRandomAddress returns a player address with a random payout script.
func NewRandomAddress(rng *rand.Rand) *address.Address {
	acc := NewRandomAccountFromRng(rng)
	addr, err := address.IsAddress(acc.Address())
	if err != nil {
		panic(err)
	}
	return address.NewAddress(addr.PubKey, btest.NewRandomScript(rng))
}

func NewRandomIdentity(rng *rand.Rand) address.Identity {
	var id address.Identity
	_, _ = rng.Read(id[:])
	return id
}
