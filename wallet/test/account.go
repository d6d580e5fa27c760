package test

import (
	"fmt"
	"math/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
)

func NewRandomAccount() *wallet.Account {
	acc, err := wallet.NewAccount()
	if err != nil {
		panic(fmt.Sprintf("generating secp256k1 private key: %v", err))
	}
	return acc
}

// NewRandomAccountFromRng derives the private key from rng so tests stay
// reproducible for a given seed.
func NewRandomAccountFromRng(rng *rand.Rand) *wallet.Account {
	for {
		seed := make([]byte, 32)
		_, _ = rng.Read(seed)
		key := secp256k1.PrivKeyFromBytes(seed)
		if key.Key.IsZero() {
			continue
		}
		return wallet.NewAccountFromKey(key)
	}
}
