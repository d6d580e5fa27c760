package wallet

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"perun.network/go-perun/wallet"
)

type Account struct {
	key *secp256k1.PrivateKey
}

var _ wallet.Account = (*Account)(nil)

func (a Account) Address() wallet.Address {
	addr, err := address.NewDefaultAddress(a.key.PubKey())
	if err != nil {
		return address.NewAddress(a.key.PubKey(), nil)
	}
	return addr
}

func (a Account) Identity() address.Identity {
	return address.IdentityOf(a.key.PubKey())
}

// SignData hashes data with the CKB hash and signs the digest.
func (a Account) SignData(data []byte) ([]byte, error) {
	digest := ckbhash.Blake256(data)
	sig, err := SignDigest(a.key, digest[:])
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

// SignDigest signs an already computed 32 byte digest.
func (a Account) SignDigest(digest []byte) (Signature, error) {
	return SignDigest(a.key, digest)
}

func NewAccount() (*Account, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Account{key: key}, nil
}

func NewAccountFromKey(key *secp256k1.PrivateKey) *Account {
	return &Account{key: key}
}
