package external

import (
	"fmt"

	ckbwallet "github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"perun.network/go-perun/wallet"
)

type Account struct {
	client Client
	Addr   address.Address
}

var _ wallet.Account = Account{}

func NewAccount(client Client, addr address.Address) Account {
	return Account{client: client, Addr: addr}
}

func (a Account) Address() wallet.Address {
	return &a.Addr
}

func (a Account) SignData(data []byte) ([]byte, error) {
	digest := ckbhash.Blake256(data)
	sig, err := a.SignDigest(digest[:])
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

// SignDigest asks the device for a signature and checks that it was produced
// by the expected key before handing it out.
func (a Account) SignDigest(digest []byte) (ckbwallet.Signature, error) {
	raw, err := a.client.SignDigest(a.Addr, digest)
	if err != nil {
		return ckbwallet.Signature{}, fmt.Errorf("external signer: %w", err)
	}
	sig, err := ckbwallet.SignatureFromBytes(raw)
	if err != nil {
		return ckbwallet.Signature{}, err
	}
	if !ckbwallet.Verify(a.Addr.Identity, digest, sig) {
		return ckbwallet.Signature{}, fmt.Errorf("external signer returned a signature not matching identity %s", a.Addr.Identity)
	}
	return sig, nil
}
