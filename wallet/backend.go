package wallet

import (
	"io"

	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"perun.network/go-perun/wallet"
)

type backend struct {
}

var Backend = backend{}

func init() {
	wallet.SetBackend(Backend)
}

func (b backend) NewAddress() wallet.Address {
	return &address.Address{}
}

// DecodeSig reads a recoverable signature of length SignatureLength.
func (b backend) DecodeSig(reader io.Reader) (wallet.Sig, error) {
	sig := make([]byte, SignatureLength)
	if _, err := io.ReadFull(reader, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifySignature returns whether given signature is valid for given message and the identity of the given address.
// It expects to receive the plain message, not the message hash.
func (b backend) VerifySignature(msg []byte, sig wallet.Sig, a wallet.Address) (bool, error) {
	addr, err := address.IsAddress(a)
	if err != nil {
		return false, err
	}
	s, err := SignatureFromBytes(sig)
	if err != nil {
		return false, err
	}
	digest := ckbhash.Blake256(msg)
	return Verify(addr.Identity, digest[:], s), nil
}
