package address

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nervosnetwork/ckb-sdk-go/v2/systemscript"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"perun.network/go-perun/wallet"
)

const (
	IdentityLength            = 20
	CompressedPublicKeyLength = 33
)

// Identity is the blake160 hash of a compressed secp256k1 public key. Protocol
// data stores identities instead of raw public keys.
type Identity [IdentityLength]byte

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentityLength {
		return id, fmt.Errorf("invalid identity length. Expected %d bytes, got %d bytes", IdentityLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// IdentityOf derives the identity of a public key as blake160 over its
// compressed SEC1 encoding, like the default CKB secp256k1 lock does.
func IdentityOf(pubKey *secp256k1.PublicKey) Identity {
	var id Identity
	copy(id[:], ckbhash.Blake160(pubKey.SerializeCompressed()))
	return id
}

// Address is a player of a kabletop game: its public key, the derived identity
// and the lock script its payouts are sent to.
type Address struct {
	PubKey       *secp256k1.PublicKey
	Identity     Identity
	PayoutScript *types.Script
}

var _ wallet.Address = (*Address)(nil)

// NewDefaultAddress creates an address paying out to the default
// secp256k1_blake160_sighash_all lock of the given public key.
func NewDefaultAddress(pubKey *secp256k1.PublicKey) (*Address, error) {
	if pubKey == nil {
		return nil, errors.New("public key is nil")
	}
	script, err := systemscript.Secp256K1Blake160SignhashAllByPublicKey(pubKey.SerializeCompressed())
	if err != nil {
		return nil, err
	}
	return &Address{
		PubKey:       pubKey,
		Identity:     IdentityOf(pubKey),
		PayoutScript: script,
	}, nil
}

// NewAddress creates an address paying out to the given lock script.
func NewAddress(pubKey *secp256k1.PublicKey, payoutScript *types.Script) *Address {
	return &Address{
		PubKey:       pubKey,
		Identity:     IdentityOf(pubKey),
		PayoutScript: payoutScript,
	}
}

// MarshalBinary encodes the compressed public key. The payout script is local
// configuration and is not part of the encoding.
func (a Address) MarshalBinary() (data []byte, err error) {
	if a.PubKey == nil {
		return nil, errors.New("public key is nil")
	}
	return a.PubKey.SerializeCompressed(), nil
}

func (a *Address) UnmarshalBinary(data []byte) error {
	if len(data) != CompressedPublicKeyLength {
		return errors.New("invalid address length")
	}
	pubKey, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return err
	}
	a.PubKey = pubKey
	a.Identity = IdentityOf(pubKey)
	return nil
}

func (a Address) String() string {
	return a.Identity.String()
}

func (a Address) Equal(address wallet.Address) bool {
	addr, ok := address.(*Address)
	if !ok {
		return false
	}
	return a.Identity == addr.Identity
}

func IsAddress(addr wallet.Address) (*Address, error) {
	a, ok := addr.(*Address)
	if !ok {
		return nil, errors.New("address is not of type address.Address")
	}
	return a, nil
}
