package external

import (
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
)

// Client is a signing device holding a player's key outside of this process.
type Client interface {
	Unlock(address.Address) error
	// SignDigest returns a 65 byte recoverable signature over digest.
	SignDigest(addr address.Address, digest []byte) ([]byte, error)
}
