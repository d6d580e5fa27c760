package channel

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
)

// Digest is a position in a move chain.
type Digest [ckbhash.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Anchor is the digest preceding the first round. It binds a chain to the
// stake cell identified by its lock hash and capacity.
func Anchor(stakeLockHash types.Hash, capacity uint64) Digest {
	var c [8]byte
	binary.LittleEndian.PutUint64(c[:], capacity)
	return ckbhash.Blake256(stakeLockHash[:], c[:])
}

// MessageDigest is the digest a mover signs for record on top of prior.
func MessageDigest(prior Digest, record encoding.MoveRecord) Digest {
	return ckbhash.Blake256(prior[:], record.Pack())
}

// NextDigest advances the chain past a signed message.
func NextDigest(message Digest, sig wallet.Signature) Digest {
	return ckbhash.Blake256(message[:], sig[:])
}
