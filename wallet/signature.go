package wallet

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
)

const (
	SignatureLength = 65
	DigestLength    = 32

	// compactMagicOffset is the header offset decred uses for recoverable
	// signatures over compressed public keys (27 + 4).
	compactMagicOffset = 27 + 4
)

// Signature is a recoverable secp256k1 signature in the layout used by CKB
// locks: R (32 bytes) | S (32 bytes) | recovery id (1 byte).
type Signature [SignatureLength]byte

func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("signature is of wrong length. Expected %d bytes, got %d bytes", SignatureLength, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// SignDigest signs a 32 byte digest with the given private key.
func SignDigest(key *secp256k1.PrivateKey, digest []byte) (Signature, error) {
	if len(digest) != DigestLength {
		return Signature{}, fmt.Errorf("digest is of wrong length. Expected %d bytes, got %d bytes", DigestLength, len(digest))
	}
	compact := ecdsa.SignCompact(key, digest, true)
	return fromCompact(compact)
}

// RecoverIdentity recovers the signer's public key and returns its identity.
func RecoverIdentity(digest []byte, sig Signature) (address.Identity, error) {
	if len(digest) != DigestLength {
		return address.Identity{}, errors.New("invalid digest length")
	}
	if sig[SignatureLength-1] > 3 {
		return address.Identity{}, errors.New("invalid recovery id")
	}
	pubKey, _, err := ecdsa.RecoverCompact(toCompact(sig), digest)
	if err != nil {
		return address.Identity{}, err
	}
	return address.IdentityOf(pubKey), nil
}

// Verify reports whether sig is a signature over digest by the key whose
// identity is expected.
func Verify(expected address.Identity, digest []byte, sig Signature) bool {
	id, err := RecoverIdentity(digest, sig)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(id[:], expected[:]) == 1
}

func fromCompact(compact []byte) (Signature, error) {
	var sig Signature
	if len(compact) != SignatureLength {
		return sig, errors.New("invalid compact signature length")
	}
	copy(sig[:SignatureLength-1], compact[1:])
	sig[SignatureLength-1] = compact[0] - compactMagicOffset
	return sig, nil
}

func toCompact(sig Signature) []byte {
	compact := make([]byte, SignatureLength)
	compact[0] = sig[SignatureLength-1] + compactMagicOffset
	copy(compact[1:], sig[:SignatureLength-1])
	return compact
}
