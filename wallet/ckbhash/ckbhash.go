// Package ckbhash wraps the personalised BLAKE2b-256 used throughout CKB
// ("ckb-default-hash") and its 20 byte truncation blake160.
package ckbhash

import (
	"bytes"

	"github.com/nervosnetwork/ckb-sdk-go/v2/crypto/blake2b"
)

const (
	Size    = 32
	Size160 = 20
)

// Blake256 hashes the concatenation of the given byte slices.
func Blake256(data ...[]byte) [Size]byte {
	var out [Size]byte
	copy(out[:], blake2b.Blake256(bytes.Join(data, nil)))
	return out
}

// Blake160 returns the first 20 bytes of Blake256.
func Blake160(data ...[]byte) []byte {
	return blake2b.Blake160(bytes.Join(data, nil))
}
