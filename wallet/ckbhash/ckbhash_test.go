package ckbhash_test

import (
	"encoding/hex"
	"testing"

	"github.com/softprodev/ckb-nft-kabletop/wallet/ckbhash"
	"github.com/stretchr/testify/require"
)

func TestBlake256EmptyInput(t *testing.T) {
	// Well known CKB hash of the empty message.
	sum := ckbhash.Blake256()
	require.Equal(t, "44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e", hex.EncodeToString(sum[:]))
}

func TestBlake256Concatenates(t *testing.T) {
	a, b := []byte("kable"), []byte("top")
	require.Equal(t, ckbhash.Blake256([]byte("kabletop")), ckbhash.Blake256(a, b))
	require.Equal(t, ckbhash.Blake256(), ckbhash.Blake256(nil, []byte{}))
}

func TestBlake160IsPrefix(t *testing.T) {
	msg := []byte("identity")
	sum := ckbhash.Blake256(msg)
	require.Len(t, ckbhash.Blake160(msg), ckbhash.Size160)
	require.Equal(t, sum[:ckbhash.Size160], ckbhash.Blake160(msg))
}
