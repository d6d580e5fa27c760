package test

import (
	"math/rand"

	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
)

func NewRandomID(rng *rand.Rand) asset.ID {
	var id asset.ID
	_, _ = rng.Read(id[:])
	return id
}

// NewRandomCollection returns n distinct random asset ids.
func NewRandomCollection(rng *rand.Rand, n int) asset.Collection {
	c := make(asset.Collection, 0, n)
	for len(c) < n {
		id := NewRandomID(rng)
		if c.Contains(id) {
			continue
		}
		c = append(c, id)
	}
	return c
}
