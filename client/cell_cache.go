package client

import (
	"bytes"
	"errors"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"polycry.pt/poly-go/sync"
)

// StableCellCache is a concurrently safe cache for resolved cells.
// It is stable in the sense that it does not allow overwriting of cells: the
// cell created at an out point never changes.
type StableCellCache interface {
	// Set stores the cell for the given out point.
	// It errors if the cache already holds a different cell for it.
	Set(outPoint types.OutPoint, cell backend.CKBOutput) error

	// Get returns the cell for the given out point and true, iff there is a
	// cache entry for it.
	Get(outPoint types.OutPoint) (backend.CKBOutput, bool)
}

type cellCache struct {
	cacheLock sync.Mutex
	cache     map[types.OutPoint]backend.CKBOutput
}

func NewStableCellCache() StableCellCache {
	return &cellCache{
		cache: make(map[types.OutPoint]backend.CKBOutput),
	}
}

func (c *cellCache) Get(outPoint types.OutPoint) (backend.CKBOutput, bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	cell, cached := c.cache[outPoint]
	return cell, cached
}

func (c *cellCache) Set(outPoint types.OutPoint, cell backend.CKBOutput) error {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	old, cached := c.cache[outPoint]
	if cached {
		if sameCell(old, cell) {
			return nil
		}
		return errors.New("rewrite on stable cell cache")
	}
	c.cache[outPoint] = cell
	return nil
}

func sameCell(a, b backend.CKBOutput) bool {
	return bytes.Equal(a.Output.Pack().AsSlice(), b.Output.Pack().AsSlice()) &&
		bytes.Equal(a.Data, b.Data)
}
