package asset

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
)

const IDLength = 20

// ID identifies a collectible asset (a card). On-chain it is the args of the
// asset type script.
type ID [IDLength]byte

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Collection is an ordered set of asset ids owned by one player.
type Collection []ID

// Validate checks that the collection holds no duplicates.
func (c Collection) Validate() error {
	seen := make(map[ID]struct{}, len(c))
	for i, id := range c {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate asset %s at position %d", id, i)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c Collection) Contains(id ID) bool {
	for _, x := range c {
		if x == id {
			return true
		}
	}
	return false
}

// Disjoint reports whether no asset is contained in both collections.
func Disjoint(a, b Collection) bool {
	set := make(map[ID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return false
		}
	}
	return true
}

// FromOutput returns the asset carried by the output, if its type script is
// an asset type script with the given code hash.
func FromOutput(o backend.CKBOutput, typeCodeHash types.Hash) (ID, bool) {
	t := o.Output.Type
	if t == nil || t.CodeHash != typeCodeHash || len(t.Args) != IDLength {
		return ID{}, false
	}
	var id ID
	copy(id[:], t.Args)
	return id, true
}

// Locate maps every asset found in outputs to the lock guarding it. An asset
// carried by more than one output is an error.
func Locate(outputs backend.CKBOutputs, typeCodeHash types.Hash) (map[ID]*types.Script, error) {
	locks := make(map[ID]*types.Script)
	for _, o := range outputs {
		id, ok := FromOutput(o, typeCodeHash)
		if !ok {
			continue
		}
		if _, dup := locks[id]; dup {
			return nil, fmt.Errorf("asset %s is carried by more than one output", id)
		}
		if o.Output.Lock == nil {
			return nil, errors.New("asset output without lock")
		}
		locks[id] = o.Output.Lock
	}
	return locks, nil
}
