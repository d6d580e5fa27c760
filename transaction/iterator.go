package transaction

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/collector"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

// CKBOnlyIterator is a cell iterator which ONLY yields live cells NOT guarded
// by any type script. Funding a stake cell from it never spends an asset cell
// as plain capacity.
type CKBOnlyIterator struct {
	collector.CellIterator
}

// HasNext implements collector.CellIterator.
func (i *CKBOnlyIterator) HasNext() bool {
	return i.CellIterator.HasNext()
}

// Next implements collector.CellIterator. It returns nil once the
// underlying iterator is exhausted.
func (i *CKBOnlyIterator) Next() *types.TransactionInput {
	ti := i.CellIterator.Next()
	for ti != nil && ti.Output.Type != nil {
		ti = i.CellIterator.Next()
	}
	return ti
}

func NewCKBOnlyIterator(iter collector.CellIterator) *CKBOnlyIterator {
	return &CKBOnlyIterator{iter}
}

var _ collector.CellIterator = (*CKBOnlyIterator)(nil)
