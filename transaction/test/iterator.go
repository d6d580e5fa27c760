package test

import (
	"math/rand"

	"github.com/nervosnetwork/ckb-sdk-go/v2/collector"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
)

// MockIterator yields a fixed list of cells.
type MockIterator struct {
	cells []*types.TransactionInput
	next  int
}

func NewMockIterator(cells ...*types.TransactionInput) *MockIterator {
	return &MockIterator{cells: cells}
}

// HasNext implements collector.CellIterator.
func (m *MockIterator) HasNext() bool {
	return m.next < len(m.cells)
}

// Next implements collector.CellIterator.
func (m *MockIterator) Next() *types.TransactionInput {
	if !m.HasNext() {
		return nil
	}
	c := m.cells[m.next]
	m.next++
	return c
}

// NewRandomInput returns a live cell with the given capacity, guarded by a
// random lock and the given type script.
func NewRandomInput(rng *rand.Rand, capacity uint64, typ *types.Script) *types.TransactionInput {
	return &types.TransactionInput{
		OutPoint: btest.NewRandomOutpoint(rng),
		Output: &types.CellOutput{
			Capacity: capacity,
			Lock:     btest.NewRandomScript(rng),
			Type:     typ,
		},
		OutputData: []byte{},
	}
}

var _ collector.CellIterator = (*MockIterator)(nil)
