package test

import (
	"context"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/client"
)

// MockRPC serves live cells and transactions from memory and counts the
// calls it receives.
type MockRPC struct {
	CellMap map[string]*types.CellWithStatus
	TxMap   map[types.Hash]*types.Transaction

	LiveCellCalls    int
	TransactionCalls int
}

type MockRPCOpt func(*MockRPC)

func NewMockRPC(opts ...MockRPCOpt) *MockRPC {
	m := &MockRPC{
		CellMap: make(map[string]*types.CellWithStatus),
		TxMap:   make(map[types.Hash]*types.Transaction),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetLiveCell implements client.LiveCellFetcher. Unknown cells are reported
// with status unknown, like the node does.
func (m *MockRPC) GetLiveCell(_ context.Context, outPoint *types.OutPoint, _ bool, _ *bool) (*types.CellWithStatus, error) {
	m.LiveCellCalls++
	if c, ok := m.CellMap[MakeKeyFromOutpoint(outPoint)]; ok {
		return c, nil
	}
	return &types.CellWithStatus{Status: "unknown"}, nil
}

// GetTransaction implements client.TransactionFetcher.
func (m *MockRPC) GetTransaction(_ context.Context, hash types.Hash, _ *bool) (*types.TransactionWithStatus, error) {
	m.TransactionCalls++
	tx, ok := m.TxMap[hash]
	if !ok {
		return nil, nil
	}
	return &types.TransactionWithStatus{Transaction: tx}, nil
}

func MakeKeyFromOutpoint(outPoint *types.OutPoint) string {
	return fmt.Sprintf("%s:%v", outPoint.TxHash, outPoint.Index)
}

func WithLiveCell(outPoint *types.OutPoint, cell backend.CKBOutput) MockRPCOpt {
	return func(m *MockRPC) {
		out := cell.Output
		m.CellMap[MakeKeyFromOutpoint(outPoint)] = &types.CellWithStatus{
			Cell: &types.CellInfo{
				Data:   &types.CellData{Content: cell.Data},
				Output: &out,
			},
			Status: "live",
		}
	}
}

func WithTransaction(hash types.Hash, tx *types.Transaction) MockRPCOpt {
	return func(m *MockRPC) {
		m.TxMap[hash] = tx
	}
}

var _ client.RPC = (*MockRPC)(nil)
