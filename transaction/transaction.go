package transaction

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/collector"
	"github.com/nervosnetwork/ckb-sdk-go/v2/collector/builder"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
)

// KabletopTransactionBuilder is the sdk transaction builder with the
// kabletop script handler registered. It balances open transactions from
// the type-less cells of iterator.
type KabletopTransactionBuilder struct {
	*builder.CkbTransactionBuilder
}

func NewKabletopTransactionBuilder(network types.Network, iterator collector.CellIterator, ksh *KabletopScriptHandler) *KabletopTransactionBuilder {
	if iterator != nil {
		iterator = NewCKBOnlyIterator(iterator)
	}
	b := &KabletopTransactionBuilder{
		CkbTransactionBuilder: builder.NewCkbTransactionBuilder(network, iterator),
	}
	b.Register(ksh)
	return b
}

// StakeInput is a stake cell being consumed.
type StakeInput struct {
	Input types.CellInput
	Cell  backend.CKBOutput
}

// AssetCell is an asset cell handed out by a settlement.
type AssetCell struct {
	Input types.CellInput
	Cell  backend.CKBOutput
}
