package backend

import (
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

// CKBOutput groups a CKB output cell and its data.
type CKBOutput struct {
	Output types.CellOutput
	Data   []byte
}

func (o CKBOutput) AsOutputAndData() (types.CellOutput, []byte) {
	return o.Output, o.Data
}

// LockHash returns the hash of the cell's lock script.
func (o CKBOutput) LockHash() types.Hash {
	if o.Output.Lock == nil {
		return types.Hash{}
	}
	return o.Output.Lock.Hash()
}

// HasLock reports whether the cell is guarded by exactly the given lock.
func (o CKBOutput) HasLock(lock *types.Script) bool {
	if o.Output.Lock == nil || lock == nil {
		return false
	}
	return o.Output.Lock.Equals(lock)
}

type CKBOutputs []CKBOutput

func MkCKBOutputs(outputs ...CKBOutput) CKBOutputs {
	return outputs
}

// MkCKBOutputsFromTransaction pairs the outputs of tx with their data.
func MkCKBOutputsFromTransaction(tx *types.Transaction) CKBOutputs {
	os := make(CKBOutputs, 0, len(tx.Outputs))
	for i, o := range tx.Outputs {
		var data []byte
		if i < len(tx.OutputsData) {
			data = tx.OutputsData[i]
		}
		os = append(os, CKBOutput{Output: *o, Data: data})
	}
	return os
}

// WithLockHash returns the outputs guarded by a lock with the given hash.
func (os CKBOutputs) WithLockHash(h types.Hash) CKBOutputs {
	var res CKBOutputs
	for _, o := range os {
		if o.Output.Lock != nil && o.LockHash() == h {
			res = append(res, o)
		}
	}
	return res
}
