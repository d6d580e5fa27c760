package backend

import (
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

// ScriptContext is everything a lock script run for one stake input can
// observe: the consumed cell, its since field, the round witnesses and the
// transaction outputs. All buffers are treated as immutable.
type ScriptContext struct {
	Input     CKBOutput
	Since     uint64
	Witnesses [][]byte
	Outputs   CKBOutputs
}

// NewScriptContext extracts the context for the input at inputIndex of tx.
// cell is the resolved previous output of that input. Witnesses past the
// input witnesses are the rounds of the game, in order.
func NewScriptContext(tx *types.Transaction, inputIndex int, cell CKBOutput) (*ScriptContext, error) {
	if tx == nil {
		return nil, errors.New("nil transaction")
	}
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, fmt.Errorf("input index %d out of range, transaction has %d inputs", inputIndex, len(tx.Inputs))
	}
	if cell.Output.Lock == nil {
		return nil, errors.New("resolved input has no lock script")
	}
	if len(tx.OutputsData) != len(tx.Outputs) {
		return nil, fmt.Errorf("transaction has %d outputs but %d output data entries", len(tx.Outputs), len(tx.OutputsData))
	}
	var witnesses [][]byte
	if len(tx.Witnesses) > len(tx.Inputs) {
		witnesses = tx.Witnesses[len(tx.Inputs):]
	}
	return &ScriptContext{
		Input:     cell,
		Since:     tx.Inputs[inputIndex].Since,
		Witnesses: witnesses,
		Outputs:   MkCKBOutputsFromTransaction(tx),
	}, nil
}

// LockArgs returns the args of the consumed cell's lock script.
func (c *ScriptContext) LockArgs() []byte {
	return c.Input.Output.Lock.Args
}

// Successors returns the outputs guarded by the same lock as the consumed
// cell.
func (c *ScriptContext) Successors() CKBOutputs {
	return c.Outputs.WithLockHash(c.Input.LockHash())
}
