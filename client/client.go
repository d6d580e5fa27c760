package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/rpc"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"go.uber.org/zap"
)

var (
	ErrUnknownTransaction = errors.New("transaction not found")
	ErrUnknownCell        = errors.New("cell not found")
)

const cellStatusLive = "live"

// LiveCellFetcher fetches cells that are not yet consumed.
type LiveCellFetcher interface {
	GetLiveCell(ctx context.Context, outPoint *types.OutPoint, withData bool, includeTxPool *bool) (*types.CellWithStatus, error)
}

// TransactionFetcher fetches transactions by hash.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, hash types.Hash, onlyCommitted *bool) (*types.TransactionWithStatus, error)
}

// RPC is the part of a CKB node the client talks to.
type RPC interface {
	LiveCellFetcher
	TransactionFetcher
}

var _ RPC = (rpc.Client)(nil)

// Client resolves transactions and the cells they consume from a CKB node,
// so a stake input can be verified offline.
type Client struct {
	rpc   RPC
	cache StableCellCache
	log   *zap.Logger
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithCache(cache StableCellCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func NewClient(rpc RPC, opts ...Option) *Client {
	c := &Client{
		rpc:   rpc,
		cache: NewStableCellCache(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the node at url.
func Dial(url string, opts ...Option) (*Client, error) {
	r, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewClient(r, opts...), nil
}

// GetTransaction returns the transaction with the given hash, committed or
// pending.
func (c *Client) GetTransaction(ctx context.Context, hash types.Hash) (*types.Transaction, error) {
	res, err := c.rpc.GetTransaction(ctx, hash, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching transaction %s: %w", hash, err)
	}
	if res == nil || res.Transaction == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransaction, hash)
	}
	return res.Transaction, nil
}

// ResolveCell returns the output and data created at outPoint. Live cells
// are read directly; consumed cells are read from the transaction that
// created them.
func (c *Client) ResolveCell(ctx context.Context, outPoint types.OutPoint) (backend.CKBOutput, error) {
	if cell, ok := c.cache.Get(outPoint); ok {
		return cell, nil
	}
	cell, err := c.resolveCell(ctx, outPoint)
	if err != nil {
		return backend.CKBOutput{}, err
	}
	if err := c.cache.Set(outPoint, cell); err != nil {
		return backend.CKBOutput{}, err
	}
	return cell, nil
}

func (c *Client) resolveCell(ctx context.Context, outPoint types.OutPoint) (backend.CKBOutput, error) {
	live, err := c.rpc.GetLiveCell(ctx, &outPoint, true, nil)
	if err != nil {
		return backend.CKBOutput{}, fmt.Errorf("fetching live cell: %w", err)
	}
	if live != nil && live.Status == cellStatusLive && live.Cell != nil && live.Cell.Output != nil {
		var data []byte
		if live.Cell.Data != nil {
			data = live.Cell.Data.Content
		}
		return backend.CKBOutput{Output: *live.Cell.Output, Data: data}, nil
	}

	c.log.Debug("cell not live, reading creating transaction",
		zap.Stringer("tx", outPoint.TxHash), zap.Uint32("index", outPoint.Index))
	tx, err := c.GetTransaction(ctx, outPoint.TxHash)
	if err != nil {
		return backend.CKBOutput{}, err
	}
	outputs := backend.MkCKBOutputsFromTransaction(tx)
	if int(outPoint.Index) >= len(outputs) {
		return backend.CKBOutput{}, fmt.Errorf("%w: %s has no output %d", ErrUnknownCell, outPoint.TxHash, outPoint.Index)
	}
	return outputs[outPoint.Index], nil
}

// ScriptContext resolves the cell consumed by input inputIndex of tx and
// returns the context its lock script runs in.
func (c *Client) ScriptContext(ctx context.Context, tx *types.Transaction, inputIndex int) (*backend.ScriptContext, error) {
	if tx == nil {
		return nil, errors.New("nil transaction")
	}
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, fmt.Errorf("input index %d out of range, transaction has %d inputs", inputIndex, len(tx.Inputs))
	}
	prev := tx.Inputs[inputIndex].PreviousOutput
	if prev == nil {
		return nil, fmt.Errorf("input %d has no previous output", inputIndex)
	}
	cell, err := c.ResolveCell(ctx, *prev)
	if err != nil {
		return nil, fmt.Errorf("resolving input %d: %w", inputIndex, err)
	}
	return backend.NewScriptContext(tx, inputIndex, cell)
}

// ScriptContextByHash is ScriptContext for a transaction known to the node.
func (c *Client) ScriptContextByHash(ctx context.Context, hash types.Hash, inputIndex int) (*backend.ScriptContext, error) {
	tx, err := c.GetTransaction(ctx, hash)
	if err != nil {
		return nil, err
	}
	return c.ScriptContext(ctx, tx, inputIndex)
}
