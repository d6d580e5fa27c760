package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/channel/adjudicator"
	"github.com/softprodev/ckb-nft-kabletop/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type verifyOptions struct {
	config string
	tx     string
	txHash string
	cell   string
	rpc    string
	input  int
}

// cellFile is a resolved input cell as read from --cell.
type cellFile struct {
	Output types.CellOutput `json:"output"`
	Data   hexutil.Bytes    `json:"data"`
}

// Report is what verify prints for an accepted transaction.
type Report struct {
	From    string        `json:"from"`
	Event   string        `json:"event"`
	To      string        `json:"to"`
	Claim   *ClaimReport  `json:"claim,omitempty"`
	Outcome string        `json:"outcome,omitempty"`
	Payout  *PayoutReport `json:"payout,omitempty"`
}

type ClaimReport struct {
	RoundOffset uint8         `json:"round_offset"`
	Mover       string        `json:"mover"`
	Signature   hexutil.Bytes `json:"signature"`
}

type PayoutReport struct {
	Player1   uint64 `json:"player1"`
	Player2   uint64 `json:"player2"`
	Unclaimed uint64 `json:"unclaimed"`
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a transaction spending a stake cell",
		Long: `Runs the stake lock on one input of a transaction and prints the
resulting transition. The transaction is read from --tx or fetched with
--tx-hash. The consumed cell is read from --cell or resolved through --rpc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, root.log, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.config, "config", "", "verifier config (YAML)")
	f.StringVar(&opts.tx, "tx", "", "transaction (JSON)")
	f.StringVar(&opts.txHash, "tx-hash", "", "hash of a transaction known to --rpc")
	f.StringVar(&opts.cell, "cell", "", "consumed stake cell (JSON with output and data)")
	f.StringVar(&opts.rpc, "rpc", "", "CKB node RPC url")
	f.IntVar(&opts.input, "input", 0, "index of the stake input")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runVerify(cmd *cobra.Command, log *zap.Logger, opts *verifyOptions) error {
	cfg, err := adjudicator.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	sc, err := loadScriptContext(cmd, log, opts)
	if err != nil {
		return err
	}
	adj, err := adjudicator.NewAdjudicator(cfg, adjudicator.WithLogger(log))
	if err != nil {
		return err
	}
	tr, err := adj.Verify(sc)
	if err != nil {
		return fmt.Errorf("transaction rejected: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(tr))
}

func loadScriptContext(cmd *cobra.Command, log *zap.Logger, opts *verifyOptions) (*backend.ScriptContext, error) {
	if (opts.tx == "") == (opts.txHash == "") {
		return nil, errors.New("exactly one of --tx and --tx-hash is required")
	}
	if opts.rpc == "" {
		if opts.txHash != "" || opts.cell == "" {
			return nil, errors.New("without --rpc, --tx and --cell are required")
		}
		tx, err := readTransaction(opts.tx)
		if err != nil {
			return nil, err
		}
		cell, err := readCell(opts.cell)
		if err != nil {
			return nil, err
		}
		return backend.NewScriptContext(tx, opts.input, cell)
	}

	c, err := client.Dial(opts.rpc, client.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if opts.txHash != "" {
		return c.ScriptContextByHash(cmd.Context(), types.HexToHash(opts.txHash), opts.input)
	}
	tx, err := readTransaction(opts.tx)
	if err != nil {
		return nil, err
	}
	return c.ScriptContext(cmd.Context(), tx, opts.input)
}

func readTransaction(path string) (*types.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tx types.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("parsing transaction: %w", err)
	}
	return &tx, nil
}

func readCell(path string) (backend.CKBOutput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return backend.CKBOutput{}, err
	}
	var f cellFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return backend.CKBOutput{}, fmt.Errorf("parsing cell: %w", err)
	}
	return backend.CKBOutput{Output: f.Output, Data: f.Data}, nil
}

func NewReport(tr adjudicator.Transition) Report {
	r := Report{
		From:  tr.From.String(),
		Event: tr.Event.String(),
		To:    tr.To.String(),
	}
	if tr.Claim != nil {
		r.Claim = &ClaimReport{
			RoundOffset: tr.Claim.RoundOffset,
			Mover:       tr.Claim.Round.Mover.String(),
			Signature:   tr.Claim.Signature[:],
		}
	}
	if tr.Outcome != nil {
		r.Outcome = tr.Outcome.String()
	}
	if tr.Payout != nil {
		r.Payout = &PayoutReport{
			Player1:   tr.Payout.Players[0],
			Player2:   tr.Payout.Players[1],
			Unclaimed: tr.Payout.Unclaimed,
		}
	}
	return r
}
