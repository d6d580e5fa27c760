package adjudicator

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/channel/defaults"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/script"
	"gopkg.in/yaml.v3"
)

// DrawSplit decides how a drawn game is paid out.
type DrawSplit int

const (
	drawSplitUnset DrawSplit = iota
	// DrawReturnDeposits returns each player's deposit and assets.
	DrawReturnDeposits
	// DrawForfeitStakes returns deposits minus stakes and assets to each
	// player. Both stakes go to the reference payout lock with empty args.
	DrawForfeitStakes
)

func (d DrawSplit) String() string {
	switch d {
	case DrawReturnDeposits:
		return "return-deposits"
	case DrawForfeitStakes:
		return "forfeit-stakes"
	}
	return "unset"
}

func ParseDrawSplit(s string) (DrawSplit, error) {
	switch s {
	case "return-deposits":
		return DrawReturnDeposits, nil
	case "forfeit-stakes":
		return DrawForfeitStakes, nil
	}
	return drawSplitUnset, fmt.Errorf("unknown draw split %q", s)
}

// Config holds the protocol rules the stake lock was deployed with. Every
// node must use the same values.
type Config struct {
	// FirstMover is the mover of round 0. It is not inferred.
	FirstMover encoding.Mover
	DrawSplit  DrawSplit
	Window     WindowPolicy
	// FeeAllowance is the capacity a settlement may withhold from the
	// payouts in total.
	FeeAllowance uint64
	// AssetTypeCodeHash identifies outputs carrying collectible assets.
	AssetTypeCodeHash types.Hash
	// PayoutLocks are optional locks nominated by player 1 and player 2 in
	// addition to the reference payout lock.
	PayoutLocks     [2]*types.Script
	MaxRounds       int
	MaxWitnessSize  int
	RequireFullDeck bool
	Script          script.Limits
}

// DefaultConfig returns the deployed limits. The first mover and the draw
// split have no default.
func DefaultConfig(firstMover encoding.Mover, split DrawSplit) Config {
	return Config{
		FirstMover:     firstMover,
		DrawSplit:      split,
		Window:         QuadraticWindow{Min: defaults.MinWindow, Max: defaults.MaxWindow},
		FeeAllowance:   defaults.FeeAllowance,
		MaxRounds:      defaults.MaxRounds,
		MaxWitnessSize: defaults.MaxWitnessSize,
		Script:         script.DefaultLimits(),
	}
}

func (c Config) Validate() error {
	if !c.FirstMover.Valid() {
		return errors.New("first mover not configured")
	}
	if c.DrawSplit != DrawReturnDeposits && c.DrawSplit != DrawForfeitStakes {
		return errors.New("draw split not configured")
	}
	if c.Window == nil {
		return errors.New("dispute window not configured")
	}
	if w, ok := c.Window.(QuadraticWindow); ok && (w.Min == 0 || w.Min > w.Max) {
		return fmt.Errorf("invalid quadratic window [%d, %d]", w.Min, w.Max)
	}
	if c.MaxRounds < 1 || c.MaxRounds > defaults.MaxRounds {
		return fmt.Errorf("max rounds must be in [1, %d]", defaults.MaxRounds)
	}
	if c.MaxWitnessSize < 1 {
		return errors.New("max witness size must be positive")
	}
	if c.Script.MaxOperations < 1 || c.Script.MaxFragmentSize < 1 || c.Script.MaxSteps < 1 {
		return errors.New("script limits must be positive")
	}
	return nil
}

type scriptFile struct {
	CodeHash string `yaml:"code_hash"`
	HashType string `yaml:"hash_type"`
	Args     string `yaml:"args"`
}

type windowFile struct {
	Fixed *uint64 `yaml:"fixed"`
	Min   uint64  `yaml:"min"`
	Max   uint64  `yaml:"max"`
}

type configFile struct {
	FirstMover        string         `yaml:"first_mover"`
	DrawSplit         string         `yaml:"draw_split"`
	Window            *windowFile    `yaml:"window"`
	FeeAllowance      *uint64        `yaml:"fee_allowance"`
	AssetTypeCodeHash string         `yaml:"asset_type_code_hash"`
	PayoutLocks       []*scriptFile  `yaml:"payout_locks"`
	MaxRounds         int            `yaml:"max_rounds"`
	MaxWitnessSize    int            `yaml:"max_witness_size"`
	RequireFullDeck   bool           `yaml:"require_full_deck"`
	Script            *script.Limits `yaml:"script"`
}

// LoadConfig reads a YAML config file. Omitted limits keep their defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (Config, error) {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	first, err := encoding.ParseMover(f.FirstMover)
	if err != nil {
		return Config{}, fmt.Errorf("first_mover: %w", err)
	}
	split, err := ParseDrawSplit(f.DrawSplit)
	if err != nil {
		return Config{}, fmt.Errorf("draw_split: %w", err)
	}
	c := DefaultConfig(first, split)
	if f.Window != nil {
		if f.Window.Fixed != nil {
			c.Window = FixedWindow(*f.Window.Fixed)
		} else {
			c.Window = QuadraticWindow{Min: f.Window.Min, Max: f.Window.Max}
		}
	}
	if f.FeeAllowance != nil {
		c.FeeAllowance = *f.FeeAllowance
	}
	if f.AssetTypeCodeHash != "" {
		if c.AssetTypeCodeHash, err = parseHash(f.AssetTypeCodeHash); err != nil {
			return Config{}, fmt.Errorf("asset_type_code_hash: %w", err)
		}
	}
	if len(f.PayoutLocks) > len(c.PayoutLocks) {
		return Config{}, fmt.Errorf("payout_locks: %d entries for 2 players", len(f.PayoutLocks))
	}
	for i, s := range f.PayoutLocks {
		if s == nil {
			continue
		}
		if c.PayoutLocks[i], err = parseScript(s); err != nil {
			return Config{}, fmt.Errorf("payout_locks[%d]: %w", i, err)
		}
	}
	if f.MaxRounds != 0 {
		c.MaxRounds = f.MaxRounds
	}
	if f.MaxWitnessSize != 0 {
		c.MaxWitnessSize = f.MaxWitnessSize
	}
	c.RequireFullDeck = f.RequireFullDeck
	if f.Script != nil {
		if f.Script.MaxOperations != 0 {
			c.Script.MaxOperations = f.Script.MaxOperations
		}
		if f.Script.MaxFragmentSize != 0 {
			c.Script.MaxFragmentSize = f.Script.MaxFragmentSize
		}
		if f.Script.MaxSteps != 0 {
			c.Script.MaxSteps = f.Script.MaxSteps
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseHash(s string) (types.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return types.Hash{}, err
	}
	if len(b) != len(types.Hash{}) {
		return types.Hash{}, fmt.Errorf("hash of %d bytes", len(b))
	}
	return types.BytesToHash(b), nil
}

func parseScript(s *scriptFile) (*types.Script, error) {
	codeHash, err := parseHash(s.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("code_hash: %w", err)
	}
	hashType := types.ScriptHashType(s.HashType)
	switch hashType {
	case types.HashTypeData, types.HashTypeType, types.HashTypeData1:
	default:
		return nil, fmt.Errorf("unknown hash_type %q", s.HashType)
	}
	var args []byte
	if s.Args != "" {
		if args, err = hexutil.Decode(s.Args); err != nil {
			return nil, fmt.Errorf("args: %w", err)
		}
	}
	return &types.Script{CodeHash: codeHash, HashType: hashType, Args: args}, nil
}
