package adjudicator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/channel/adjudicator"
	"github.com/softprodev/ckb-nft-kabletop/channel/defaults"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
first_mover: player2
draw_split: forfeit-stakes
window:
  min: 3
  max: 10
fee_allowance: 1000
asset_type_code_hash: "0x1111111111111111111111111111111111111111111111111111111111111111"
payout_locks:
  - code_hash: "0x2222222222222222222222222222222222222222222222222222222222222222"
    hash_type: type
    args: "0xabcd"
script:
  max_steps: 5000
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kabletop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := adjudicator.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, encoding.Player2, cfg.FirstMover)
	require.Equal(t, adjudicator.DrawForfeitStakes, cfg.DrawSplit)
	require.Equal(t, adjudicator.QuadraticWindow{Min: 3, Max: 10}, cfg.Window)
	require.Equal(t, uint64(1000), cfg.FeeAllowance)
	require.Equal(t, byte(0x11), cfg.AssetTypeCodeHash[0])
	require.NotNil(t, cfg.PayoutLocks[0])
	require.Equal(t, types.HashTypeType, cfg.PayoutLocks[0].HashType)
	require.Equal(t, []byte{0xab, 0xcd}, cfg.PayoutLocks[0].Args)
	require.Nil(t, cfg.PayoutLocks[1])
	require.Equal(t, uint64(5000), cfg.Script.MaxSteps)
	require.Equal(t, defaults.MaxOperations, cfg.Script.MaxOperations)
	require.Equal(t, defaults.MaxRounds, cfg.MaxRounds)
}

func TestParseConfigRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"no first mover":  "draw_split: return-deposits",
		"no draw split":   "first_mover: player1",
		"unknown split":   "first_mover: player1\ndraw_split: coin-flip",
		"inverted window": "first_mover: player1\ndraw_split: return-deposits\nwindow: {min: 9, max: 3}",
		"too many rounds": "first_mover: player1\ndraw_split: return-deposits\nmax_rounds: 300",
		"short hash":      "first_mover: player1\ndraw_split: return-deposits\nasset_type_code_hash: '0x11'",
		"bad hash type":   "first_mover: player1\ndraw_split: return-deposits\npayout_locks: [{code_hash: '0x2222222222222222222222222222222222222222222222222222222222222222', hash_type: fancy}]",
		"three locks":     "first_mover: player1\ndraw_split: return-deposits\npayout_locks: [null, null, null]",
		"not yaml":        "first_mover: [",
	} {
		_, err := adjudicator.ParseConfig([]byte(raw))
		require.Error(t, err, name)
	}

	cfg, err := adjudicator.ParseConfig([]byte("first_mover: player1\ndraw_split: return-deposits\nwindow: {fixed: 12}"))
	require.NoError(t, err)
	require.Equal(t, adjudicator.FixedWindow(12), cfg.Window)
}

func TestConfigValidate(t *testing.T) {
	require.Error(t, adjudicator.DefaultConfig(0, adjudicator.DrawReturnDeposits).Validate())
	require.Error(t, adjudicator.DefaultConfig(encoding.Player1, 0).Validate())
	require.NoError(t, adjudicator.DefaultConfig(encoding.Player1, adjudicator.DrawReturnDeposits).Validate())

	_, err := adjudicator.NewAdjudicator(adjudicator.DefaultConfig(0, 0))
	require.Error(t, err)
}
