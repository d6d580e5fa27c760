package backend_test

import (
	"testing"

	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	s, err := backend.ParseSince(10036)
	require.NoError(t, err)
	require.Equal(t, backend.Since{Metric: backend.SinceBlockNumber, Value: 10036}, s)

	rel := backend.BlockNumberSince(42, true)
	s, err = backend.ParseSince(rel.Raw())
	require.NoError(t, err)
	require.Equal(t, rel, s)

	ts := backend.Since{Metric: backend.SinceTimestamp, Value: 1 << 40}
	s, err = backend.ParseSince(ts.Raw())
	require.NoError(t, err)
	require.Equal(t, ts, s)

	_, err = backend.ParseSince(uint64(1) << 57)
	require.Error(t, err, "reserved bits")

	_, err = backend.ParseSince(uint64(0x3) << 61)
	require.Error(t, err, "invalid metric")
}
