package defaults

// Resource bounds of the deployed stake lock. A verifier configured with
// other values would reach different verdicts than the chain.
const (
	// MaxRounds is the number of round witnesses a claim can address with
	// its u8 round offset.
	MaxRounds = 256
	// MaxOperations is the maximum number of fragments in one round.
	MaxOperations = 32
	// MaxFragmentSize is the maximum size of one fragment in bytes.
	MaxFragmentSize = 255
	// MaxWitnessSize is the maximum size of one round witness in bytes.
	MaxWitnessSize = 2048
	// MaxReplaySteps bounds the interpreter steps of one replay.
	MaxReplaySteps = 1_000_000
)

// Dispute window bounds in blocks. The window grows with the claimed round
// offset, see QuadraticWindow in the adjudicator.
const (
	MinWindow = 5
	MaxWindow = 30
)

// FeeAllowance is the default capacity a settlement may burn as fee.
const FeeAllowance uint64 = 100_000_000
