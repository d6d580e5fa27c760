package script

import (
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"go.uber.org/zap"
)

// Replayer computes the outcome of a validated move chain.
type Replayer struct {
	limits      Limits
	log         *zap.Logger
	newExecutor NewExecutorFunc
}

type Option func(*Replayer)

func WithLogger(log *zap.Logger) Option {
	return func(r *Replayer) {
		r.log = log
	}
}

// WithExecutor replaces the Starlark interpreter.
func WithExecutor(f NewExecutorFunc) Option {
	return func(r *Replayer) {
		r.newExecutor = f
	}
}

func NewReplayer(limits Limits, opts ...Option) *Replayer {
	r := &Replayer{
		limits:      limits,
		log:         zap.NewNop(),
		newExecutor: NewStarlarkExecutor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay executes every fragment of moves in order against a fresh state.
func (r *Replayer) Replay(params encoding.GameParameters, moves []channel.SignedMove) (Outcome, error) {
	return r.replay(params, 0, moves)
}

// ReplayRound executes the single move found at round offset, as done when
// a disputed claim is settled without the rest of the chain.
func (r *Replayer) ReplayRound(params encoding.GameParameters, offset int, move channel.SignedMove) (Outcome, error) {
	return r.replay(params, offset, []channel.SignedMove{move})
}

func (r *Replayer) replay(params encoding.GameParameters, first int, moves []channel.SignedMove) (Outcome, error) {
	exec := r.newExecutor(Env{
		Limits: r.limits,
		Assets: [2]asset.Collection{params.Players[0].Assets, params.Players[1].Assets},
		Log:    r.log,
	})
	var state State
	for i, m := range moves {
		round := first + i
		ops := m.Record.Operations
		if len(ops) > r.limits.MaxOperations {
			return Outcome{}, &FaultError{Round: round, Fragment: -1, Err: fmt.Errorf("%w: %d operations exceed %d", ErrComputeBudgetExceeded, len(ops), r.limits.MaxOperations)}
		}
		state.enterRound(round, m.Record.Mover, m.Signature)
		for j, op := range ops {
			if err := exec.Execute(&state, op); err != nil {
				r.log.Debug("fragment rejected", zap.Int("round", round), zap.Int("fragment", j), zap.Error(err))
				return Outcome{}, &FaultError{Round: round, Fragment: j, Err: err}
			}
		}
	}
	out := Outcome{Winner: state.Winner}
	r.log.Debug("replay finished", zap.Int("rounds", len(moves)), zap.Stringer("outcome", out))
	return out, nil
}
