package script

import (
	"errors"
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// Executor runs one fragment against the replay state. An executor lives for
// a single replay, so budgets it enforces span all fragments of that replay.
// Implementations must not expose time, randomness or I/O to fragments.
type Executor interface {
	Execute(state *State, fragment []byte) error
}

// Env is what a new executor may learn about the game being replayed.
type Env struct {
	Limits Limits
	Assets [2]asset.Collection
	Log    *zap.Logger
}

// NewExecutorFunc creates the executor for one replay.
type NewExecutorFunc func(env Env) Executor

var fileOptions = syntax.FileOptions{
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// StarlarkExecutor runs fragments as Starlark programs. Every fragment is
// its own module; fragments communicate only through the builtins below.
//
//	set_winner(n)  declare player n (1 or 2) the winner, 0 clears it
//	winner()       the declared winner or 0
//	round()        index of the round being executed
//	mover()        mover of the round being executed
//	round_seed()   pair of ints derived from the round signature
//	debug(msg)     debug log output, also used by print
//	NFT_USER1      tuple of player 1's asset ids as bytes
//	NFT_USER2      tuple of player 2's asset ids as bytes
//
// Fragments run under a step limit shared by the whole replay. Builtins and
// operators whose work the step counter cannot see are restricted before a
// fragment runs, and recursion is not available.
type StarlarkExecutor struct {
	limits      Limits
	log         *zap.Logger
	thread      *starlark.Thread
	predeclared starlark.StringDict
	state       *State
	outOfSteps  bool
}

var _ Executor = (*StarlarkExecutor)(nil)

func NewStarlarkExecutor(env Env) Executor {
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	e := &StarlarkExecutor{limits: env.Limits, log: log}
	e.thread = &starlark.Thread{
		Name: "kabletop",
		Print: func(_ *starlark.Thread, msg string) {
			e.debug(msg)
		},
		OnMaxSteps: func(th *starlark.Thread) {
			e.outOfSteps = true
			th.Cancel("too many steps")
		},
	}
	e.thread.SetMaxExecutionSteps(env.Limits.MaxSteps)
	e.predeclared = starlark.StringDict{
		"set_winner": starlark.NewBuiltin("set_winner", e.setWinner),
		"winner":     starlark.NewBuiltin("winner", e.winner),
		"round":      starlark.NewBuiltin("round", e.round),
		"mover":      starlark.NewBuiltin("mover", e.mover),
		"round_seed": starlark.NewBuiltin("round_seed", e.roundSeed),
		"debug":      starlark.NewBuiltin("debug", e.debugBuiltin),
		"int":        starlark.NewBuiltin("int", e.toInt),
		"NFT_USER1":  assetTuple(env.Assets[0]),
		"NFT_USER2":  assetTuple(env.Assets[1]),
	}
	e.predeclared.Freeze()
	return e
}

func (e *StarlarkExecutor) Execute(state *State, fragment []byte) error {
	if len(fragment) > e.limits.MaxFragmentSize {
		return fmt.Errorf("%w: fragment of %d bytes exceeds %d", ErrComputeBudgetExceeded, len(fragment), e.limits.MaxFragmentSize)
	}
	if e.outOfSteps {
		return fmt.Errorf("%w: step limit %d reached", ErrComputeBudgetExceeded, e.limits.MaxSteps)
	}
	f, prog, err := starlark.SourceProgramOptions(&fileOptions, "fragment", fragment, e.predeclared.Has)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFault, err)
	}
	if err := checkBudget(f, e.predeclared.Has); err != nil {
		return err
	}
	e.state = state
	defer func() { e.state = nil }()
	if _, err := prog.Init(e.thread, e.predeclared); err != nil {
		if errors.Is(err, ErrComputeBudgetExceeded) {
			return err
		}
		if e.outOfSteps {
			return fmt.Errorf("%w: step limit %d reached", ErrComputeBudgetExceeded, e.limits.MaxSteps)
		}
		return fmt.Errorf("%w: %v", ErrRuntimeFault, err)
	}
	return nil
}

// Steps returns the number of interpreter steps used so far.
func (e *StarlarkExecutor) Steps() uint64 {
	return e.thread.ExecutionSteps()
}

func (e *StarlarkExecutor) debug(msg string) {
	round := -1
	if e.state != nil {
		round = e.state.Round
	}
	e.log.Debug("script", zap.Int("round", round), zap.String("msg", msg))
}

func (e *StarlarkExecutor) setWinner(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &n); err != nil {
		return nil, err
	}
	switch n {
	case 0, 1, 2:
	default:
		return nil, fmt.Errorf("%s: invalid player %d", b.Name(), n)
	}
	e.state.Winner = encoding.Mover(n)
	return starlark.None, nil
}

func (e *StarlarkExecutor) winner(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeInt(int(e.state.Winner)), nil
}

func (e *StarlarkExecutor) round(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeInt(e.state.Round), nil
}

func (e *StarlarkExecutor) mover(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeInt(int(e.state.Mover)), nil
}

func (e *StarlarkExecutor) roundSeed(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.Tuple{
		starlark.MakeUint64(e.state.Seed[0]),
		starlark.MakeUint64(e.state.Seed[1]),
	}, nil
}

// toInt is the universe int with its result limited to maxConvertedBits.
func (e *StarlarkExecutor) toInt(th *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := starlark.Call(th, starlark.Universe["int"], args, kwargs)
	if err != nil {
		return nil, err
	}
	if i, ok := v.(starlark.Int); ok {
		if _, small := i.Int64(); !small && i.BigInt().BitLen() > maxConvertedBits {
			return nil, fmt.Errorf("%s: %w: result wider than %d bits", b.Name(), ErrComputeBudgetExceeded, maxConvertedBits)
		}
	}
	return v, nil
}

func (e *StarlarkExecutor) debugBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var msg starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &msg); err != nil {
		return nil, err
	}
	if s, ok := starlark.AsString(msg); ok {
		e.debug(s)
	} else {
		e.debug(msg.String())
	}
	return starlark.None, nil
}

func assetTuple(c asset.Collection) starlark.Tuple {
	t := make(starlark.Tuple, len(c))
	for i, id := range c {
		t[i] = starlark.Bytes(id[:])
	}
	return t
}
