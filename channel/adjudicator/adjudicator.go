package adjudicator

import (
	"bytes"
	"fmt"
	"math"

	"github.com/softprodev/ckb-nft-kabletop/backend"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/encoding/molecule"
	"github.com/softprodev/ckb-nft-kabletop/script"
	"go.uber.org/zap"
)

// Adjudicator decides whether a transaction may consume a stake cell. It
// holds no state between calls and may be shared between goroutines.
type Adjudicator struct {
	cfg      Config
	replayer *script.Replayer
	log      *zap.Logger
}

type Option func(*Adjudicator)

func WithLogger(log *zap.Logger) Option {
	return func(a *Adjudicator) {
		a.log = log
	}
}

func NewAdjudicator(cfg Config, opts ...Option) (*Adjudicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &Adjudicator{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.replayer = script.NewReplayer(cfg.Script, script.WithLogger(a.log))
	return a, nil
}

func (a *Adjudicator) Config() Config {
	return a.cfg
}

// Transition is the verdict on an accepted transaction.
type Transition struct {
	From  Phase
	Event Event
	To    Phase
	// Claim is the claim stored in the successor cell when To is Disputed.
	Claim *encoding.DisputeClaim
	// Outcome and Payout are set when To is Settled.
	Outcome *script.Outcome
	Payout  *Payout
}

// Verify checks a transaction consuming the stake cell described by ctx.
// Any error rejects the transaction.
func (a *Adjudicator) Verify(ctx *backend.ScriptContext) (Transition, error) {
	if ctx == nil || ctx.Input.Output.Lock == nil {
		return Transition{}, fmt.Errorf("%w: input has no lock script", encoding.ErrFormat)
	}
	params, err := encoding.UnpackGameParameters(ctx.LockArgs())
	if err != nil {
		return Transition{}, fmt.Errorf("game parameters: %w", err)
	}
	if a.cfg.RequireFullDeck {
		if err := params.CheckDeckSize(); err != nil {
			return Transition{}, fmt.Errorf("%w: %v", encoding.ErrFormat, err)
		}
	}

	t := Transition{From: AwaitingMoves}
	var prior *encoding.DisputeClaim
	if len(ctx.Input.Data) > 0 {
		c, err := encoding.UnpackDisputeClaim(ctx.Input.Data)
		if err != nil {
			return Transition{}, fmt.Errorf("stored claim: %w", err)
		}
		prior, t.From = &c, Disputed
	}

	moves, err := a.decodeWitnesses(ctx.Witnesses)
	if err != nil {
		return Transition{}, err
	}

	successors := ctx.Successors()
	switch {
	case len(successors) > 1:
		return Transition{}, fmt.Errorf("%w: %d successor cells", ErrWrongPriorState, len(successors))
	case len(successors) == 1:
		t.Event = Claim
	case len(moves) == 0 && prior != nil:
		t.Event = Timeout
	default:
		t.Event = Settle
	}
	if t.To, err = NextPhase(t.From, t.Event); err != nil {
		return Transition{}, err
	}
	log := a.log.With(zap.Stringer("from", t.From), zap.Stringer("event", t.Event))

	anchor := channel.Anchor(ctx.Input.LockHash(), ctx.Input.Output.Capacity)
	switch t.Event {
	case Claim:
		claim, err := a.verifyClaim(params, anchor, moves, prior, ctx.Input, successors[0])
		if err != nil {
			log.Debug("claim rejected", zap.Error(err))
			return Transition{}, err
		}
		t.Claim = &claim
		log.Debug("claim accepted", zap.Uint8("offset", claim.RoundOffset))
		return t, nil
	case Settle:
		if err := a.verifyMoves(params, anchor, moves, prior); err != nil {
			log.Debug("settlement rejected", zap.Error(err))
			return Transition{}, err
		}
		out, err := a.replayer.Replay(params, moves)
		if err != nil {
			return Transition{}, err
		}
		t.Outcome = &out
	case Timeout:
		out, err := a.timeoutOutcome(params, ctx.Since, prior)
		if err != nil {
			log.Debug("timeout rejected", zap.Error(err))
			return Transition{}, err
		}
		t.Outcome = &out
	}

	p, err := ComputePayout(params, ctx.Input.Output.Capacity, *t.Outcome, a.cfg.DrawSplit)
	if err != nil {
		return Transition{}, err
	}
	if err := a.checkOutputs(params, ctx.Outputs, p, *t.Outcome); err != nil {
		log.Debug("payout rejected", zap.Stringer("outcome", t.Outcome), zap.Error(err))
		return Transition{}, err
	}
	t.Payout = &p
	log.Debug("settled", zap.Stringer("outcome", t.Outcome))
	return t, nil
}

func (a *Adjudicator) decodeWitnesses(witnesses [][]byte) ([]channel.SignedMove, error) {
	if len(witnesses) > a.cfg.MaxRounds {
		return nil, fmt.Errorf("%w: %d rounds exceed %d", channel.ErrRoundOffsetOutOfRange, len(witnesses), a.cfg.MaxRounds)
	}
	moves := make([]channel.SignedMove, len(witnesses))
	for i, w := range witnesses {
		if len(w) > a.cfg.MaxWitnessSize {
			return nil, fmt.Errorf("%w: witness %d has %d bytes, limit is %d", encoding.ErrFormat, i, len(w), a.cfg.MaxWitnessSize)
		}
		rw, err := molecule.UnpackRoundWitness(w)
		if err != nil {
			return nil, fmt.Errorf("witness %d: %w", i, err)
		}
		moves[i] = channel.SignedMove{Record: rw.Round, Signature: rw.Signature}
	}
	return moves, nil
}

// verifyMoves verifies the chain and, when escalating, that it extends the
// prior claim.
func (a *Adjudicator) verifyMoves(params encoding.GameParameters, anchor channel.Digest, moves []channel.SignedMove, prior *encoding.DisputeClaim) error {
	if _, err := channel.VerifyChain(moves, anchor, a.cfg.FirstMover, params.Identities()); err != nil {
		return err
	}
	if prior == nil {
		return nil
	}
	off := int(prior.RoundOffset)
	if len(moves) <= off+1 {
		return fmt.Errorf("%w: %d rounds do not extend claimed offset %d", ErrStaleClaim, len(moves), off)
	}
	if !sameMove(moves[off], prior) {
		return fmt.Errorf("%w: round %d differs from the claimed round", ErrStaleClaim, off)
	}
	return nil
}

func (a *Adjudicator) verifyClaim(params encoding.GameParameters, anchor channel.Digest, moves []channel.SignedMove, prior *encoding.DisputeClaim, input, successor backend.CKBOutput) (encoding.DisputeClaim, error) {
	if successor.Output.Capacity != input.Output.Capacity {
		return encoding.DisputeClaim{}, fmt.Errorf("%w: successor capacity %d, stake cell holds %d", ErrOutputMismatch, successor.Output.Capacity, input.Output.Capacity)
	}
	claim, err := encoding.UnpackDisputeClaim(successor.Data)
	if err != nil {
		return encoding.DisputeClaim{}, fmt.Errorf("successor claim: %w", err)
	}
	if len(moves) == 0 {
		return encoding.DisputeClaim{}, channel.ErrEmptyChain
	}
	if int(claim.RoundOffset)+1 != len(moves) {
		return encoding.DisputeClaim{}, fmt.Errorf("%w: offset %d with %d rounds", channel.ErrRoundOffsetOutOfRange, claim.RoundOffset, len(moves))
	}
	if prior != nil && claim.RoundOffset <= prior.RoundOffset {
		return encoding.DisputeClaim{}, fmt.Errorf("%w: offset %d does not exceed %d", ErrStaleClaim, claim.RoundOffset, prior.RoundOffset)
	}
	if err := a.verifyMoves(params, anchor, moves, prior); err != nil {
		return encoding.DisputeClaim{}, err
	}
	if !sameMove(moves[claim.RoundOffset], &claim) {
		return encoding.DisputeClaim{}, fmt.Errorf("%w: claim does not copy round %d", ErrOutputMismatch, claim.RoundOffset)
	}
	return claim, nil
}

// timeoutOutcome settles a claim whose window expired. A winner declared by
// the claimed round stands, otherwise the opponent of the claim's mover
// wins.
func (a *Adjudicator) timeoutOutcome(params encoding.GameParameters, rawSince uint64, claim *encoding.DisputeClaim) (script.Outcome, error) {
	since, err := backend.ParseSince(rawSince)
	if err != nil {
		return script.Outcome{}, fmt.Errorf("%w: %v", ErrPrematureTimeout, err)
	}
	if since.Metric != backend.SinceBlockNumber {
		return script.Outcome{}, fmt.Errorf("%w: since measured in %v", ErrPrematureTimeout, since.Metric)
	}
	window := a.cfg.Window.Window(claim.RoundOffset)
	if params.DeadlineBlock > math.MaxUint64-window {
		return script.Outcome{}, fmt.Errorf("%w: deadline %d plus window %d is out of range", ErrPrematureTimeout, params.DeadlineBlock, window)
	}
	if since.Value < params.DeadlineBlock+window {
		return script.Outcome{}, fmt.Errorf("%w: since %d, need %d", ErrPrematureTimeout, since.Value, params.DeadlineBlock+window)
	}
	move := channel.SignedMove{Record: claim.Round, Signature: claim.Signature}
	out, err := a.replayer.ReplayRound(params, int(claim.RoundOffset), move)
	if err != nil {
		return script.Outcome{}, err
	}
	if out.IsDraw() {
		out.Winner = claim.Round.Mover.Opponent()
	}
	return out, nil
}

// sameMove reports whether m is the round embedded in c, byte for byte.
func sameMove(m channel.SignedMove, c *encoding.DisputeClaim) bool {
	return m.Signature == c.Signature && bytes.Equal(m.Record.Pack(), c.Round.Pack())
}
