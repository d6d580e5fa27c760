package channel

import (
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	gpwallet "perun.network/go-perun/wallet"
)

// DigestSigner signs 32 byte digests. Both wallet.Account and
// external.Account implement it.
type DigestSigner interface {
	SignDigest(digest []byte) (wallet.Signature, error)
}

type SignedMove struct {
	Record    encoding.MoveRecord
	Signature wallet.Signature
}

// Append creates the record of a round. The fragments are copied.
func Append(mover encoding.Mover, ops ...[]byte) encoding.MoveRecord {
	cp := make([][]byte, len(ops))
	for i, op := range ops {
		cp[i] = append([]byte(nil), op...)
	}
	return encoding.MoveRecord{Mover: mover, Operations: cp}
}

// Sign signs record on top of the chain position prior.
func Sign(signer DigestSigner, record encoding.MoveRecord, prior Digest) (wallet.Signature, error) {
	msg := MessageDigest(prior, record)
	sig, err := signer.SignDigest(msg[:])
	if err != nil {
		return wallet.Signature{}, fmt.Errorf("signing round: %w", err)
	}
	return sig, nil
}

// VerifyChain walks moves from anchor and returns the digest after the last
// move. The first mover must be firstMover and movers must alternate. Each
// signature must recover to the identity of its mover. It stops at the first
// invalid link and reports it as *LinkError.
func VerifyChain(moves []SignedMove, anchor Digest, firstMover encoding.Mover, ids [2]address.Identity) (Digest, error) {
	if len(moves) == 0 {
		return Digest{}, ErrEmptyChain
	}
	if !firstMover.Valid() {
		return Digest{}, fmt.Errorf("invalid first mover %v", firstMover)
	}
	head := anchor
	prev := firstMover.Opponent()
	for i, m := range moves {
		mover := m.Record.Mover
		if !mover.Valid() || mover == prev {
			return Digest{}, &LinkError{Index: i, Err: fmt.Errorf("%w: %v after %v", ErrBrokenAlternation, mover, prev)}
		}
		msg := MessageDigest(head, m.Record)
		if !wallet.Verify(ids[mover.Index()], msg[:], m.Signature) {
			return Digest{}, &LinkError{Index: i, Err: fmt.Errorf("%w: not signed by %v", ErrBadSignature, mover)}
		}
		head = NextDigest(msg, m.Signature)
		prev = mover
	}
	return head, nil
}

// Chain is the off-chain view of a game in progress. It is not safe for
// concurrent use.
type Chain struct {
	anchor Digest
	head   Digest
	moves  []SignedMove
}

func NewChain(anchor Digest) *Chain {
	return &Chain{anchor: anchor, head: anchor}
}

// Extend signs record with signer and appends it.
func (c *Chain) Extend(signer DigestSigner, record encoding.MoveRecord) (SignedMove, error) {
	sig, err := Sign(signer, record, c.head)
	if err != nil {
		return SignedMove{}, err
	}
	return c.Add(SignedMove{Record: record, Signature: sig}), nil
}

// ExtendFrom signs record with the account of its mover, unlocked from w.
// ids are the identities of player 1 and player 2.
func (c *Chain) ExtendFrom(w gpwallet.Wallet, ids [2]address.Identity, record encoding.MoveRecord) (SignedMove, error) {
	if !record.Mover.Valid() {
		return SignedMove{}, fmt.Errorf("invalid mover %v", record.Mover)
	}
	signer, err := WalletSigner(w, ids[record.Mover.Index()])
	if err != nil {
		return SignedMove{}, err
	}
	return c.Extend(signer, record)
}

// WalletSigner unlocks the account of id in w. The account must sign
// digests, as those of the ephemeral and the external wallet do.
func WalletSigner(w gpwallet.Wallet, id address.Identity) (DigestSigner, error) {
	acc, err := w.Unlock(&address.Address{Identity: id})
	if err != nil {
		return nil, fmt.Errorf("unlocking %v: %w", id, err)
	}
	signer, ok := acc.(DigestSigner)
	if !ok {
		return nil, fmt.Errorf("account of %v cannot sign digests", id)
	}
	return signer, nil
}

// Add appends a move signed by the other party. It does not verify it.
func (c *Chain) Add(m SignedMove) SignedMove {
	msg := MessageDigest(c.head, m.Record)
	c.head = NextDigest(msg, m.Signature)
	c.moves = append(c.moves, m)
	return m
}

func (c *Chain) Anchor() Digest {
	return c.anchor
}

func (c *Chain) Head() Digest {
	return c.head
}

func (c *Chain) Len() int {
	return len(c.moves)
}

// Moves returns a copy of the moves so far.
func (c *Chain) Moves() []SignedMove {
	return append([]SignedMove(nil), c.moves...)
}
