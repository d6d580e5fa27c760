package encoding

import (
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/softprodev/ckb-nft-kabletop/channel/asset"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
)

// Player is one side of a game as fixed at stake creation.
type Player struct {
	Identity address.Identity
	Assets   asset.Collection
}

// GameParameters are the lock args of a stake cell. They never change during
// the lifetime of the cell and its successors.
type GameParameters struct {
	Stake         uint64
	DeckSize      uint8
	DeadlineBlock uint64
	// RefHash is the code hash of the payout lock.
	RefHash types.Hash
	Players [2]Player
}

// Player returns the parameters of the given mover.
func (p GameParameters) Player(m Mover) Player {
	return p.Players[m.Index()]
}

// Identities returns both identities ordered by player index.
func (p GameParameters) Identities() [2]address.Identity {
	return [2]address.Identity{p.Players[0].Identity, p.Players[1].Identity}
}

// Validate checks the structural invariants of the parameters.
func (p GameParameters) Validate() error {
	for i, pl := range p.Players {
		if pl.Identity.IsZero() {
			return fmt.Errorf("player %d has no identity", i+1)
		}
		if err := pl.Assets.Validate(); err != nil {
			return fmt.Errorf("player %d: %w", i+1, err)
		}
	}
	if p.Players[0].Identity == p.Players[1].Identity {
		return errors.New("players share an identity")
	}
	if !asset.Disjoint(p.Players[0].Assets, p.Players[1].Assets) {
		return errors.New("asset collections are not disjoint")
	}
	return nil
}

// CheckDeckSize checks that both collections hold exactly DeckSize assets.
func (p GameParameters) CheckDeckSize() error {
	for i, pl := range p.Players {
		if len(pl.Assets) != int(p.DeckSize) {
			return fmt.Errorf("player %d holds %d assets, deck size is %d", i+1, len(pl.Assets), p.DeckSize)
		}
	}
	return nil
}

// Pack returns the canonical encoding:
// u64 stake; u8 deckSize; u64 deadlineBlock; 32B refHash;
// 20B id1; count+20B×n collection1; 20B id2; count+20B×n collection2.
func (p GameParameters) Pack() []byte {
	var w writer
	w.u64(p.Stake)
	w.u8(p.DeckSize)
	w.u64(p.DeadlineBlock)
	w.fixed(p.RefHash[:])
	for _, pl := range p.Players {
		w.fixed(pl.Identity[:])
		w.count(len(pl.Assets))
		for _, id := range pl.Assets {
			w.fixed(id[:])
		}
	}
	return w.buf
}

// UnpackGameParameters decodes and validates game parameters.
func UnpackGameParameters(b []byte) (GameParameters, error) {
	rd := newReader(b)
	var p GameParameters
	var err error
	if p.Stake, err = rd.u64("stake"); err != nil {
		return GameParameters{}, err
	}
	if p.DeckSize, err = rd.u8("deck size"); err != nil {
		return GameParameters{}, err
	}
	if p.DeadlineBlock, err = rd.u64("deadline block"); err != nil {
		return GameParameters{}, err
	}
	ref, err := rd.fixed(len(p.RefHash), "ref hash")
	if err != nil {
		return GameParameters{}, err
	}
	copy(p.RefHash[:], ref)
	for i := range p.Players {
		id, err := rd.fixed(address.IdentityLength, "identity")
		if err != nil {
			return GameParameters{}, err
		}
		copy(p.Players[i].Identity[:], id)
		n, err := rd.count(asset.IDLength, "assets")
		if err != nil {
			return GameParameters{}, err
		}
		assets := make(asset.Collection, n)
		for j := range assets {
			raw, err := rd.fixed(asset.IDLength, "asset")
			if err != nil {
				return GameParameters{}, err
			}
			copy(assets[j][:], raw)
		}
		p.Players[i].Assets = assets
	}
	if err := rd.finish("game parameters"); err != nil {
		return GameParameters{}, err
	}
	if err := p.Validate(); err != nil {
		return GameParameters{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return p, nil
}
