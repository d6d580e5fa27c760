package test

import (
	"math/rand"
	"strconv"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	btest "github.com/softprodev/ckb-nft-kabletop/backend/test"
	"github.com/softprodev/ckb-nft-kabletop/channel"
	atest "github.com/softprodev/ckb-nft-kabletop/channel/asset/test"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	wtest "github.com/softprodev/ckb-nft-kabletop/wallet/test"
)

// Players are both sides of a test game. Their keys live in one wallet.
type Players struct {
	Wallet *wallet.EphemeralWallet
	ids    [2]address.Identity
}

func NewRandomPlayers(rng *rand.Rand) Players {
	p := Players{Wallet: wallet.NewEphemeralWallet()}
	for i := range p.ids {
		acc := wtest.NewRandomAccountFromRng(rng)
		if err := p.Wallet.AddAccount(acc); err != nil {
			panic(err)
		}
		p.ids[i] = acc.Identity()
	}
	return p
}

func (p Players) Account(m encoding.Mover) *wallet.Account {
	acc, err := p.Wallet.AccountOf(p.ids[m.Index()])
	if err != nil {
		panic(err)
	}
	return acc
}

func (p Players) Identities() [2]address.Identity {
	return p.ids
}

type ParametersOpt func(*encoding.GameParameters)

func WithStake(stake uint64) ParametersOpt {
	return func(p *encoding.GameParameters) {
		p.Stake = stake
	}
}

func WithDeadline(block uint64) ParametersOpt {
	return func(p *encoding.GameParameters) {
		p.DeadlineBlock = block
	}
}

func WithRefHash(h types.Hash) ParametersOpt {
	return func(p *encoding.GameParameters) {
		p.RefHash = h
	}
}

// NewRandomParameters returns valid game parameters for players with decks of
// four random assets each.
func NewRandomParameters(rng *rand.Rand, players Players, opts ...ParametersOpt) encoding.GameParameters {
	ids := players.Identities()
	deck := atest.NewRandomCollection(rng, 8)
	p := encoding.GameParameters{
		Stake:         uint64(rng.Int63n(1_000_000)),
		DeckSize:      4,
		DeadlineBlock: uint64(rng.Int63n(1_000_000)),
		RefHash:       btest.NewRandomHash(rng),
		Players: [2]encoding.Player{
			{Identity: ids[0], Assets: deck[:4]},
			{Identity: ids[1], Assets: deck[4:]},
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewRandomRecords returns n alternating records starting with first. Each
// record carries a harmless fragment.
func NewRandomRecords(rng *rand.Rand, n int, first encoding.Mover) []encoding.MoveRecord {
	records := make([]encoding.MoveRecord, n)
	mover := first
	for i := range records {
		records[i] = channel.Append(mover, []byte("x = "+strconv.Itoa(rng.Intn(1000))))
		mover = mover.Opponent()
	}
	return records
}

// SignChain lets the mover of each record sign it on top of anchor.
func SignChain(players Players, anchor channel.Digest, records []encoding.MoveRecord) ([]channel.SignedMove, error) {
	c := channel.NewChain(anchor)
	for _, r := range records {
		if _, err := c.ExtendFrom(players.Wallet, players.Identities(), r); err != nil {
			return nil, err
		}
	}
	return c.Moves(), nil
}
