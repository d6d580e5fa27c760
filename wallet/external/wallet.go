package external

import (
	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"perun.network/go-perun/wallet"
)

type Wallet struct {
	client Client
}

var _ wallet.Wallet = Wallet{}

func NewWallet(client Client) Wallet {
	return Wallet{client: client}
}

func (w Wallet) Unlock(a wallet.Address) (wallet.Account, error) {
	addr, err := address.IsAddress(a)
	if err != nil {
		return nil, err
	}
	err = w.client.Unlock(*addr)
	if err != nil {
		return nil, err
	}
	return NewAccount(w.client, *addr), nil
}

func (w Wallet) LockAll() {}

func (w Wallet) IncrementUsage(address wallet.Address) {}

func (w Wallet) DecrementUsage(address wallet.Address) {}
