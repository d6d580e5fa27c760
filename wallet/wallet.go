package wallet

import (
	"errors"

	"github.com/softprodev/ckb-nft-kabletop/wallet/address"
	"perun.network/go-perun/wallet"
	"polycry.pt/poly-go/sync"
)

// EphemeralWallet keeps player accounts in memory, keyed by identity.
type EphemeralWallet struct {
	lock     sync.Mutex
	accounts map[address.Identity]*Account
}

var _ wallet.Wallet = (*EphemeralWallet)(nil)

func (e *EphemeralWallet) Unlock(a wallet.Address) (wallet.Account, error) {
	addr, err := address.IsAddress(a)
	if err != nil {
		return nil, err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	account, ok := e.accounts[addr.Identity]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

// AccountOf returns the account holding the key of the given identity.
func (e *EphemeralWallet) AccountOf(id address.Identity) (*Account, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	account, ok := e.accounts[id]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (e *EphemeralWallet) LockAll() {}

func (e *EphemeralWallet) IncrementUsage(address wallet.Address) {}

func (e *EphemeralWallet) DecrementUsage(address wallet.Address) {}

func (e *EphemeralWallet) AddNewAccount() (*Account, error) {
	acc, err := NewAccount()
	if err != nil {
		return nil, err
	}
	return acc, e.AddAccount(acc)
}

func (e *EphemeralWallet) AddAccount(acc *Account) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if _, ok := e.accounts[acc.Identity()]; ok {
		return errors.New("account already exists")
	}
	e.accounts[acc.Identity()] = acc
	return nil
}

func NewEphemeralWallet() *EphemeralWallet {
	return &EphemeralWallet{
		accounts: make(map[address.Identity]*Account),
	}
}
