package token

import (
	"math"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
)

// Token is the authorization-and-transfer interface the swap ledger
// consumes. An asset contract must expose an allowance query and an
// authorized transfer that fails atomically when the owner's allowance or
// balance is insufficient.
type Token interface {
	Allowance(db trustee.ReadOnlyKVStore, owner, spender trustee.Address) (int64, error)
	TransferFrom(db trustee.KVStore, spender, owner, recipient trustee.Address, amount int64) error
}

// Ledger keeps balances and approvals of a single asset.
type Ledger struct {
	ref       trustee.Address
	wallets   orm.Bucket
	approvals orm.Bucket
}

var _ Token = (*Ledger)(nil)

// NewLedger returns the ledger of one asset. The name prefixes all store
// keys and must be unique among assets sharing a store: lowercase letters
// or underscore, between 3 and 7 characters. The asset reference address
// is derived from the name.
func NewLedger(name string) *Ledger {
	return &Ledger{
		ref:       trustee.NewCondition("token", "asset", []byte(name)).Address(),
		wallets:   NewWalletBucket(name),
		approvals: NewApprovalBucket(name),
	}
}

// Ref returns the address identifying this asset.
func (l *Ledger) Ref() trustee.Address {
	return l.ref
}

// Balance returns the amount held by the given address. Unknown addresses
// hold zero.
func (l *Ledger) Balance(db trustee.ReadOnlyKVStore, addr trustee.Address) (int64, error) {
	obj, err := l.wallets.Get(db, addr)
	if err != nil {
		return 0, err
	}
	if w := AsWallet(obj); w != nil {
		return w.Balance, nil
	}
	return 0, nil
}

// Issue adds the given amount of the asset to the destination address.
func (l *Ledger) Issue(db trustee.KVStore, dest trustee.Address, amount int64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if amount <= 0 {
		return errors.Wrap(errors.ErrInput, "non-positive amount")
	}
	return l.credit(db, dest, amount)
}

// Move transfers the given amount from src to dest. If src doesn't have
// sufficient funds, it fails.
func (l *Ledger) Move(db trustee.KVStore, src, dest trustee.Address, amount int64) error {
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if amount <= 0 {
		return errors.Wrap(errors.ErrInput, "non-positive amount")
	}
	if err := l.debit(db, src, amount); err != nil {
		return err
	}
	return l.credit(db, dest, amount)
}

// Approve grants the spender the capability to move up to the given
// amount on the owner's behalf, replacing any previous grant. A zero
// amount revokes the grant.
func (l *Ledger) Approve(db trustee.KVStore, owner, spender trustee.Address, amount int64) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := spender.Validate(); err != nil {
		return errors.Wrap(err, "spender")
	}
	if amount < 0 {
		return errors.Wrap(errors.ErrInput, "negative amount")
	}
	key := approvalKey(owner, spender)
	if amount == 0 {
		return l.approvals.Delete(db, key)
	}
	return l.approvals.Save(db, orm.NewSimpleObj(key, &Approval{Remaining: amount}))
}

// Allowance returns the remaining amount the spender may move on the
// owner's behalf.
func (l *Ledger) Allowance(db trustee.ReadOnlyKVStore, owner, spender trustee.Address) (int64, error) {
	obj, err := l.approvals.Get(db, approvalKey(owner, spender))
	if err != nil {
		return 0, err
	}
	if a := AsApproval(obj); a != nil {
		return a.Remaining, nil
	}
	return 0, nil
}

// TransferFrom moves the given amount from owner to recipient, consuming
// the spender's allowance. It fails atomically when the allowance or the
// owner's balance is insufficient.
func (l *Ledger) TransferFrom(db trustee.KVStore, spender, owner, recipient trustee.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrInput, "non-positive amount")
	}

	key := approvalKey(owner, spender)
	obj, err := l.approvals.Get(db, key)
	if err != nil {
		return err
	}
	grant := AsApproval(obj)
	if grant == nil || grant.Remaining < amount {
		return errors.Wrapf(errors.ErrTransfer, "insufficient allowance for %s", spender)
	}

	if err := l.debit(db, owner, amount); err != nil {
		return err
	}
	if err := l.credit(db, recipient, amount); err != nil {
		return err
	}

	grant.Remaining -= amount
	if grant.Remaining == 0 {
		return l.approvals.Delete(db, key)
	}
	return l.approvals.Save(db, orm.NewSimpleObj(key, grant))
}

func (l *Ledger) debit(db trustee.KVStore, addr trustee.Address, amount int64) error {
	obj, err := l.wallets.Get(db, addr)
	if err != nil {
		return err
	}
	w := AsWallet(obj)
	if w == nil || w.Balance < amount {
		return errors.Wrapf(errors.ErrTransfer, "insufficient funds for %s", addr)
	}
	w.Balance -= amount
	return l.wallets.Save(db, orm.NewSimpleObj(addr, w))
}

func (l *Ledger) credit(db trustee.KVStore, addr trustee.Address, amount int64) error {
	obj, err := l.wallets.Get(db, addr)
	if err != nil {
		return err
	}
	w := AsWallet(obj)
	if w == nil {
		w = &Wallet{}
	}
	if w.Balance > math.MaxInt64-amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	w.Balance += amount
	return l.wallets.Save(db, orm.NewSimpleObj(addr, w))
}
