package token

import (
	"encoding/json"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
)

// Wallet is the balance of one address in one asset.
type Wallet struct {
	Balance int64 `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Validate() error {
	if w.Balance < 0 {
		return errors.Wrap(errors.ErrState, "negative balance")
	}
	return nil
}

func (w *Wallet) Marshal() ([]byte, error) {
	return json.Marshal(w)
}

func (w *Wallet) Unmarshal(bz []byte) error {
	return json.Unmarshal(bz, w)
}

// Approval is a capability granted by an owner permitting a spender to
// move up to Remaining units of the asset on the owner's behalf.
type Approval struct {
	Remaining int64 `json:"remaining"`
}

var _ orm.Model = (*Approval)(nil)

func (a *Approval) Validate() error {
	if a.Remaining < 0 {
		return errors.Wrap(errors.ErrState, "negative allowance")
	}
	return nil
}

func (a *Approval) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Approval) Unmarshal(bz []byte) error {
	return json.Unmarshal(bz, a)
}

// NewWalletBucket stores all balances of one asset.
func NewWalletBucket(name string) orm.Bucket {
	return orm.NewBucket(name, &Wallet{})
}

// NewApprovalBucket stores all allowances of one asset, keyed by
// owner and spender.
func NewApprovalBucket(name string) orm.Bucket {
	return orm.NewBucket(name+"_ap", &Approval{})
}

// AsWallet extracts the *Wallet value or nil from the object.
func AsWallet(obj orm.Object) *Wallet {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Wallet)
}

// AsApproval extracts the *Approval value or nil from the object.
func AsApproval(obj orm.Object) *Approval {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Approval)
}

// approvalKey joins owner and spender into the approval bucket key.
func approvalKey(owner, spender trustee.Address) []byte {
	key := make([]byte, 0, len(owner)+len(spender)+1)
	key = append(key, owner...)
	key = append(key, '|')
	return append(key, spender...)
}
