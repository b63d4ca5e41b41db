package swap

import (
	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
)

// InitiateMsg proposes a new swap. The caller becomes the initiator.
type InitiateMsg struct {
	Counterparty trustee.Address
	OfferAsset   trustee.Address
	AskAsset     trustee.Address
	OfferAmount  int64
	AskAmount    int64
}

// Validate makes sure basic rules are enforced upon the input data.
func (m *InitiateMsg) Validate() error {
	if err := m.Counterparty.Validate(); err != nil {
		return errors.Wrap(err, "counterparty")
	}
	if err := m.OfferAsset.Validate(); err != nil {
		return errors.Wrap(err, "offer asset")
	}
	if err := m.AskAsset.Validate(); err != nil {
		return errors.Wrap(err, "ask asset")
	}
	if m.OfferAsset.Equals(m.AskAsset) {
		return errors.Wrap(errors.ErrInput, "same asset on both sides")
	}
	if m.OfferAmount <= 0 {
		return errors.Wrap(errors.ErrInput, "non-positive offer amount")
	}
	if m.AskAmount <= 0 {
		return errors.Wrap(errors.ErrInput, "non-positive ask amount")
	}
	return nil
}

// ExecuteMsg triggers the exchange recorded under the given swap
// identity.
type ExecuteMsg struct {
	SwapID trustee.Identity
}

func (m *ExecuteMsg) Validate() error {
	return errors.Wrap(m.SwapID.Validate(), "swap id")
}
