package swap

import (
	"encoding/json"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
)

// BucketName is where we store the swap records.
const BucketName = "swap"

// Swap is one two-party asset exchange. The initiator offers OfferAmount
// of OfferAsset against AskAmount of AskAsset from the counterparty.
type Swap struct {
	Initiator    trustee.Address `json:"initiator"`
	Counterparty trustee.Address `json:"counterparty"`
	OfferAsset   trustee.Address `json:"offer_asset"`
	AskAsset     trustee.Address `json:"ask_asset"`
	OfferAmount  int64           `json:"offer_amount"`
	AskAmount    int64           `json:"ask_amount"`

	// Executed flips false to true exactly once and never back.
	Executed bool `json:"executed"`
}

var _ orm.Model = (*Swap)(nil)

// Validate ensures the swap record is valid.
func (s *Swap) Validate() error {
	if err := s.Initiator.Validate(); err != nil {
		return errors.Wrap(err, "initiator")
	}
	if err := s.Counterparty.Validate(); err != nil {
		return errors.Wrap(err, "counterparty")
	}
	if err := s.OfferAsset.Validate(); err != nil {
		return errors.Wrap(err, "offer asset")
	}
	if err := s.AskAsset.Validate(); err != nil {
		return errors.Wrap(err, "ask asset")
	}
	if s.OfferAsset.Equals(s.AskAsset) {
		return errors.Wrap(errors.ErrState, "same asset on both sides")
	}
	if s.OfferAmount <= 0 || s.AskAmount <= 0 {
		return errors.Wrap(errors.ErrState, "non-positive amount")
	}
	return nil
}

func (s *Swap) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Swap) Unmarshal(bz []byte) error {
	return json.Unmarshal(bz, s)
}

// IsParticipant returns true if the given address is the initiator or the
// counterparty of this swap.
func (s *Swap) IsParticipant(addr trustee.Address) bool {
	return s.Initiator.Equals(addr) || s.Counterparty.Equals(addr)
}

// SwapID derives the deterministic identity of a swap from its ordered
// field tuple. Identical proposals always derive the identical identity.
func SwapID(initiator, counterparty, offerAsset, askAsset trustee.Address, offerAmount, askAmount int64) trustee.Identity {
	return trustee.DeriveIdentity(
		initiator,
		counterparty,
		offerAsset,
		askAsset,
		trustee.AmountField(offerAmount),
		trustee.AmountField(askAmount),
	)
}

// NewBucket stores the swap records, keyed by swap identity.
func NewBucket() orm.Bucket {
	return orm.NewBucket(BucketName, &Swap{})
}

// AsSwap extracts the *Swap value or nil from the object.
func AsSwap(obj orm.Object) *Swap {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Swap)
}
