package multisig

import (
	"encoding/json"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
)

const (
	// MaxSigners is the maximum number of principals allowed in one
	// wallet. To avoid burning CPU on membership scans this is kept
	// small.
	MaxSigners = 16

	// MaxQueue is the maximum number of actions that can be queued.
	// The queue is append-only, so executed entries count too.
	MaxQueue = 128

	// MaxPayloadSize bounds the opaque payload of a queued action.
	MaxPayloadSize = 8192
)

// Contract is the signer set and threshold configuration of a wallet.
type Contract struct {
	// Signers is the ordered collection of authorized principals.
	// Order is not stable across removals.
	Signers []trustee.Address `json:"signers"`

	// Quorum is the number of principal approvals conceptually required
	// for a collective action. It gates configuration validation; see
	// the package documentation for the trust model.
	Quorum int32 `json:"quorum"`

	// index is the fast membership lookup, rebuilt on demand and kept
	// consistent with Signers by every mutation.
	index map[string]struct{}
}

var _ orm.Model = (*Contract)(nil)

// Validate enforces the signer set and threshold boundaries.
func (c *Contract) Validate() error {
	switch n := len(c.Signers); {
	case n == 0:
		return errors.Wrap(errors.ErrState, "no signers")
	case n > MaxSigners:
		return errors.Wrap(errors.ErrState, "too many signers")
	}
	seen := make(map[string]struct{}, len(c.Signers))
	for _, s := range c.Signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %s", s)
		}
		if _, ok := seen[string(s)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "signer %s", s)
		}
		seen[string(s)] = struct{}{}
	}
	if c.Quorum < 1 {
		return errors.Wrap(errors.ErrState, "quorum must be greater than 0")
	}
	if int(c.Quorum) > len(c.Signers) {
		return errors.Wrap(errors.ErrState, "quorum greater than the number of signers")
	}
	return nil
}

func (c *Contract) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *Contract) Unmarshal(bz []byte) error {
	c.index = nil
	return json.Unmarshal(bz, c)
}

// IsSigner returns true if the given address is a current signer.
func (c *Contract) IsSigner(addr trustee.Address) bool {
	if c.index == nil {
		c.reindex()
	}
	_, ok := c.index[string(addr)]
	return ok
}

// Add appends a new signer to the set.
func (c *Contract) Add(addr trustee.Address) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	if c.IsSigner(addr) {
		return errors.Wrapf(errors.ErrDuplicate, "signer %s", addr)
	}
	if len(c.Signers) >= MaxSigners {
		return errors.Wrap(errors.ErrOverflow, "too many signers")
	}
	c.Signers = append(c.Signers, addr)
	c.index[string(addr)] = struct{}{}
	return nil
}

// Remove deletes a signer from the set by moving the last entry into its
// place and shrinking the collection. The order of the remaining signers
// is therefore not preserved.
func (c *Contract) Remove(addr trustee.Address) error {
	if !c.IsSigner(addr) {
		return errors.Wrapf(errors.ErrNotFound, "signer %s", addr)
	}
	if len(c.Signers) == 1 {
		return errors.Wrap(errors.ErrState, "cannot remove the last signer")
	}
	for i, s := range c.Signers {
		if s.Equals(addr) {
			last := len(c.Signers) - 1
			c.Signers[i] = c.Signers[last]
			c.Signers = c.Signers[:last]
			break
		}
	}
	delete(c.index, string(addr))
	return nil
}

func (c *Contract) reindex() {
	c.index = make(map[string]struct{}, len(c.Signers))
	for _, s := range c.Signers {
		c.index[string(s)] = struct{}{}
	}
}

// Action is one queued external call. Entries are append-only: execution
// is tracked in a side record, never by removing the entry.
type Action struct {
	Target  trustee.Address `json:"target"`
	Value   int64           `json:"value"`
	Payload []byte          `json:"payload"`
}

var _ orm.Model = (*Action)(nil)

func (a *Action) Validate() error {
	if err := a.Target.Validate(); err != nil {
		return errors.Wrap(err, "target")
	}
	if a.Value < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	if len(a.Payload) > MaxPayloadSize {
		return errors.Wrap(errors.ErrState, "payload too big")
	}
	return nil
}

func (a *Action) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Action) Unmarshal(bz []byte) error {
	return json.Unmarshal(bz, a)
}

// ID derives the content identity of the action. Two entries with the
// same target, value and payload share one identity no matter their
// queue positions.
func (a *Action) ID() trustee.Identity {
	return ActionID(a.Target, a.Value, a.Payload)
}

// ActionID derives the deterministic identity of an action content
// tuple.
func ActionID(target trustee.Address, value int64, payload []byte) trustee.Identity {
	return trustee.DeriveIdentity(target, trustee.AmountField(value), payload)
}

// Execution marks an action identity as settled. The record is append
// only and never flips back.
type Execution struct {
	Done bool `json:"done"`
}

var _ orm.Model = (*Execution)(nil)

func (e *Execution) Validate() error {
	if !e.Done {
		return errors.Wrap(errors.ErrState, "must be done")
	}
	return nil
}

func (e *Execution) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Execution) Unmarshal(bz []byte) error {
	return json.Unmarshal(bz, e)
}

// NewContractBucket stores the wallet configuration.
func NewContractBucket() orm.Bucket {
	return orm.NewBucket("msig", &Contract{})
}

// NewActionBucket stores the queued actions, keyed by their sequence
// assigned position.
func NewActionBucket() orm.Bucket {
	return orm.NewBucket("msigq", &Action{})
}

// NewExecutionBucket stores the executed identity set.
func NewExecutionBucket() orm.Bucket {
	return orm.NewBucket("msigdone", &Execution{})
}

// AsContract extracts the *Contract value or nil from the object.
func AsContract(obj orm.Object) *Contract {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Contract)
}

// AsAction extracts the *Action value or nil from the object.
func AsAction(obj orm.Object) *Action {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Action)
}
