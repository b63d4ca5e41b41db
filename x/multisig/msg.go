package multisig

import (
	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
)

// AddSignerMsg adds a new principal to the signer set.
type AddSignerMsg struct {
	Signer trustee.Address
}

func (m *AddSignerMsg) Validate() error {
	return errors.Wrap(m.Signer.Validate(), "signer")
}

// RemoveSignerMsg removes a principal from the signer set.
type RemoveSignerMsg struct {
	Signer trustee.Address
}

func (m *RemoveSignerMsg) Validate() error {
	return errors.Wrap(m.Signer.Validate(), "signer")
}

// ChangeQuorumMsg reconfigures the threshold value.
type ChangeQuorumMsg struct {
	Quorum int32
}

func (m *ChangeQuorumMsg) Validate() error {
	if m.Quorum < 1 {
		return errors.Wrap(errors.ErrInput, "quorum must be greater than 0")
	}
	return nil
}

// QueueMsg appends a new action to the queue.
type QueueMsg struct {
	Target  trustee.Address
	Value   int64
	Payload []byte
}

func (m *QueueMsg) Validate() error {
	if err := m.Target.Validate(); err != nil {
		return errors.Wrap(err, "target")
	}
	if m.Value < 0 {
		return errors.Wrap(errors.ErrInput, "negative value")
	}
	if len(m.Payload) > MaxPayloadSize {
		return errors.Wrap(errors.ErrInput, "payload too big")
	}
	return nil
}

// ExecuteMsg performs the external call of the queued action at the
// given list position.
type ExecuteMsg struct {
	Index int64
}

func (m *ExecuteMsg) Validate() error {
	if m.Index < 0 {
		return errors.Wrap(errors.ErrInput, "negative index")
	}
	return nil
}
