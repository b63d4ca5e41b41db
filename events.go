package trustee

// Event is a one-way notification about a committed state transition. The
// state machines emit events for off-chain indexing only; nothing in this
// module ever reads them back.
type Event interface {
	// Kind is a stable identifier of the event type, in
	// "extension/name" format.
	Kind() string
}

// Emitter receives events as they happen. The host environment is expected
// to drop all emitted events when the operation that produced them is
// rolled back.
type Emitter interface {
	Emit(Event)
}

// NoEmitter discards all events. Use it when no observer is wired in.
type NoEmitter struct{}

var _ Emitter = NoEmitter{}

func (NoEmitter) Emit(Event) {}

// SwapProposed is emitted when a new swap record is created.
type SwapProposed struct {
	SwapID       Identity
	Initiator    Address
	Counterparty Address
	OfferAsset   Address
	AskAsset     Address
	OfferAmount  int64
	AskAmount    int64
}

func (SwapProposed) Kind() string { return "swap/proposed" }

// SwapExecuted is emitted when both legs of a swap settled.
type SwapExecuted struct {
	SwapID   Identity
	Executor Address
}

func (SwapExecuted) Kind() string { return "swap/executed" }

// SignerAdded is emitted when a principal joins the signer set.
type SignerAdded struct {
	Signer Address
}

func (SignerAdded) Kind() string { return "multisig/signer_added" }

// SignerRemoved is emitted when a principal leaves the signer set.
type SignerRemoved struct {
	Signer Address
}

func (SignerRemoved) Kind() string { return "multisig/signer_removed" }

// QuorumChanged is emitted when the threshold value is reconfigured.
type QuorumChanged struct {
	Quorum int32
}

func (QuorumChanged) Kind() string { return "multisig/quorum_changed" }

// ActionQueued is emitted when a new action enters the queue. Index is the
// list position of the entry; it is stable because the queue is
// append-only.
type ActionQueued struct {
	ActionID Identity
	Index    int64
	Target   Address
	Value    int64
	Payload  []byte
}

func (ActionQueued) Kind() string { return "multisig/action_queued" }

// ActionExecuted is emitted when a queued action performed its external
// call.
type ActionExecuted struct {
	ActionID Identity
	Index    int64
	Executor Address
}

func (ActionExecuted) Kind() string { return "multisig/action_executed" }
