package multisig

import (
	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
)

// walletKey is the singleton key the configuration is stored under. One
// store carries one wallet.
var walletKey = []byte("wallet")

// Executor performs the external call of a queued action. Returning an
// error makes the whole execution roll back.
type Executor interface {
	Call(ctx trustee.Context, db trustee.KVStore, target trustee.Address, value int64, payload []byte) error
}

// Wallet is the threshold-authorized action queue controller.
type Wallet struct {
	initial   *Contract
	executor  Executor
	auth      trustee.Authenticator
	emitter   trustee.Emitter
	contracts orm.Bucket
	actions   orm.Bucket
	executed  orm.Bucket
	seq       orm.Sequence
}

// NewWallet configures a wallet with its initial signer set and quorum.
// Construction fails outright when the configuration violates the signer
// set invariants. Call Init once to persist the initial state.
func NewWallet(signers []trustee.Address, quorum int32, executor Executor, auth trustee.Authenticator, emitter trustee.Emitter) (*Wallet, error) {
	initial := &Contract{
		Signers: append([]trustee.Address(nil), signers...),
		Quorum:  quorum,
	}
	if err := initial.Validate(); err != nil {
		return nil, errors.Wrap(err, "initial configuration")
	}
	if executor == nil {
		return nil, errors.Wrap(errors.ErrInput, "executor is required")
	}
	if auth == nil {
		return nil, errors.Wrap(errors.ErrInput, "authenticator is required")
	}
	if emitter == nil {
		emitter = trustee.NoEmitter{}
	}
	return &Wallet{
		initial:   initial,
		executor:  executor,
		auth:      auth,
		emitter:   emitter,
		contracts: NewContractBucket(),
		actions:   NewActionBucket(),
		executed:  NewExecutionBucket(),
		seq:       orm.NewSequence("msigq", "id"),
	}, nil
}

// Init persists the initial configuration. It must be called exactly once
// per store, before any other operation.
func (w *Wallet) Init(db trustee.KVStore) error {
	switch exists, err := w.contracts.Has(db, walletKey); {
	case err != nil:
		return err
	case exists:
		return errors.Wrap(errors.ErrDuplicate, "already initialized")
	}
	return w.contracts.Save(db, orm.NewSimpleObj(walletKey, w.initial))
}

// AddSigner extends the signer set with a new principal.
func (w *Wallet) AddSigner(ctx trustee.Context, db trustee.CacheableKVStore, msg *AddSignerMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contract, err := w.authorized(ctx, db)
	if err != nil {
		return err
	}
	if err := contract.Add(msg.Signer); err != nil {
		return err
	}

	cache := db.CacheWrap()
	if err := w.contracts.Save(cache, orm.NewSimpleObj(walletKey, contract)); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}

	w.emitter.Emit(trustee.SignerAdded{Signer: msg.Signer})
	return nil
}

// RemoveSigner drops a principal from the signer set. The last remaining
// signer can never be removed. When the shrunk set is smaller than the
// quorum, the quorum is capped at the new set size.
func (w *Wallet) RemoveSigner(ctx trustee.Context, db trustee.CacheableKVStore, msg *RemoveSignerMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contract, err := w.authorized(ctx, db)
	if err != nil {
		return err
	}
	if err := contract.Remove(msg.Signer); err != nil {
		return err
	}
	capped := false
	if int(contract.Quorum) > len(contract.Signers) {
		contract.Quorum = int32(len(contract.Signers))
		capped = true
	}

	cache := db.CacheWrap()
	if err := w.contracts.Save(cache, orm.NewSimpleObj(walletKey, contract)); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}

	w.emitter.Emit(trustee.SignerRemoved{Signer: msg.Signer})
	if capped {
		w.emitter.Emit(trustee.QuorumChanged{Quorum: contract.Quorum})
	}
	return nil
}

// ChangeQuorum reconfigures the threshold. The new value is validated
// against the current signer set size.
func (w *Wallet) ChangeQuorum(ctx trustee.Context, db trustee.CacheableKVStore, msg *ChangeQuorumMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contract, err := w.authorized(ctx, db)
	if err != nil {
		return err
	}
	if int(msg.Quorum) > len(contract.Signers) {
		return errors.Wrap(errors.ErrInput, "quorum greater than the number of signers")
	}
	contract.Quorum = msg.Quorum

	cache := db.CacheWrap()
	if err := w.contracts.Save(cache, orm.NewSimpleObj(walletKey, contract)); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}

	w.emitter.Emit(trustee.QuorumChanged{Quorum: msg.Quorum})
	return nil
}

// Queue appends a new action and returns its list position. An action
// whose content identity already executed cannot be queued again. An
// exact duplicate of a pending action is allowed; both entries share one
// identity and at most one of them will ever execute.
func (w *Wallet) Queue(ctx trustee.Context, db trustee.CacheableKVStore, msg *QueueMsg) (int64, error) {
	if err := msg.Validate(); err != nil {
		return 0, err
	}
	if _, err := w.authorized(ctx, db); err != nil {
		return 0, err
	}

	count, _, err := w.seq.Latest(db)
	if err != nil {
		return 0, err
	}
	if count >= MaxQueue {
		return 0, errors.Wrap(errors.ErrOverflow, "queue is full")
	}

	actionID := ActionID(msg.Target, msg.Value, msg.Payload)
	switch done, err := w.executed.Has(db, actionID); {
	case err != nil:
		return 0, err
	case done:
		return 0, errors.Wrapf(errors.ErrState, "action %s already executed", actionID)
	}

	action := &Action{
		Target:  msg.Target,
		Value:   msg.Value,
		Payload: msg.Payload,
	}

	cache := db.CacheWrap()
	val, err := w.seq.NextInt(cache)
	if err != nil {
		cache.Discard()
		return 0, err
	}
	index := val - 1
	if err := w.actions.Save(cache, orm.NewSimpleObj(orm.EncodeSequence(index), action)); err != nil {
		cache.Discard()
		return 0, err
	}
	if err := cache.Write(); err != nil {
		return 0, err
	}

	w.emitter.Emit(trustee.ActionQueued{
		ActionID: actionID,
		Index:    index,
		Target:   msg.Target,
		Value:    msg.Value,
		Payload:  msg.Payload,
	})
	return index, nil
}

// Execute performs the external call of the action at the given list
// position. The content identity is marked executed first; a failing
// call rolls back the mark together with any writes the call performed.
func (w *Wallet) Execute(ctx trustee.Context, db trustee.CacheableKVStore, msg *ExecuteMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contract, err := w.authorized(ctx, db)
	if err != nil {
		return err
	}

	count, _, err := w.seq.Latest(db)
	if err != nil {
		return err
	}
	if msg.Index >= count {
		return errors.Wrapf(errors.ErrNotFound, "action index %d", msg.Index)
	}

	obj, err := w.actions.Get(db, orm.EncodeSequence(msg.Index))
	if err != nil {
		return err
	}
	action := AsAction(obj)
	if action == nil {
		return errors.Wrapf(errors.ErrNotFound, "action index %d", msg.Index)
	}

	actionID := action.ID()
	switch done, err := w.executed.Has(db, actionID); {
	case err != nil:
		return err
	case done:
		return errors.Wrapf(errors.ErrState, "action %s already executed", actionID)
	}

	cache := db.CacheWrap()
	mark := orm.NewSimpleObj(actionID, &Execution{Done: true})
	if err := w.executed.Save(cache, mark); err != nil {
		cache.Discard()
		return err
	}
	if err := w.executor.Call(ctx, cache, action.Target, action.Value, action.Payload); err != nil {
		cache.Discard()
		return errors.Wrapf(errors.ErrCall, "action %s: %v", actionID, err)
	}
	if err := cache.Write(); err != nil {
		return err
	}

	w.emitter.Emit(trustee.ActionExecuted{
		ActionID: actionID,
		Index:    msg.Index,
		Executor: w.signer(ctx, contract),
	})
	return nil
}

// Signers returns the current signer set.
func (w *Wallet) Signers(db trustee.ReadOnlyKVStore) ([]trustee.Address, error) {
	contract, err := w.loadContract(db)
	if err != nil {
		return nil, err
	}
	return contract.Signers, nil
}

// Quorum returns the current threshold value.
func (w *Wallet) Quorum(db trustee.ReadOnlyKVStore) (int32, error) {
	contract, err := w.loadContract(db)
	if err != nil {
		return 0, err
	}
	return contract.Quorum, nil
}

// authorized loads the configuration and ensures a current signer
// approved this operation.
func (w *Wallet) authorized(ctx trustee.Context, db trustee.ReadOnlyKVStore) (*Contract, error) {
	contract, err := w.loadContract(db)
	if err != nil {
		return nil, err
	}
	if w.signer(ctx, contract) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not a signer")
	}
	return contract, nil
}

func (w *Wallet) loadContract(db trustee.ReadOnlyKVStore) (*Contract, error) {
	obj, err := w.contracts.Get(db, walletKey)
	if err != nil {
		return nil, err
	}
	contract := AsContract(obj)
	if contract == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "not initialized")
	}
	return contract, nil
}

// signer returns the first current signer that authorized the operation,
// or nil.
func (w *Wallet) signer(ctx trustee.Context, contract *Contract) trustee.Address {
	for _, cond := range w.auth.GetConditions(ctx) {
		if addr := cond.Address(); contract.IsSigner(addr) {
			return addr
		}
	}
	return nil
}
