package swap

import (
	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/orm"
	"github.com/iov-one/trustee/x/token"
)

// LedgerAddr is the address the ledger acts under when it consumes the
// allowances both parties granted it.
func LedgerAddr() trustee.Address {
	return trustee.NewCondition("swap", "ledger", []byte("escrow")).Address()
}

// Ledger records pending and completed two-party asset exchanges.
type Ledger struct {
	deadline trustee.UnixTime
	tokens   token.Registry
	auth     trustee.Authenticator
	emitter  trustee.Emitter
	bucket   orm.Bucket
}

// NewLedger configures a swap ledger. The deadline is shared by every
// swap the ledger will ever record and cannot change afterwards.
func NewLedger(deadline trustee.UnixTime, tokens token.Registry, auth trustee.Authenticator, emitter trustee.Emitter) (*Ledger, error) {
	if deadline.IsZero() {
		// Zero deadline dates to 1970-01-01, which is in the past and
		// makes no sense. Most likely the value was not provided.
		return nil, errors.Wrap(errors.ErrInput, "deadline is required")
	}
	if err := deadline.Validate(); err != nil {
		return nil, errors.Wrap(err, "deadline")
	}
	if tokens == nil {
		return nil, errors.Wrap(errors.ErrInput, "token registry is required")
	}
	if auth == nil {
		return nil, errors.Wrap(errors.ErrInput, "authenticator is required")
	}
	if emitter == nil {
		emitter = trustee.NoEmitter{}
	}
	return &Ledger{
		deadline: deadline,
		tokens:   tokens,
		auth:     auth,
		emitter:  emitter,
		bucket:   NewBucket(),
	}, nil
}

// Deadline returns the expiry boundary shared by all swaps.
func (l *Ledger) Deadline() trustee.UnixTime {
	return l.deadline
}

// Initiate creates a new swap record with the main signer as initiator.
//
// Both parties must have pre-authorized the ledger to move their leg of
// the exchange; the allowances are verified here once and re-validated
// implicitly by the transfer itself during Execute. The ledger holds no
// custody between proposal and execution.
func (l *Ledger) Initiate(ctx trustee.Context, db trustee.CacheableKVStore, msg *InitiateMsg) (trustee.Identity, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	initiator := trustee.MainSigner(ctx, l.auth)
	if initiator == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}

	offer, err := l.tokens.Token(msg.OfferAsset)
	if err != nil {
		return nil, errors.Wrap(err, "offer asset")
	}
	ask, err := l.tokens.Token(msg.AskAsset)
	if err != nil {
		return nil, errors.Wrap(err, "ask asset")
	}

	spender := LedgerAddr()
	granted, err := offer.Allowance(db, initiator, spender)
	if err != nil {
		return nil, err
	}
	if granted < msg.OfferAmount {
		return nil, errors.Wrap(errors.ErrInput, "initiator allowance too low")
	}
	granted, err = ask.Allowance(db, msg.Counterparty, spender)
	if err != nil {
		return nil, err
	}
	if granted < msg.AskAmount {
		return nil, errors.Wrap(errors.ErrInput, "counterparty allowance too low")
	}

	swapID := SwapID(initiator, msg.Counterparty, msg.OfferAsset, msg.AskAsset, msg.OfferAmount, msg.AskAmount)
	switch exists, err := l.bucket.Has(db, swapID); {
	case err != nil:
		return nil, err
	case exists:
		return nil, errors.Wrapf(errors.ErrDuplicate, "swap %s", swapID)
	}

	record := &Swap{
		Initiator:    initiator,
		Counterparty: msg.Counterparty,
		OfferAsset:   msg.OfferAsset,
		AskAsset:     msg.AskAsset,
		OfferAmount:  msg.OfferAmount,
		AskAmount:    msg.AskAmount,
	}

	cache := db.CacheWrap()
	if err := l.bucket.Save(cache, orm.NewSimpleObj(swapID, record)); err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}

	l.emitter.Emit(trustee.SwapProposed{
		SwapID:       swapID,
		Initiator:    initiator,
		Counterparty: msg.Counterparty,
		OfferAsset:   msg.OfferAsset,
		AskAsset:     msg.AskAsset,
		OfferAmount:  msg.OfferAmount,
		AskAmount:    msg.AskAmount,
	})
	return swapID, nil
}

// Execute settles the swap: it moves the offered amount from initiator to
// counterparty and the asked amount from counterparty to initiator, then
// flips the executed flag. Either transfer failing aborts the whole
// operation with no state change.
func (l *Ledger) Execute(ctx trustee.Context, db trustee.CacheableKVStore, msg *ExecuteMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	obj, err := l.bucket.Get(db, msg.SwapID)
	if err != nil {
		return err
	}
	record := AsSwap(obj)
	if record == nil {
		return errors.Wrapf(errors.ErrNotFound, "swap %s", msg.SwapID)
	}

	caller := l.caller(ctx, record)
	if caller == nil {
		return errors.Wrap(errors.ErrUnauthorized, "not a participant")
	}
	if trustee.IsExpired(ctx, l.deadline) {
		return errors.Wrapf(errors.ErrExpired, "deadline %s", l.deadline)
	}
	if record.Executed {
		return errors.Wrap(errors.ErrState, "already executed")
	}

	offer, err := l.tokens.Token(record.OfferAsset)
	if err != nil {
		return errors.Wrap(err, "offer asset")
	}
	ask, err := l.tokens.Token(record.AskAsset)
	if err != nil {
		return errors.Wrap(err, "ask asset")
	}

	spender := LedgerAddr()
	cache := db.CacheWrap()
	if err := offer.TransferFrom(cache, spender, record.Initiator, record.Counterparty, record.OfferAmount); err != nil {
		cache.Discard()
		return errors.Wrap(err, "offer leg")
	}
	if err := ask.TransferFrom(cache, spender, record.Counterparty, record.Initiator, record.AskAmount); err != nil {
		cache.Discard()
		return errors.Wrap(err, "ask leg")
	}

	record.Executed = true
	if err := l.bucket.Save(cache, orm.NewSimpleObj(msg.SwapID, record)); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}

	l.emitter.Emit(trustee.SwapExecuted{
		SwapID:   msg.SwapID,
		Executor: caller,
	})
	return nil
}

// caller returns the participant that authorized this operation, or nil.
func (l *Ledger) caller(ctx trustee.Context, record *Swap) trustee.Address {
	if l.auth.HasAddress(ctx, record.Initiator) {
		return record.Initiator
	}
	if l.auth.HasAddress(ctx, record.Counterparty) {
		return record.Counterparty
	}
	return nil
}
