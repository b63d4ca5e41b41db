package token

import (
	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
)

// Registry resolves an asset reference into the Token capability of that
// asset.
type Registry interface {
	Token(ref trustee.Address) (Token, error)
}

// MemRegistry is a construction-time wiring of asset references to their
// implementations. Registration happens during setup, before any
// operation runs, so there is no locking.
type MemRegistry struct {
	tokens map[string]Token
}

var _ Registry = (*MemRegistry)(nil)

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		tokens: make(map[string]Token),
	}
}

// Register binds the given reference to a token implementation. A
// reference can be bound only once.
func (r *MemRegistry) Register(ref trustee.Address, t Token) error {
	if err := ref.Validate(); err != nil {
		return errors.Wrap(err, "ref")
	}
	if _, ok := r.tokens[string(ref)]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "asset %s", ref)
	}
	r.tokens[string(ref)] = t
	return nil
}

// MustRegister is Register that panics on failure. Setup helper.
func (r *MemRegistry) MustRegister(ref trustee.Address, t Token) {
	if err := r.Register(ref, t); err != nil {
		panic(err)
	}
}

// RegisterLedger binds a ledger under its own reference.
func (r *MemRegistry) RegisterLedger(l *Ledger) error {
	return r.Register(l.Ref(), l)
}

func (r *MemRegistry) Token(ref trustee.Address) (Token, error) {
	t, ok := r.tokens[string(ref)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "asset %s", ref)
	}
	return t, nil
}
