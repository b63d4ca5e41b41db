package trustee

// Authenticator tells who has authorized the current operation. The host
// environment verifies signatures before any state machine runs, so inside
// an operation authentication is a pure lookup.
type Authenticator interface {
	// GetConditions returns all conditions that authorized the current
	// operation, the primary signer first.
	GetConditions(ctx Context) []Condition

	// HasAddress returns true if the given address authorized the
	// current operation.
	HasAddress(ctx Context, addr Address) bool
}

// MainSigner returns the address of the first condition that authorized
// the operation, or nil when there is none.
func MainSigner(ctx Context, auth Authenticator) Address {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return nil
	}
	return conds[0].Address()
}

// MultiAuth chains together many authenticators. Any of them can authorize
// an address.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together several authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

func (m MultiAuth) GetConditions(ctx Context) []Condition {
	var res []Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

func (m MultiAuth) HasAddress(ctx Context, addr Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}
