package trusteetest

import (
	"context"
	"fmt"

	"github.com/iov-one/trustee"
)

// Auth is a mock implementing the trustee.Authenticator interface.
//
// This structure authenticates any of the referenced conditions. You can
// use either Signer or Signers (or both) attributes to reference
// conditions. Each time all signers (regardless which attribute) are
// considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convenience attribute when creating an authentication method for
	// a single signer.
	Signer trustee.Condition

	// Signers represents an authentication of multiple signers.
	Signers []trustee.Condition
}

var _ trustee.Authenticator = (*Auth)(nil)

func (a *Auth) GetConditions(trustee.Context) []trustee.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx trustee.Context, addr trustee.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing the trustee.Authenticator interface.
//
// This implementation is using the context to store and retrieve
// permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

var _ trustee.Authenticator = (*CtxAuth)(nil)

type ctxAuthKey struct{ name string }

func (a *CtxAuth) SetConditions(ctx trustee.Context, permissions ...trustee.Condition) trustee.Context {
	return context.WithValue(ctx, ctxAuthKey{a.Key}, permissions)
}

func (a *CtxAuth) GetConditions(ctx trustee.Context) []trustee.Condition {
	val := ctx.Value(ctxAuthKey{a.Key})
	if val == nil {
		return nil
	}
	conds, ok := val.([]trustee.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []trustee.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx trustee.Context, addr trustee.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
