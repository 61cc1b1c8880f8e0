package tsmtest

import (
	"context"
	"fmt"

	"github.com/okatau/tsm"
)

// Auth is an x.Authenticator mock that treats Signers and Signer as the
// authorizing conditions, Signer last.
type Auth struct {
	Signer  tsm.Condition
	Signers []tsm.Condition
}

func (a *Auth) GetConditions(tsm.Context) []tsm.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	return append(a.Signers, a.Signer)
}

func (a *Auth) HasAddress(ctx tsm.Context, addr tsm.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth is an x.Authenticator mock reading conditions stored in the
// context under Key. Two instances with different keys do not see each
// other's conditions.
type CtxAuth struct {
	Key string
}

// SetConditions returns a context authorized by conds.
func (a *CtxAuth) SetConditions(ctx tsm.Context, conds ...tsm.Condition) tsm.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx tsm.Context) []tsm.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []tsm.Condition:
		return v
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, v))
	}
}

func (a *CtxAuth) HasAddress(ctx tsm.Context, addr tsm.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []tsm.Condition, addr tsm.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
