package x

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

// Authenticator tells a handler who authorized the message being
// processed. Handlers receive one in their constructor and never read
// signatures themselves.
type Authenticator interface {
	// GetConditions returns every condition satisfied by the message,
	// in a stable order.
	GetConditions(tsm.Context) []tsm.Condition
	// HasAddress reports whether one of the conditions owns addr.
	HasAddress(tsm.Context, tsm.Address) bool
}

// MultiAuth accepts what any of its authenticators accepts.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions concatenates the conditions of all authenticators.
func (m MultiAuth) GetConditions(ctx tsm.Context) []tsm.Condition {
	var all []tsm.Condition
	for _, a := range m.impls {
		all = append(all, a.GetConditions(ctx)...)
	}
	return all
}

func (m MultiAuth) HasAddress(ctx tsm.Context, addr tsm.Address) bool {
	for _, a := range m.impls {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses returns the addresses of all authorizing conditions.
func GetAddresses(ctx tsm.Context, auth Authenticator) []tsm.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]tsm.Address, 0, len(conds))
	for _, c := range conds {
		addrs = append(addrs, c.Address())
	}
	return addrs
}

// HasAnyAddress reports whether any of addrs authorized the message. Empty
// addresses are skipped, so an unset controller never grants access.
func HasAnyAddress(ctx tsm.Context, auth Authenticator, addrs ...tsm.Address) bool {
	for _, a := range addrs {
		if len(a) != 0 && auth.HasAddress(ctx, a) {
			return true
		}
	}
	return false
}

// RequireAnyAddress returns ErrUnauthorized naming action unless one of
// addrs authorized the message.
func RequireAnyAddress(ctx tsm.Context, auth Authenticator, action string, addrs ...tsm.Address) error {
	if HasAnyAddress(ctx, auth, addrs...) {
		return nil
	}
	return errors.Wrapf(errors.ErrUnauthorized, "%s not permitted", action)
}
