/*
Package sigs authenticates transactions with ed25519 signatures.

Every signer keeps a nonce in the store. A signature covers the chain id,
the signer nonce and the transaction sign bytes, so it cannot be replayed
on another chain or for a second time. The Decorator verifies all
signatures and places the signer conditions in the context, where
Authenticate reads them.
*/
package sigs

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

// Decorator verifies the signatures of a SignedTx before passing it on.
// Transactions that do not implement SignedTx pass through untouched.
type Decorator struct {
	allowMissingSigs bool
}

var _ tsm.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects signed transactions
// without any signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy that accepts transactions with no
// signatures at all.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

func (d Decorator) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Checker) (*tsm.CheckResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

func (d Decorator) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (*tsm.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) authenticate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (tsm.Context, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return ctx, nil
	}
	signers, err := VerifyTxSignatures(db, signed, tsm.GetChainID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), nil
}
