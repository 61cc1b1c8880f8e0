package utils

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

// Recovery converts a panic raised further down the chain into an
// ErrPanic error and logs it with the message path. Place it above the
// savepoint so that a panicking message leaves no state behind.
type Recovery struct{}

var _ tsm.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Checker) (_ *tsm.CheckResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (_ *tsm.DeliverResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}

func logPanic(ctx tsm.Context, tx tsm.Tx, err *error) {
	if errors.ErrPanic.Is(*err) {
		tsm.GetLogger(ctx).Error("recovered panic", "path", tsm.GetPath(tx), "err", *err)
	}
}
