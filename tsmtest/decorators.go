package tsmtest

import "github.com/okatau/tsm"

// Decorator is a tsm.Decorator mock. It fails with CheckErr or DeliverErr
// when set, without calling the next handler, and passes the call on
// otherwise.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error
}

var _ tsm.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Checker) (*tsm.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (*tsm.DeliverResult, error) {
	d.delivers++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// Decorate returns h wrapped in d.
func Decorate(h tsm.Handler, d tsm.Decorator) tsm.Handler {
	return decorated{handler: h, decorator: d}
}

type decorated struct {
	handler   tsm.Handler
	decorator tsm.Decorator
}

func (d decorated) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.handler)
}

func (d decorated) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.handler)
}
