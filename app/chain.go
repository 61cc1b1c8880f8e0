package app

import (
	"reflect"

	"github.com/okatau/tsm"
)

// Decorators is an ordered list of decorators waiting for the handler they
// wrap.
type Decorators struct {
	chain []tsm.Decorator
}

// ChainDecorators starts a stack. The first decorator given is the
// outermost one and sees every message first.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		utils.NewSavepoint().OnCheck(),
//		sigs.NewDecorator(),
//		batch.NewDecorator(),
//	).WithHandler(router)
//
// Nil decorators are dropped, so optional ones can be passed unconditionally.
func ChainDecorators(chain ...tsm.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a copy extended with more inner decorators.
func (d Decorators) Chain(chain ...tsm.Decorator) Decorators {
	all := make([]tsm.Decorator, 0, len(d.chain)+len(chain))
	all = append(all, d.chain...)
	for _, dec := range chain {
		if !isNilDecorator(dec) {
			all = append(all, dec)
		}
	}
	return Decorators{chain: all}
}

func isNilDecorator(d tsm.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack around h.
func (d Decorators) WithHandler(h tsm.Handler) tsm.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = layer{decorator: d.chain[i], next: h}
	}
	return h
}

// layer is one decorator bound to the handler below it.
type layer struct {
	decorator tsm.Decorator
	next      tsm.Handler
}

var _ tsm.Handler = layer{}

func (l layer) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	return l.decorator.Check(ctx, db, tx, l.next)
}

func (l layer) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	return l.decorator.Deliver(ctx, db, tx, l.next)
}
