package cascade

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
	"github.com/okatau/tsm/x"
)

const (
	// EventFactoryCreated is emitted for every new factory.
	EventFactoryCreated = "created"
	// EventAllocatorCreated is emitted for every new allocator.
	EventAllocatorCreated = "allocator_created"
	// EventValveCreated is emitted for every new valve.
	EventValveCreated = "valve_created"
)

// IDList is the result of messages creating many instances. Identifiers
// are listed in the creation order.
type IDList struct {
	IDs [][]byte `json:"ids"`
}

// RegisterRoutes registers handlers for factory, allocator and valve
// message processing.
func RegisterRoutes(r tsm.Registry, auth x.Authenticator, ctrl CashController) {
	r.Handle(pathCreateFactoryMsg, &createFactoryHandler{
		factories: NewFactoryBucket(),
	})
	r.Handle(pathMakeAllocatorsMsg, &makeAllocatorsHandler{
		auth:       auth,
		factories:  NewFactoryBucket(),
		allocators: NewAllocatorBucket(),
	})
	r.Handle(pathMakeValvesMsg, &makeValvesHandler{
		auth:      auth,
		factories: NewFactoryBucket(),
		valves:    NewValveBucket(),
	})
	r.Handle(pathSetAcceptedAssetsMsg, &setAcceptedAssetsHandler{
		auth:      auth,
		factories: NewFactoryBucket(),
	})
	r.Handle(pathAddAllocatorsMsg, &addAllocatorsHandler{
		auth:       auth,
		valves:     NewValveBucket(),
		allocators: NewAllocatorBucket(),
	})
	r.Handle(pathUpdateValveAssetsMsg, &updateValveAssetsHandler{
		auth:   auth,
		valves: NewValveBucket(),
	})
	r.Handle(pathFillMsg, &fillHandler{
		auth:   auth,
		valves: NewValveBucket(),
		ctrl:   ctrl,
	})
}

type createFactoryHandler struct {
	factories orm.ModelBucket
}

func (h *createFactoryHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, err := h.validate(tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *createFactoryHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	key, err := h.factories.Put(db, nil, &Factory{
		Owner:          msg.Owner,
		AcceptedAssets: msg.AcceptedAssets,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot save factory")
	}
	return &tsm.DeliverResult{
		Data:   key,
		Events: []tsm.Event{{Type: EventFactoryCreated, ID: key}},
	}, nil
}

func (h *createFactoryHandler) validate(tx tsm.Tx) (*CreateFactoryMsg, error) {
	var msg CreateFactoryMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &msg, nil
}

// loadOwnedFactory returns the factory if the owner signed the transaction.
func loadOwnedFactory(ctx tsm.Context, db tsm.ReadOnlyKVStore, auth x.Authenticator, bucket orm.ModelBucket, id []byte, action string) (*Factory, error) {
	var f Factory
	if err := bucket.One(db, id, &f); err != nil {
		return nil, errors.Wrap(err, "cannot load factory")
	}
	if err := x.RequireAnyAddress(ctx, auth, action, f.Owner); err != nil {
		return nil, err
	}
	return &f, nil
}

type makeAllocatorsHandler struct {
	auth       x.Authenticator
	factories  orm.ModelBucket
	allocators orm.ModelBucket
}

func (h *makeAllocatorsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *makeAllocatorsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, factory, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var (
		ids    IDList
		events []tsm.Event
	)
	for i, spec := range msg.Allocators {
		id, err := allocatorSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "allocator sequence")
		}
		owner := spec.Owner
		if len(owner) == 0 {
			owner = factory.Owner
		}
		alloc := Allocator{
			FactoryID: msg.FactoryID,
			Owner:     owner,
			Ceiling:   spec.Ceiling,
			Address:   AllocatorAddress(id),
		}
		if _, err := h.allocators.Put(db, id, &alloc); err != nil {
			return nil, errors.Wrapf(err, "cannot save allocator %d", i)
		}
		ids.IDs = append(ids.IDs, id)
		events = append(events, tsm.Event{Type: EventAllocatorCreated, ID: id, Address: alloc.Address})
	}

	data, err := codec.Marshal(&ids)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize ids")
	}
	return &tsm.DeliverResult{Data: data, Events: events}, nil
}

func (h *makeAllocatorsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*MakeAllocatorsMsg, *Factory, error) {
	var msg MakeAllocatorsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	f, err := loadOwnedFactory(ctx, db, h.auth, h.factories, msg.FactoryID, "make allocators")
	if err != nil {
		return nil, nil, err
	}
	return &msg, f, nil
}

type makeValvesHandler struct {
	auth      x.Authenticator
	factories orm.ModelBucket
	valves    orm.ModelBucket
}

func (h *makeValvesHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *makeValvesHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, factory, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var (
		ids    IDList
		events []tsm.Event
	)
	for i, controller := range msg.Controllers {
		id, err := valveSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "valve sequence")
		}
		valve := Valve{
			FactoryID:  msg.FactoryID,
			Admin:      factory.Owner,
			Controller: controller,
			Address:    ValveAddress(id),
		}
		if _, err := h.valves.Put(db, id, &valve); err != nil {
			return nil, errors.Wrapf(err, "cannot save valve %d", i)
		}
		ids.IDs = append(ids.IDs, id)
		events = append(events, tsm.Event{Type: EventValveCreated, ID: id, Address: valve.Address})
	}

	data, err := codec.Marshal(&ids)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize ids")
	}
	return &tsm.DeliverResult{Data: data, Events: events}, nil
}

func (h *makeValvesHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*MakeValvesMsg, *Factory, error) {
	var msg MakeValvesMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	f, err := loadOwnedFactory(ctx, db, h.auth, h.factories, msg.FactoryID, "make valves")
	if err != nil {
		return nil, nil, err
	}
	return &msg, f, nil
}

type setAcceptedAssetsHandler struct {
	auth      x.Authenticator
	factories orm.ModelBucket
}

func (h *setAcceptedAssetsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *setAcceptedAssetsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, factory, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	factory.AcceptedAssets = msg.Assets
	if _, err := h.factories.Put(db, msg.FactoryID, factory); err != nil {
		return nil, errors.Wrap(err, "cannot save factory")
	}
	return &tsm.DeliverResult{}, nil
}

func (h *setAcceptedAssetsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*SetAcceptedAssetsMsg, *Factory, error) {
	var msg SetAcceptedAssetsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	f, err := loadOwnedFactory(ctx, db, h.auth, h.factories, msg.FactoryID, "set accepted assets")
	if err != nil {
		return nil, nil, err
	}
	return &msg, f, nil
}

// loadOperatedValve returns the valve if its admin or its controller
// signed the transaction.
func loadOperatedValve(ctx tsm.Context, db tsm.ReadOnlyKVStore, auth x.Authenticator, bucket orm.ModelBucket, id []byte, action string) (*Valve, error) {
	var v Valve
	if err := bucket.One(db, id, &v); err != nil {
		return nil, errors.Wrap(err, "cannot load valve")
	}
	if err := x.RequireAnyAddress(ctx, auth, action, v.Admin, v.Controller); err != nil {
		return nil, err
	}
	return &v, nil
}

type addAllocatorsHandler struct {
	auth       x.Authenticator
	valves     orm.ModelBucket
	allocators orm.ModelBucket
}

func (h *addAllocatorsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *addAllocatorsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, valve, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	valve.Allocators = append(valve.Allocators, msg.AllocatorIDs...)
	if _, err := h.valves.Put(db, msg.ValveID, valve); err != nil {
		return nil, errors.Wrap(err, "cannot save valve")
	}
	return &tsm.DeliverResult{}, nil
}

func (h *addAllocatorsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*AddAllocatorsMsg, *Valve, error) {
	var msg AddAllocatorsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	valve, err := loadOperatedValve(ctx, db, h.auth, h.valves, msg.ValveID, "add allocators")
	if err != nil {
		return nil, nil, err
	}
	if n := len(valve.Allocators) + len(msg.AllocatorIDs); n > maxValveAllocators {
		return nil, nil, errors.Wrapf(errors.ErrInput, "valve would hold %d allocators", n)
	}
	listed := make(map[string]struct{}, len(valve.Allocators))
	for _, id := range valve.Allocators {
		listed[string(id)] = struct{}{}
	}
	for _, id := range msg.AllocatorIDs {
		if _, ok := listed[string(id)]; ok {
			return nil, nil, errors.Wrapf(errors.ErrDuplicate, "allocator %x already listed", id)
		}
		if err := h.allocators.Has(db, id); err != nil {
			return nil, nil, errors.Wrapf(err, "allocator %x", id)
		}
	}
	return &msg, valve, nil
}

type updateValveAssetsHandler struct {
	auth   x.Authenticator
	valves orm.ModelBucket
}

func (h *updateValveAssetsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *updateValveAssetsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, valve, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	valve.Assets = msg.Assets
	if _, err := h.valves.Put(db, msg.ValveID, valve); err != nil {
		return nil, errors.Wrap(err, "cannot save valve")
	}
	return &tsm.DeliverResult{}, nil
}

func (h *updateValveAssetsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*UpdateValveAssetsMsg, *Valve, error) {
	var msg UpdateValveAssetsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	valve, err := loadOperatedValve(ctx, db, h.auth, h.valves, msg.ValveID, "update valve assets")
	if err != nil {
		return nil, nil, err
	}
	return &msg, valve, nil
}

type fillHandler struct {
	auth   x.Authenticator
	valves orm.ModelBucket
	ctrl   CashController
}

func (h *fillHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *fillHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, valve, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	report, err := Fill(db, h.ctrl, msg.ValveID, valve)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fill")
	}

	logger := tsm.GetLogger(ctx)
	for _, a := range report.Assets {
		logger.Info("fill",
			"valve", valve.Address,
			"asset", a.Asset,
			"balance", a.Balance,
			"accepted", a.Accepted(),
			"leftover", a.Leftover)
	}

	data, err := codec.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize report")
	}
	return &tsm.DeliverResult{Data: data}, nil
}

func (h *fillHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*FillMsg, *Valve, error) {
	var msg FillMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	valve, err := loadOperatedValve(ctx, db, h.auth, h.valves, msg.ValveID, "fill")
	if err != nil {
		return nil, nil, err
	}
	return &msg, valve, nil
}
