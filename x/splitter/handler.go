package splitter

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
	"github.com/okatau/tsm/x"
	"github.com/okatau/tsm/x/cascade"
)

// EventCreated is emitted for every new splitter.
const EventCreated = "created"

// RegisterRoutes registers handlers for splitter message processing.
func RegisterRoutes(r tsm.Registry, auth x.Authenticator, ctrl CashController) {
	bucket := NewBucket()
	allocators := cascade.NewAllocatorBucket()
	r.Handle(pathCreateMsg, &createHandler{
		bucket:     bucket,
		allocators: allocators,
	})
	r.Handle(pathUpdateTrackedAssetsMsg, &updateAssetsHandler{
		auth:   auth,
		bucket: bucket,
	})
	r.Handle(pathUpdateStreamsMsg, &updateStreamsHandler{
		auth:       auth,
		bucket:     bucket,
		allocators: allocators,
	})
	r.Handle(pathSplitMsg, &splitHandler{
		auth:   auth,
		bucket: bucket,
		ctrl:   ctrl,
	})
}

// requireAllocators ensures that every allocator a stream refers to
// exists.
func requireAllocators(db tsm.ReadOnlyKVStore, allocators orm.ModelBucket, streams []Stream) error {
	for i, s := range streams {
		if s.Recipient.Kind != RecipientAllocator {
			continue
		}
		if err := allocators.Has(db, s.Recipient.AllocatorID); err != nil {
			return errors.Wrapf(err, "stream %d allocator", i)
		}
	}
	return nil
}

// loadAdministrated returns the splitter if its admin signed the
// transaction.
func loadAdministrated(ctx tsm.Context, db tsm.ReadOnlyKVStore, auth x.Authenticator, bucket orm.ModelBucket, id []byte, action string) (*Splitter, error) {
	var s Splitter
	if err := bucket.One(db, id, &s); err != nil {
		return nil, errors.Wrap(err, "cannot load splitter")
	}
	if err := x.RequireAnyAddress(ctx, auth, action, s.Admin); err != nil {
		return nil, err
	}
	return &s, nil
}

type createHandler struct {
	bucket     orm.ModelBucket
	allocators orm.ModelBucket
}

func (h *createHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, err := h.validate(db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *createHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, err := h.validate(db, tx)
	if err != nil {
		return nil, err
	}
	key, err := splitterSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire ID")
	}
	s := Splitter{
		Admin:   msg.Admin,
		Assets:  msg.Assets,
		Streams: msg.Streams,
		Address: SplitterAddress(key),
	}
	if _, err := h.bucket.Put(db, key, &s); err != nil {
		return nil, errors.Wrap(err, "cannot save splitter")
	}
	return &tsm.DeliverResult{
		Data:   key,
		Events: []tsm.Event{{Type: EventCreated, ID: key, Address: s.Address}},
	}, nil
}

func (h *createHandler) validate(db tsm.KVStore, tx tsm.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireAllocators(db, h.allocators, msg.Streams); err != nil {
		return nil, err
	}
	return &msg, nil
}

type updateAssetsHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *updateAssetsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *updateAssetsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, s, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	s.Assets = msg.Assets
	if _, err := h.bucket.Put(db, msg.SplitterID, s); err != nil {
		return nil, errors.Wrap(err, "cannot save splitter")
	}
	return &tsm.DeliverResult{}, nil
}

func (h *updateAssetsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*UpdateTrackedAssetsMsg, *Splitter, error) {
	var msg UpdateTrackedAssetsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	s, err := loadAdministrated(ctx, db, h.auth, h.bucket, msg.SplitterID, "update tracked assets")
	if err != nil {
		return nil, nil, err
	}
	return &msg, s, nil
}

type updateStreamsHandler struct {
	auth       x.Authenticator
	bucket     orm.ModelBucket
	allocators orm.ModelBucket
}

func (h *updateStreamsHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *updateStreamsHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, s, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	s.Streams = msg.Streams
	if _, err := h.bucket.Put(db, msg.SplitterID, s); err != nil {
		return nil, errors.Wrap(err, "cannot save splitter")
	}
	return &tsm.DeliverResult{}, nil
}

func (h *updateStreamsHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*UpdateStreamsMsg, *Splitter, error) {
	var msg UpdateStreamsMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	s, err := loadAdministrated(ctx, db, h.auth, h.bucket, msg.SplitterID, "update streams")
	if err != nil {
		return nil, nil, err
	}
	if err := requireAllocators(db, h.allocators, msg.Streams); err != nil {
		return nil, nil, err
	}
	return &msg, s, nil
}

type splitHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	ctrl   CashController
}

func (h *splitHandler) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *splitHandler) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, s, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	report, err := Split(db, h.ctrl, msg.SplitterID, s)
	if err != nil {
		return nil, errors.Wrap(err, "cannot split")
	}

	logger := tsm.GetLogger(ctx)
	for _, a := range report.Assets {
		logger.Info("split",
			"splitter", s.Address,
			"asset", a.Asset,
			"balance", a.Balance,
			"distributed", a.Distributed,
			"unaccepted", a.Unaccepted,
			"dust", a.Dust)
	}

	data, err := codec.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize report")
	}
	return &tsm.DeliverResult{Data: data}, nil
}

func (h *splitHandler) validate(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx) (*SplitMsg, *Splitter, error) {
	var msg SplitMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	s, err := loadAdministrated(ctx, db, h.auth, h.bucket, msg.SplitterID, "split")
	if err != nil {
		return nil, nil, err
	}
	return &msg, s, nil
}
