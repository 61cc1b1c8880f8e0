package tsmtest

import "github.com/okatau/tsm"

// Handler is a tsm.Handler mock returning the configured results. An error
// field, when set, is returned instead of the result.
type Handler struct {
	calls

	CheckResult tsm.CheckResult
	CheckErr    error

	DeliverResult tsm.DeliverResult
	DeliverErr    error
}

var _ tsm.Handler = (*Handler)(nil)

func (h *Handler) Check(tsm.Context, tsm.KVStore, tsm.Tx) (*tsm.CheckResult, error) {
	h.checks++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(tsm.Context, tsm.KVStore, tsm.Tx) (*tsm.DeliverResult, error) {
	h.delivers++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// WriteHandler stores Value under Key and then fails with Err, if set.
// Tests use it to see whether a write outlives a failed message.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ tsm.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) write(db tsm.KVStore) error {
	if err := db.Set(h.Key, h.Value); err != nil {
		return err
	}
	return h.Err
}

func (h *WriteHandler) Check(_ tsm.Context, db tsm.KVStore, _ tsm.Tx) (*tsm.CheckResult, error) {
	if err := h.write(db); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(_ tsm.Context, db tsm.KVStore, _ tsm.Tx) (*tsm.DeliverResult, error) {
	if err := h.write(db); err != nil {
		return nil, err
	}
	return &tsm.DeliverResult{}, nil
}

// PanicHandler panics with Value.
type PanicHandler struct {
	Value interface{}
}

var _ tsm.Handler = PanicHandler{}

func (h PanicHandler) Check(tsm.Context, tsm.KVStore, tsm.Tx) (*tsm.CheckResult, error) {
	panic(h.Value)
}

func (h PanicHandler) Deliver(tsm.Context, tsm.KVStore, tsm.Tx) (*tsm.DeliverResult, error) {
	panic(h.Value)
}
