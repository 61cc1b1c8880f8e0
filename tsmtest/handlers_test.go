package tsmtest

import (
	"testing"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/okatau/tsm/tsmtest/assert"
)

func TestHandler(t *testing.T) {
	h := Handler{
		CheckResult:   tsm.CheckResult{Log: "checked"},
		DeliverResult: tsm.DeliverResult{Log: "delivered"},
	}

	cres, err := h.Check(nil, nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, "checked", cres.Log)
	dres, err := h.Deliver(nil, nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, "delivered", dres.Log)

	h.CheckErr = errors.ErrUnauthorized
	h.DeliverErr = errors.ErrCapacity
	_, err = h.Check(nil, nil, nil)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = h.Deliver(nil, nil, nil)
	assert.IsErr(t, errors.ErrCapacity, err)

	// Failed calls are counted as well.
	assert.Equal(t, 2, h.CheckCallCount())
	assert.Equal(t, 2, h.DeliverCallCount())
	assert.Equal(t, 4, h.CallCount())
}

func TestWriteHandler(t *testing.T) {
	db := store.MemStore()
	h := WriteHandler{Key: []byte("valve"), Value: []byte("open"), Err: errors.ErrState}

	_, err := h.Deliver(nil, db, nil)
	assert.IsErr(t, errors.ErrState, err)

	got, err := db.Get([]byte("valve"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("open"), got)
}

func TestPanicHandler(t *testing.T) {
	h := PanicHandler{Value: "boom"}
	assert.Panics(t, func() { _, _ = h.Check(nil, nil, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(nil, nil, nil) })
}
