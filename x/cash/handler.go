package cash

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r tsm.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ tsm.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and signed
func (h SendHandler) Check(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx) (*tsm.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &tsm.CheckResult{}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx) (*tsm.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	tsm.GetLogger(ctx).Debug("send",
		"source", msg.Source, "destination", msg.Destination, "amount", msg.Amount)
	return &tsm.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx tsm.Context, tx tsm.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := tsm.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// Make sure we have permission from the source.
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}
