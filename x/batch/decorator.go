package batch

import (
	"strings"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
)

// Decorator iterates through batch transaction messages and passes them down the stack
type Decorator struct{}

var _ tsm.Decorator = Decorator{}

// NewDecorator returns a batch transaction decorator
func NewDecorator() Decorator {
	return Decorator{}
}

// ByteArrayList is the encoding of the combined result data, one element
// per message.
type ByteArrayList struct {
	Elements [][]byte `json:"elements"`
}

// BatchTx is passed down the stack for each message of a batch.
type BatchTx struct {
	tsm.Tx
	msg tsm.Msg
}

// GetMsg returns the message of this batch element.
func (tx *BatchTx) GetMsg() (tsm.Msg, error) {
	return tx.msg, nil
}

// Check iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Check(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx, next tsm.Checker) (*tsm.CheckResult, error) {
	msgs, ok, err := batchMessages(tx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return next.Check(ctx, store, tx)
	}

	checks := make([]*tsm.CheckResult, len(msgs))
	for i, msg := range msgs {
		checks[i], err = next.Check(ctx, store, &BatchTx{Tx: tx, msg: msg})
		if err != nil {
			return nil, err
		}
	}
	return combineChecks(checks)
}

// Deliver iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Deliver(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (*tsm.DeliverResult, error) {
	msgs, ok, err := batchMessages(tx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return next.Deliver(ctx, store, tx)
	}

	delivers := make([]*tsm.DeliverResult, len(msgs))
	for i, msg := range msgs {
		delivers[i], err = next.Deliver(ctx, store, &BatchTx{Tx: tx, msg: msg})
		if err != nil {
			return nil, err
		}
	}
	return combineDelivers(delivers)
}

// batchMessages returns the validated messages of a batch transaction.
// ok is false when the transaction is not a batch.
func batchMessages(tx tsm.Tx) ([]tsm.Msg, bool, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, false, err
	}
	batchMsg, ok := msg.(Msg)
	if !ok {
		return nil, false, nil
	}
	if err := batchMsg.Validate(); err != nil {
		return nil, false, err
	}
	msgs, err := batchMsg.MsgList()
	if err != nil {
		return nil, false, err
	}
	return msgs, true, nil
}

// combines all data bytes as a go-amino array.
// joins all log messages with \n
func combineChecks(checks []*tsm.CheckResult) (*tsm.CheckResult, error) {
	datas := make([][]byte, len(checks))
	logs := make([]string, len(checks))
	for i, r := range checks {
		datas[i] = r.Data
		logs[i] = r.Log
	}
	data, err := codec.Marshal(&ByteArrayList{Elements: datas})
	if err != nil {
		return nil, err
	}
	return &tsm.CheckResult{
		Data: data,
		Log:  strings.Join(logs, "\n"),
	}, nil
}

// combines all data bytes as a go-amino array.
// joins all log messages with \n and keeps the events in order.
func combineDelivers(delivers []*tsm.DeliverResult) (*tsm.DeliverResult, error) {
	datas := make([][]byte, len(delivers))
	logs := make([]string, len(delivers))
	var events []tsm.Event
	for i, r := range delivers {
		datas[i] = r.Data
		logs[i] = r.Log
		if len(r.Events) > 0 {
			events = append(events, r.Events...)
		}
	}
	data, err := codec.Marshal(&ByteArrayList{Elements: datas})
	if err != nil {
		return nil, err
	}
	return &tsm.DeliverResult{
		Data:   data,
		Log:    strings.Join(logs, "\n"),
		Events: events,
	}, nil
}
