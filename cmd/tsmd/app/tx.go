package app

import (
	"reflect"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/x/batch"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
	"github.com/okatau/tsm/x/sigs"
	"github.com/okatau/tsm/x/splitter"
)

// Tx is the transaction accepted by the tsmd application. It carries
// exactly one message and the signatures authorizing it.
type Tx struct {
	Sum        TxSum                `json:"sum"`
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`
}

// TxSum is the message union of a transaction. Exactly one field is
// set.
type TxSum struct {
	SendMsg                *cash.SendMsg                    `json:"send,omitempty"`
	CreateSplitterMsg      *splitter.CreateMsg              `json:"create_splitter,omitempty"`
	UpdateTrackedAssetsMsg *splitter.UpdateTrackedAssetsMsg `json:"update_tracked_assets,omitempty"`
	UpdateStreamsMsg       *splitter.UpdateStreamsMsg       `json:"update_streams,omitempty"`
	SplitMsg               *splitter.SplitMsg               `json:"split,omitempty"`
	CreateFactoryMsg       *cascade.CreateFactoryMsg        `json:"create_factory,omitempty"`
	MakeAllocatorsMsg      *cascade.MakeAllocatorsMsg       `json:"make_allocators,omitempty"`
	MakeValvesMsg          *cascade.MakeValvesMsg           `json:"make_valves,omitempty"`
	SetAcceptedAssetsMsg   *cascade.SetAcceptedAssetsMsg    `json:"set_accepted_assets,omitempty"`
	AddAllocatorsMsg       *cascade.AddAllocatorsMsg        `json:"add_allocators,omitempty"`
	UpdateValveAssetsMsg   *cascade.UpdateValveAssetsMsg    `json:"update_valve_assets,omitempty"`
	FillMsg                *cascade.FillMsg                 `json:"fill,omitempty"`
	ExecuteBatchMsg        *ExecuteBatchMsg                 `json:"execute_batch,omitempty"`
}

var _ tsm.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx returns an unsigned transaction carrying given message.
func NewTx(msg tsm.Msg) (*Tx, error) {
	var tx Tx
	if err := setSum(&tx.Sum, msg); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetMsg returns the single message of this transaction.
func (tx *Tx) GetMsg() (tsm.Msg, error) {
	return tsm.ExtractMsgFromSum(&tx.Sum)
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the canonical encoding of the transaction with
// the signatures removed.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Sum: tx.Sum}
	return codec.Marshal(&unsigned)
}

// Marshal returns the binary representation of the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

// Unmarshal loads the binary representation into this transaction.
func (tx *Tx) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, tx)
}

// TxDecoder parses the binary representation of a transaction.
func TxDecoder(raw []byte) (tsm.Tx, error) {
	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ExecuteBatchMsg runs several messages as one atomic operation, in
// the listed order.
type ExecuteBatchMsg struct {
	Messages []BatchMsg `json:"messages"`
}

// BatchMsg is the message union of a batch element. A batch cannot
// contain another batch.
type BatchMsg struct {
	SendMsg                *cash.SendMsg                    `json:"send,omitempty"`
	CreateSplitterMsg      *splitter.CreateMsg              `json:"create_splitter,omitempty"`
	UpdateTrackedAssetsMsg *splitter.UpdateTrackedAssetsMsg `json:"update_tracked_assets,omitempty"`
	UpdateStreamsMsg       *splitter.UpdateStreamsMsg       `json:"update_streams,omitempty"`
	SplitMsg               *splitter.SplitMsg               `json:"split,omitempty"`
	CreateFactoryMsg       *cascade.CreateFactoryMsg        `json:"create_factory,omitempty"`
	MakeAllocatorsMsg      *cascade.MakeAllocatorsMsg       `json:"make_allocators,omitempty"`
	MakeValvesMsg          *cascade.MakeValvesMsg           `json:"make_valves,omitempty"`
	SetAcceptedAssetsMsg   *cascade.SetAcceptedAssetsMsg    `json:"set_accepted_assets,omitempty"`
	AddAllocatorsMsg       *cascade.AddAllocatorsMsg        `json:"add_allocators,omitempty"`
	UpdateValveAssetsMsg   *cascade.UpdateValveAssetsMsg    `json:"update_valve_assets,omitempty"`
	FillMsg                *cascade.FillMsg                 `json:"fill,omitempty"`
}

var _ batch.Msg = (*ExecuteBatchMsg)(nil)

// NewExecuteBatchMsg wraps given messages into a batch.
func NewExecuteBatchMsg(msgs ...tsm.Msg) (*ExecuteBatchMsg, error) {
	batchMsg := ExecuteBatchMsg{Messages: make([]BatchMsg, len(msgs))}
	for i, m := range msgs {
		if err := setSum(&batchMsg.Messages[i], m); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
	}
	return &batchMsg, nil
}

// Path returns the routing path of every batch.
func (ExecuteBatchMsg) Path() string {
	return batch.PathExecuteBatchMsg
}

// Validate checks the batch size and every contained message.
func (m *ExecuteBatchMsg) Validate() error {
	return batch.Validate(m)
}

// MsgList returns the messages of the batch in execution order.
func (m *ExecuteBatchMsg) MsgList() ([]tsm.Msg, error) {
	msgs := make([]tsm.Msg, len(m.Messages))
	for i := range m.Messages {
		msg, err := tsm.ExtractMsgFromSum(&m.Messages[i])
		if err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// setSum assigns msg to the union field of the matching type.
func setSum(sum interface{}, msg tsm.Msg) error {
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}
	val := reflect.ValueOf(sum).Elem()
	mval := reflect.ValueOf(msg)
	for i := 0; i < val.NumField(); i++ {
		if val.Field(i).Type() == mval.Type() {
			val.Field(i).Set(mval)
			return nil
		}
	}
	return errors.Wrapf(errors.ErrType, "message %T is not supported", msg)
}
