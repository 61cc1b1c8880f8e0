package batch

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

const (
	// PathExecuteBatchMsg is the path of every batch message.
	PathExecuteBatchMsg = "batch/execute"

	// MaxBatchMessages is the maximum number of messages in one batch.
	MaxBatchMessages = 10
)

// Msg is implemented by the application specific batch message. The
// message union is defined by the application, so the batch package
// only needs the list of decoded messages.
type Msg interface {
	tsm.Msg
	MsgList() ([]tsm.Msg, error)
}

// Validate checks the size of the batch and every contained message.
func Validate(msg Msg) error {
	l, err := msg.MsgList()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve batch message")
	}
	if len(l) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no messages")
	}
	if len(l) > MaxBatchMessages {
		return errors.Wrapf(errors.ErrMsg, "cannot have more than %d messages", MaxBatchMessages)
	}
	for i, m := range l {
		if m == nil {
			return errors.Wrapf(errors.ErrMsg, "message %d is empty", i)
		}
		if m.Path() == PathExecuteBatchMsg {
			return errors.Wrapf(errors.ErrMsg, "message %d: batches cannot be nested", i)
		}
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
	}
	return nil
}
