package tsmtest

import "github.com/okatau/tsm"

// Tx carries a single message. GetMsg returns Err, if set, instead.
type Tx struct {
	Msg tsm.Msg
	Err error
}

var _ tsm.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (tsm.Msg, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg, nil
}

// Msg routes to RoutePath. Validate returns Err.
type Msg struct {
	RoutePath string
	Err       error
}

var _ tsm.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }
func (m *Msg) Validate() error { return m.Err }
