package cash

import (
	"context"
	"testing"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/okatau/tsm/tsmtest"
	"github.com/okatau/tsm/tsmtest/assert"
)

func TestSendHandler(t *testing.T) {
	alice := tsmtest.NewCondition()
	bob := tsmtest.NewCondition()

	cases := map[string]struct {
		signer       tsm.Condition
		msg          tsm.Msg
		wantCheckErr *errors.Error
		wantErr      *errors.Error
		wantAlice    coin.Amount
		wantBob      coin.Amount
	}{
		"send funds": {
			signer: alice,
			msg: &SendMsg{
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewCoin(250, "TTT"),
			},
			wantAlice: coin.NewAmount(750),
			wantBob:   coin.NewAmount(250),
		},
		"missing signature": {
			signer: bob,
			msg: &SendMsg{
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewCoin(250, "TTT"),
			},
			wantCheckErr: errors.ErrUnauthorized,
			wantErr:      errors.ErrUnauthorized,
			wantAlice:    coin.NewAmount(1000),
		},
		"more than held": {
			signer: alice,
			msg: &SendMsg{
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewCoin(1001, "TTT"),
			},
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: coin.NewAmount(1000),
		},
		"invalid message": {
			signer: alice,
			msg: &SendMsg{
				Source: alice.Address(),
				Amount: coin.NewCoin(1, "TTT"),
			},
			wantCheckErr: errors.ErrEmpty,
			wantErr:      errors.ErrEmpty,
			wantAlice:    coin.NewAmount(1000),
		},
		"wrong message type": {
			signer:       alice,
			msg:          &tsmtest.Msg{RoutePath: "cash/send"},
			wantCheckErr: errors.ErrType,
			wantErr:      errors.ErrType,
			wantAlice:    coin.NewAmount(1000),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			assert.Nil(t, ctrl.CoinMint(db, alice.Address(), coin.NewCoin(1000, "TTT")))

			auth := &tsmtest.Auth{Signer: tc.signer}
			h := NewSendHandler(auth, ctrl)
			tx := &tsmtest.Tx{Msg: tc.msg}

			_, err := h.Check(context.Background(), db, tx)
			assert.IsErr(t, tc.wantCheckErr, err)
			_, err = h.Deliver(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)

			got, err := ctrl.Balance(db, alice.Address(), "TTT")
			assert.Nil(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob.Address(), "TTT")
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}
