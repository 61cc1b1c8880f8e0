package splitter

import (
	"context"
	"testing"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/app"
	"github.com/okatau/tsm/codec"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/okatau/tsm/tsmtest"
	"github.com/okatau/tsm/tsmtest/assert"
	"github.com/okatau/tsm/x/cash"
)

func TestHandlers(t *testing.T) {
	admin := tsmtest.NewCondition()
	stranger := tsmtest.NewCondition()
	recipient := tsmtest.NewCondition().Address()

	// Every case starts with splitter 1 administrated by admin.
	sid := tsmtest.SequenceID(1)
	streams := []Stream{{Recipient: AddressRecipient(recipient), Weight: 1}}

	cases := map[string]struct {
		signer  tsm.Condition
		msg     tsm.Msg
		wantErr *errors.Error
	}{
		"anyone can create": {
			signer: stranger,
			msg:    &CreateMsg{Admin: admin.Address(), Assets: []coin.Asset{"IOV"}, Streams: streams},
		},
		"create with unknown allocator": {
			signer: stranger,
			msg: &CreateMsg{
				Admin:   admin.Address(),
				Streams: []Stream{{Recipient: AllocatorRecipient(tsmtest.SequenceID(3)), Weight: 1}},
			},
			wantErr: errors.ErrNotFound,
		},
		"admin updates assets": {
			signer: admin,
			msg:    &UpdateTrackedAssetsMsg{SplitterID: sid, Assets: []coin.Asset{"ETH"}},
		},
		"stranger cannot update assets": {
			signer:  stranger,
			msg:     &UpdateTrackedAssetsMsg{SplitterID: sid, Assets: []coin.Asset{"ETH"}},
			wantErr: errors.ErrUnauthorized,
		},
		"admin updates streams": {
			signer: admin,
			msg:    &UpdateStreamsMsg{SplitterID: sid, Streams: streams},
		},
		"stranger cannot update streams": {
			signer:  stranger,
			msg:     &UpdateStreamsMsg{SplitterID: sid, Streams: streams},
			wantErr: errors.ErrUnauthorized,
		},
		"admin splits": {
			signer: admin,
			msg:    &SplitMsg{SplitterID: sid},
		},
		"stranger cannot split": {
			signer:  stranger,
			msg:     &SplitMsg{SplitterID: sid},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown splitter": {
			signer:  admin,
			msg:     &SplitMsg{SplitterID: tsmtest.SequenceID(2)},
			wantErr: errors.ErrNotFound,
		},
		"invalid streams": {
			signer:  admin,
			msg:     &UpdateStreamsMsg{SplitterID: sid, Streams: append(streams, streams...)},
			wantErr: errors.ErrDuplicate,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := cash.NewController()
			_, err := NewBucket().Put(db, nil, &Splitter{
				Admin:   admin.Address(),
				Assets:  []coin.Asset{"IOV"},
				Address: SplitterAddress(sid),
			})
			assert.Nil(t, err)

			rt := app.NewRouter()
			RegisterRoutes(rt, &tsmtest.Auth{Signer: tc.signer}, ctrl)
			tx := &tsmtest.Tx{Msg: tc.msg}

			_, err = rt.Check(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = rt.Deliver(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestSplitterLifecycle(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	admin := tsmtest.NewCondition()
	u1 := tsmtest.NewCondition().Address()
	u2 := tsmtest.NewCondition().Address()
	ctx := context.Background()

	rt := app.NewRouter()
	RegisterRoutes(rt, &tsmtest.Auth{Signer: admin}, ctrl)

	res, err := rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &CreateMsg{
		Admin:   admin.Address(),
		Assets:  []coin.Asset{"IOV"},
		Streams: []Stream{{Recipient: AddressRecipient(u1), Weight: 1}},
	}})
	assert.Nil(t, err)
	sid := res.Data
	assert.Equal(t, tsmtest.SequenceID(1), sid)
	assert.Equal(t, []tsm.Event{{Type: EventCreated, ID: sid, Address: SplitterAddress(sid)}}, res.Events)

	// Streams are replaced as a whole.
	_, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &UpdateStreamsMsg{
		SplitterID: sid,
		Streams: []Stream{
			{Recipient: AddressRecipient(u2), Weight: 1},
		},
	}})
	assert.Nil(t, err)

	assert.Nil(t, ctrl.CoinMint(db, SplitterAddress(sid), coin.NewCoin(77, "IOV")))
	res, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &SplitMsg{SplitterID: sid}})
	assert.Nil(t, err)

	var report SplitReport
	assert.Nil(t, codec.Unmarshal(res.Data, &report))
	assert.Equal(t, sid, report.SplitterID)
	assert.Equal(t, []AssetSplit{{Asset: "IOV", Balance: coin.NewAmount(77), Distributed: coin.NewAmount(77)}}, report.Assets)

	got, err := ctrl.Balance(db, u1, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(0), got)
	got, err = ctrl.Balance(db, u2, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(77), got)
}
