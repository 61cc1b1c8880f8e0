package cascade

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

func TestHandlerPermissions(t *testing.T) {
	owner := tsmtest.NewCondition()
	controller := tsmtest.NewCondition()
	stranger := tsmtest.NewCondition()

	// Every case starts with factory 1, allocators 1 to 3 and valve 1
	// listing allocators 1 and 2.
	fid := tsmtest.SequenceID(1)
	vid := tsmtest.SequenceID(1)

	cases := map[string]struct {
		signer  tsm.Condition
		msg     tsm.Msg
		wantErr *errors.Error
	}{
		"anyone can create a factory": {
			signer: stranger,
			msg:    &CreateFactoryMsg{Owner: stranger.Address(), AcceptedAssets: []coin.Asset{"IOV"}},
		},
		"owner makes allocators": {
			signer: owner,
			msg:    &MakeAllocatorsMsg{FactoryID: fid, Allocators: []AllocatorSpec{{Ceiling: coin.NewAmount(10)}}},
		},
		"stranger cannot make allocators": {
			signer:  stranger,
			msg:     &MakeAllocatorsMsg{FactoryID: fid, Allocators: []AllocatorSpec{{Ceiling: coin.NewAmount(10)}}},
			wantErr: errors.ErrUnauthorized,
		},
		"controller cannot make allocators": {
			signer:  controller,
			msg:     &MakeAllocatorsMsg{FactoryID: fid, Allocators: []AllocatorSpec{{Ceiling: coin.NewAmount(10)}}},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown factory": {
			signer:  owner,
			msg:     &MakeAllocatorsMsg{FactoryID: tsmtest.SequenceID(9), Allocators: []AllocatorSpec{{Ceiling: coin.NewAmount(10)}}},
			wantErr: errors.ErrNotFound,
		},
		"owner makes valves": {
			signer: owner,
			msg:    &MakeValvesMsg{FactoryID: fid, Controllers: []tsm.Address{controller.Address()}},
		},
		"stranger cannot make valves": {
			signer:  stranger,
			msg:     &MakeValvesMsg{FactoryID: fid, Controllers: []tsm.Address{stranger.Address()}},
			wantErr: errors.ErrUnauthorized,
		},
		"owner sets accepted assets": {
			signer: owner,
			msg:    &SetAcceptedAssetsMsg{FactoryID: fid, Assets: []coin.Asset{"ETH"}},
		},
		"stranger cannot set accepted assets": {
			signer:  stranger,
			msg:     &SetAcceptedAssetsMsg{FactoryID: fid, Assets: []coin.Asset{"ETH"}},
			wantErr: errors.ErrUnauthorized,
		},
		"admin adds allocators": {
			signer: owner,
			msg:    &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(3)}},
		},
		"controller adds allocators": {
			signer: controller,
			msg:    &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(3)}},
		},
		"stranger cannot add allocators": {
			signer:  stranger,
			msg:     &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(3)}},
			wantErr: errors.ErrUnauthorized,
		},
		"allocator already listed": {
			signer:  controller,
			msg:     &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(2)}},
			wantErr: errors.ErrDuplicate,
		},
		"allocator repeated in message": {
			signer:  controller,
			msg:     &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(3), tsmtest.SequenceID(3)}},
			wantErr: errors.ErrDuplicate,
		},
		"unknown allocator": {
			signer:  controller,
			msg:     &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: [][]byte{tsmtest.SequenceID(7)}},
			wantErr: errors.ErrNotFound,
		},
		"unknown valve": {
			signer:  owner,
			msg:     &AddAllocatorsMsg{ValveID: tsmtest.SequenceID(5), AllocatorIDs: [][]byte{tsmtest.SequenceID(3)}},
			wantErr: errors.ErrNotFound,
		},
		"controller updates valve assets": {
			signer: controller,
			msg:    &UpdateValveAssetsMsg{ValveID: vid, Assets: []coin.Asset{"IOV"}},
		},
		"stranger cannot update valve assets": {
			signer:  stranger,
			msg:     &UpdateValveAssetsMsg{ValveID: vid, Assets: []coin.Asset{"IOV"}},
			wantErr: errors.ErrUnauthorized,
		},
		"admin fills": {
			signer: owner,
			msg:    &FillMsg{ValveID: vid},
		},
		"controller fills": {
			signer: controller,
			msg:    &FillMsg{ValveID: vid},
		},
		"stranger cannot fill": {
			signer:  stranger,
			msg:     &FillMsg{ValveID: vid},
			wantErr: errors.ErrUnauthorized,
		},
		"invalid message": {
			signer:  owner,
			msg:     &FillMsg{ValveID: []byte("bad")},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := cash.NewController()

			createFactory(t, db, owner.Address(), "IOV")
			a1 := createAllocator(t, db, fid, owner.Address(), coin.NewAmount(100))
			a2 := createAllocator(t, db, fid, owner.Address(), coin.NewAmount(50))
			createAllocator(t, db, fid, owner.Address(), coin.NewAmount(10))
			_, valve := createValve(t, db, fid, owner.Address(), controller.Address(), nil, a1, a2)
			assert.Nil(t, ctrl.CoinMint(db, valve.Address, coin.NewCoin(120, "IOV")))

			rt := app.NewRouter()
			RegisterRoutes(rt, &tsmtest.Auth{Signer: tc.signer}, ctrl)
			tx := &tsmtest.Tx{Msg: tc.msg}

			_, err := rt.Check(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = rt.Deliver(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestMakeAllocatorsAndValves(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	owner := tsmtest.NewCondition()
	beneficiary := tsmtest.NewCondition().Address()
	controller := tsmtest.NewCondition().Address()
	ctx := context.Background()

	rt := app.NewRouter()
	RegisterRoutes(rt, &tsmtest.Auth{Signer: owner}, ctrl)

	res, err := rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &CreateFactoryMsg{
		Owner:          owner.Address(),
		AcceptedAssets: []coin.Asset{"IOV"},
	}})
	assert.Nil(t, err)
	fid := res.Data
	assert.Equal(t, tsmtest.SequenceID(1), fid)
	assert.Equal(t, EventFactoryCreated, res.Events[0].Type)

	res, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &MakeAllocatorsMsg{
		FactoryID: fid,
		Allocators: []AllocatorSpec{
			{Ceiling: coin.NewAmount(100), Owner: beneficiary},
			{Ceiling: coin.NewAmount(40)},
		},
	}})
	assert.Nil(t, err)

	var ids IDList
	assert.Nil(t, codec.Unmarshal(res.Data, &ids))
	assert.Equal(t, [][]byte{tsmtest.SequenceID(1), tsmtest.SequenceID(2)}, ids.IDs)
	assert.Equal(t, 2, len(res.Events))
	for i, e := range res.Events {
		assert.Equal(t, EventAllocatorCreated, e.Type)
		assert.Equal(t, ids.IDs[i], e.ID)
		assert.Equal(t, AllocatorAddress(ids.IDs[i]), e.Address)
	}
	assert.Equal(t, beneficiary, loadAllocator(t, db, ids.IDs[0]).Owner)
	assert.Equal(t, owner.Address(), loadAllocator(t, db, ids.IDs[1]).Owner)

	res, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &MakeValvesMsg{
		FactoryID:   fid,
		Controllers: []tsm.Address{controller},
	}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res.Events))
	assert.Equal(t, EventValveCreated, res.Events[0].Type)
	vid := res.Events[0].ID

	valve := loadValve(t, db, vid)
	assert.Equal(t, owner.Address(), valve.Admin)
	assert.Equal(t, controller, valve.Controller)
	assert.Equal(t, ValveAddress(vid), valve.Address)

	_, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: ids.IDs[1:]}})
	assert.Nil(t, err)
	_, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &AddAllocatorsMsg{ValveID: vid, AllocatorIDs: ids.IDs[:1]}})
	assert.Nil(t, err)
	valve = loadValve(t, db, vid)
	assert.Equal(t, [][]byte{ids.IDs[1], ids.IDs[0]}, valve.Allocators)

	// Funds go to the allocator added first.
	assert.Nil(t, ctrl.CoinMint(db, valve.Address, coin.NewCoin(50, "IOV")))
	res, err = rt.Deliver(ctx, db, &tsmtest.Tx{Msg: &FillMsg{ValveID: vid}})
	assert.Nil(t, err)

	var report FillReport
	assert.Nil(t, codec.Unmarshal(res.Data, &report))
	assert.Equal(t, 1, len(report.Assets))
	assert.Equal(t, coin.NewAmount(50), report.Assets[0].Balance)
	assert.Equal(t, coin.NewAmount(0), report.Assets[0].Leftover)
	assert.Equal(t, []AllocatorCredit{
		{AllocatorID: ids.IDs[1], Accepted: coin.NewAmount(40)},
		{AllocatorID: ids.IDs[0], Accepted: coin.NewAmount(10)},
	}, report.Assets[0].Credits)
}

func TestFillIgnoresUntrackedAssets(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	owner := tsmtest.NewCondition()

	fid := createFactory(t, db, owner.Address(), "IOV")
	aid := createAllocator(t, db, fid, owner.Address(), coin.NewAmount(1000))
	vid, valve := createValve(t, db, fid, owner.Address(), owner.Address(), []coin.Asset{"ETH"}, aid)
	assert.Nil(t, ctrl.CoinMint(db, valve.Address, coin.NewCoin(10, "ETH")))
	assert.Nil(t, ctrl.CoinMint(db, valve.Address, coin.NewCoin(20, "IOV")))

	rt := app.NewRouter()
	RegisterRoutes(rt, &tsmtest.Auth{Signer: owner}, ctrl)
	_, err := rt.Deliver(context.Background(), db, &tsmtest.Tx{Msg: &FillMsg{ValveID: vid}})
	assert.Nil(t, err)

	alloc := loadAllocator(t, db, aid)
	assert.Equal(t, coin.Coins{coin.NewCoin(10, "ETH")}, alloc.Credits)
	left, err := ctrl.Balance(db, valve.Address, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(20), left)
}
