package splitter

import (
	"math/rand"
	"testing"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/okatau/tsm/tsmtest"
	"github.com/okatau/tsm/tsmtest/assert"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
)

func TestSplit(t *testing.T) {
	u1 := tsmtest.NewCondition().Address()
	u2 := tsmtest.NewCondition().Address()
	u3 := tsmtest.NewCondition().Address()

	cases := map[string]struct {
		streams  []Stream
		balance  uint64
		want     map[string]uint64
		wantDust uint64
		// wantSkip is set when the asset is not split at all.
		wantSkip bool
	}{
		"exact split": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 690000},
				{Recipient: AddressRecipient(u2), Weight: 310000},
			},
			balance: 1000000,
			want:    map[string]uint64{u1.String(): 690000, u2.String(): 310000},
		},
		"rounding leaves dust": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 690000},
				{Recipient: AddressRecipient(u2), Weight: 310000},
			},
			balance:  1000001,
			want:     map[string]uint64{u1.String(): 690000, u2.String(): 310000},
			wantDust: 1,
		},
		"equal weights receive equal amounts": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 3},
				{Recipient: AddressRecipient(u2), Weight: 3},
				{Recipient: AddressRecipient(u3), Weight: 3},
			},
			balance:  100,
			want:     map[string]uint64{u1.String(): 33, u2.String(): 33, u3.String(): 33},
			wantDust: 1,
		},
		"zero weight stream receives nothing": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 0},
				{Recipient: AddressRecipient(u2), Weight: 1},
			},
			balance: 100,
			want:    map[string]uint64{u1.String(): 0, u2.String(): 100},
		},
		"all weights zero is a no-op": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 0},
				{Recipient: AddressRecipient(u2), Weight: 0},
			},
			balance:  100,
			want:     map[string]uint64{u1.String(): 0, u2.String(): 0},
			wantSkip: true,
		},
		"no streams is a no-op": {
			balance:  100,
			wantSkip: true,
		},
		"empty balance is skipped": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 1},
			},
			balance:  0,
			want:     map[string]uint64{u1.String(): 0},
			wantSkip: true,
		},
		"share too small to transfer": {
			streams: []Stream{
				{Recipient: AddressRecipient(u1), Weight: 1000},
				{Recipient: AddressRecipient(u2), Weight: 1},
			},
			balance:  500,
			want:     map[string]uint64{u1.String(): 499, u2.String(): 0},
			wantDust: 1,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := cash.NewController()
			id := tsmtest.SequenceID(1)
			s := Splitter{
				Admin:   u1,
				Assets:  []coin.Asset{"IOV"},
				Streams: tc.streams,
				Address: SplitterAddress(id),
			}
			if tc.balance != 0 {
				assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(tc.balance, "IOV")))
			}

			report, err := Split(db, ctrl, id, &s)
			assert.Nil(t, err)

			for _, addr := range []tsm.Address{u1, u2, u3} {
				got, err := ctrl.Balance(db, addr, "IOV")
				assert.Nil(t, err)
				assert.Equal(t, coin.NewAmount(tc.want[addr.String()]), got)
			}
			left, err := ctrl.Balance(db, s.Address, "IOV")
			assert.Nil(t, err)

			if tc.wantSkip {
				assert.Equal(t, 0, len(report.Assets))
				assert.Equal(t, coin.NewAmount(tc.balance), left)
				return
			}
			assert.Equal(t, coin.NewAmount(tc.wantDust), left)
			assert.Equal(t, 1, len(report.Assets))
			assert.Equal(t, coin.NewAmount(tc.balance), report.Assets[0].Balance)
			assert.Equal(t, coin.NewAmount(tc.wantDust), report.Assets[0].Dust)
			assert.Equal(t, coin.NewAmount(tc.balance-tc.wantDust), report.Assets[0].Distributed)
		})
	}
}

func TestSplitConservation(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for round := 0; round < 40; round++ {
		db := store.MemStore()
		ctrl := cash.NewController()
		id := tsmtest.SequenceID(1)

		n := 1 + rnd.Intn(20)
		var streams []Stream
		var addrs []tsm.Address
		for i := 0; i < n; i++ {
			addr := tsmtest.NewCondition().Address()
			addrs = append(addrs, addr)
			streams = append(streams, Stream{Recipient: AddressRecipient(addr), Weight: rnd.Uint32()})
		}
		balance := coin.NewAmount(rnd.Uint64())
		s := Splitter{Assets: []coin.Asset{"IOV"}, Streams: streams, Address: SplitterAddress(id)}
		assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.Coin{Ticker: "IOV", Amount: balance}))

		_, err := Split(db, ctrl, id, &s)
		assert.Nil(t, err)

		var sent coin.Amount
		for _, a := range addrs {
			got, err := ctrl.Balance(db, a, "IOV")
			assert.Nil(t, err)
			sent, err = sent.Add(got)
			assert.Nil(t, err)
		}
		left, err := ctrl.Balance(db, s.Address, "IOV")
		assert.Nil(t, err)

		if total, err := sent.Add(left); err != nil || total != balance {
			t.Fatalf("sent %s and left %s out of %s", sent, left, balance)
		}
		if left.Cmp(coin.NewAmount(uint64(n))) >= 0 {
			t.Fatalf("dust %s not below %d streams", left, n)
		}
	}
}

func TestSplitMultipleAssets(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	u1 := tsmtest.NewCondition().Address()
	u2 := tsmtest.NewCondition().Address()
	id := tsmtest.SequenceID(1)

	s := Splitter{
		Assets: []coin.Asset{"IOV", "ETH"},
		Streams: []Stream{
			{Recipient: AddressRecipient(u1), Weight: 1},
			{Recipient: AddressRecipient(u2), Weight: 3},
		},
		Address: SplitterAddress(id),
	}
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(40, "IOV")))
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(8, "ETH")))
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(1000, "BTC")))

	report, err := Split(db, ctrl, id, &s)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(report.Assets))

	got, err := ctrl.Balances(db, u2)
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoin(6, "ETH"), coin.NewCoin(30, "IOV")}, got)

	// Untracked assets are ignored.
	left, err := ctrl.Balance(db, s.Address, "BTC")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(1000), left)
}

func TestSplitToAllocator(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	owner := tsmtest.NewCondition().Address()
	u1 := tsmtest.NewCondition().Address()

	fid, err := cascade.NewFactoryBucket().Put(db, nil, &cascade.Factory{Owner: owner})
	assert.Nil(t, err)
	aid := tsmtest.SequenceID(1)
	_, err = cascade.NewAllocatorBucket().Put(db, nil, &cascade.Allocator{
		FactoryID: fid,
		Owner:     owner,
		Ceiling:   coin.NewAmount(30),
		Address:   cascade.AllocatorAddress(aid),
	})
	assert.Nil(t, err)

	id := tsmtest.SequenceID(1)
	s := Splitter{
		Assets: []coin.Asset{"IOV"},
		Streams: []Stream{
			{Recipient: AllocatorRecipient(aid), Weight: 1},
			{Recipient: AddressRecipient(u1), Weight: 1},
		},
		Address: SplitterAddress(id),
	}
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(101, "IOV")))

	report, err := Split(db, ctrl, id, &s)
	assert.Nil(t, err)
	assert.Equal(t, []AssetSplit{{
		Asset:       "IOV",
		Balance:     coin.NewAmount(101),
		Distributed: coin.NewAmount(80),
		Unaccepted:  coin.NewAmount(20),
		Dust:        coin.NewAmount(1),
	}}, report.Assets)

	var alloc cascade.Allocator
	assert.Nil(t, cascade.NewAllocatorBucket().One(db, aid, &alloc))
	assert.Equal(t, coin.NewAmount(30), alloc.Filled)
	assert.Equal(t, true, alloc.IsFull())

	got, err := ctrl.Balance(db, alloc.Address, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(30), got)
	got, err = ctrl.Balance(db, u1, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(50), got)
	got, err = ctrl.Balance(db, s.Address, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(21), got)
}

func TestSplitAbove64Bits(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	owner := tsmtest.NewCondition().Address()
	u1 := tsmtest.NewCondition().Address()
	u2 := tsmtest.NewCondition().Address()

	eth := func(raw string) coin.Amount {
		a, err := coin.ParseAmount(raw, 18)
		assert.Nil(t, err)
		return a
	}

	fid, err := cascade.NewFactoryBucket().Put(db, nil, &cascade.Factory{Owner: owner})
	assert.Nil(t, err)
	aid := tsmtest.SequenceID(1)
	_, err = cascade.NewAllocatorBucket().Put(db, nil, &cascade.Allocator{
		FactoryID: fid,
		Owner:     owner,
		Ceiling:   eth("100"),
		Address:   cascade.AllocatorAddress(aid),
	})
	assert.Nil(t, err)

	id := tsmtest.SequenceID(1)
	s := Splitter{
		Assets: []coin.Asset{"ETH"},
		Streams: []Stream{
			{Recipient: AddressRecipient(u1), Weight: 690000},
			{Recipient: AddressRecipient(u2), Weight: 210000},
			{Recipient: AllocatorRecipient(aid), Weight: 100000},
		},
		Address: SplitterAddress(id),
	}
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.Coin{Ticker: "ETH", Amount: eth("1500")}))

	report, err := Split(db, ctrl, id, &s)
	assert.Nil(t, err)
	assert.Equal(t, []AssetSplit{{
		Asset:       "ETH",
		Balance:     eth("1500"),
		Distributed: eth("1450"),
		Unaccepted:  eth("50"),
		Dust:        coin.Amount{},
	}}, report.Assets)

	got, err := ctrl.Balance(db, u1, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, eth("1035"), got)
	got, err = ctrl.Balance(db, u2, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, eth("315"), got)
	got, err = ctrl.Balance(db, cascade.AllocatorAddress(aid), "ETH")
	assert.Nil(t, err)
	assert.Equal(t, eth("100"), got)
	got, err = ctrl.Balance(db, s.Address, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, eth("50"), got)
}

func TestSplitMissingAllocatorFails(t *testing.T) {
	db := store.MemStore()
	ctrl := cash.NewController()
	id := tsmtest.SequenceID(1)
	s := Splitter{
		Assets:  []coin.Asset{"IOV"},
		Streams: []Stream{{Recipient: AllocatorRecipient(tsmtest.SequenceID(4)), Weight: 1}},
		Address: SplitterAddress(id),
	}
	assert.Nil(t, ctrl.CoinMint(db, s.Address, coin.NewCoin(10, "IOV")))

	_, err := Split(db, ctrl, id, &s)
	assert.IsErr(t, errors.ErrNotFound, err)
}
