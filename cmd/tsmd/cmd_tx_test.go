package main

import (
	"bytes"
	"testing"

	"github.com/okatau/tsm"
	tsmd "github.com/okatau/tsm/cmd/tsmd/app"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/tsmtest"
	"github.com/okatau/tsm/tsmtest/assert"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
	"github.com/okatau/tsm/x/splitter"
)

// readMsg returns the message of the only transaction written to given
// buffer.
func readMsg(t *testing.T, b *bytes.Buffer) tsm.Msg {
	t.Helper()
	tx, _, err := readTx(b)
	if err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	msg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	if b.Len() != 0 {
		t.Fatalf("unexpected %d bytes left", b.Len())
	}
	return msg
}

func TestCmdSendHappyPath(t *testing.T) {
	src := tsmtest.NewCondition().Address()
	dst := tsmtest.NewCondition().Address()

	var output bytes.Buffer
	args := []string{
		"-src", src.String(),
		"-dst", dst.String(),
		"-amount", "1.5",
		"-ticker", "TTT",
		"-decimals", "3",
		"-memo", "a memo",
	}
	if err := cmdSend(nil, &output, args); err != nil {
		t.Fatalf("cannot create a new token transfer transaction: %s", err)
	}

	msg := readMsg(t, &output).(*cash.SendMsg)
	assert.Equal(t, src, msg.Source)
	assert.Equal(t, dst, msg.Destination)
	assert.Equal(t, "a memo", msg.Memo)
	assert.Equal(t, coin.NewCoin(1500, "TTT"), msg.Amount)
}

func TestCmdSendInvalid(t *testing.T) {
	src := tsmtest.NewCondition().Address()

	var output bytes.Buffer
	args := []string{
		"-src", src.String(),
		"-amount", "1",
		"-ticker", "TTT",
	}
	if err := cmdSend(nil, &output, args); err == nil {
		t.Fatal("destination is required")
	}
	args = []string{
		"-src", src.String(),
		"-dst", src.String(),
		"-amount", "1.5",
		"-ticker", "TTT",
	}
	if err := cmdSend(nil, &output, args); err == nil {
		t.Fatal("fractional amount without decimals must fail")
	}
	assert.Equal(t, 0, output.Len())
}

func TestParseStreams(t *testing.T) {
	addr := tsmtest.NewCondition().Address()

	cases := map[string]struct {
		raw     []string
		want    []splitter.Stream
		wantErr bool
	}{
		"no streams": {
			raw:  nil,
			want: []splitter.Stream{},
		},
		"address and allocator": {
			raw: []string{addr.String() + "=69", "allocator:3=31"},
			want: []splitter.Stream{
				{Recipient: splitter.AddressRecipient(addr), Weight: 69},
				{Recipient: splitter.AllocatorRecipient(tsmtest.SequenceID(3)), Weight: 31},
			},
		},
		"zero weight": {
			raw: []string{addr.String() + "=0"},
			want: []splitter.Stream{
				{Recipient: splitter.AddressRecipient(addr), Weight: 0},
			},
		},
		"missing weight": {
			raw:     []string{addr.String()},
			wantErr: true,
		},
		"negative weight": {
			raw:     []string{addr.String() + "=-1"},
			wantErr: true,
		},
		"invalid address": {
			raw:     []string{"zzz=1"},
			wantErr: true,
		},
		"invalid allocator id": {
			raw:     []string{"allocator:0=1"},
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := parseStreams(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCmdCreateSplitter(t *testing.T) {
	admin := tsmtest.NewCondition().Address()
	user := tsmtest.NewCondition().Address()

	var output bytes.Buffer
	args := []string{
		"-admin", admin.String(),
		"-assets", "TTT,TT1",
		"-stream", user.String() + "=3",
		"-stream", "allocator:1=1",
	}
	if err := cmdCreateSplitter(nil, &output, args); err != nil {
		t.Fatalf("cannot create splitter transaction: %s", err)
	}

	msg := readMsg(t, &output).(*splitter.CreateMsg)
	assert.Equal(t, admin, msg.Admin)
	assert.Equal(t, []coin.Asset{"TTT", "TT1"}, msg.Assets)
	assert.Equal(t, 2, len(msg.Streams))
	assert.Equal(t, uint32(3), msg.Streams[0].Weight)
	assert.Equal(t, splitter.RecipientAllocator, msg.Streams[1].Recipient.Kind)
}

func TestCmdMakeAllocators(t *testing.T) {
	owner := tsmtest.NewCondition().Address()

	var output bytes.Buffer
	args := []string{
		"-factory", "2",
		"-decimals", "1",
		"-allocator", "10",
		"-allocator", "1.5@" + owner.String(),
	}
	if err := cmdMakeAllocators(nil, &output, args); err != nil {
		t.Fatalf("cannot create allocators transaction: %s", err)
	}

	msg := readMsg(t, &output).(*cascade.MakeAllocatorsMsg)
	assert.Equal(t, tsmtest.SequenceID(2), msg.FactoryID)
	assert.Equal(t, 2, len(msg.Allocators))
	assert.Equal(t, coin.NewAmount(100), msg.Allocators[0].Ceiling)
	assert.Equal(t, 0, len(msg.Allocators[0].Owner))
	assert.Equal(t, coin.NewAmount(15), msg.Allocators[1].Ceiling)
	assert.Equal(t, owner, msg.Allocators[1].Owner)
}

func TestCmdSetAssets(t *testing.T) {
	var output bytes.Buffer
	if err := cmdSetAssets(nil, &output, []string{"-assets", "TTT"}); err == nil {
		t.Fatal("target is required")
	}
	if err := cmdSetAssets(nil, &output, []string{"-valve", "1", "-factory", "1", "-assets", "TTT"}); err == nil {
		t.Fatal("only one target is allowed")
	}

	if err := cmdSetAssets(nil, &output, []string{"-valve", "4"}); err != nil {
		t.Fatalf("cannot create valve assets transaction: %s", err)
	}
	msg := readMsg(t, &output).(*cascade.UpdateValveAssetsMsg)
	assert.Equal(t, tsmtest.SequenceID(4), msg.ValveID)
	assert.Equal(t, 0, len(msg.Assets))
}

func TestCmdAsBatch(t *testing.T) {
	var input bytes.Buffer
	if err := cmdSplit(nil, &input, []string{"-splitter", "1"}); err != nil {
		t.Fatalf("cannot create split transaction: %s", err)
	}
	if err := cmdFill(nil, &input, []string{"-valve", "1"}); err != nil {
		t.Fatalf("cannot create fill transaction: %s", err)
	}
	if err := cmdFill(nil, &input, []string{"-valve", "2"}); err != nil {
		t.Fatalf("cannot create fill transaction: %s", err)
	}

	var output bytes.Buffer
	if err := cmdAsBatch(&input, &output, nil); err != nil {
		t.Fatalf("cannot create batch: %s", err)
	}

	batch := readMsg(t, &output).(*tsmd.ExecuteBatchMsg)
	msgs, err := batch.MsgList()
	if err != nil {
		t.Fatalf("cannot list batch messages: %s", err)
	}
	assert.Equal(t, 3, len(msgs))
	assert.Equal(t, &splitter.SplitMsg{SplitterID: tsmtest.SequenceID(1)}, msgs[0])
	assert.Equal(t, &cascade.FillMsg{ValveID: tsmtest.SequenceID(1)}, msgs[1])
	assert.Equal(t, &cascade.FillMsg{ValveID: tsmtest.SequenceID(2)}, msgs[2])

	var empty bytes.Buffer
	if err := cmdAsBatch(&empty, &output, nil); err == nil {
		t.Fatal("empty input must fail")
	}
}

func TestCmdView(t *testing.T) {
	var input bytes.Buffer
	if err := cmdFill(nil, &input, []string{"-valve", "7"}); err != nil {
		t.Fatalf("cannot create fill transaction: %s", err)
	}
	var output bytes.Buffer
	if err := cmdView(&input, &output, nil); err != nil {
		t.Fatalf("cannot view transaction: %s", err)
	}
	if !bytes.Contains(output.Bytes(), []byte(`"path": "cascade/fill"`)) {
		t.Fatalf("unexpected view: %s", output.String())
	}
}
