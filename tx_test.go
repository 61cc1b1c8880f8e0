package tsm

import (
	"testing"

	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/tsmtest/assert"
)

type demoMsg struct {
	Num  int
	Text string
}

func (demoMsg) Path() string    { return "demo/msg" }
func (demoMsg) Validate() error { return nil }

var _ Msg = (*demoMsg)(nil)

type container struct {
	Data  *demoMsg
	Other *demoMsg
}

type bigContainer struct {
	Data   *demoMsg
	Random string
}

type badContents struct {
	Data *container
}

func TestExtractMsgFromSum(t *testing.T) {
	msg := &demoMsg{
		Num:  17,
		Text: "hello world",
	}

	cases := map[string]struct {
		input   interface{}
		want    Msg
		wantErr *errors.Error
	}{
		"success": {
			input: &container{Data: msg},
			want:  msg,
		},
		"success, second field": {
			input: &container{Other: msg},
			want:  msg,
		},
		"nil input is not allowed": {
			input:   nil,
			wantErr: errors.ErrInput,
		},
		"nil pointer is not allowed": {
			input:   (*container)(nil),
			wantErr: errors.ErrInput,
		},
		"invalid input content, number": {
			input:   7,
			wantErr: errors.ErrInput,
		},
		"invalid input content, string": {
			input:   "seven",
			wantErr: errors.ErrInput,
		},
		"empty container": {
			input:   &container{},
			wantErr: errors.ErrState,
		},
		"container must be a pointer": {
			input:   container{Data: msg},
			wantErr: errors.ErrInput,
		},
		"more than one message": {
			input:   &container{Data: msg, Other: msg},
			wantErr: errors.ErrInput,
		},
		"non pointer field": {
			input:   &bigContainer{msg, "foo"},
			wantErr: errors.ErrInput,
		},
		"field is not a message": {
			input:   &badContents{&container{}},
			wantErr: errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := ExtractMsgFromSum(tc.input)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, res)
			} else {
				assert.Nil(t, res)
			}
		})
	}
}
