package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
	tsmerrors "github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
	"github.com/okatau/tsm/x/batch"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/splitter"
)

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute signed transactions read from the standard input and commit the
result. Either all transactions succeed and are committed together or
nothing is changed. A JSON summary of each execution is printed.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory with the application state. You can use TSMD_HOME environment variable to set it.")
		logFl   = fl.String("log", "info", "Log level, one of debug, info, error or none.")
		debugFl = fl.Bool("debug", false, "Print the full error including the stack trace.")
	)
	fl.Parse(args)

	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	a, closeApp, err := openApp(*homeFl, logger)
	if err != nil {
		return fmt.Errorf("cannot open application: %s", err)
	}
	defer closeApp()

	var results []submitResult
	for i := 0; ; i++ {
		tx, _, err := readTx(input)
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("cannot read transaction %d: %s", i, err)
		}
		res, err := a.Deliver(tx)
		if err != nil {
			code, log := tsmerrors.Info(err, *debugFl)
			return fmt.Errorf("transaction %d failed with code %d: %s", i, code, log)
		}
		msg, err := tx.GetMsg()
		if err != nil {
			return err
		}
		data, err := describeData(msg, res.Data)
		if err != nil {
			return fmt.Errorf("cannot decode transaction %d result: %s", i, err)
		}
		results = append(results, submitResult{
			Path:   msg.Path(),
			Data:   data,
			Log:    res.Log,
			Events: describeEvents(res.Events),
		})
	}
	if len(results) == 0 {
		return errors.New("no input data")
	}

	commit, err := a.Commit()
	if err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	pretty, err := json.MarshalIndent(submitSummary{
		Version: commit.Version,
		Hash:    fmt.Sprintf("%X", commit.Hash),
		Results: results,
	}, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

type submitSummary struct {
	Version int64          `json:"version"`
	Hash    string         `json:"hash"`
	Results []submitResult `json:"results"`
}

type submitResult struct {
	Path   string        `json:"path"`
	Data   interface{}   `json:"data,omitempty"`
	Log    string        `json:"log,omitempty"`
	Events []eventResult `json:"events,omitempty"`
}

type eventResult struct {
	Type    string      `json:"type"`
	ID      int64       `json:"id"`
	Address tsm.Address `json:"address,omitempty"`
}

func describeEvents(events []tsm.Event) []eventResult {
	res := make([]eventResult, 0, len(events))
	for _, e := range events {
		id, _ := orm.DecodeSequence(e.ID)
		res = append(res, eventResult{Type: e.Type, ID: id, Address: e.Address})
	}
	return res
}

// resultDecoders knows how to present the result data of messages that
// return any.
var resultDecoders = map[string]func([]byte) (interface{}, error){
	splitter.CreateMsg{}.Path():        decodeSequence,
	cascade.CreateFactoryMsg{}.Path():  decodeSequence,
	cascade.MakeAllocatorsMsg{}.Path(): decodeIDList,
	cascade.MakeValvesMsg{}.Path():     decodeIDList,
	splitter.SplitMsg{}.Path():         decodeModel(func() interface{} { return &splitter.SplitReport{} }),
	cascade.FillMsg{}.Path():           decodeModel(func() interface{} { return &cascade.FillReport{} }),
}

// describeData returns the result data of a message in a form that can
// be JSON serialized.
func describeData(msg tsm.Msg, data []byte) (interface{}, error) {
	if b, ok := msg.(batch.Msg); ok {
		return describeBatch(b, data)
	}
	if len(data) == 0 {
		return nil, nil
	}
	decode, ok := resultDecoders[msg.Path()]
	if !ok {
		return data, nil
	}
	return decode(data)
}

func describeBatch(msg batch.Msg, data []byte) (interface{}, error) {
	msgs, err := msg.MsgList()
	if err != nil {
		return nil, err
	}
	var list batch.ByteArrayList
	if err := codec.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	res := make([]interface{}, len(msgs))
	for i, m := range msgs {
		if i >= len(list.Elements) {
			break
		}
		if res[i], err = describeData(m, list.Elements[i]); err != nil {
			return nil, fmt.Errorf("message %d: %s", i, err)
		}
	}
	return res, nil
}

func decodeSequence(raw []byte) (interface{}, error) {
	return orm.DecodeSequence(raw)
}

func decodeIDList(raw []byte) (interface{}, error) {
	var list cascade.IDList
	if err := codec.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	ids := make([]int64, len(list.IDs))
	for i, id := range list.IDs {
		n, err := orm.DecodeSequence(id)
		if err != nil {
			return nil, err
		}
		ids[i] = n
	}
	return ids, nil
}

func decodeModel(newModel func() interface{}) func([]byte) (interface{}, error) {
	return func(raw []byte) (interface{}, error) {
		m := newModel()
		if err := codec.Unmarshal(raw, m); err != nil {
			return nil, err
		}
		return m, nil
	}
}
