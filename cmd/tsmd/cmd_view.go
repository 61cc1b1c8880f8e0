package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
)

func cmdView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display transaction summary. This command is helpful when
receiving a binary representation of a transaction. Before signing you
should check what kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	var viewed int
	for {
		tx, _, err := readTx(input)
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("cannot read transaction: %s", err)
		}
		msg, err := tx.GetMsg()
		if err != nil {
			return fmt.Errorf("cannot extract message: %s", err)
		}
		pretty, err := json.MarshalIndent(struct {
			Path       string      `json:"path"`
			Msg        interface{} `json:"msg"`
			Signatures int         `json:"signatures"`
		}{
			Path:       msg.Path(),
			Msg:        msg,
			Signatures: len(tx.Signatures),
		}, "", "\t")
		if err != nil {
			return fmt.Errorf("cannot JSON serialize: %s", err)
		}
		if _, err := fmt.Fprintln(output, string(pretty)); err != nil {
			return err
		}
		viewed++
	}
	if viewed == 0 {
		return errors.New("no input data")
	}
	return nil
}
