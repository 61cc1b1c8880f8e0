package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/okatau/tsm"
	tsmd "github.com/okatau/tsm/cmd/tsmd/app"
)

func cmdAsBatch(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read any number of transactions from the stdin and extract messages from them.
Create a single batch transaction containing all messages in the order they
were read. All attributes of the original transactions (ie signatures) are
being dropped.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	var msgs []tsm.Msg
	for {
		tx, _, err := readTx(input)
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		msg, err := tx.GetMsg()
		if err != nil {
			return fmt.Errorf("cannot extract message from the transaction: %s", err)
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return errors.New("no input transactions")
	}

	batch, err := tsmd.NewExecuteBatchMsg(msgs...)
	if err != nil {
		return fmt.Errorf("cannot create batch: %s", err)
	}
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("invalid batch: %s", err)
	}
	return writeMsg(output, batch)
}
