package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/okatau/tsm/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transactions. This is decoding transactions from standard input,
adds a signature to each and writes back to standard output signed
transactions. Consecutive transactions get consecutive sequence numbers.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory with the application state. You can use TSMD_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use TSMD_PRIV_KEY environment variable to set it.")
		seqFl = fl.Int64("seq", -1, "Sequence number of the first signature. Read from the application state if negative.")
	)
	fl.Parse(args)

	key, err := loadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	a, closeApp, err := openApp(*homeFl, log.NewNopLogger())
	if err != nil {
		return fmt.Errorf("cannot open application: %s", err)
	}
	defer closeApp()
	chainID := a.ChainID()
	if chainID == "" {
		return errors.New("chain not initialized, run init first")
	}

	seq := *seqFl
	if seq < 0 {
		if seq, err = sigs.NextNonce(a.ReadStore(), key.PublicKey().Address()); err != nil {
			return fmt.Errorf("cannot get the next sequence number: %s", err)
		}
	}

	var signed int
	for {
		tx, _, err := readTx(input)
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("cannot read transaction: %s", err)
		}
		sig, err := sigs.SignTx(key, tx, chainID, seq)
		if err != nil {
			return fmt.Errorf("cannot sign transaction: %s", err)
		}
		tx.Signatures = append(tx.Signatures, sig)
		if _, err := writeTx(output, tx); err != nil {
			return fmt.Errorf("cannot write transaction: %s", err)
		}
		seq++
		signed++
	}
	if signed == 0 {
		return errors.New("no input data")
	}
	return nil
}
