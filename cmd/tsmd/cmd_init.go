package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/okatau/tsm/app"
	tsmd "github.com/okatau/tsm/cmd/tsmd/app"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize the application state from a genesis file. The genesis file
declares the chain id and the initial wallets, factories, allocators,
valves and splitters. A state can be initialized only once.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory with the application state. You can use TSMD_HOME environment variable to set it.")
		genesisFl = fl.String("genesis", "genesis.json", "Path to the genesis file.")
		logFl     = fl.String("log", "info", "Log level, one of debug, info, error or none.")
	)
	fl.Parse(args)

	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	gen, err := app.LoadGenesis(*genesisFl)
	if err != nil {
		return err
	}

	a, closeApp, err := openApp(*homeFl, logger)
	if err != nil {
		return fmt.Errorf("cannot open application: %s", err)
	}
	defer closeApp()

	commit, err := a.InitChain(*gen, tsmd.Initializers())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s %d %X\n", gen.ChainID, commit.Version, commit.Hash)
	return err
}
