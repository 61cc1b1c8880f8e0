package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
	"github.com/okatau/tsm/x/splitter"
	"github.com/tendermint/tendermint/libs/log"
)

// queryFlags registers the flags shared by all query commands.
func queryFlags(fl *flag.FlagSet) (home *string, decimals *int) {
	home = fl.String("home", defaultHome(),
		"Directory with the application state. You can use TSMD_HOME environment variable to set it.")
	decimals = fl.Int("decimals", 0, "Number of decimals used to display amounts.")
	return home, decimals
}

// query runs fn with a read only view of the committed application
// state and prints the returned value as JSON.
func query(output io.Writer, home string, fn func(db tsm.ReadOnlyKVStore) (interface{}, error)) error {
	a, closeApp, err := openApp(home, log.NewNopLogger())
	if err != nil {
		return fmt.Errorf("cannot open application: %s", err)
	}
	defer closeApp()
	if a.ChainID() == "" {
		return errors.New("chain not initialized, run init first")
	}

	res, err := fn(a.ReadStore())
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(res, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

func formatCoins(cs coin.Coins, decimals int) map[coin.Asset]string {
	res := make(map[coin.Asset]string, len(cs))
	for _, c := range cs {
		res[c.Ticker] = coin.FormatAmount(c.Amount, int32(decimals))
	}
	return res
}

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print all coins held by an address.
`)
		fl.PrintDefaults()
	}
	homeFl, decimalsFl := queryFlags(fl)
	addrFl := flAddress(fl, "addr", "Address of the account, splitter, valve or allocator.")
	fl.Parse(args)

	if len(*addrFl) == 0 {
		return errors.New("address is required")
	}
	return query(output, *homeFl, func(db tsm.ReadOnlyKVStore) (interface{}, error) {
		coins, err := cash.NewController().Balances(db, *addrFl)
		if err != nil {
			return nil, err
		}
		return formatCoins(coins, *decimalsFl), nil
	})
}

func cmdAllocator(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of an allocator: its ceiling, how much it was credited and
how much room is left.
`)
		fl.PrintDefaults()
	}
	homeFl, decimalsFl := queryFlags(fl)
	idFl := flSeq(fl, "id", "ID of the allocator.")
	fl.Parse(args)

	return query(output, *homeFl, func(db tsm.ReadOnlyKVStore) (interface{}, error) {
		var a cascade.Allocator
		if err := cascade.NewAllocatorBucket().One(db, *idFl, &a); err != nil {
			return nil, err
		}
		d := int32(*decimalsFl)
		return struct {
			Address tsm.Address           `json:"address"`
			Owner   tsm.Address           `json:"owner"`
			Ceiling string                `json:"ceiling"`
			Filled  string                `json:"filled"`
			Room    string                `json:"room"`
			Full    bool                  `json:"full"`
			Credits map[coin.Asset]string `json:"credits"`
		}{
			Address: a.Address,
			Owner:   a.Owner,
			Ceiling: coin.FormatAmount(a.Ceiling, d),
			Filled:  coin.FormatAmount(a.Balance(), d),
			Room:    coin.FormatAmount(a.Room(), d),
			Full:    a.IsFull(),
			Credits: formatCoins(a.Credits, *decimalsFl),
		}, nil
	})
}

func cmdValve(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of a valve: its allocators in fill order, the assets it
moves and its current balance.
`)
		fl.PrintDefaults()
	}
	homeFl, decimalsFl := queryFlags(fl)
	idFl := flSeq(fl, "id", "ID of the valve.")
	fl.Parse(args)

	return query(output, *homeFl, func(db tsm.ReadOnlyKVStore) (interface{}, error) {
		var v cascade.Valve
		if err := cascade.NewValveBucket().One(db, *idFl, &v); err != nil {
			return nil, err
		}
		assets, err := cascade.EffectiveAssets(db, &v)
		if err != nil {
			return nil, err
		}
		ctrl := cash.NewController()
		total, err := cascade.ValveBalance(db, ctrl, &v, assets)
		if err != nil {
			return nil, err
		}
		coins, err := ctrl.Balances(db, v.Address)
		if err != nil {
			return nil, err
		}
		allocators := make([]string, len(v.Allocators))
		for i, id := range v.Allocators {
			allocators[i] = flagSeq(id).String()
		}
		return struct {
			Address    tsm.Address           `json:"address"`
			Admin      tsm.Address           `json:"admin"`
			Controller tsm.Address           `json:"controller"`
			Allocators []string              `json:"allocators"`
			Assets     []coin.Asset          `json:"assets"`
			Balance    string                `json:"balance"`
			Coins      map[coin.Asset]string `json:"coins"`
		}{
			Address:    v.Address,
			Admin:      v.Admin,
			Controller: v.Controller,
			Allocators: allocators,
			Assets:     assets,
			Balance:    coin.FormatAmount(total, int32(*decimalsFl)),
			Coins:      formatCoins(coins, *decimalsFl),
		}, nil
	})
}

func cmdSplitter(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of a splitter: its streams, tracked assets and current
balance.
`)
		fl.PrintDefaults()
	}
	homeFl, decimalsFl := queryFlags(fl)
	idFl := flSeq(fl, "id", "ID of the splitter.")
	fl.Parse(args)

	return query(output, *homeFl, func(db tsm.ReadOnlyKVStore) (interface{}, error) {
		var s splitter.Splitter
		if err := splitter.NewBucket().One(db, *idFl, &s); err != nil {
			return nil, err
		}
		coins, err := cash.NewController().Balances(db, s.Address)
		if err != nil {
			return nil, err
		}
		type stream struct {
			Recipient string `json:"recipient"`
			Weight    uint32 `json:"weight"`
		}
		streams := make([]stream, len(s.Streams))
		for i, st := range s.Streams {
			streams[i] = stream{Recipient: st.Recipient.String(), Weight: st.Weight}
		}
		return struct {
			Address tsm.Address           `json:"address"`
			Admin   tsm.Address           `json:"admin"`
			Assets  []coin.Asset          `json:"assets"`
			Streams []stream              `json:"streams"`
			Coins   map[coin.Asset]string `json:"coins"`
		}{
			Address: s.Address,
			Admin:   s.Admin,
			Assets:  s.Assets,
			Streams: streams,
			Coins:   formatCoins(coins, *decimalsFl),
		}, nil
	})
}
