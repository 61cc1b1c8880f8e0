package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/orm"
)

// flAddress returns an address value, optionally overwritten by a command
// line argument if provided. This function follows Go's flag package
// convention.
func flAddress(fl *flag.FlagSet, name, usage string) *tsm.Address {
	var a flagAddress
	fl.Var(&a, name, usage)
	return (*tsm.Address)(&a)
}

type flagAddress tsm.Address

func (a flagAddress) String() string {
	if len(a) == 0 {
		return ""
	}
	return tsm.Address(a).String()
}

func (a *flagAddress) Set(raw string) error {
	addr, err := tsm.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagAddress(addr)
	return nil
}

// flSeq returns a sequence id value. IDs are given in their decimal form
// and stored as the orm sequence encoding.
func flSeq(fl *flag.FlagSet, name, usage string) *[]byte {
	var id flagSeq
	fl.Var(&id, name, usage)
	return (*[]byte)(&id)
}

type flagSeq []byte

func (s flagSeq) String() string {
	if len(s) == 0 {
		return ""
	}
	n, err := orm.DecodeSequence(s)
	if err != nil {
		return fmt.Sprintf("%X", []byte(s))
	}
	return strconv.FormatInt(n, 10)
}

func (s *flagSeq) Set(raw string) error {
	id, err := parseSeq(raw)
	if err != nil {
		return err
	}
	*s = id
	return nil
}

func parseSeq(raw string) ([]byte, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	return orm.EncodeSequence(n), nil
}

// flAssets returns a list of asset tickers given as a comma separated
// list.
func flAssets(fl *flag.FlagSet, name, usage string) *[]coin.Asset {
	var assets flagAssets
	fl.Var(&assets, name, usage)
	return (*[]coin.Asset)(&assets)
}

type flagAssets []coin.Asset

func (a flagAssets) String() string {
	names := make([]string, len(a))
	for i, asset := range a {
		names[i] = string(asset)
	}
	return strings.Join(names, ",")
}

func (a *flagAssets) Set(raw string) error {
	var assets []coin.Asset
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		asset := coin.Asset(name)
		if err := asset.Validate(); err != nil {
			return err
		}
		assets = append(assets, asset)
	}
	*a = assets
	return nil
}

// flStrings returns a list of all values given to a flag that can be
// repeated.
func flStrings(fl *flag.FlagSet, name, usage string) *[]string {
	var vals flagStrings
	fl.Var(&vals, name, usage)
	return (*[]string)(&vals)
}

type flagStrings []string

func (s flagStrings) String() string {
	return strings.Join(s, ",")
}

func (s *flagStrings) Set(raw string) error {
	*s = append(*s, raw)
	return nil
}
