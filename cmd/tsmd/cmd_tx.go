package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okatau/tsm"
	tsmd "github.com/okatau/tsm/cmd/tsmd/app"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
	"github.com/okatau/tsm/x/splitter"
)

// writeMsg wraps the message into an unsigned transaction and writes it
// to the output.
func writeMsg(output io.Writer, msg tsm.Msg) error {
	tx, err := tsmd.NewTx(msg)
	if err != nil {
		return fmt.Errorf("cannot create transaction: %s", err)
	}
	_, err = writeTx(output, tx)
	return err
}

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring funds from the source account to the
destination account. Use it to fund a splitter or a valve.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl      = flAddress(fl, "src", "A source account address that the funds are sent from.")
		dstFl      = flAddress(fl, "dst", "A destination account address that the funds are sent to.")
		amountFl   = fl.String("amount", "", "Amount to transfer, for example 7.5")
		tickerFl   = fl.String("ticker", "", "Ticker of the transferred asset.")
		decimalsFl = fl.Int("decimals", 0, "Number of decimals of the asset. Amount is given in the smallest unit if zero.")
		memoFl     = fl.String("memo", "", "A short message attached to the transfer operation.")
	)
	fl.Parse(args)

	amount, err := coin.ParseAmount(*amountFl, int32(*decimalsFl))
	if err != nil {
		return fmt.Errorf("invalid amount: %s", err)
	}
	msg := &cash.SendMsg{
		Source:      *srcFl,
		Destination: *dstFl,
		Amount:      coin.Coin{Ticker: coin.Asset(*tickerFl), Amount: amount},
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdCreateSplitter(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a new stream splitter. Each stream is
given as RECIPIENT=WEIGHT, where the recipient is an address or
allocator:ID. The stream flag can be repeated.
`)
		fl.PrintDefaults()
	}
	var (
		adminFl   = flAddress(fl, "admin", "Address of the splitter administrator.")
		assetsFl  = flAssets(fl, "assets", "Comma separated list of tracked asset tickers.")
		streamsFl = flStrings(fl, "stream", "Stream in the RECIPIENT=WEIGHT format. Can be repeated.")
	)
	fl.Parse(args)

	streams, err := parseStreams(*streamsFl)
	if err != nil {
		return err
	}
	msg := &splitter.CreateMsg{
		Admin:   *adminFl,
		Assets:  *assetsFl,
		Streams: streams,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdUpdateStreams(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction replacing all streams of a splitter. Streams are given
in the same format as for create-splitter. No stream flag removes all
streams.
`)
		fl.PrintDefaults()
	}
	var (
		idFl      = flSeq(fl, "splitter", "ID of the splitter.")
		streamsFl = flStrings(fl, "stream", "Stream in the RECIPIENT=WEIGHT format. Can be repeated.")
	)
	fl.Parse(args)

	streams, err := parseStreams(*streamsFl)
	if err != nil {
		return err
	}
	msg := &splitter.UpdateStreamsMsg{
		SplitterID: *idFl,
		Streams:    streams,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

// parseStreams reads streams from the RECIPIENT=WEIGHT notation.
func parseStreams(raw []string) ([]splitter.Stream, error) {
	streams := make([]splitter.Stream, 0, len(raw))
	for _, s := range raw {
		i := strings.LastIndex(s, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid stream %q: weight missing", s)
		}
		weight, err := strconv.ParseUint(s[i+1:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid stream %q weight: %s", s, err)
		}
		recipient, err := parseRecipient(s[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid stream %q: %s", s, err)
		}
		streams = append(streams, splitter.Stream{Recipient: recipient, Weight: uint32(weight)})
	}
	return streams, nil
}

func parseRecipient(raw string) (splitter.Recipient, error) {
	if strings.HasPrefix(raw, "allocator:") {
		id, err := parseSeq(strings.TrimPrefix(raw, "allocator:"))
		if err != nil {
			return splitter.Recipient{}, err
		}
		return splitter.AllocatorRecipient(id), nil
	}
	addr, err := tsm.ParseAddress(raw)
	if err != nil {
		return splitter.Recipient{}, err
	}
	return splitter.AddressRecipient(addr), nil
}

func cmdSplit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction distributing the whole balance of a splitter between
its streams.
`)
		fl.PrintDefaults()
	}
	var (
		idFl = flSeq(fl, "splitter", "ID of the splitter.")
	)
	fl.Parse(args)

	msg := &splitter.SplitMsg{SplitterID: *idFl}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdCreateFactory(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a new allocator factory.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl  = flAddress(fl, "owner", "Address of the factory owner.")
		assetsFl = flAssets(fl, "assets", "Comma separated list of accepted asset tickers.")
	)
	fl.Parse(args)

	msg := &cascade.CreateFactoryMsg{
		Owner:          *ownerFl,
		AcceptedAssets: *assetsFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdMakeAllocators(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating allocators from a factory. Each allocator
is given by its ceiling, optionally followed by @OWNER. The allocator flag
can be repeated.
`)
		fl.PrintDefaults()
	}
	var (
		idFl         = flSeq(fl, "factory", "ID of the factory.")
		allocatorsFl = flStrings(fl, "allocator", "Allocator in the CEILING[@OWNER] format. Can be repeated.")
		decimalsFl   = fl.Int("decimals", 0, "Number of decimals ceilings are given with.")
	)
	fl.Parse(args)

	specs := make([]cascade.AllocatorSpec, 0, len(*allocatorsFl))
	for _, raw := range *allocatorsFl {
		var spec cascade.AllocatorSpec
		chunks := strings.SplitN(raw, "@", 2)
		ceiling, err := coin.ParseAmount(chunks[0], int32(*decimalsFl))
		if err != nil {
			return fmt.Errorf("invalid allocator %q ceiling: %s", raw, err)
		}
		spec.Ceiling = ceiling
		if len(chunks) == 2 {
			if spec.Owner, err = tsm.ParseAddress(chunks[1]); err != nil {
				return fmt.Errorf("invalid allocator %q owner: %s", raw, err)
			}
		}
		specs = append(specs, spec)
	}

	msg := &cascade.MakeAllocatorsMsg{
		FactoryID:  *idFl,
		Allocators: specs,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdMakeValves(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating valves from a factory, one for each
controller. The controller flag can be repeated.
`)
		fl.PrintDefaults()
	}
	var (
		idFl          = flSeq(fl, "factory", "ID of the factory.")
		controllersFl = flStrings(fl, "controller", "Address of a valve controller. Can be repeated.")
	)
	fl.Parse(args)

	controllers := make([]tsm.Address, 0, len(*controllersFl))
	for _, raw := range *controllersFl {
		addr, err := tsm.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("invalid controller %q: %s", raw, err)
		}
		controllers = append(controllers, addr)
	}
	msg := &cascade.MakeValvesMsg{
		FactoryID:   *idFl,
		Controllers: controllers,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdAddAllocators(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction appending allocators to the end of a valve list. The
order of allocator flags is the order in which they are filled.
`)
		fl.PrintDefaults()
	}
	var (
		idFl         = flSeq(fl, "valve", "ID of the valve.")
		allocatorsFl = flStrings(fl, "allocator", "ID of an allocator. Can be repeated.")
	)
	fl.Parse(args)

	ids := make([][]byte, 0, len(*allocatorsFl))
	for _, raw := range *allocatorsFl {
		id, err := parseSeq(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	msg := &cascade.AddAllocatorsMsg{
		ValveID:      *idFl,
		AllocatorIDs: ids,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}

func cmdSetAssets(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction replacing the asset list of a splitter, a factory or
a valve. Exactly one of the splitter, factory and valve flags must be
given. An empty asset list makes a valve use the assets of its factory.
`)
		fl.PrintDefaults()
	}
	var (
		splitterFl = flSeq(fl, "splitter", "ID of the splitter.")
		factoryFl  = flSeq(fl, "factory", "ID of the factory.")
		valveFl    = flSeq(fl, "valve", "ID of the valve.")
		assetsFl   = flAssets(fl, "assets", "Comma separated list of asset tickers.")
	)
	fl.Parse(args)

	var msgs []tsm.Msg
	if len(*splitterFl) != 0 {
		msgs = append(msgs, &splitter.UpdateTrackedAssetsMsg{SplitterID: *splitterFl, Assets: *assetsFl})
	}
	if len(*factoryFl) != 0 {
		msgs = append(msgs, &cascade.SetAcceptedAssetsMsg{FactoryID: *factoryFl, Assets: *assetsFl})
	}
	if len(*valveFl) != 0 {
		msgs = append(msgs, &cascade.UpdateValveAssetsMsg{ValveID: *valveFl, Assets: *assetsFl})
	}
	if len(msgs) != 1 {
		return errors.New("exactly one of splitter, factory or valve must be given")
	}
	if err := msgs[0].Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msgs[0])
}

func cmdFill(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction moving the balance of a valve into its allocators.
`)
		fl.PrintDefaults()
	}
	var (
		idFl = flSeq(fl, "valve", "ID of the valve.")
	)
	fl.Parse(args)

	msg := &cascade.FillMsg{ValveID: *idFl}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	return writeMsg(output, msg)
}
