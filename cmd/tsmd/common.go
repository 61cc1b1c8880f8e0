package main

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/okatau/tsm/app"
	tsmd "github.com/okatau/tsm/cmd/tsmd/app"
	"github.com/tendermint/tendermint/libs/log"
)

// writeTx serialize the transaction. First bytes written contain the
// information how much space the transaction takes, so that several
// transactions can be streamed through one pipe.
func writeTx(w io.Writer, tx *tsmd.Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

// readTx reads a single transaction written by writeTx. io.EOF is
// returned when the input holds no more transactions.
func readTx(r io.Reader) (*tsmd.Tx, int, error) {
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, n, errors.New("truncated transaction header")
		}
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx tsmd.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const txHeaderSize = 4

// env returns the value of the environment variable or the fallback if
// not set.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("TSMD_HOME", filepath.Join(os.Getenv("HOME"), ".tsmd"))
}

func defaultKeyPath() string {
	return env("TSMD_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".tsmd.priv.key"))
}

// newLogger returns a logger writing to stderr everything at given level
// or above.
func newLogger(level string) (log.Logger, error) {
	allowed, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	return log.NewFilter(logger, allowed).With("module", "tsmd"), nil
}

// openApp loads the application state kept in the home directory. The
// returned function must be called to release the store.
func openApp(home string, logger log.Logger) (*app.App, func(), error) {
	store := tsmd.OpenStore(home)
	a, err := tsmd.Application(store, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return a, store.Close, nil
}
