package tsm

import (
	"context"
	"regexp"

	"github.com/okatau/tsm/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Context travels through the decorator chain into every handler. Values
// are attached with a WithX function and read back with the matching GetX.
// Values that identify the chain may be set only once.
type Context = context.Context

type ctxKey int

const (
	loggerKey ctxKey = iota
	chainIDKey
)

var (
	// DefaultLogger is returned by GetLogger when the context carries no
	// logger.
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID reports whether id can name a chain. Chain ids are
	// part of every signed message.
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithChainID attaches the chain id. It panics if the id is malformed or
// the context already carries one.
func WithChainID(ctx Context, chainID string) Context {
	if _, ok := ctx.Value(chainIDKey).(string); ok {
		panic("chain id already set")
	}
	if !IsValidChainID(chainID) {
		panic(errors.Wrapf(errors.ErrInput, "chain id %q", chainID))
	}
	return context.WithValue(ctx, chainIDKey, chainID)
}

// GetChainID returns the chain id. The application sets it before any
// handler runs, so a missing id is a programming error and panics.
func GetChainID(ctx Context) string {
	id, ok := ctx.Value(chainIDKey).(string)
	if !ok {
		panic("chain id not set")
	}
	return id
}

func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the context logger or DefaultLogger.
func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(loggerKey).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}

// WithLogInfo replaces the context logger with one that adds keyvals to
// every entry.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}
