package app

import (
	"context"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// chainIDKey is outside of every orm bucket key space.
var chainIDKey = []byte("_c.chain_id")

// App executes transactions with a handler stack against a committing
// store. Transactions are processed one at a time.
type App struct {
	store   tsm.CommitKVStore
	handler tsm.Handler
	logger  log.Logger
	chainID string
}

// NewApp loads the latest committed version of the store and the chain id
// saved in it, if the chain was initialized before.
func NewApp(store tsm.CommitKVStore, handler tsm.Handler, logger log.Logger) (*App, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "cannot load store")
	}
	raw, err := store.Get(chainIDKey)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load chain id")
	}
	return &App{
		store:   store,
		handler: handler,
		logger:  logger,
		chainID: string(raw),
	}, nil
}

// ChainID returns the chain id, empty until InitChain was called.
func (a *App) ChainID() string {
	return a.chainID
}

// InitChain stores the chain id and loads the genesis application
// state. It can be called only once for a store.
func (a *App) InitChain(gen Genesis, init tsm.Initializer) (tsm.CommitID, error) {
	if a.chainID != "" {
		return tsm.CommitID{}, errors.Wrapf(errors.ErrState, "initialized for chain %q", a.chainID)
	}
	if !tsm.IsValidChainID(gen.ChainID) {
		return tsm.CommitID{}, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}

	cache := a.store.CacheWrap()
	if err := cache.Set(chainIDKey, []byte(gen.ChainID)); err != nil {
		cache.Discard()
		return tsm.CommitID{}, err
	}
	if err := init.FromGenesis(gen.AppState, cache); err != nil {
		cache.Discard()
		return tsm.CommitID{}, errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return tsm.CommitID{}, err
	}
	a.chainID = gen.ChainID
	a.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return a.store.Commit()
}

// Check runs the check stack. Nothing is ever persisted.
func (a *App) Check(tx tsm.Tx) (*tsm.CheckResult, error) {
	ctx, err := a.context("check_tx", tx)
	if err != nil {
		return nil, err
	}
	cache := a.store.CacheWrap()
	defer cache.Discard()
	return a.handler.Check(ctx, cache, tx)
}

// Deliver runs the deliver stack. Changes are written to the working
// state only if the handler succeeds, and persisted on Commit.
func (a *App) Deliver(tx tsm.Tx) (*tsm.DeliverResult, error) {
	ctx, err := a.context("deliver_tx", tx)
	if err != nil {
		return nil, err
	}
	cache := a.store.CacheWrap()
	res, err := a.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write")
	}
	return res, nil
}

// Commit persists the working state as a new version.
func (a *App) Commit() (tsm.CommitID, error) {
	return a.store.Commit()
}

// ReadStore returns a view of the working state for queries. Writes to it
// are never persisted.
func (a *App) ReadStore() tsm.ReadOnlyKVStore {
	return a.store.CacheWrap()
}

func (a *App) context(call string, tx tsm.Tx) (tsm.Context, error) {
	if a.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	ctx := tsm.WithLogger(context.Background(), a.logger)
	ctx = tsm.WithChainID(ctx, a.chainID)
	ctx = tsm.WithLogInfo(ctx, "call", call, "path", tsm.GetPath(tx))
	return ctx, nil
}
