/*
Package app links together the extensions that make up the tsmd
application: signature checks, batches, cash wallets, stream splitters
and cascade valves.
*/
package app

import (
	"path/filepath"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/app"
	"github.com/okatau/tsm/store/iavl"
	"github.com/okatau/tsm/x"
	"github.com/okatau/tsm/x/batch"
	"github.com/okatau/tsm/x/cascade"
	"github.com/okatau/tsm/x/cash"
	"github.com/okatau/tsm/x/sigs"
	"github.com/okatau/tsm/x/splitter"
	"github.com/okatau/tsm/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by every handler,
// public key signatures only.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns the decorators every transaction passes before it
// reaches its handler.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		// signatures cover the whole batch and are verified once
		sigs.NewDecorator(),
		batch.NewDecorator(),
	)
}

// Router returns a router dispatching every message of the
// application.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := cash.NewController()
	cash.RegisterRoutes(r, authFn, ctrl)
	cascade.RegisterRoutes(r, authFn, ctrl)
	splitter.RegisterRoutes(r, authFn, ctrl)
	return r
}

// Stack wires up the router with the decorator chain.
func Stack() tsm.Handler {
	return Chain().WithHandler(Router(Authenticator()))
}

// Initializers returns the genesis loaders of all extensions. Splitter
// streams may point to allocators, so cascade state is loaded first.
func Initializers() tsm.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		cascade.Initializer{},
		splitter.Initializer{},
	)
}

// OpenStore opens the persistent state kept under the home directory.
func OpenStore(home string) iavl.CommitStore {
	return iavl.NewCommitStore(filepath.Join(home, "data"), "tsm")
}

// Application returns the application running on top of given store.
func Application(store tsm.CommitKVStore, logger log.Logger) (*app.App, error) {
	return app.NewApp(store, Stack(), logger)
}
