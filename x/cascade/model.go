package cascade

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

const (
	// maxValveAllocators is the length limit of a valve allocator list.
	maxValveAllocators = 200

	// maxBatchCreate limits how many instances one message creates.
	maxBatchCreate = 100
)

// Factory creates allocators and valves.
type Factory struct {
	Owner          tsm.Address  `json:"owner"`
	AcceptedAssets []coin.Asset `json:"accepted_assets"`
}

var _ orm.Model = (*Factory)(nil)

// Validate ensures the factory is in a consistent state.
func (f *Factory) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", f.Owner.Validate())
	errs = errors.AppendField(errs, "AcceptedAssets", coin.ValidateAssets(f.AcceptedAssets))
	return errs
}

// Allocator is a recipient that accepts funds up to its ceiling.
type Allocator struct {
	FactoryID []byte `json:"factory_id"`
	// Owner is the address the allocated funds are intended for.
	Owner   tsm.Address `json:"owner"`
	Ceiling coin.Amount `json:"ceiling"`
	Filled  coin.Amount `json:"filled"`
	// Credits is the per asset record of everything accepted. Its
	// total is always equal to Filled.
	Credits coin.Coins  `json:"credits"`
	Address tsm.Address `json:"address"`
}

var _ orm.Model = (*Allocator)(nil)

// Validate ensures the allocator is in a consistent state.
func (a *Allocator) Validate() error {
	var errs error
	if len(a.FactoryID) == 0 {
		errs = errors.AppendField(errs, "FactoryID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	if a.Filled.Cmp(a.Ceiling) > 0 {
		errs = errors.AppendField(errs, "Filled", errors.ErrCapacity)
	}
	if err := a.Credits.Validate(); err != nil {
		errs = errors.AppendField(errs, "Credits", err)
	} else if total, err := a.Credits.Total(); err != nil {
		errs = errors.AppendField(errs, "Credits", err)
	} else if total != a.Filled {
		errs = errors.Append(errs, errors.Field("Credits", errors.ErrState, "credited %s, filled %s", total, a.Filled))
	}
	errs = errors.AppendField(errs, "Address", a.Address.Validate())
	return errs
}

// Balance returns the amount accepted so far.
func (a *Allocator) Balance() coin.Amount {
	return a.Filled
}

// IsFull returns true once the ceiling is reached. An allocator with a
// zero ceiling is always full.
func (a *Allocator) IsFull() bool {
	return a.Filled.Cmp(a.Ceiling) >= 0
}

// Room returns how much the allocator can still accept.
func (a *Allocator) Room() coin.Amount {
	room, err := a.Ceiling.Sub(a.Filled)
	if err != nil {
		return coin.Amount{}
	}
	return room
}

// Credit accepts as much of the amount as fits below the ceiling and
// returns the accepted part together with the remainder that must
// flow elsewhere. Crossing the ceiling is an error, never clamped.
func (a *Allocator) Credit(asset coin.Asset, amount coin.Amount) (accepted, remainder coin.Amount, err error) {
	if err := asset.Validate(); err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	if a.Filled.Cmp(a.Ceiling) > 0 {
		return coin.Amount{}, coin.Amount{}, errors.Wrapf(errors.ErrCapacity, "filled %s above ceiling %s", a.Filled, a.Ceiling)
	}

	accepted = coin.Min(amount, a.Room())
	if remainder, err = amount.Sub(accepted); err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	if accepted.IsZero() {
		return coin.Amount{}, remainder, nil
	}

	filled, err := a.Filled.Add(accepted)
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	if filled.Cmp(a.Ceiling) > 0 {
		return coin.Amount{}, coin.Amount{}, errors.Wrapf(errors.ErrCapacity, "%s + %s above ceiling %s", a.Filled, accepted, a.Ceiling)
	}
	credits, err := a.Credits.Add(coin.Coin{Ticker: asset, Amount: accepted})
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	a.Filled = filled
	a.Credits = credits
	return accepted, remainder, nil
}

// Valve moves its funds into an ordered list of allocators.
type Valve struct {
	FactoryID []byte `json:"factory_id"`
	// Admin is the factory owner at the time of creation.
	Admin tsm.Address `json:"admin"`
	// Controller is the designated address that can operate the valve.
	Controller tsm.Address `json:"controller"`
	// Allocators are ordered by priority, the first one is filled first.
	Allocators [][]byte `json:"allocators"`
	// Assets tracked by this valve. When empty, the factory accepted
	// assets are used.
	Assets  []coin.Asset `json:"assets"`
	Address tsm.Address  `json:"address"`
}

var _ orm.Model = (*Valve)(nil)

// Validate ensures the valve is in a consistent state.
func (v *Valve) Validate() error {
	var errs error
	if len(v.FactoryID) == 0 {
		errs = errors.AppendField(errs, "FactoryID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Admin", v.Admin.Validate())
	errs = errors.AppendField(errs, "Controller", v.Controller.Validate())
	errs = errors.AppendField(errs, "Allocators", validateAllocatorIDs(v.Allocators, maxValveAllocators))
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(v.Assets))
	errs = errors.AppendField(errs, "Address", v.Address.Validate())
	return errs
}

// validateAllocatorIDs requires well formed, unique ids.
func validateAllocatorIDs(ids [][]byte, max int) error {
	if len(ids) > max {
		return errors.Wrapf(errors.ErrInput, "more than %d allocators", max)
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if err := orm.ValidateSequence(id); err != nil {
			return errors.Wrapf(err, "allocator %d", i)
		}
		if _, ok := seen[string(id)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "allocator %d", i)
		}
		seen[string(id)] = struct{}{}
	}
	return nil
}

// AllocatorAddress returns the address holding the funds of an allocator.
func AllocatorAddress(id []byte) tsm.Address {
	return tsm.NewCondition("cascade", "alloc", id).Address()
}

// ValveAddress returns the address holding the funds of a valve.
func ValveAddress(id []byte) tsm.Address {
	return tsm.NewCondition("cascade", "valve", id).Address()
}

var (
	allocatorSeq = orm.NewSequence("allocator", orm.SeqID)
	valveSeq     = orm.NewSequence("valve", orm.SeqID)
)

// NewFactoryBucket returns a bucket for managing factories.
func NewFactoryBucket() orm.ModelBucket {
	return orm.NewModelBucket("factory", &Factory{})
}

// NewAllocatorBucket returns a bucket for managing allocators.
func NewAllocatorBucket() orm.ModelBucket {
	return orm.NewModelBucket("allocator", &Allocator{})
}

// NewValveBucket returns a bucket for managing valves.
func NewValveBucket() orm.ModelBucket {
	return orm.NewModelBucket("valve", &Valve{})
}
