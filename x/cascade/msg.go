package cascade

import (
	"fmt"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

const (
	pathCreateFactoryMsg     = "cascade/create_factory"
	pathMakeAllocatorsMsg    = "cascade/make_allocators"
	pathMakeValvesMsg        = "cascade/make_valves"
	pathSetAcceptedAssetsMsg = "cascade/set_accepted_assets"
	pathAddAllocatorsMsg     = "cascade/add_allocators"
	pathUpdateValveAssetsMsg = "cascade/update_assets"
	pathFillMsg              = "cascade/fill"
)

var (
	_ tsm.Msg = (*CreateFactoryMsg)(nil)
	_ tsm.Msg = (*MakeAllocatorsMsg)(nil)
	_ tsm.Msg = (*MakeValvesMsg)(nil)
	_ tsm.Msg = (*SetAcceptedAssetsMsg)(nil)
	_ tsm.Msg = (*AddAllocatorsMsg)(nil)
	_ tsm.Msg = (*UpdateValveAssetsMsg)(nil)
	_ tsm.Msg = (*FillMsg)(nil)
)

// CreateFactoryMsg creates a factory owned by the given address.
type CreateFactoryMsg struct {
	Owner          tsm.Address  `json:"owner"`
	AcceptedAssets []coin.Asset `json:"accepted_assets"`
}

func (CreateFactoryMsg) Path() string {
	return pathCreateFactoryMsg
}

func (m *CreateFactoryMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "AcceptedAssets", coin.ValidateAssets(m.AcceptedAssets))
	return errs
}

// AllocatorSpec describes an allocator to be created.
type AllocatorSpec struct {
	Ceiling coin.Amount `json:"ceiling"`
	// Owner is optional and defaults to the factory owner.
	Owner tsm.Address `json:"owner,omitempty"`
}

// MakeAllocatorsMsg creates one allocator per entry.
type MakeAllocatorsMsg struct {
	FactoryID  []byte          `json:"factory_id"`
	Allocators []AllocatorSpec `json:"allocators"`
}

func (MakeAllocatorsMsg) Path() string {
	return pathMakeAllocatorsMsg
}

func (m *MakeAllocatorsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "FactoryID", orm.ValidateSequence(m.FactoryID))
	switch n := len(m.Allocators); {
	case n == 0:
		errs = errors.AppendField(errs, "Allocators", errors.ErrEmpty)
	case n > maxBatchCreate:
		errs = errors.Append(errs, errors.Field("Allocators", errors.ErrInput, "more than %d", maxBatchCreate))
	}
	for i, a := range m.Allocators {
		if len(a.Owner) != 0 {
			errs = errors.AppendField(errs, fmt.Sprintf("Allocators.%d.Owner", i), a.Owner.Validate())
		}
	}
	return errs
}

// MakeValvesMsg creates one valve per controller.
type MakeValvesMsg struct {
	FactoryID   []byte        `json:"factory_id"`
	Controllers []tsm.Address `json:"controllers"`
}

func (MakeValvesMsg) Path() string {
	return pathMakeValvesMsg
}

func (m *MakeValvesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "FactoryID", orm.ValidateSequence(m.FactoryID))
	switch n := len(m.Controllers); {
	case n == 0:
		errs = errors.AppendField(errs, "Controllers", errors.ErrEmpty)
	case n > maxBatchCreate:
		errs = errors.Append(errs, errors.Field("Controllers", errors.ErrInput, "more than %d", maxBatchCreate))
	}
	for i, c := range m.Controllers {
		errs = errors.AppendField(errs, fmt.Sprintf("Controllers.%d", i), c.Validate())
	}
	return errs
}

// SetAcceptedAssetsMsg replaces the accepted assets of a factory.
type SetAcceptedAssetsMsg struct {
	FactoryID []byte       `json:"factory_id"`
	Assets    []coin.Asset `json:"assets"`
}

func (SetAcceptedAssetsMsg) Path() string {
	return pathSetAcceptedAssetsMsg
}

func (m *SetAcceptedAssetsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "FactoryID", orm.ValidateSequence(m.FactoryID))
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(m.Assets))
	return errs
}

// AddAllocatorsMsg appends allocators to the end of the valve list.
type AddAllocatorsMsg struct {
	ValveID      []byte   `json:"valve_id"`
	AllocatorIDs [][]byte `json:"allocator_ids"`
}

func (AddAllocatorsMsg) Path() string {
	return pathAddAllocatorsMsg
}

func (m *AddAllocatorsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "ValveID", orm.ValidateSequence(m.ValveID))
	if len(m.AllocatorIDs) == 0 {
		errs = errors.AppendField(errs, "AllocatorIDs", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "AllocatorIDs", validateAllocatorIDs(m.AllocatorIDs, maxValveAllocators))
	}
	return errs
}

// UpdateValveAssetsMsg replaces the assets tracked by a valve. An empty
// list makes the valve use the factory accepted assets.
type UpdateValveAssetsMsg struct {
	ValveID []byte       `json:"valve_id"`
	Assets  []coin.Asset `json:"assets"`
}

func (UpdateValveAssetsMsg) Path() string {
	return pathUpdateValveAssetsMsg
}

func (m *UpdateValveAssetsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "ValveID", orm.ValidateSequence(m.ValveID))
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(m.Assets))
	return errs
}

// FillMsg moves the valve funds into its allocators.
type FillMsg struct {
	ValveID []byte `json:"valve_id"`
}

func (FillMsg) Path() string {
	return pathFillMsg
}

func (m *FillMsg) Validate() error {
	return errors.AppendField(nil, "ValveID", orm.ValidateSequence(m.ValveID))
}
