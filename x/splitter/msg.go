package splitter

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

const (
	pathCreateMsg              = "splitter/create"
	pathUpdateTrackedAssetsMsg = "splitter/update_assets"
	pathUpdateStreamsMsg       = "splitter/update_streams"
	pathSplitMsg               = "splitter/split"
)

var (
	_ tsm.Msg = (*CreateMsg)(nil)
	_ tsm.Msg = (*UpdateTrackedAssetsMsg)(nil)
	_ tsm.Msg = (*UpdateStreamsMsg)(nil)
	_ tsm.Msg = (*SplitMsg)(nil)
)

// CreateMsg creates a splitter administrated by the given address.
type CreateMsg struct {
	Admin   tsm.Address  `json:"admin"`
	Assets  []coin.Asset `json:"assets"`
	Streams []Stream     `json:"streams"`
}

func (CreateMsg) Path() string {
	return pathCreateMsg
}

func (msg *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", msg.Admin.Validate())
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(msg.Assets))
	errs = errors.AppendField(errs, "Streams", validateStreams(msg.Streams))
	return errs
}

// UpdateTrackedAssetsMsg replaces the set of assets a splitter moves.
type UpdateTrackedAssetsMsg struct {
	SplitterID []byte       `json:"splitter_id"`
	Assets     []coin.Asset `json:"assets"`
}

func (UpdateTrackedAssetsMsg) Path() string {
	return pathUpdateTrackedAssetsMsg
}

func (msg *UpdateTrackedAssetsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "SplitterID", orm.ValidateSequence(msg.SplitterID))
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(msg.Assets))
	return errs
}

// UpdateStreamsMsg replaces the whole list of streams. Partial updates
// are not supported, the complete list must be provided every time.
type UpdateStreamsMsg struct {
	SplitterID []byte   `json:"splitter_id"`
	Streams    []Stream `json:"streams"`
}

func (UpdateStreamsMsg) Path() string {
	return pathUpdateStreamsMsg
}

func (msg *UpdateStreamsMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "SplitterID", orm.ValidateSequence(msg.SplitterID))
	errs = errors.AppendField(errs, "Streams", validateStreams(msg.Streams))
	return errs
}

// SplitMsg distributes the splitter funds between its streams.
type SplitMsg struct {
	SplitterID []byte `json:"splitter_id"`
}

func (SplitMsg) Path() string {
	return pathSplitMsg
}

func (msg *SplitMsg) Validate() error {
	return errors.AppendField(nil, "SplitterID", orm.ValidateSequence(msg.SplitterID))
}
